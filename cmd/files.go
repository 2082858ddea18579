package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/Alain-L/slowq/analysis"
	"github.com/Alain-L/slowq/output"
)

// formatExtension is the file extension of each report format.
var formatExtension = map[output.Format]string{
	output.FormatText:     ".txt",
	output.FormatMarkdown: ".md",
	output.FormatJSON:     ".json",
	output.FormatHTML:     ".html",
}

// reportFileName names the report of entry id, e.g. "slowq-42.md.gz".
// compress is "", "gz" or "zst".
func reportFileName(id int64, f output.Format, compress string) string {
	ext, ok := formatExtension[f]
	if !ok {
		ext = ".txt"
	}
	name := fmt.Sprintf("slowq-%d%s", id, ext)
	if compress != "" {
		name += "." + strings.TrimPrefix(compress, ".")
	}
	return name
}

// validateCompress accepts the --compress values.
func validateCompress(s string) (string, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "", "none":
		return "", nil
	case "gz", "gzip":
		return "gz", nil
	case "zst", "zstd":
		return "zst", nil
	}
	return "", errors.Errorf("unknown compression %q (expected gz or zst)", s)
}

// ensureDir creates dir and its parents when missing.
func ensureDir(dir string) error {
	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return errors.Errorf("%s is not a directory", dir)
		}
		return nil
	}
	if !os.IsNotExist(err) {
		return errors.Wrapf(err, "checking %s", dir)
	}
	return errors.Wrapf(os.MkdirAll(dir, 0o755), "creating %s", dir)
}

// writeReportFile renders d to path, compressed according to its suffix,
// and returns the size written to disk.
func writeReportFile(path string, f output.Format, d *analysis.Detail) (string, error) {
	if err := ensureDir(filepath.Dir(path)); err != nil {
		return "", err
	}
	rf, err := output.CreateReportFile(path)
	if err != nil {
		return "", err
	}
	if err := output.RenderDetail(rf, f, d); err != nil {
		return "", multierr.Append(err, rf.Close())
	}
	if err := rf.Close(); err != nil {
		return "", errors.Wrapf(err, "writing %s", path)
	}
	return rf.Size(), nil
}
