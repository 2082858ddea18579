// Package output renders slowq reports as text, Markdown, JSON and HTML.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/term"

	"github.com/Alain-L/slowq/analysis"
)

// Format selects a report rendering.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "md"
	FormatJSON     Format = "json"
	FormatHTML     Format = "html"
)

// ParseFormat accepts the format names and their usual aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return FormatText, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	case "html", "htm":
		return FormatHTML, nil
	}
	return "", errors.Errorf("unknown format %q", s)
}

// FormatForPath guesses the format from a report file name, ignoring any
// compression suffix. Unknown extensions yield fallback.
func FormatForPath(path string, fallback Format) Format {
	name := strings.ToLower(stripCompressionSuffix(path))
	switch {
	case strings.HasSuffix(name, ".md"), strings.HasSuffix(name, ".markdown"):
		return FormatMarkdown
	case strings.HasSuffix(name, ".json"):
		return FormatJSON
	case strings.HasSuffix(name, ".html"), strings.HasSuffix(name, ".htm"):
		return FormatHTML
	case strings.HasSuffix(name, ".txt"):
		return FormatText
	}
	return fallback
}

// RenderDetail writes the detail report of one log entry.
func RenderDetail(w io.Writer, f Format, d *analysis.Detail) error {
	switch f {
	case FormatMarkdown:
		_, err := io.WriteString(w, DetailMarkdown(d))
		return errors.Wrap(err, "writing markdown report")
	case FormatJSON:
		return ExportJSON(w, d)
	case FormatHTML:
		return ExportHTML(w, d)
	default:
		PrintDetail(w, d)
		return nil
	}
}

// styles returns the bold and reset sequences, empty unless w is a terminal.
func styles(w io.Writer) (string, string) {
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return "\033[1m", "\033[0m"
	}
	return "", ""
}

// terminalWidth returns the width of w when it is a terminal, else fallback.
func terminalWidth(w io.Writer, fallback int) int {
	if f, ok := w.(*os.File); ok {
		if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 {
			return width
		}
	}
	return fallback
}

// formatBytes convertit une taille (en bytes) en une chaîne lisible (GB, MB, KB ou B).
func formatBytes(bytes int64) string {
	const (
		KB = 1024
		MB = 1024 * KB
		GB = 1024 * MB
		TB = 1024 * GB
	)
	switch {
	case bytes >= TB:
		return fmt.Sprintf("%.2f TB", float64(bytes)/float64(TB))
	case bytes >= GB:
		return fmt.Sprintf("%.2f GB", float64(bytes)/float64(GB))
	case bytes >= MB:
		return fmt.Sprintf("%.2f MB", float64(bytes)/float64(MB))
	case bytes >= KB:
		return fmt.Sprintf("%.2f KB", float64(bytes)/float64(KB))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
