package output

import (
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/klauspost/pgzip"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// compressionCodec defines how to wrap a report file for a compressed format.
type compressionCodec struct {
	name     string
	suffixes []string
	opener   func(io.Writer) (io.WriteCloser, error)
}

var codecs = []compressionCodec{
	{
		name:     "gzip",
		suffixes: []string{".gz"},
		opener: func(w io.Writer) (io.WriteCloser, error) {
			return pgzip.NewWriterLevel(w, pgzip.BestCompression)
		},
	},
	{
		name:     "zstd",
		suffixes: []string{".zst", ".zstd"},
		opener: func(w io.Writer) (io.WriteCloser, error) {
			return zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
		},
	},
}

func codecFor(path string) (compressionCodec, bool) {
	lower := strings.ToLower(path)
	for _, c := range codecs {
		for _, s := range c.suffixes {
			if strings.HasSuffix(lower, s) {
				return c, true
			}
		}
	}
	return compressionCodec{}, false
}

func stripCompressionSuffix(path string) string {
	lower := strings.ToLower(path)
	for _, c := range codecs {
		for _, s := range c.suffixes {
			if strings.HasSuffix(lower, s) {
				return path[:len(path)-len(s)]
			}
		}
	}
	return path
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// ReportFile is a report being written to disk, compressed when the file
// name ends in .gz, .zst or .zstd.
type ReportFile struct {
	Path  string
	Codec string // "" when uncompressed

	f       *os.File
	counter *countingWriter
	enc     io.WriteCloser
}

// CreateReportFile creates (or truncates) path for writing.
func CreateReportFile(path string) (*ReportFile, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrap(err, "creating report file")
	}
	r := &ReportFile{Path: path, f: f, counter: &countingWriter{w: f}}

	if c, ok := codecFor(path); ok {
		enc, err := c.opener(r.counter)
		if err != nil {
			return nil, multierr.Append(errors.Wrapf(err, "starting %s encoder", c.name), f.Close())
		}
		r.Codec = c.name
		r.enc = enc
	}
	return r, nil
}

func (r *ReportFile) Write(p []byte) (int, error) {
	if r.enc != nil {
		return r.enc.Write(p)
	}
	return r.counter.Write(p)
}

// Close flushes the encoder, if any, and closes the file.
func (r *ReportFile) Close() error {
	var err error
	if r.enc != nil {
		err = errors.Wrapf(r.enc.Close(), "closing %s encoder", r.Codec)
	}
	return multierr.Append(err, r.f.Close())
}

// Size is the human-readable number of bytes written to disk.
func (r *ReportFile) Size() string {
	return formatBytes(r.counter.n)
}
