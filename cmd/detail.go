package cmd

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Alain-L/slowq/analysis"
	"github.com/Alain-L/slowq/output"
	"github.com/Alain-L/slowq/store"
)

var (
	detailFormat   string // --format: text, md, json or html
	detailMD       bool   // --md: shorthand for --format md
	detailJSON     bool   // --json: shorthand for --format json
	detailOut      string // --out: report file, compressed by suffix
	detailOutDir   string // --out-dir: one report file per id
	detailCompress string // --compress: gz or zst, with --out-dir
	noExplain      bool   // --no-explain: skip the EXPLAIN section
	nowFlag        string // --now: end of the timeline window
)

var detailCmd = &cobra.Command{
	Use:   "detail <id> [id...]",
	Short: "Build the diagnostic report of log entries",
	Long: `detail builds the report of one or more slow query log entries: SQL with
its parameters, backtrace, tables and their indexes, index suggestions,
EXPLAIN plan (MySQL and MariaDB) and the executions of the same SQL text over
the last 7 days.

With --out the report is written to a file; a .gz, .zst or .zstd suffix
compresses it. With several ids, reports are built in parallel and either
printed in order or written to --out-dir.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDetail,
}

func init() {
	detailCmd.Flags().StringVarP(&detailFormat, "format", "f", "",
		"Report format: text, md, json or html (default from --out suffix, else text)")
	detailCmd.Flags().BoolVar(&detailMD, "md", false, "Markdown report")
	detailCmd.Flags().BoolVarP(&detailJSON, "json", "J", false, "JSON report")
	detailCmd.Flags().StringVarP(&detailOut, "out", "o", "",
		"Write the report to this file (.gz, .zst or .zstd compresses it)")
	detailCmd.Flags().StringVar(&detailOutDir, "out-dir", "",
		"Write one report file per id into this directory")
	detailCmd.Flags().StringVar(&detailCompress, "compress", "",
		"Compression of --out-dir reports: gz or zst")
	detailCmd.Flags().BoolVar(&noExplain, "no-explain", false,
		"Do not run EXPLAIN")
	detailCmd.Flags().StringVar(&nowFlag, "now", "",
		"End of the timeline window (format: YYYY-MM-DD HH:MM:SS, default now)")
}

// resolveDetailFormat applies --md/--json/--format, then the --out suffix.
func resolveDetailFormat() (output.Format, error) {
	switch {
	case detailMD && detailJSON:
		return "", errors.New("--md and --json are mutually exclusive")
	case detailMD:
		return output.FormatMarkdown, nil
	case detailJSON:
		return output.FormatJSON, nil
	case detailFormat != "":
		return output.ParseFormat(detailFormat)
	case detailOut != "":
		return output.FormatForPath(detailOut, output.FormatText), nil
	}
	return output.FormatText, nil
}

// reportBuilder assembles detail reports against one store.
type reportBuilder struct {
	db       *store.DB
	logger   *zap.Logger
	loc      *time.Location
	now      time.Time
	language string
	explain  bool
}

// build loads entry id and computes its report. Only a missing or
// unreadable entry is an error; the timeline degrades to empty.
func (b *reportBuilder) build(ctx context.Context, id int64) (*analysis.Detail, error) {
	det, err := b.db.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	logger := b.logger.With(zap.Int64("id", id))

	from, to := analysis.TimelinePeriod(b.now, b.loc)
	execs, err := b.db.ForSQLInPeriod(ctx, from, to, det.SQLText)
	if err != nil {
		logger.Warn("timeline unavailable", zap.Error(err))
		execs = nil
	}

	in := analysis.DetailInput{
		Entry:      det.LogEntry,
		AvgTime:    det.AvgTime,
		Comments:   det.Comments,
		Target:     b.db.Target(),
		Language:   b.language,
		Location:   b.loc,
		Now:        b.now,
		Executions: execs,
		Catalog:    b.db,
	}
	if b.explain {
		in.Explainer = b.db
	}
	return analysis.BuildDetail(ctx, in, logger), nil
}

func runDetail(cmd *cobra.Command, args []string) error {
	ids, err := parseIDs(args)
	if err != nil {
		return err
	}
	format, err := resolveDetailFormat()
	if err != nil {
		return err
	}
	compress, err := validateCompress(detailCompress)
	if err != nil {
		return err
	}
	if detailOut != "" && detailOutDir != "" {
		return errors.New("--out and --out-dir are mutually exclusive")
	}
	if detailOut != "" && len(ids) > 1 {
		return errors.New("--out takes a single id, use --out-dir for several")
	}

	return withStore(cmd, func(ctx context.Context, s *session, db *store.DB) error {
		now, err := parseNow(nowFlag, s.loc)
		if err != nil {
			return err
		}
		b := &reportBuilder{
			db:       db,
			logger:   s.logger,
			loc:      s.loc,
			now:      now,
			language: s.cfg.Language,
			explain:  !noExplain,
		}

		switch {
		case detailOut != "":
			return buildToFile(ctx, cmd.ErrOrStderr(), b, ids[0], detailOut, format)
		case detailOutDir != "":
			errs := forEachID(ids, func(_ int, id int64) error {
				path := filepath.Join(detailOutDir, reportFileName(id, format, compress))
				return buildToFile(ctx, cmd.ErrOrStderr(), b, id, path, format)
			})
			return combineReportErrors(s.logger, ids, errs)
		default:
			return buildToWriter(ctx, cmd.OutOrStdout(), s.logger, b, ids, format)
		}
	})
}

// buildToFile writes the report of id to path and reports its size on w.
func buildToFile(ctx context.Context, w io.Writer, b *reportBuilder, id int64, path string, f output.Format) error {
	d, err := b.build(ctx, id)
	if err != nil {
		return err
	}
	size, err := writeReportFile(path, f, d)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Report for entry %d written to %s (%s)\n", id, path, size)
	return nil
}

// buildToWriter builds every report in parallel and writes them to w in
// argument order.
func buildToWriter(ctx context.Context, w io.Writer, logger *zap.Logger, b *reportBuilder, ids []int64, f output.Format) error {
	reports := make([]*analysis.Detail, len(ids))
	errs := forEachID(ids, func(i int, id int64) error {
		d, err := b.build(ctx, id)
		reports[i] = d
		return err
	})

	for i, d := range reports {
		if d == nil {
			continue
		}
		if i > 0 && f != output.FormatJSON {
			fmt.Fprintln(w)
		}
		if err := output.RenderDetail(w, f, d); err != nil {
			errs[i] = multierr.Append(errs[i], err)
		}
	}
	return combineReportErrors(logger, ids, errs)
}

// combineReportErrors logs every failed id and joins the failures.
func combineReportErrors(logger *zap.Logger, ids []int64, errs []error) error {
	var combined error
	for i, err := range errs {
		if err == nil {
			continue
		}
		if len(ids) > 1 {
			logger.Warn("report failed", zap.Int64("id", ids[i]), zap.Error(err))
		}
		combined = multierr.Append(combined, err)
	}
	return combined
}
