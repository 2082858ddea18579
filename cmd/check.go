package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/Alain-L/slowq/analysis"
	"github.com/Alain-L/slowq/output"
)

var checkJSON bool // --json: JSON output

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check slow query logging and the number of slow entries",
	Long: `check reports CRITICAL when the host does not log slow queries, ERROR when
entries slower than 5 seconds exist and OK otherwise. The exit status is 0,
1 or 2 accordingly, so the command can run as a monitoring probe.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().BoolVarP(&checkJSON, "json", "J", false,
		"Export the result in JSON format")
}

// checkReport is the JSON form of the check command.
type checkReport struct {
	analysis.CheckResult
	Thresholds []output.ThresholdRow `json:"thresholds,omitempty"`
}

func runCheck(cmd *cobra.Command, _ []string) (err error) {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, s.Close())
	}()

	// Counts are only read when logging is on; a disabled log needs no
	// database at all.
	var rows []output.ThresholdRow
	if s.cfg.DBOptions.LogSlowEnabled() {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		db, err := s.openStore(ctx)
		if err != nil {
			return err
		}
		counts, err := db.ThresholdCounts(ctx)
		if err != nil {
			return err
		}
		for _, sec := range analysis.SlowThresholds {
			rows = append(rows, output.ThresholdRow{Seconds: sec, Count: counts.ByThreshold(sec)})
		}
	}

	res := analysis.EvaluateCheck(s.cfg.DBOptions, func(seconds int) int64 {
		for _, r := range rows {
			if r.Seconds == seconds {
				return r.Count
			}
		}
		return 0
	})

	if checkJSON {
		if err := output.ExportJSON(cmd.OutOrStdout(), checkReport{CheckResult: res, Thresholds: rows}); err != nil {
			return err
		}
	} else {
		output.PrintCheck(cmd.OutOrStdout(), res, rows)
	}

	if code := res.Status.ExitCode(); code != 0 {
		return exitCodeError{code: code}
	}
	return nil
}
