package analysis

import (
	"fmt"

	"github.com/Alain-L/slowq/config"
)

// CheckStatus is the outcome level of the slow query check.
type CheckStatus string

const (
	CheckOK       CheckStatus = "OK"
	CheckError    CheckStatus = "ERROR"
	CheckCritical CheckStatus = "CRITICAL"
)

// ExitCode maps the status to a monitoring-friendly process exit code.
func (s CheckStatus) ExitCode() int {
	switch s {
	case CheckOK:
		return 0
	case CheckError:
		return 1
	default:
		return 2
	}
}

// CheckResult is the performance check report.
type CheckResult struct {
	Status  CheckStatus `json:"status"`
	Summary string      `json:"summary"`
	Details []string    `json:"details,omitempty"`

	// Set when logging is disabled.
	CurrentValue string `json:"current_value,omitempty"`
	Snippet      string `json:"snippet,omitempty"`
}

// EvaluateCheck grades the log: CRITICAL when slow query logging is off,
// ERROR when entries slower than the first threshold exist, OK otherwise.
// counts returns the number of entries slower than a threshold in seconds.
func EvaluateCheck(opts config.DBOptions, counts func(seconds int) int64) CheckResult {
	if !opts.LogSlowEnabled() {
		return CheckResult{
			Status:       CheckCritical,
			Summary:      "Slow query logging is disabled",
			CurrentValue: opts.LogSlowValue(),
			Snippet:      config.LogSlowSnippet,
			Details: []string{
				"Enable logslow in the host config.php (true or a number of seconds), then reproduce the slow page or cron task.",
			},
		}
	}

	first := SlowThresholds[0]
	n := counts(first)
	if n <= 0 {
		return CheckResult{Status: CheckOK, Summary: "No slow queries found"}
	}

	res := CheckResult{
		Status:  CheckError,
		Summary: fmt.Sprintf("Found %s taking more than %d seconds", queryCount(n), first),
		Details: []string{
			fmt.Sprintf("%s took more than %d seconds. Review them with: slowq list --minexec %d", queryCount(n), first, first),
		},
	}
	for _, sec := range SlowThresholds[1:] {
		if c := counts(sec); c > 0 {
			res.Details = append(res.Details,
				fmt.Sprintf("%d of them took more than %d seconds: slowq list --minexec %d", c, sec, sec))
		}
	}
	return res
}

func queryCount(n int64) string {
	if n == 1 {
		return "1 query"
	}
	return fmt.Sprintf("%d queries", n)
}
