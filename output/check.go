package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/Alain-L/slowq/analysis"
)

// ThresholdRow is one line of the slow entry count table.
type ThresholdRow struct {
	Seconds int   `json:"seconds"`
	Count   int64 `json:"count"`
}

// FormatThresholdTable returns the per-threshold counts as a boxed table.
func FormatThresholdTable(rows []ThresholdRow) string {
	headers := []string{"Slower than", "Entries"}

	labels := make([]string, len(rows))
	counts := make([]string, len(rows))
	widthLabel := len(headers[0])
	widthCount := len(headers[1])
	for i, r := range rows {
		labels[i] = fmt.Sprintf("%d s", r.Seconds)
		counts[i] = fmt.Sprintf("%d", r.Count)
		if len(labels[i]) > widthLabel {
			widthLabel = len(labels[i])
		}
		if len(counts[i]) > widthCount {
			widthCount = len(counts[i])
		}
	}

	topLine := fmt.Sprintf("┌%s┬%s┐", strings.Repeat("─", widthLabel+2), strings.Repeat("─", widthCount+2))
	headerSep := fmt.Sprintf("├%s┼%s┤", strings.Repeat("─", widthLabel+2), strings.Repeat("─", widthCount+2))
	bottomLine := fmt.Sprintf("└%s┴%s┘", strings.Repeat("─", widthLabel+2), strings.Repeat("─", widthCount+2))

	var sb strings.Builder
	sb.WriteString(topLine + "\n")
	sb.WriteString(fmt.Sprintf("│ %-*s │ %-*s │\n", widthLabel, headers[0], widthCount, headers[1]))
	sb.WriteString(headerSep + "\n")
	for i := range rows {
		sb.WriteString(fmt.Sprintf("│ %-*s │ %*s │\n", widthLabel, labels[i], widthCount, counts[i]))
	}
	sb.WriteString(bottomLine)
	return sb.String()
}

// PrintCheck writes the performance check report. rows may be nil when the
// log was not queried.
func PrintCheck(w io.Writer, res analysis.CheckResult, rows []ThresholdRow) {
	bold, reset := styles(w)
	fmt.Fprintf(w, "%s%s%s: %s\n", bold, res.Status, reset, res.Summary)
	for _, d := range res.Details {
		fmt.Fprintln(w, "  "+d)
	}
	if res.Status == analysis.CheckCritical {
		fmt.Fprintf(w, "\n  %-25s : %s\n\n", "Current value", orDash(res.CurrentValue))
		fmt.Fprintln(w, indentBlock(res.Snippet, "  "))
		return
	}
	if len(rows) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, FormatThresholdTable(rows))
	}
}
