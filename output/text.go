package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Alain-L/slowq/analysis"
)

const (
	suggestionsNotice = "Suggestions are heuristic. Test carefully on a staging environment and validate with EXPLAIN/ANALYZE."
	suggestionsNone   = "No index suggestions detected for this query."
)

// PrintDetail writes the detail report as aligned plain text.
func PrintDetail(w io.Writer, d *analysis.Detail) {
	bold, reset := styles(w)
	section := func(title string) {
		fmt.Fprintln(w, bold+"\n"+title+"\n"+reset)
	}
	field := func(label, value string) {
		fmt.Fprintf(w, "  %-25s : %s\n", label, value)
	}

	section("QUERY DETAILS")
	field("ID", fmt.Sprintf("%d", d.ID))
	field("Query ID", d.QueryID)
	field("Type", d.QueryType)
	field("Logged at", d.TimeLogged.Format("2006-01-02 15:04:05 MST"))
	field("Execution time", formatSeconds(d.ExecTime))
	field("Average time", formatSeconds(d.AvgTime))
	field("CRON", yesNo(d.IsCron))
	field("Origin", d.Origin)
	if d.Comments != "" {
		field("Comment", d.Comments)
	}

	section("SQL")
	fmt.Fprintln(w, indentBlock(formatSQL(d.SQLText), "  "))

	section("PARAMETERS")
	fmt.Fprintln(w, indentBlock(d.ParamsBlock, "  "))

	section("SQL WITH PARAMETERS")
	fmt.Fprintln(w, indentBlock(formatSQL(d.ExpandedSQL), "  "))

	section("BACKTRACE")
	fmt.Fprintln(w, indentBlock(orDash(d.Backtrace), "  "))

	section("TABLES")
	fmt.Fprintln(w, indentBlock(d.SchemaBlock, "  "))

	section("POSSIBLE MISSING INDEXES")
	if len(d.Suggestions) == 0 {
		fmt.Fprintln(w, "  "+suggestionsNone)
	} else {
		fmt.Fprintln(w, "  "+suggestionsNotice)
		fmt.Fprintln(w)
		for _, s := range d.Suggestions {
			fmt.Fprintf(w, "  - %s (%s): %s\n", s.Table, strings.Join(s.Columns, ", "), s.Reason)
			fmt.Fprintf(w, "      %s\n", s.Create)
		}
	}

	if d.Explain != "" {
		section("EXPLAIN")
		fmt.Fprintln(w, indentBlock(d.Explain, "  "))
	}

	printTimeline(w, d.Timeline)

	section("PROMPT")
	fmt.Fprintln(w, d.Prompt)
}

// printTimeline writes the seven-day view: totals, one strip per day and the
// two histograms.
func printTimeline(w io.Writer, t analysis.Timeline) {
	bold, reset := styles(w)
	fmt.Fprintln(w, bold+"\nTIMELINE (LAST 7 DAYS)\n"+reset)
	if t.TotalCount == 0 {
		fmt.Fprintln(w, "  No executions in the period.")
		return
	}

	fmt.Fprintf(w, "  %-25s : %d\n", "Executions", t.TotalCount)
	fmt.Fprintf(w, "  %-25s : %s\n", "Total time", t.TotalTime)
	fmt.Fprintf(w, "  %-25s : %-20s  %-25s : %s\n",
		"Min duration", formatDuration(t.Stats.Min),
		"Max duration", formatDuration(t.Stats.Max))
	fmt.Fprintf(w, "  %-25s : %-20s  %-25s : %s\n",
		"Avg duration", formatDuration(t.Stats.Avg),
		"Median duration", formatDuration(t.Stats.Median))
	fmt.Fprintln(w)

	labelWidth := 0
	for _, day := range t.Days {
		if len(day.Label) > labelWidth {
			labelWidth = len(day.Label)
		}
	}
	for _, day := range t.Days {
		fmt.Fprintf(w, "  %-*s  %s  %d\n", labelWidth, day.Label, timelineStrip(day), len(day.Segments))
	}
	fmt.Fprintf(w, "  %-*s  %s\n", labelWidth, "", stripAxis())
	fmt.Fprintln(w)

	hist, unit, scale := computeDurationHistogram(t)
	printHistogram(w, hist, "Execution time distribution", unit, scale, analysis.DistributionBuckets)
	fmt.Fprintln(w)
	hist, unit, scale = computeHourOfDayHistogram(t)
	printHistogram(w, hist, "Executions by time of day", unit, scale, hourOfDayLabels)
}

// Helpers

// truncateQuery truncates the query string to the specified length, appending "…" if necessary.
func truncateQuery(query string, length int) string {
	r := []rune(query)
	if length <= 0 || len(r) <= length {
		return query
	}
	return string(r[:length]) + "…"
}

// formatSeconds renders an execution time with the five decimals of the
// host's own reports.
func formatSeconds(s float64) string {
	return fmt.Sprintf("%.5f s", s)
}

func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.3f s", d.Seconds())
	}
	if d < time.Hour {
		minutes := int(d / time.Minute)
		seconds := int((d % time.Minute) / time.Second)
		return fmt.Sprintf("%dm %02ds", minutes, seconds)
	}
	hours := int(d / time.Hour)
	minutes := int((d % time.Hour) / time.Minute)
	seconds := int((d % time.Minute) / time.Second)
	return fmt.Sprintf("%dh %02dm %02ds", hours, minutes, seconds)
}

func indentBlock(s, prefix string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, l := range lines {
		if l != "" {
			lines[i] = prefix + l
		}
	}
	return strings.Join(lines, "\n")
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
