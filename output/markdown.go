package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/Alain-L/slowq/analysis"
)

// DetailMarkdown produces the detail report of one log entry in Markdown.
func DetailMarkdown(d *analysis.Detail) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("# Query details: %s\n\n", d.QueryID))
	b.WriteString(fmt.Sprintf("This _slowq_ report covers log entry **%d**, a %s statement logged %s that ran for **%s** (average %s for this SQL text).\n\n",
		d.ID, d.QueryType, humanDate(d.TimeLogged), formatSeconds(d.ExecTime), formatSeconds(d.AvgTime)))

	b.WriteString("|  |  |\n")
	b.WriteString("|---|---|\n")
	b.WriteString(fmt.Sprintf("| Time logged | %s |\n", d.TimeLogged.Format("2006-01-02 15:04:05 MST")))
	b.WriteString(fmt.Sprintf("| Time (s) | %.5f |\n", d.ExecTime))
	b.WriteString(fmt.Sprintf("| Avg time (s) | %.5f |\n", d.AvgTime))
	b.WriteString(fmt.Sprintf("| CRON | %s |\n", yesNo(d.IsCron)))
	b.WriteString(fmt.Sprintf("| Backtrace | %s |\n", markdownCell(d.Origin)))
	if d.Comments != "" {
		b.WriteString(fmt.Sprintf("| Comment | %s |\n", markdownCell(d.Comments)))
	}
	b.WriteString("\n")

	// ============================================================================
	// SQL
	// ============================================================================
	b.WriteString("## SQL and parameters\n\n")
	writeFence(&b, "sql", formatSQL(d.SQLText))
	writeFence(&b, "", d.ParamsBlock)

	b.WriteString("### SQL with parameters\n\n")
	writeFence(&b, "sql", formatSQL(d.ExpandedSQL))

	b.WriteString("### Backtrace\n\n")
	writeFence(&b, "", orDash(d.Backtrace))

	// ============================================================================
	// SCHEMA & INDEXES
	// ============================================================================
	b.WriteString("## Tables\n\n")
	writeFence(&b, "", d.SchemaBlock)

	b.WriteString("## Possible missing indexes\n\n")
	if len(d.Suggestions) == 0 {
		b.WriteString(suggestionsNone + "\n\n")
	} else {
		b.WriteString("> " + suggestionsNotice + "\n\n")
		b.WriteString("| Table | Columns | Reason |\n")
		b.WriteString("|---|---|---|\n")
		creates := make([]string, 0, len(d.Suggestions))
		for _, s := range d.Suggestions {
			b.WriteString(fmt.Sprintf("| %s | %s | %s |\n",
				markdownCell(s.Table), markdownCell(strings.Join(s.Columns, ", ")), markdownCell(s.Reason)))
			creates = append(creates, s.Create)
		}
		b.WriteString("\n")
		writeFence(&b, "sql", strings.Join(creates, "\n"))
	}

	if d.Explain != "" {
		b.WriteString("## EXPLAIN\n\n")
		b.WriteString(d.Explain)
		b.WriteString("\n\n")
	}

	// ============================================================================
	// TIMELINE
	// ============================================================================
	writeTimelineMarkdown(&b, d.Timeline)

	b.WriteString("## Prompt\n\n")
	writeFence(&b, "text", d.Prompt)

	return b.String()
}

func writeTimelineMarkdown(b *strings.Builder, t analysis.Timeline) {
	b.WriteString("## Timeline (last 7 days)\n\n")
	if t.TotalCount == 0 {
		b.WriteString("No executions in the period.\n\n")
		return
	}

	b.WriteString(fmt.Sprintf("**%s** executions, total time %s.\n\n", humanize.Comma(int64(t.TotalCount)), t.TotalTime))
	b.WriteString("|  |  |  |  |\n")
	b.WriteString("|---|---:|---|---:|\n")
	b.WriteString(fmt.Sprintf("| Min duration | %s | Max duration | %s |\n",
		formatDuration(t.Stats.Min), formatDuration(t.Stats.Max)))
	b.WriteString(fmt.Sprintf("| Avg duration | %s | Median duration | %s |\n\n",
		formatDuration(t.Stats.Avg), formatDuration(t.Stats.Median)))

	labelWidth := 0
	for _, day := range t.Days {
		if len(day.Label) > labelWidth {
			labelWidth = len(day.Label)
		}
	}
	b.WriteString("```\n")
	for _, day := range t.Days {
		b.WriteString(fmt.Sprintf("%-*s  %s  %d\n", labelWidth, day.Label, timelineStrip(day), len(day.Segments)))
	}
	b.WriteString(fmt.Sprintf("%-*s  %s\n", labelWidth, "", stripAxis()))
	b.WriteString("```\n\n")

	hist, unit, scale := computeDurationHistogram(t)
	printHistogramMarkdown(b, hist, "Execution time distribution", unit, scale, analysis.DistributionBuckets)
	hist, unit, scale = computeHourOfDayHistogram(t)
	printHistogramMarkdown(b, hist, "Executions by time of day", unit, scale, hourOfDayLabels)
}

func printHistogramMarkdown(b *strings.Builder, data map[string]int, title, unit string, scaleFactor int, orderedLabels []string) {
	b.WriteString(fmt.Sprintf("### %s\n\n", title))
	if len(data) == 0 {
		b.WriteString("(No data available)\n\n")
		return
	}
	b.WriteString("```\n")
	for _, line := range histogramLines(data, unit, scaleFactor, orderedLabels) {
		b.WriteString(line + "\n")
	}
	b.WriteString("```\n\n")
}

// writeFence writes s as a fenced code block, widening the fence when s
// itself contains backticks.
func writeFence(b *strings.Builder, lang, s string) {
	fence := "```"
	for strings.Contains(s, fence) {
		fence += "`"
	}
	b.WriteString(fence + lang + "\n")
	b.WriteString(strings.TrimRight(s, "\n"))
	b.WriteString("\n" + fence + "\n\n")
}

// markdownCell makes s safe for a single table cell.
func markdownCell(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "|", `\|`)
	s = strings.ReplaceAll(s, "\n", "<br>")
	return strings.TrimSpace(s)
}

// humanDate returns a compact, human-friendly date/time string
func humanDate(t time.Time) string {
	if t.IsZero() {
		return "N/A"
	}
	return t.Format("2 Jan 2006, 15:04 (MST)")
}
