package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"

	"github.com/Alain-L/slowq/parser"
	"github.com/Alain-L/slowq/store"
)

const (
	// PreviewLength is the SQL preview length of wide terminals.
	PreviewLength = 220

	wideTerminal = 120
)

// ListPage is one page of the grouped list with its paging context.
type ListPage struct {
	Rows    []store.GroupedRow
	Total   int // distinct SQL texts matching the filter
	Page    int // zero-based
	PerPage int
}

// SQLPreview collapses whitespace and cuts the SQL text to length runes.
func SQLPreview(sql string, length int) string {
	return truncateQuery(strings.TrimSpace(whitespaceRegex.ReplaceAllString(sql, " ")), length)
}

// previewWidth picks the SQL preview length for the output width: the full
// preview on wide terminals, whatever is left by the other columns otherwise.
func previewWidth(termWidth int) int {
	if termWidth >= wideTerminal {
		return PreviewLength
	}
	w := termWidth - 60
	if w < 30 {
		w = 30
	}
	return w
}

// PrintList writes a page of grouped rows as a table.
func PrintList(w io.Writer, p ListPage) {
	if len(p.Rows) == 0 {
		fmt.Fprintln(w, "No queries found for the selected filters.")
		return
	}

	termWidth := terminalWidth(w, wideTerminal)
	preview := previewWidth(termWidth)

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"ID", "Count", "SQL", "Backtrace", "Avg time (s)", "CRON"})
	table.SetAutoWrapText(termWidth < wideTerminal)
	table.SetColWidth(preview)
	table.SetAutoFormatHeaders(false)
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_CENTER,
	})

	for _, r := range p.Rows {
		origin := parser.OriginLine(r.Backtrace.String)
		if r.Comments != "" {
			origin += "\n" + r.Comments
		}
		cron := ""
		if r.IsCron {
			cron = "✓"
		}
		table.Append([]string{
			fmt.Sprintf("%d", r.ID),
			humanize.Comma(r.Count),
			SQLPreview(r.SQLText, preview),
			origin,
			fmt.Sprintf("%.5fs", r.AvgTime),
			cron,
		})
	}
	table.Render()

	fmt.Fprintln(w, pageSummary(p))
}

// pageSummary describes the page position, e.g. "Showing 31-60 of 1,234".
func pageSummary(p ListPage) string {
	perPage := p.PerPage
	if perPage <= 0 {
		perPage = store.DefaultPerPage
	}
	first := p.Page*perPage + 1
	last := first + len(p.Rows) - 1
	pages := (p.Total + perPage - 1) / perPage
	return fmt.Sprintf("Showing %s-%s of %s (page %d of %d)",
		humanize.Comma(int64(first)), humanize.Comma(int64(last)), humanize.Comma(int64(p.Total)),
		p.Page+1, pages)
}
