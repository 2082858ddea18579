package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/Alain-L/slowq/store"
)

// upgradeStatus is the outcome word of one index step.
func upgradeStatus(r store.EnsureResult, dryRun bool) string {
	switch {
	case r.Skipped:
		return "skipped"
	case r.Exists:
		return "exists"
	case r.Created:
		return "created"
	case dryRun:
		return "missing"
	}
	return "pending"
}

// PrintUpgrade writes the index upgrade results as a table, followed by the
// statements still to run in a dry run and the tracker notes.
func PrintUpgrade(w io.Writer, results []store.EnsureResult, dryRun bool) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Table", "Columns", "Index", "Status"})
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)

	var pending, notes []string
	for _, r := range results {
		status := upgradeStatus(r, dryRun)
		table.Append([]string{r.Step.Table, strings.Join(r.Step.Columns, ", "), r.Name, status})
		if status == "missing" {
			pending = append(pending, r.Statement+";")
		}
		if link := r.Step.TrackerLink(); link != "" {
			notes = append(notes, link)
		}
	}
	table.Render()

	if len(pending) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Statements to run:")
		for _, s := range pending {
			fmt.Fprintln(w, "  "+s)
		}
	}
	if len(notes) > 0 {
		fmt.Fprintln(w)
		for _, n := range notes {
			fmt.Fprintln(w, n)
		}
	}
}
