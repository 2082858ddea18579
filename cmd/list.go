package cmd

import (
	"context"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Alain-L/slowq/output"
	"github.com/Alain-L/slowq/store"
)

// defaultMinExec is the list filter the host's own report starts with.
const defaultMinExec = 3

var (
	listSearch  string  // --search: substring of the SQL text
	listMinExec float64 // --minexec: minimum execution time in seconds
	listSort    string  // --sort: avgtime, cnt or id
	listAsc     bool    // --asc: ascending order
	listPage    int     // --page: 1-based page number
	listPerPage int     // --perpage: rows per page
	listJSON    bool    // --json: JSON output
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List distinct slow SQL texts",
	Long: `list groups the slow query log by SQL text and shows, for each text, the
latest entry id, the number of entries, the origin of the latest entry, the
average execution time and whether it ran from cron.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVarP(&listSearch, "search", "s", "",
		"Only SQL texts containing this string (case-insensitive)")
	listCmd.Flags().Float64VarP(&listMinExec, "minexec", "m", defaultMinExec,
		"Only entries that ran at least this many seconds")
	listCmd.Flags().StringVar(&listSort, "sort", "avgtime",
		"Sort column: avgtime, cnt or id")
	listCmd.Flags().BoolVar(&listAsc, "asc", false,
		"Sort ascending")
	listCmd.Flags().IntVarP(&listPage, "page", "p", 1,
		"Page number, starting at 1")
	listCmd.Flags().IntVar(&listPerPage, "perpage", store.DefaultPerPage,
		"Rows per page")
	listCmd.Flags().BoolVarP(&listJSON, "json", "J", false,
		"Export the page in JSON format")
}

func validateListFlags() error {
	switch listSort {
	case "avgtime", "cnt", "count", "id":
	default:
		return errors.Errorf("invalid --sort %q (expected avgtime, cnt or id)", listSort)
	}
	if listPage < 1 {
		return errors.Errorf("invalid --page %d", listPage)
	}
	if listPerPage < 1 {
		return errors.Errorf("invalid --perpage %d", listPerPage)
	}
	if listMinExec < 0 {
		return errors.Errorf("invalid --minexec %g", listMinExec)
	}
	return nil
}

func runList(cmd *cobra.Command, _ []string) error {
	if err := validateListFlags(); err != nil {
		return err
	}
	return withStore(cmd, func(ctx context.Context, s *session, db *store.DB) error {
		total, err := db.CountGroupedFiltered(ctx, listSearch, listMinExec)
		if err != nil {
			return err
		}
		opts := store.ListOptions{
			Search:  listSearch,
			MinExec: listMinExec,
			Sort:    listSort,
			Asc:     listAsc,
			Page:    listPage - 1,
			PerPage: listPerPage,
		}
		rows, err := db.ListGrouped(ctx, opts)
		if err != nil {
			return err
		}
		s.logger.Debug("list page loaded",
			zap.Int("total", total), zap.Int("rows", len(rows)), zap.Int("page", listPage))

		page := output.ListPage{Rows: rows, Total: total, Page: opts.Page, PerPage: opts.PerPage}
		if listJSON {
			return output.ExportJSON(cmd.OutOrStdout(), output.NewListJSON(page))
		}
		output.PrintList(cmd.OutOrStdout(), page)
		return nil
	})
}
