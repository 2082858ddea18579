package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Alain-L/slowq/store"
)

var commentCmd = &cobra.Command{
	Use:   "comment <id> <text>",
	Short: "Attach a note to the SQL text of a log entry",
	Long: `comment stores a note against the SQL text of a log entry. The note is
shared by every entry with the same SQL text and replaces any previous one;
an empty text clears it.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runComment,
}

func runComment(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	text := strings.TrimSpace(strings.Join(args[1:], " "))

	return withStore(cmd, func(ctx context.Context, s *session, db *store.DB) error {
		det, err := db.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := db.UpsertComment(ctx, det.SQLText, text, time.Now()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Comment saved for entry %d.\n", id)
		return nil
	})
}
