package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Alain-L/slowq/output"
	"github.com/Alain-L/slowq/store"
)

var upgradeDryRun bool // --dry-run: print the statements without running them

var upgradeCmd = &cobra.Command{
	Use:   "upgrade",
	Short: "Create the indexes known to fix slow host queries",
	Long: `upgrade makes sure each index of a fixed list exists on the host tables,
creating the missing ones. An index already present under the same name or
over the same columns is left alone. Steps that fail are reported and the
remaining steps still run.

Only MySQL, MariaDB and PostgreSQL are supported; other databases are
skipped.`,
	Args: cobra.NoArgs,
	RunE: runUpgrade,
}

func init() {
	upgradeCmd.Flags().BoolVarP(&upgradeDryRun, "dry-run", "n", false,
		"Print the CREATE INDEX statements without running them")
}

func runUpgrade(cmd *cobra.Command, _ []string) error {
	return withStore(cmd, func(ctx context.Context, s *session, db *store.DB) error {
		results, err := db.Upgrade(ctx, db.Target(), store.UpgradeSteps, upgradeDryRun)
		output.PrintUpgrade(cmd.OutOrStdout(), results, upgradeDryRun)
		if n := len(multierr.Errors(err)); n > 0 {
			s.logger.Warn("upgrade finished with failures", zap.Int("failed", n))
		}
		return err
	})
}
