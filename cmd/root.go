// Package cmd implements the command-line interface for slowq.
// It uses the Cobra library to handle commands, flags, and execution.
package cmd

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// Version information (passed from main)
var (
	version string
	commit  string
	date    string
)

// Global flag variables, bound by init.
var (
	configPath string // --config: YAML configuration file
	dsnFlag    string // --dsn: database DSN, overrides the file and SLOWQ_DSN
	driverFlag string // --driver: mysql, pgx or sqlite
	prefixFlag string // --prefix: host table prefix
	verbose    bool   // --verbose: development logging
)

// rootCmd is the main command for the slowq CLI.
var rootCmd = &cobra.Command{
	Use:   "slowq",
	Short: "Slow query log reporter",
	Long: `slowq reads the slow query log a host application keeps in its own
database and turns it into diagnostic reports.

It can:
  - List distinct slow SQL texts with their count and average time
  - Build a detail report for one entry: parameters, tables, schema,
    index suggestions, EXPLAIN plan and a 7-day timeline
  - Attach a note to a SQL text
  - Check whether slow query logging is on and how many entries are slow
  - Create the indexes known to fix the host's slowest queries`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
// This is called by main.go to start the CLI application.
func Execute(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date)

	if err := rootCmd.Execute(); err != nil {
		var ec exitCodeError
		if errors.As(err, &ec) {
			os.Exit(ec.code)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// init initializes the global flags and registers the subcommands.
func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath,
		"Configuration file (YAML)")
	rootCmd.PersistentFlags().StringVar(&dsnFlag, "dsn", "",
		"Database DSN. Overrides the configuration file and the "+dsnEnv+" environment variable")
	rootCmd.PersistentFlags().StringVar(&driverFlag, "driver", "",
		"Database driver: mysql, pgx or sqlite")
	rootCmd.PersistentFlags().StringVar(&prefixFlag, "prefix", "",
		"Host table prefix (default from configuration, mdl_ when unset)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Verbose (development) logging")

	rootCmd.AddCommand(listCmd, detailCmd, commentCmd, checkCmd, upgradeCmd)
}
