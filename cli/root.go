/*
Package cli implements the payrollctl command-line interface.

PURPOSE:
  Operational entry points that don't need the HTTP server: table
  synchronization (the usual cron target), the yearly compliance check,
  and manual table loading.

COMMANDS:
  payrollctl sync-taxes  --year 2026 [--apply]
  payrollctl check       --year 2026 [--remediate]
  payrollctl load-tables --file tables.json

Every command opens the same SQLite database the server uses (--db).
*/
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/warp/payroll-engine/store/sqlite"
)

// Options carries the persistent flags shared by all subcommands.
type Options struct {
	DBPath string
}

// NewRootCommand builds the payrollctl command tree.
func NewRootCommand() *cobra.Command {
	opts := &Options{}

	root := &cobra.Command{
		Use:           "payrollctl",
		Short:         "Payroll engine operations",
		Long:          "Operational commands for the payroll engine: statutory table synchronization, compliance checks and manual table loading.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.DBPath, "db", "payroll.db", "SQLite database path")

	root.AddCommand(newSyncCommand(opts))
	root.AddCommand(newCheckCommand(opts))
	root.AddCommand(newLoadTablesCommand(opts))
	return root
}

// openStore opens the shared database for a subcommand.
func openStore(opts *Options) (*sqlite.Store, error) {
	store, err := sqlite.New(opts.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", opts.DBPath, err)
	}
	return store, nil
}
