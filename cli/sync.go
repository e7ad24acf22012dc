package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/warp/payroll-engine/tax"
	"github.com/warp/payroll-engine/taxsync"
)

// newSyncCommand builds "sync-taxes": walk the official source chains
// and print the report. Without --apply it is a pure dry-run.
func newSyncCommand(opts *Options) *cobra.Command {
	var (
		year  int
		apply bool
	)

	cmd := &cobra.Command{
		Use:   "sync-taxes",
		Short: "Synchronize statutory tax tables from the official sources",
		Long: `Fetches the pension and withholding bracket tables from the ranked
official sources and prints the extraction report. With --apply the
tables are persisted atomically, effective January 1st of the target
year; any extraction failure refuses the whole apply.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(opts)
			if err != nil {
				return err
			}
			defer store.Close()

			res, err := taxsync.New(store).Run(cmd.Context(), year, apply)
			if res != nil {
				for _, line := range res.ReportLines {
					fmt.Fprintln(cmd.OutOrStdout(), line)
				}
			}
			if err != nil {
				if errors.Is(err, tax.ErrApplyRefused) {
					return fmt.Errorf("apply refused: %w", err)
				}
				return err
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&year, "year", time.Now().Year()+1, "target year for the tables")
	cmd.Flags().BoolVar(&apply, "apply", false, "persist the extracted tables (default is dry-run)")
	return cmd
}
