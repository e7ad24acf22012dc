package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/warp/payroll-engine/compliance"
	"github.com/warp/payroll-engine/taxsync"
)

// newCheckCommand builds "check": run the yearly compliance checks and
// print the findings. Exit status is non-zero when issues remain.
func newCheckCommand(opts *Options) *cobra.Command {
	var (
		year      int
		remediate bool
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run the yearly compliance checks",
		Long: `Checks the year's records against the statutory rules: table
completeness, thirteenth-salary payment windows, vacation pay deadlines,
termination settlement consistency and leave funding. With --remediate,
missing tables trigger a synchronization apply before re-checking.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(opts)
			if err != nil {
				return err
			}
			defer store.Close()

			sync := taxsync.New(store)
			engine := compliance.NewEngine(store, func(ctx context.Context, y int) error {
				_, err := sync.Run(ctx, y, true)
				return err
			})

			report, err := engine.Check(cmd.Context(), year, remediate)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Compliance check - year %d\n\n", report.Year)
			if report.Remediated {
				fmt.Fprintln(out, "Tables were remediated via synchronization.")
			}
			for _, issue := range report.Issues {
				fmt.Fprintf(out, "ISSUE: %s\n", issue)
			}
			for _, info := range report.Infos {
				fmt.Fprintf(out, "info:  %s\n", info)
			}

			if !report.OK {
				return fmt.Errorf("%d issue(s) found", len(report.Issues))
			}
			fmt.Fprintln(out, "All checks passed.")
			return nil
		},
	}

	cmd.Flags().IntVar(&year, "year", time.Now().Year(), "year to check")
	cmd.Flags().BoolVar(&remediate, "remediate", false, "synchronize missing tables before re-checking")
	return cmd
}
