package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/warp/payroll-engine/factory"
)

// newLoadTablesCommand builds "load-tables": persist a manual table
// document, the fallback path when the official sources are down.
func newLoadTablesCommand(opts *Options) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "load-tables",
		Short: "Load statutory tables from a JSON document",
		Long: `Reads a table document (both tax kinds plus the dependent deduction)
and persists it atomically. The document format matches the
POST /api/tables endpoint; see factory.TableDocument.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read %s: %w", file, err)
			}

			doc, err := factory.ParseTables(data)
			if err != nil {
				return err
			}
			versions, cfg, err := doc.Build()
			if err != nil {
				return err
			}

			store, err := openStore(opts)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.ReplaceAll(cmd.Context(), versions, cfg); err != nil {
				return fmt.Errorf("persist tables: %w", err)
			}

			out := cmd.OutOrStdout()
			for _, v := range versions {
				fmt.Fprintf(out, "loaded %s table, %d rows, effective %s\n",
					v.Kind, len(v.Rows), v.EffectiveFrom.Format("2006-01-02"))
			}
			if cfg != nil {
				fmt.Fprintf(out, "dependent deduction: %s\n", cfg.PerDependent.StringFixed(2))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "path to the table document (required)")
	cmd.MarkFlagRequired("file")
	return cmd
}
