package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spendlens/spendlens/internal/core/ledger"
)

func newImportCommand(configPath *string) *cobra.Command {
	var recordsPath string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Validate a records file and store its transactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if !cfg.Database.Enabled() {
				return fmt.Errorf("import requires database.dsn")
			}

			recs, err := readRecords(recordsPath)
			if err != nil {
				return err
			}
			txns, err := ledger.FromRecords(recs)
			if err != nil {
				return err
			}

			a, err := newApp(cfg)
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.store.Save(cmd.Context(), txns); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d transactions\n", len(txns))
			return nil
		},
	}

	cmd.Flags().StringVar(&recordsPath, "records", "", "JSON or YAML list of records (required)")
	_ = cmd.MarkFlagRequired("records")

	return cmd
}
