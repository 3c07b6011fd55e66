package commands

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/spendlens/spendlens/internal/retag"
)

func newRetagCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "retag",
		Short: "Recompute every tag over every stored transaction once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			a, err := newApp(cfg)
			if err != nil {
				return err
			}
			defer a.close()

			res, err := retag.NewJob(a.store, a.registry, a.tagger).Run(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "rows: %d, changed: %d\n", res.Rows, res.Changed)
			names := make([]string, 0, len(res.Matched))
			for name := range res.Matched {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Fprintf(out, "  %s: %d\n", name, res.Matched[name])
			}
			return nil
		},
	}
}
