package commands

import (
	"github.com/spf13/cobra"

	"github.com/spendlens/spendlens/internal/config"
)

// Version is stamped by the build.
var Version = "dev"

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:     "spendlens",
		Short:   "Rule-based tagging and reporting for personal finance transactions",
		Version: Version,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return config.LoadEnvFile()
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to spendlens.yaml (defaults and SPENDLENS_ env vars apply without it)")

	rootCmd.AddCommand(
		newServeCommand(&configPath),
		newRetagCommand(&configPath),
		newImportCommand(&configPath),
		newTagsCommand(),
		newReportCommand(),
	)

	return rootCmd
}
