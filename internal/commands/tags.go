package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spendlens/spendlens/internal/core/rule"
	"github.com/spendlens/spendlens/internal/core/tagging"
	"github.com/spendlens/spendlens/internal/tags"
	tagstore "github.com/spendlens/spendlens/internal/tags/storage"
	"github.com/spendlens/spendlens/internal/transactions"
)

func newTagsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tags",
		Short: "Work with tag definition files",
	}
	cmd.AddCommand(newTagsCheckCommand())
	return cmd
}

func newTagsCheckCommand() *cobra.Command {
	var recordsPath string

	cmd := &cobra.Command{
		Use:   "check <dir>",
		Short: "Compile every tag definition in dir and print the application order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := tagstore.NewFileSystemRepository(args[0])
			if err != nil {
				return err
			}
			ordered, err := tags.NewRegistry(repo, rule.NewRegistries()).Tags(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ok: %d tags\n", len(ordered))
			for _, tag := range ordered {
				if deps := tag.DependsOn(); len(deps) > 0 {
					fmt.Fprintf(out, "%s (after: %s)\n", tag.Name, strings.Join(deps, ", "))
				} else {
					fmt.Fprintln(out, tag.Name)
				}
			}

			if recordsPath == "" {
				return nil
			}
			recs, err := readRecords(recordsPath)
			if err != nil {
				return err
			}
			set, err := transactions.FromRecords(recs)
			if err != nil {
				return err
			}
			_, counts, err := set.Tagged(tagging.NewTagger(tagging.Options{}), ordered, true)
			if err != nil {
				return err
			}
			for _, tag := range ordered {
				fmt.Fprintf(out, "%s: %d of %d\n", tag.Name, counts[tag.Name], set.Size())
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&recordsPath, "records", "", "also report match counts over this records file")

	return cmd
}
