package commands

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/spendlens/spendlens/internal/core/aggregation"
	"github.com/spendlens/spendlens/internal/core/ledger"
	"github.com/spendlens/spendlens/internal/core/rule"
	"github.com/spendlens/spendlens/internal/core/storage"
	"github.com/spendlens/spendlens/internal/core/tagging"
	"github.com/spendlens/spendlens/internal/report"
	"github.com/spendlens/spendlens/internal/tags"
	tagstore "github.com/spendlens/spendlens/internal/tags/storage"
)

type reportFlags struct {
	records  string
	tagsDir  string
	group    string
	agg      string
	filter   string
	from     string
	to       string
	timezone string
}

func newReportCommand() *cobra.Command {
	var f reportFlags

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Tag a records file and print grouped aggregates as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, svc, err := f.build()
			if err != nil {
				return err
			}
			resp, err := svc.GroupAgg(cmd.Context(), req)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(resp)
		},
	}

	cmd.Flags().StringVar(&f.records, "records", "", "JSON or YAML list of records (required)")
	_ = cmd.MarkFlagRequired("records")
	cmd.Flags().StringVar(&f.tagsDir, "tags", "", "directory of tag definitions applied before grouping")
	cmd.Flags().StringVar(&f.group, "group", "month", "day, week, month, year, tagset or tags:a,b")
	cmd.Flags().StringVar(&f.agg, "agg", "amount=sum,amount_cur=sum", "operator per numeric field")
	cmd.Flags().StringVar(&f.filter, "filter", "", "comma separated tags; keep rows carrying any of them")
	cmd.Flags().StringVar(&f.from, "from", "", "inclusive lower datetime bound")
	cmd.Flags().StringVar(&f.to, "to", "", "exclusive upper datetime bound")
	cmd.Flags().StringVar(&f.timezone, "timezone", "UTC", "IANA timezone for calendar buckets")

	return cmd
}

func (f reportFlags) build() (report.GroupAggRequest, *report.Service, error) {
	var req report.GroupAggRequest

	spec, err := aggregation.ParseSpec(f.agg)
	if err != nil {
		return req, nil, err
	}
	loc, err := time.LoadLocation(f.timezone)
	if err != nil {
		return req, nil, fmt.Errorf("invalid timezone %q: %w", f.timezone, err)
	}
	if f.from != "" {
		if req.From, err = ledger.ParseTime(f.from); err != nil {
			return req, nil, err
		}
	}
	if f.to != "" {
		if req.To, err = ledger.ParseTime(f.to); err != nil {
			return req, nil, err
		}
	}

	recs, err := readRecords(f.records)
	if err != nil {
		return req, nil, err
	}
	txns, err := ledger.FromRecords(recs)
	if err != nil {
		return req, nil, err
	}

	var registry *tags.Registry
	if f.tagsDir != "" {
		repo, err := tagstore.NewFileSystemRepository(f.tagsDir)
		if err != nil {
			return req, nil, err
		}
		registry = tags.NewRegistry(repo, rule.NewRegistries())
		req.Retag = true
	}

	for _, name := range strings.Split(f.filter, ",") {
		if name = strings.TrimSpace(name); name != "" {
			req.Tags = append(req.Tags, name)
		}
	}
	req.Grouping = f.group
	req.Agg = spec

	svc := report.NewService(storage.NewMemoryStore(txns...), registry, tagging.NewTagger(tagging.Options{}), loc)
	return req, svc, nil
}
