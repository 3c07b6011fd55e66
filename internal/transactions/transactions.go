// Package transactions holds an immutable transaction set and the queries
// reports are built from: tag and date filters and group-then-aggregate.
// Every operation returns a new set; none mutates the receiver.
package transactions

import (
	"time"

	"github.com/spendlens/spendlens/internal/core/aggregation"
	"github.com/spendlens/spendlens/internal/core/grouping"
	"github.com/spendlens/spendlens/internal/core/ledger"
	"github.com/spendlens/spendlens/internal/core/tagging"
)

type Transactions struct {
	records []ledger.Transaction
}

// New copies records, so later changes by the caller are not seen.
func New(records []ledger.Transaction) *Transactions {
	return &Transactions{records: cloneAll(records)}
}

// FromRecords validates boundary records. Every failing record is reported.
func FromRecords(recs []map[string]any) (*Transactions, error) {
	records, err := ledger.FromRecords(recs)
	if err != nil {
		return nil, err
	}
	return &Transactions{records: records}, nil
}

// Records returns a copy of the held records in order.
func (t *Transactions) Records() []ledger.Transaction {
	return cloneAll(t.records)
}

func (t *Transactions) Size() int {
	return len(t.records)
}

// DateRange returns the earliest and latest datetime; ok is false for an empty set.
func (t *Transactions) DateRange() (first, last time.Time, ok bool) {
	if len(t.records) == 0 {
		return time.Time{}, time.Time{}, false
	}
	first, last = t.records[0].DateTime, t.records[0].DateTime
	for _, r := range t.records[1:] {
		if r.DateTime.Before(first) {
			first = r.DateTime
		}
		if r.DateTime.After(last) {
			last = r.DateTime
		}
	}
	return first, last, true
}

// AllTags is the union of every record's tags.
func (t *Transactions) AllTags() ledger.TagSet {
	all := make(ledger.TagSet)
	for _, r := range t.records {
		all.Union(r.Tags)
	}
	return all
}

// FilterContainingTag keeps records carrying at least one of names.
func (t *Transactions) FilterContainingTag(names ...string) *Transactions {
	return t.filter(func(r *ledger.Transaction) bool {
		return r.Tags.HasAny(names...)
	})
}

// FilterDateRange keeps records with start <= datetime < end.
// A zero start or end leaves that side open.
func (t *Transactions) FilterDateRange(start, end time.Time) *Transactions {
	return t.filter(func(r *ledger.Transaction) bool {
		if !start.IsZero() && r.DateTime.Before(start) {
			return false
		}
		if !end.IsZero() && !r.DateTime.Before(end) {
			return false
		}
		return true
	})
}

// GroupAgg groups the set and aggregates every group, in group order.
// The result holds one record per distinct group label.
func (t *Transactions) GroupAgg(g grouping.Grouping, spec aggregation.Spec) (*Transactions, error) {
	out, err := aggregation.AggregateAll(g.Group(t.records), spec)
	if err != nil {
		return nil, err
	}
	return &Transactions{records: out}, nil
}

// Groups exposes the grouped members without aggregating them.
func (t *Transactions) Groups(g grouping.Grouping) []grouping.Group {
	return g.Group(cloneAll(t.records))
}

// Tagged applies tags in order to a copy of the set and returns the copy
// with the match count per tag.
func (t *Transactions) Tagged(tagger *tagging.Tagger, tags []tagging.Tag, removeExisting bool) (*Transactions, map[string]int, error) {
	records := cloneAll(t.records)
	counts, err := tagger.ApplyAll(tags, records, removeExisting)
	if err != nil {
		return nil, nil, err
	}
	return &Transactions{records: records}, counts, nil
}

func (t *Transactions) filter(keep func(r *ledger.Transaction) bool) *Transactions {
	var out []ledger.Transaction
	for i := range t.records {
		if keep(&t.records[i]) {
			out = append(out, t.records[i].Clone())
		}
	}
	return &Transactions{records: out}
}

func cloneAll(records []ledger.Transaction) []ledger.Transaction {
	out := make([]ledger.Transaction, len(records))
	for i := range records {
		out[i] = records[i].Clone()
	}
	return out
}
