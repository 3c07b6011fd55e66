package grouping

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spendlens/spendlens/internal/core/ledger"
)

// ErrInvalidGrouping is returned for grouping parameters that cannot be used.
var ErrInvalidGrouping = errors.New("invalid grouping")

// Untagged labels rows that carry none of the tags a tag grouping looks at.
const Untagged = "untagged"

// Mode states whether every row lands in exactly one group.
type Mode int

const (
	// Partition puts every row in exactly one group.
	Partition Mode = iota
	// Overlapping may put a row in several groups, or in none.
	Overlapping
)

// Group is one labeled subset. Start is the bucket instant for calendar
// groupings and the earliest member datetime otherwise.
// Groupings never emit empty groups. Members share tag sets with the input.
type Group struct {
	Label   string
	Start   time.Time
	Members []ledger.Transaction
}

// Grouping splits a transaction set into ordered groups.
// Implementations never mutate their input.
type Grouping interface {
	Name() string
	Mode() Mode
	Group(txns []ledger.Transaction) []Group
}

// ByPeriod groups by calendar bucket of the datetime.
// Groups are ordered by bucket start.
type ByPeriod struct {
	Unit Unit
}

func Days() ByPeriod   { return ByPeriod{Unit: Day} }
func Weeks() ByPeriod  { return ByPeriod{Unit: Week} }
func Months() ByPeriod { return ByPeriod{Unit: Month} }
func Years() ByPeriod  { return ByPeriod{Unit: Year} }

func (g ByPeriod) Name() string { return g.Unit.String() }
func (g ByPeriod) Mode() Mode   { return Partition }

func (g ByPeriod) Group(txns []ledger.Transaction) []Group {
	sorted := SortedByTime(txns)

	var groups []Group
	index := make(map[string]int)
	for _, t := range sorted {
		start := g.Unit.Floor(t.DateTime)
		label := g.Unit.Label(start)
		i, ok := index[label]
		if !ok {
			i = len(groups)
			index[label] = i
			groups = append(groups, Group{Label: label, Start: start})
		}
		groups[i].Members = append(groups[i].Members, t)
	}
	return groups
}

// ByLabel groups by a caller-supplied label in first-appearance order of the input.
type ByLabel struct {
	Title string
	Label func(t *ledger.Transaction) string
}

func (g ByLabel) Name() string { return g.Title }
func (g ByLabel) Mode() Mode   { return Partition }

func (g ByLabel) Group(txns []ledger.Transaction) []Group {
	var groups []Group
	index := make(map[string]int)
	for i := range txns {
		label := g.Label(&txns[i])
		gi, ok := index[label]
		if !ok {
			gi = len(groups)
			index[label] = gi
			groups = append(groups, Group{Label: label, Start: txns[i].DateTime})
		}
		if txns[i].DateTime.Before(groups[gi].Start) {
			groups[gi].Start = txns[i].DateTime
		}
		groups[gi].Members = append(groups[gi].Members, txns[i])
	}
	return groups
}

// ByTags labels each row with the first of names it carries, or Untagged.
func ByTags(names ...string) ByLabel {
	names = append([]string(nil), names...)
	return ByLabel{
		Title: "tags:" + strings.Join(names, ","),
		Label: func(t *ledger.Transaction) string {
			for _, n := range names {
				if t.Tags.Has(n) {
					return n
				}
			}
			return Untagged
		},
	}
}

// TagMembership labels each row with its whole tag set, or Untagged when empty.
func TagMembership() ByLabel {
	return ByLabel{
		Title: "tagset",
		Label: func(t *ledger.Transaction) string {
			if t.Tags.Len() == 0 {
				return Untagged
			}
			return t.Tags.String()
		},
	}
}

// Parse resolves a grouping name: a calendar unit, "tagset", or "tags:a,b".
func Parse(s string) (Grouping, error) {
	switch {
	case strings.HasPrefix(s, "tags:"):
		var names []string
		for _, n := range strings.Split(strings.TrimPrefix(s, "tags:"), ",") {
			if n = strings.TrimSpace(n); n != "" {
				names = append(names, n)
			}
		}
		if len(names) == 0 {
			return nil, fmt.Errorf("%w: %q names no tags", ErrInvalidGrouping, s)
		}
		return ByTags(names...), nil
	case s == "tagset":
		return TagMembership(), nil
	}
	unit, err := ParseUnit(s)
	if err != nil {
		return nil, err
	}
	return ByPeriod{Unit: unit}, nil
}

// SortedByTime returns a copy of txns stably sorted by datetime.
func SortedByTime(txns []ledger.Transaction) []ledger.Transaction {
	sorted := append([]ledger.Transaction(nil), txns...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].DateTime.Before(sorted[j].DateTime)
	})
	return sorted
}
