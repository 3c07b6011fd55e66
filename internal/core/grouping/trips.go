package grouping

import (
	"fmt"
	"time"

	"github.com/spendlens/spendlens/internal/core/ledger"
)

// Trips finds runs of rows carrying an anchor tag. Anchor rows no more than
// MaxGap apart form one trip; the trip's group holds every row, tagged or not,
// dated within Pad of the trip's first and last anchor. Windows of adjacent
// trips may overlap, and rows outside every window belong to no group.
type Trips struct {
	Anchor string
	MaxGap time.Duration
	Pad    time.Duration
}

// NewTrips parses gap and pad with ParseWindowSize. An empty pad means none.
func NewTrips(anchor, maxGap, pad string) (Trips, error) {
	if anchor == "" {
		return Trips{}, fmt.Errorf("%w: trip anchor tag is required", ErrInvalidGrouping)
	}
	gap, err := ParseWindowSize(maxGap)
	if err != nil {
		return Trips{}, err
	}
	var p time.Duration
	if pad != "" {
		if p, err = ParseWindowSize(pad); err != nil {
			return Trips{}, err
		}
	}
	return Trips{Anchor: anchor, MaxGap: gap, Pad: p}, nil
}

func (g Trips) Name() string { return "trips:" + g.Anchor }
func (g Trips) Mode() Mode   { return Overlapping }

func (g Trips) Group(txns []ledger.Transaction) []Group {
	sorted := SortedByTime(txns)

	type span struct{ first, last time.Time }
	var spans []span
	for _, t := range sorted {
		if !t.Tags.Has(g.Anchor) {
			continue
		}
		if n := len(spans); n > 0 && t.DateTime.Sub(spans[n-1].last) <= g.MaxGap {
			spans[n-1].last = t.DateTime
			continue
		}
		spans = append(spans, span{first: t.DateTime, last: t.DateTime})
	}

	groups := make([]Group, 0, len(spans))
	for _, s := range spans {
		from, to := s.first.Add(-g.Pad), s.last.Add(g.Pad)
		var members []ledger.Transaction
		for _, t := range sorted {
			if t.DateTime.Before(from) {
				continue
			}
			if t.DateTime.After(to) {
				break
			}
			members = append(members, t)
		}
		groups = append(groups, Group{
			Label:   fmt.Sprintf("%s %s..%s", g.Anchor, s.first.Format("2006-01-02"), s.last.Format("2006-01-02")),
			Start:   members[0].DateTime,
			Members: members,
		})
	}
	return groups
}
