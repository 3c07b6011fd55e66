package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spendlens/spendlens/internal/core/aggregation"
	"github.com/spendlens/spendlens/internal/core/grouping"
	"github.com/spendlens/spendlens/internal/core/ledger"
	"github.com/spendlens/spendlens/internal/core/storage"
	"github.com/spendlens/spendlens/internal/core/tagging"
	"github.com/spendlens/spendlens/internal/tags"
	"github.com/spendlens/spendlens/internal/transactions"
)

const defaultUnit = "month"

// ErrInvalidQuery marks request validation errors that should return HTTP 400.
var ErrInvalidQuery = errors.New("invalid report query")

// Service implements the report layer over a TransactionStore.
type Service struct {
	store    storage.TransactionStore
	registry *tags.Registry
	tagger   *tagging.Tagger
	loc      *time.Location

	mu        sync.Mutex
	calendars map[grouping.Unit]*grouping.Calendar
}

// NewService creates a report service. Calendar buckets are floored in loc.
// registry may be nil, in which case retag requests are rejected.
func NewService(store storage.TransactionStore, registry *tags.Registry, tagger *tagging.Tagger, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		store:     store,
		registry:  registry,
		tagger:    tagger,
		loc:       loc,
		calendars: make(map[grouping.Unit]*grouping.Calendar),
	}
}

// GroupAgg loads the range, optionally retags, filters by tag, groups and aggregates.
func (s *Service) GroupAgg(ctx context.Context, req GroupAggRequest) (*GroupAggResponse, error) {
	if req.Grouping == "" {
		req.Grouping = defaultUnit
	}
	g, err := grouping.Parse(req.Grouping)
	if err != nil {
		return nil, err
	}
	spec := req.Agg
	if spec == (aggregation.Spec{}) {
		spec = aggregation.DefaultSpec()
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	set, err := s.load(ctx, req.From, req.To, req.Retag)
	if err != nil {
		return nil, err
	}
	if len(req.Tags) > 0 {
		set = set.FilterContainingTag(req.Tags...)
	}

	grouped, err := set.GroupAgg(g, spec)
	if err != nil {
		return nil, err
	}

	slog.Debug("[Report] GroupAgg",
		"grouping", g.Name(),
		"input_rows", set.Size(),
		"groups", grouped.Size())

	return &GroupAggResponse{
		Grouping: g.Name(),
		Agg:      spec,
		Count:    grouped.Size(),
		Rows:     grouped.Records(),
	}, nil
}

// Series aggregates one numeric field per calendar bucket, filling empty buckets
// so the result has no gaps. Without explicit bounds the data's own range is used.
func (s *Service) Series(ctx context.Context, req SeriesRequest) (*SeriesResponse, error) {
	if req.Unit == "" {
		req.Unit = defaultUnit
	}
	unit, err := grouping.ParseUnit(req.Unit)
	if err != nil {
		return nil, err
	}
	if req.Field == "" {
		req.Field = ledger.FieldAmount
	}
	if req.Field != ledger.FieldAmount && req.Field != ledger.FieldAmountCur {
		return nil, fmt.Errorf("%w: series field must be %s or %s, got %q",
			ErrInvalidQuery, ledger.FieldAmount, ledger.FieldAmountCur, req.Field)
	}
	if req.Operator == "" {
		req.Operator = aggregation.OpSum
	}
	op, ok := aggregation.Operators[req.Operator]
	if !ok {
		return nil, fmt.Errorf("%w: %q", aggregation.ErrUnknownOperator, req.Operator)
	}
	if !req.From.IsZero() && !req.To.IsZero() && !req.From.Before(req.To) {
		return nil, fmt.Errorf("%w: from must be before to", ErrInvalidQuery)
	}

	set, err := s.load(ctx, req.From, req.To, false)
	if err != nil {
		return nil, err
	}
	if len(req.Tags) > 0 {
		set = set.FilterContainingTag(req.Tags...)
	}

	resp := &SeriesResponse{
		Unit:     unit.String(),
		Field:    req.Field,
		Operator: req.Operator,
		Timezone: s.loc.String(),
		Points:   []Point{},
	}

	first, last, ok := s.bounds(set, req.From, req.To)
	if !ok {
		return resp, nil
	}

	byLabel := make(map[string]grouping.Group)
	for _, g := range set.Groups(grouping.ByPeriod{Unit: unit}) {
		byLabel[g.Label] = g
	}

	for _, start := range s.buckets(unit, first, last) {
		p := Point{
			Label: unit.Label(start),
			Start: start,
			End:   unit.Next(start),
		}
		if g, found := byLabel[p.Label]; found {
			p.Value = aggregation.Fold(op, fieldValues(g, req.Field))
			p.Count = len(g.Members)
		}
		resp.Points = append(resp.Points, p)
	}
	return resp, nil
}

// load reads the range and moves every datetime into the report location,
// so calendar floors follow local midnight.
func (s *Service) load(ctx context.Context, from, to time.Time, retag bool) (*transactions.Transactions, error) {
	txns, err := s.store.Load(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}
	for i := range txns {
		txns[i].DateTime = txns[i].DateTime.In(s.loc)
	}
	set := transactions.New(txns)

	if !retag {
		return set, nil
	}
	if s.registry == nil {
		return nil, fmt.Errorf("%w: retag requires a tag registry", ErrInvalidQuery)
	}
	ordered, err := s.registry.Tags(ctx)
	if err != nil {
		return nil, err
	}
	set, _, err = set.Tagged(s.tagger, ordered, true)
	if err != nil {
		return nil, err
	}
	return set, nil
}

// bounds picks the first and last instants the series must cover. to is exclusive.
func (s *Service) bounds(set *transactions.Transactions, from, to time.Time) (first, last time.Time, ok bool) {
	dataFirst, dataLast, hasData := set.DateRange()
	switch {
	case !from.IsZero():
		first = from
	case hasData:
		first = dataFirst
	default:
		return time.Time{}, time.Time{}, false
	}
	switch {
	case !to.IsZero():
		last = to.Add(-time.Nanosecond)
	case hasData:
		last = dataLast
	default:
		return time.Time{}, time.Time{}, false
	}
	if last.Before(first) {
		return time.Time{}, time.Time{}, false
	}
	return first, last, true
}

// buckets reuses one growing Calendar per unit across requests.
func (s *Service) buckets(unit grouping.Unit, first, last time.Time) []time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	cal, ok := s.calendars[unit]
	if !ok {
		cal = grouping.NewCalendar(unit, s.loc)
		s.calendars[unit] = cal
	}
	return cal.Buckets(first, last)
}

func fieldValues(g grouping.Group, field string) []decimal.Decimal {
	out := make([]decimal.Decimal, len(g.Members))
	for i, m := range g.Members {
		if field == ledger.FieldAmountCur {
			out[i] = m.AmountCur
		} else {
			out[i] = m.Amount
		}
	}
	return out
}
