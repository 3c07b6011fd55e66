package aggregation

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spendlens/spendlens/internal/core/grouping"
	"github.com/spendlens/spendlens/internal/core/ledger"
)

// Aggregate collapses one group into a single synthetic transaction.
// The result is a valid transaction, so it can be tagged or grouped again.
func Aggregate(g grouping.Group, spec Spec) (ledger.Transaction, error) {
	if len(g.Members) == 0 {
		return ledger.Transaction{}, ErrEmptyGroup
	}
	if err := spec.Validate(); err != nil {
		return ledger.Transaction{}, err
	}

	var (
		amounts      = make([]decimal.Decimal, len(g.Members))
		amountsCur   = make([]decimal.Decimal, len(g.Members))
		descriptions = make([]string, len(g.Members))
		currencies   = make(ledger.CurrencyCounts)
		tags         = make(ledger.TagSet)
		id           = g.Members[0].ID
	)
	for i, m := range g.Members {
		amounts[i] = m.Amount
		amountsCur[i] = m.AmountCur
		descriptions[i] = m.Description
		tags.Union(m.Tags)
		if lessID(m.ID, id) {
			id = m.ID
		}
		counts, err := ledger.ParseCurrencySummary(m.Currency)
		if err != nil {
			// Not a summary: count the raw value as one code.
			counts = ledger.CurrencyCounts{m.Currency: 1}
		}
		currencies.Merge(counts)
	}

	return ledger.Transaction{
		ID:          id,
		DateTime:    g.Start,
		Amount:      Fold(Operators[spec.Amount], amounts),
		Currency:    ledger.FormatCurrencySummary(currencies),
		AmountCur:   Fold(Operators[spec.AmountCur], amountsCur),
		Description: strings.Join(descriptions, ","),
		Tags:        tags,
	}, nil
}

// AggregateAll aggregates every group, in group order.
func AggregateAll(groups []grouping.Group, spec Spec) ([]ledger.Transaction, error) {
	out := make([]ledger.Transaction, 0, len(groups))
	for _, g := range groups {
		t, err := Aggregate(g, spec)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// lessID is a total order on ids: integer ids come first, ordered by value and then
// by text ("07" before "7"); every other id follows in string order.
func lessID(a, b string) bool {
	ai, aerr := strconv.ParseInt(a, 10, 64)
	bi, berr := strconv.ParseInt(b, 10, 64)
	switch {
	case aerr == nil && berr == nil:
		if ai != bi {
			return ai < bi
		}
		return a < b
	case aerr == nil:
		return true
	case berr == nil:
		return false
	}
	return a < b
}
