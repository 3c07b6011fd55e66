package aggregation

import (
	"github.com/shopspring/decimal"
)

// Supported numeric operators.
const (
	OpCount = "count"
	OpSum   = "sum"
	OpMin   = "min"
	OpMax   = "max"
	OpAvg   = "avg"
)

// Aggregator defines the reduce semantics of a numeric operator.
// To add a new operator: implement this interface and register it in Operators.
type Aggregator interface {
	// Initial returns the aggregate value after the first member of a group.
	// count → 1; sum/min/max/avg → the incoming value itself.
	Initial(incoming decimal.Decimal) decimal.Decimal

	// Apply folds an incoming value into an existing aggregate.
	Apply(current, incoming decimal.Decimal) decimal.Decimal
}

// Finalizer is implemented by operators whose folded value needs the member
// count to become the result.
type Finalizer interface {
	Finalize(folded decimal.Decimal, members int) decimal.Decimal
}

// Operators is the registry of all supported numeric operators.
var Operators = map[string]Aggregator{
	OpCount: countAgg{},
	OpSum:   sumAgg{},
	OpMin:   minAgg{},
	OpMax:   maxAgg{},
	OpAvg:   avgAgg{},
}

// ValidOperator reports whether op is a registered operator.
func ValidOperator(op string) bool {
	_, ok := Operators[op]
	return ok
}

// Fold reduces values with op. values must not be empty.
func Fold(op Aggregator, values []decimal.Decimal) decimal.Decimal {
	acc := op.Initial(values[0])
	for _, v := range values[1:] {
		acc = op.Apply(acc, v)
	}
	if f, ok := op.(Finalizer); ok {
		acc = f.Finalize(acc, len(values))
	}
	return acc
}

// countAgg increments by 1 per member. The incoming value is ignored.
type countAgg struct{}

func (countAgg) Initial(_ decimal.Decimal) decimal.Decimal    { return decimal.NewFromInt(1) }
func (countAgg) Apply(cur, _ decimal.Decimal) decimal.Decimal { return cur.Add(decimal.NewFromInt(1)) }

type sumAgg struct{}

func (sumAgg) Initial(v decimal.Decimal) decimal.Decimal      { return v }
func (sumAgg) Apply(cur, inc decimal.Decimal) decimal.Decimal { return cur.Add(inc) }

type minAgg struct{}

func (minAgg) Initial(v decimal.Decimal) decimal.Decimal { return v }
func (minAgg) Apply(cur, inc decimal.Decimal) decimal.Decimal {
	if inc.LessThan(cur) {
		return inc
	}
	return cur
}

type maxAgg struct{}

func (maxAgg) Initial(v decimal.Decimal) decimal.Decimal { return v }
func (maxAgg) Apply(cur, inc decimal.Decimal) decimal.Decimal {
	if inc.GreaterThan(cur) {
		return inc
	}
	return cur
}

// avgAgg sums while folding and divides by the member count at the end.
type avgAgg struct{ sumAgg }

func (avgAgg) Finalize(folded decimal.Decimal, members int) decimal.Decimal {
	return folded.Div(decimal.NewFromInt(int64(members)))
}
