package aggregation

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spendlens/spendlens/internal/core/ledger"
)

var (
	// ErrUnknownOperator is returned for a numeric operator outside Operators.
	ErrUnknownOperator = errors.New("unknown aggregation operator")

	// ErrEmptyGroup is returned when asked to aggregate a group with no members.
	ErrEmptyGroup = errors.New("cannot aggregate an empty group")
)

// Spec selects the operator for each numeric field. The other fields always
// merge the same way: id takes the minimum, datetime the group start,
// currency the multiset summary, description the comma-joined list and tags
// the union.
type Spec struct {
	Amount    string `json:"amount" yaml:"amount"`
	AmountCur string `json:"amount_cur" yaml:"amount_cur"`
}

// DefaultSpec sums both numeric fields.
func DefaultSpec() Spec {
	return Spec{Amount: OpSum, AmountCur: OpSum}
}

// Validate checks both operators are registered.
func (s Spec) Validate() error {
	for field, op := range map[string]string{ledger.FieldAmount: s.Amount, ledger.FieldAmountCur: s.AmountCur} {
		if !ValidOperator(op) {
			return fmt.Errorf("%w: %s=%q (supported: %s)", ErrUnknownOperator, field, op, strings.Join(OperatorNames(), ", "))
		}
	}
	return nil
}

// ParseSpec reads "amount=sum,amount_cur=max". Fields not named keep sum.
func ParseSpec(s string) (Spec, error) {
	spec := DefaultSpec()
	if strings.TrimSpace(s) == "" {
		return spec, nil
	}
	for _, part := range strings.Split(s, ",") {
		field, op, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			return Spec{}, fmt.Errorf("%w: expected field=operator, got %q", ErrUnknownOperator, part)
		}
		switch strings.TrimSpace(field) {
		case ledger.FieldAmount:
			spec.Amount = strings.TrimSpace(op)
		case ledger.FieldAmountCur:
			spec.AmountCur = strings.TrimSpace(op)
		default:
			return Spec{}, ledger.NewUnknownFieldError(field)
		}
	}
	if err := spec.Validate(); err != nil {
		return Spec{}, err
	}
	return spec, nil
}

// OperatorNames lists the registered operators in ascending order.
func OperatorNames() []string {
	names := make([]string, 0, len(Operators))
	for op := range Operators {
		names = append(names, op)
	}
	sort.Strings(names)
	return names
}
