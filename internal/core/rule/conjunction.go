package rule

import "github.com/spendlens/spendlens/internal/core/ledger"

// Conjunction holds when every one of its conditions holds.
// An empty conjunction holds for every transaction.
type Conjunction struct {
	conditions []Condition
}

func NewConjunction(conditions ...Condition) Conjunction {
	return Conjunction{conditions: append([]Condition(nil), conditions...)}
}

// Conditions returns the conditions in evaluation order.
func (c Conjunction) Conditions() []Condition {
	return append([]Condition(nil), c.conditions...)
}

// Evaluate stops at the first failing condition.
func (c Conjunction) Evaluate(t *ledger.Transaction) bool {
	for _, cond := range c.conditions {
		if !cond.Evaluate(t) {
			return false
		}
	}
	return true
}

func (c Conjunction) Mask(txns []ledger.Transaction) []bool {
	mask := make([]bool, len(txns))
	for i := range txns {
		mask[i] = c.Evaluate(&txns[i])
	}
	return mask
}

// Definition rebuilds the nested mapping form. Several literals under the same
// comparator are written back as a list.
func (c Conjunction) Definition() map[string]any {
	def := make(map[string]any)
	for _, cond := range c.conditions {
		cmps, ok := def[cond.Key()].(map[string]any)
		if !ok {
			cmps = make(map[string]any)
			def[cond.Key()] = cmps
		}
		existing, seen := cmps[cond.comparator]
		if !seen {
			cmps[cond.comparator] = cond.literal
			continue
		}
		list, isList := existing.([]any)
		if !isList {
			list = []any{existing}
		}
		cmps[cond.comparator] = append(list, cond.literal)
	}
	return def
}
