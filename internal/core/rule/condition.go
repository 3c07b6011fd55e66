package rule

import (
	"fmt"

	"github.com/spendlens/spendlens/internal/core/ledger"
)

// Condition is the atomic predicate: field, transform, comparator and literal.
// Every key is resolved and the literal coerced when the condition is built.
type Condition struct {
	field      string
	transform  string
	comparator string
	literal    any

	apply func(any) any
	pred  Predicate
}

// NewCondition resolves the keys against regs and binds the literal.
//
// Errors:
//   - ledger.ErrFieldNotFound (also ledger.ErrSchemaValidation) for a field outside the schema
//   - ErrUnknownTransformation / ErrUnknownComparator for unregistered keys
//   - ErrMalformedRule when the transform or comparator cannot take the operand, or the literal does not fit
func NewCondition(regs *Registries, field, transform, comparator string, literal any) (Condition, error) {
	kind, err := ledger.FieldKind(field)
	if err != nil {
		return Condition{}, err
	}

	tr, err := regs.Transforms.Lookup(transform)
	if err != nil {
		return Condition{}, err
	}
	operand, ok := tr.Result(kind)
	if !ok {
		return Condition{}, fmt.Errorf("%w: transformation %q does not apply to %s field %q",
			ErrMalformedRule, transform, kind, field)
	}

	cmp, err := regs.Comparators.Lookup(comparator)
	if err != nil {
		return Condition{}, err
	}
	pred, err := cmp.Bind(operand, literal)
	if err != nil {
		return Condition{}, fmt.Errorf("%w: %s %s %v: %v", ErrMalformedRule, keyOf(field, transform), comparator, literal, err)
	}

	return Condition{
		field:      field,
		transform:  transform,
		comparator: comparator,
		literal:    literal,
		apply:      tr.Apply,
		pred:       pred,
	}, nil
}

func (c Condition) Field() string      { return c.field }
func (c Condition) Transform() string  { return c.transform }
func (c Condition) Comparator() string { return c.comparator }
func (c Condition) Literal() any       { return c.literal }

// Key is the definition key of the condition, "field" or "field.transform".
func (c Condition) Key() string {
	return keyOf(c.field, c.transform)
}

// Evaluate reports whether t satisfies the condition.
func (c Condition) Evaluate(t *ledger.Transaction) bool {
	v, _ := t.Value(c.field)
	return c.pred(c.apply(v))
}

// Mask evaluates the condition against every transaction.
func (c Condition) Mask(txns []ledger.Transaction) []bool {
	mask := make([]bool, len(txns))
	for i := range txns {
		mask[i] = c.Evaluate(&txns[i])
	}
	return mask
}

func (c Condition) String() string {
	return fmt.Sprintf("%s %s %v", c.Key(), c.comparator, c.literal)
}

func keyOf(field, transform string) string {
	if transform == TransformIdentity {
		return field
	}
	return field + "." + transform
}
