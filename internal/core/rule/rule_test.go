package rule

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spendlens/spendlens/internal/core/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func txn(id, amount, desc string, tags ...string) ledger.Transaction {
	d := decimal.RequireFromString(amount)
	return ledger.Transaction{
		ID:          id,
		DateTime:    time.Date(2021, 2, 3, 10, 15, 0, 0, time.UTC),
		Amount:      d,
		Currency:    "EUR",
		AmountCur:   d,
		Description: desc,
		Tags:        ledger.NewTagSet(tags...),
	}
}

func sample() []ledger.Transaction {
	return []ledger.Transaction{
		txn("1", "-12.50", "SUPERMARKET Lidl", "groceries"),
		txn("2", "2500", "Salary ACME"),
		txn("3", "-3.20", "Coffee shop", "food"),
		txn("4", "-800", "Rent March"),
	}
}

func TestParse_Masks(t *testing.T) {
	tests := []struct {
		name string
		def  any
		want []bool
	}{
		{
			name: "identity contains",
			def:  map[string]any{"description": map[string]any{"contains": "Coffee"}},
			want: []bool{false, false, true, false},
		},
		{
			name: "lower transform",
			def:  map[string]any{"description.lower": map[string]any{"contains": "supermarket"}},
			want: []bool{true, false, false, false},
		},
		{
			name: "numeric ordering",
			def:  map[string]any{"amount": map[string]any{"less": 0}},
			want: []bool{true, false, true, true},
		},
		{
			name: "abs transform",
			def:  map[string]any{"amount.abs": map[string]any{"greater_or_equal": "800"}},
			want: []bool{false, true, false, true},
		},
		{
			name: "int transform truncates toward zero",
			def:  map[string]any{"amount.int": map[string]any{"equal": -3}},
			want: []bool{false, false, true, false},
		},
		{
			name: "conjunction requires both keys",
			def: map[string]any{
				"amount":      map[string]any{"less": 0},
				"description": map[string]any{"regex_match": "^R"},
			},
			want: []bool{false, false, false, true},
		},
		{
			name: "disjunction of two mappings",
			def: []any{
				map[string]any{"description": map[string]any{"contains": "Salary"}},
				map[string]any{"tags": map[string]any{"contains": "food"}},
			},
			want: []bool{false, true, true, false},
		},
		{
			name: "list literal means every element must hold",
			def:  map[string]any{"description.lower": map[string]any{"contains": []any{"rent", "march"}}},
			want: []bool{false, false, false, true},
		},
		{
			name: "not_contains on tags",
			def:  map[string]any{"tags": map[string]any{"not_contains": "groceries"}},
			want: []bool{false, true, true, true},
		},
		{
			name: "regex on tags matches any member",
			def:  map[string]any{"tags": map[string]any{"regex_match": "^gro"}},
			want: []bool{true, false, false, false},
		},
		{
			name: "weekday transform",
			def:  map[string]any{"datetime.weekday": map[string]any{"equal": "Wednesday"}},
			want: []bool{true, true, true, true},
		},
		{
			name: "datetime ordering against a date literal",
			def:  map[string]any{"datetime": map[string]any{"greater": "2021-02-04"}},
			want: []bool{false, false, false, false},
		},
		{
			name: "numeric id literal compares as string",
			def:  map[string]any{"id": map[string]any{"equal": 2}},
			want: []bool{false, true, false, false},
		},
		{
			name: "empty list matches nothing",
			def:  []any{},
			want: []bool{false, false, false, false},
		},
	}

	regs := NewRegistries()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := Parse(regs, tt.def)
			require.NoError(t, err)
			assert.Equal(t, tt.want, r.Mask(sample()))
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		def  any
		want error
	}{
		{"unknown comparator", map[string]any{"amount": map[string]any{"betwene": 1}}, ErrUnknownComparator},
		{"unknown transformation", map[string]any{"amount.sqrt": map[string]any{"less": 1}}, ErrUnknownTransformation},
		{"unknown field", map[string]any{"amout": map[string]any{"less": 1}}, ledger.ErrFieldNotFound},
		{"unknown field is a schema error", map[string]any{"amout": map[string]any{"less": 1}}, ledger.ErrSchemaValidation},
		{"transform rejects operand", map[string]any{"amount.lower": map[string]any{"equal": "x"}}, ErrMalformedRule},
		{"comparator rejects operand", map[string]any{"amount": map[string]any{"contains": "1"}}, ErrMalformedRule},
		{"literal does not coerce", map[string]any{"amount": map[string]any{"greater": "lots"}}, ErrMalformedRule},
		{"bad regex", map[string]any{"description": map[string]any{"regex_match": "("}}, ErrMalformedRule},
		{"comparators not a mapping", map[string]any{"amount": 5}, ErrMalformedRule},
		{"not a mapping", "amount < 5", ErrMalformedRule},
		{"nil definition", nil, ErrMalformedRule},
		{"empty key", map[string]any{"": map[string]any{"equal": "x"}}, ErrMalformedRule},
		{"dangling dot", map[string]any{"amount.": map[string]any{"equal": 1}}, ErrMalformedRule},
		{"nested literal list", map[string]any{"amount": map[string]any{"equal": []any{[]any{1}}}}, ErrMalformedRule},
		{"non-string yaml key", map[any]any{1: map[string]any{"equal": 1}}, ErrMalformedRule},
	}

	regs := NewRegistries()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(regs, tt.def)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestStringOrderingUsesFullLength(t *testing.T) {
	regs := NewRegistries()
	txns := []ledger.Transaction{
		txn("1", "0", "ab"),
		txn("2", "0", "abc"),
		txn("3", "0", "abd"),
	}

	r, err := Parse(regs, map[string]any{"description": map[string]any{"greater": "abc"}})
	require.NoError(t, err)
	assert.Equal(t, []bool{false, false, true}, r.Mask(txns))

	r, err = Parse(regs, map[string]any{"description": map[string]any{"less": "abc"}})
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false, false}, r.Mask(txns))
}

func TestMaskDoesNotMutate(t *testing.T) {
	regs := NewRegistries()
	txns := sample()
	before := make([]ledger.Transaction, len(txns))
	for i := range txns {
		before[i] = txns[i].Clone()
	}

	r, err := Parse(regs, map[string]any{"tags": map[string]any{"contains": "food"}})
	require.NoError(t, err)
	_ = r.Mask(txns)

	for i := range txns {
		assert.True(t, before[i].Tags.Equal(txns[i].Tags))
		assert.Equal(t, before[i].Description, txns[i].Description)
	}
}

func TestRule_JSONRoundTrip(t *testing.T) {
	regs := NewRegistries()
	def := `[
		{"description.lower": {"contains": ["rent", "march"]}, "amount": {"less": -100.5}},
		{"tags": {"contains": "food"}, "datetime.weekday": {"equal": "Wednesday"}}
	]`
	r, err := ParseJSON(regs, []byte(def))
	require.NoError(t, err)

	data, err := r.MarshalJSON()
	require.NoError(t, err)

	again, err := ParseJSON(regs, data)
	require.NoError(t, err)
	assert.Equal(t, r.Mask(sample()), again.Mask(sample()))
	assert.Equal(t, []bool{false, false, true, true}, again.Mask(sample()))
	assert.Len(t, again.Conjunctions()[0].Conditions(), 3)
}

func TestRule_YAMLMatchesJSON(t *testing.T) {
	regs := NewRegistries()
	yamlDef := `
- description.lower:
    contains: supermarket
  amount:
    less: 0
- tags:
    contains: food
`
	jsonDef := `[{"description.lower":{"contains":"supermarket"},"amount":{"less":0}},{"tags":{"contains":"food"}}]`

	fromYAML, err := ParseYAML(regs, []byte(yamlDef))
	require.NoError(t, err)
	fromJSON, err := ParseJSON(regs, []byte(jsonDef))
	require.NoError(t, err)

	assert.Equal(t, fromJSON.Mask(sample()), fromYAML.Mask(sample()))
	assert.Equal(t, []bool{true, false, true, false}, fromYAML.Mask(sample()))
}

func TestRule_ReferencedTags(t *testing.T) {
	regs := NewRegistries()
	r, err := Parse(regs, []any{
		map[string]any{"tags": map[string]any{"contains": []any{"b", "a"}}},
		map[string]any{"tags": map[string]any{"not_contains": "c", "regex_match": "^z"}},
		map[string]any{"description": map[string]any{"contains": "d"}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, r.ReferencedTags())
}

func TestRule_TagRefs(t *testing.T) {
	regs := NewRegistries()
	r, err := Parse(regs, []any{
		map[string]any{"tags.lower": map[string]any{"contains": "groceries"}},
		map[string]any{"tags": map[string]any{"contains": "groceries"}},
		map[string]any{"tags.upper": map[string]any{"not_contains": "RENT"}},
	})
	require.NoError(t, err)

	assert.Equal(t, []TagRef{
		{Name: "RENT", FoldCase: true},
		{Name: "groceries"},
		{Name: "groceries", FoldCase: true},
	}, r.TagRefs())
	assert.Equal(t, []string{"RENT", "groceries"}, r.ReferencedTags())
}

func TestRegistry(t *testing.T) {
	regs := NewRegistries()

	err := regs.Transforms.Register(TransformLower, Transform{})
	assert.ErrorIs(t, err, ErrDuplicateKey)

	half := Transform{
		Result: func(k ledger.Kind) (ledger.Kind, bool) { return k, k == ledger.KindNumber },
		Apply:  func(v any) any { return v.(decimal.Decimal).Div(decimal.NewFromInt(2)) },
	}
	require.NoError(t, regs.Transforms.Register("half", half))

	r, err := Parse(regs, map[string]any{"amount.half": map[string]any{"equal": 1250}})
	require.NoError(t, err)
	assert.Equal(t, []bool{false, true, false, false}, r.Mask(sample()))

	// Registries are independent instances.
	_, err = Parse(NewRegistries(), map[string]any{"amount.half": map[string]any{"equal": 1250}})
	assert.ErrorIs(t, err, ErrUnknownTransformation)

	assert.Contains(t, regs.Comparators.Keys(), CompareRegexMatch)
}
