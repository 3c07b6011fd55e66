package rule

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spendlens/spendlens/internal/core/ledger"
)

// Built-in comparator keys.
const (
	CompareGreater        = "greater"
	CompareGreaterOrEqual = "greater_or_equal"
	CompareEqual          = "equal"
	CompareLessOrEqual    = "less_or_equal"
	CompareLess           = "less"
	CompareContains       = "contains"
	CompareNotContains    = "not_contains"
	CompareRegexMatch     = "regex_match"
)

// Predicate tests one transformed value against the literal it was bound with.
type Predicate func(v any) bool

// Comparator binds a literal to an operand kind. Binding coerces and checks the
// literal once, so a bound Predicate never fails at evaluation time.
type Comparator struct {
	Bind func(operand ledger.Kind, literal any) (Predicate, error)
}

// BuiltinComparators returns a fresh copy of the closed built-in set.
func BuiltinComparators() map[string]Comparator {
	return map[string]Comparator{
		CompareGreater:        ordering(func(c int) bool { return c > 0 }),
		CompareGreaterOrEqual: ordering(func(c int) bool { return c >= 0 }),
		CompareEqual:          {Bind: bindEqual},
		CompareLessOrEqual:    ordering(func(c int) bool { return c <= 0 }),
		CompareLess:           ordering(func(c int) bool { return c < 0 }),
		CompareContains:       {Bind: bindContains},
		CompareNotContains: {Bind: func(k ledger.Kind, lit any) (Predicate, error) {
			p, err := bindContains(k, lit)
			if err != nil {
				return nil, err
			}
			return func(v any) bool { return !p(v) }, nil
		}},
		CompareRegexMatch: {Bind: bindRegex},
	}
}

// ordering builds a comparator over the three ordered kinds.
// Strings compare lexicographically over their full length.
func ordering(test func(c int) bool) Comparator {
	return Comparator{Bind: func(k ledger.Kind, lit any) (Predicate, error) {
		switch k {
		case ledger.KindNumber:
			d, err := ledger.ParseDecimal(lit)
			if err != nil {
				return nil, err
			}
			return func(v any) bool { return test(v.(decimal.Decimal).Cmp(d)) }, nil
		case ledger.KindString:
			s, err := stringLiteral(lit)
			if err != nil {
				return nil, err
			}
			return func(v any) bool { return test(strings.Compare(v.(string), s)) }, nil
		case ledger.KindTime:
			t, err := ledger.ParseTime(lit)
			if err != nil {
				return nil, err
			}
			return func(v any) bool { return test(v.(time.Time).Compare(t)) }, nil
		}
		return nil, unsupportedOperand(k)
	}}
}

func bindEqual(k ledger.Kind, lit any) (Predicate, error) {
	switch k {
	case ledger.KindNumber:
		d, err := ledger.ParseDecimal(lit)
		if err != nil {
			return nil, err
		}
		return func(v any) bool { return v.(decimal.Decimal).Equal(d) }, nil
	case ledger.KindString:
		s, err := stringLiteral(lit)
		if err != nil {
			return nil, err
		}
		return func(v any) bool { return v.(string) == s }, nil
	case ledger.KindTime:
		t, err := ledger.ParseTime(lit)
		if err != nil {
			return nil, err
		}
		return func(v any) bool { return v.(time.Time).Equal(t) }, nil
	case ledger.KindStrings:
		// A set equals a single name when that name is its only member.
		s, err := stringLiteral(lit)
		if err != nil {
			return nil, err
		}
		return func(v any) bool {
			set := v.(ledger.TagSet)
			return set.Len() == 1 && set.Has(s)
		}, nil
	}
	return nil, unsupportedOperand(k)
}

func bindContains(k ledger.Kind, lit any) (Predicate, error) {
	s, err := stringLiteral(lit)
	if err != nil {
		return nil, err
	}
	switch k {
	case ledger.KindString:
		return func(v any) bool { return strings.Contains(v.(string), s) }, nil
	case ledger.KindStrings:
		return func(v any) bool { return v.(ledger.TagSet).Has(s) }, nil
	}
	return nil, unsupportedOperand(k)
}

// bindRegex matches anywhere in the operand; anchor the pattern to match whole values.
// On a tag set it matches when any member matches.
func bindRegex(k ledger.Kind, lit any) (Predicate, error) {
	pattern, err := stringLiteral(lit)
	if err != nil {
		return nil, err
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	switch k {
	case ledger.KindString:
		return func(v any) bool { return re.MatchString(v.(string)) }, nil
	case ledger.KindStrings:
		return func(v any) bool {
			for name := range v.(ledger.TagSet) {
				if re.MatchString(name) {
					return true
				}
			}
			return false
		}, nil
	}
	return nil, unsupportedOperand(k)
}

// stringLiteral accepts strings and integral numbers, so numeric ids can be compared.
func stringLiteral(lit any) (string, error) {
	switch v := lit.(type) {
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	}
	return "", fmt.Errorf("expected a string literal, got %T", lit)
}

func unsupportedOperand(k ledger.Kind) error {
	return fmt.Errorf("operand of kind %s is not supported", k)
}
