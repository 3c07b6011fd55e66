package rule

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spendlens/spendlens/internal/core/ledger"
)

// Built-in transform keys. The empty key is the identity.
const (
	TransformIdentity = ""
	TransformLower    = "lower"
	TransformUpper    = "upper"
	TransformString   = "str"
	TransformInt      = "int"
	TransformAbs      = "abs"
	TransformDate     = "date"
	TransformTime     = "time"
	TransformWeekday  = "weekday"
)

// Transform is a pure unary function applied to a field value before comparison.
// Result reports the kind produced for an input kind; ok=false rejects the input
// kind when the condition is built, so Apply only ever sees values it supports.
type Transform struct {
	Result func(in ledger.Kind) (out ledger.Kind, ok bool)
	Apply  func(v any) any
}

// BuiltinTransforms returns a fresh copy of the closed built-in set.
func BuiltinTransforms() map[string]Transform {
	return map[string]Transform{
		TransformIdentity: {
			Result: func(in ledger.Kind) (ledger.Kind, bool) { return in, true },
			Apply:  func(v any) any { return v },
		},
		TransformLower: caseTransform(strings.ToLower),
		TransformUpper: caseTransform(strings.ToUpper),
		TransformString: {
			Result: func(ledger.Kind) (ledger.Kind, bool) { return ledger.KindString, true },
			Apply:  stringify,
		},
		TransformInt: numberTransform(func(d decimal.Decimal) decimal.Decimal { return d.Truncate(0) }),
		TransformAbs: numberTransform(decimal.Decimal.Abs),
		TransformDate: {
			Result: only(ledger.KindTime, ledger.KindTime),
			Apply: func(v any) any {
				t := v.(time.Time)
				y, m, d := t.Date()
				return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
			},
		},
		TransformTime: {
			Result: only(ledger.KindTime, ledger.KindString),
			Apply:  func(v any) any { return v.(time.Time).Format("15:04:05") },
		},
		TransformWeekday: {
			Result: only(ledger.KindTime, ledger.KindString),
			Apply:  func(v any) any { return v.(time.Time).Weekday().String() },
		},
	}
}

func only(in, out ledger.Kind) func(ledger.Kind) (ledger.Kind, bool) {
	return func(k ledger.Kind) (ledger.Kind, bool) {
		return out, k == in
	}
}

// caseTransform maps strings, and every member of a tag set.
func caseTransform(fn func(string) string) Transform {
	return Transform{
		Result: func(in ledger.Kind) (ledger.Kind, bool) {
			return in, in == ledger.KindString || in == ledger.KindStrings
		},
		Apply: func(v any) any {
			switch val := v.(type) {
			case string:
				return fn(val)
			case ledger.TagSet:
				out := make(ledger.TagSet, len(val))
				for n := range val {
					out.Add(fn(n))
				}
				return out
			}
			return v
		},
	}
}

func numberTransform(fn func(decimal.Decimal) decimal.Decimal) Transform {
	return Transform{
		Result: only(ledger.KindNumber, ledger.KindNumber),
		Apply:  func(v any) any { return fn(v.(decimal.Decimal)) },
	}
}

func stringify(v any) any {
	switch val := v.(type) {
	case string:
		return val
	case time.Time:
		return val.Format("2006-01-02 15:04:05")
	case decimal.Decimal:
		return val.String()
	case ledger.TagSet:
		return val.String()
	}
	return ""
}
