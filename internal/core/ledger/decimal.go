package ledger

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// ParseDecimal converts a boundary or rule-literal value into an exact decimal.
// JSON numbers arrive as float64 (or json.Number with UseNumber); NewFromFloat
// keeps the shortest exact representation of the float.
func ParseDecimal(v any) (decimal.Decimal, error) {
	switch val := v.(type) {
	case decimal.Decimal:
		return val, nil
	case json.Number:
		return decimal.NewFromString(val.String())
	case float64:
		return decimal.NewFromFloat(val), nil
	case float32:
		return decimal.NewFromFloat32(val), nil
	case int:
		return decimal.NewFromInt(int64(val)), nil
	case int64:
		return decimal.NewFromInt(val), nil
	case int32:
		return decimal.NewFromInt(int64(val)), nil
	case uint64:
		return decimal.NewFromUint64(val), nil
	case string:
		d, err := decimal.NewFromString(val)
		if err != nil {
			return decimal.Zero, fmt.Errorf("invalid decimal %q: %w", val, err)
		}
		return d, nil
	}
	return decimal.Zero, fmt.Errorf("unsupported numeric type %T", v)
}
