package report

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/spendlens/spendlens/internal/core/aggregation"
	"github.com/spendlens/spendlens/internal/core/ledger"
)

// GroupAggRequest selects, groups and aggregates stored transactions.
type GroupAggRequest struct {
	From     time.Time        `json:"from"`
	To       time.Time        `json:"to"`
	Tags     []string         `json:"tags,omitempty"` // keep rows carrying any of these
	Grouping string           `json:"grouping"`       // default: "month"
	Agg      aggregation.Spec `json:"agg"`            // zero value: sum/sum
	Retag    bool             `json:"retag"`          // recompute tags from the current definitions first
}

// GroupAggResponse carries one aggregated transaction per group.
type GroupAggResponse struct {
	Grouping string               `json:"grouping"`
	Agg      aggregation.Spec     `json:"agg"`
	Count    int                  `json:"count"`
	Rows     []ledger.Transaction `json:"rows"`
}

// SeriesRequest asks for one value per calendar bucket.
type SeriesRequest struct {
	From     time.Time
	To       time.Time
	Unit     string   // default: "month"
	Tags     []string // keep rows carrying any of these
	Field    string   // amount (default) or amount_cur
	Operator string   // default: sum
}

// Point is one calendar bucket of a series. Empty buckets have Count 0 and a zero Value.
type Point struct {
	Label string          `json:"label"`
	Start time.Time       `json:"start"`
	End   time.Time       `json:"end"`
	Value decimal.Decimal `json:"value"`
	Count int             `json:"count"`
}

// SeriesResponse is a gap-free run of buckets in ascending order.
type SeriesResponse struct {
	Unit     string  `json:"unit"`
	Field    string  `json:"field"`
	Operator string  `json:"operator"`
	Timezone string  `json:"timezone"`
	Points   []Point `json:"points"`
}
