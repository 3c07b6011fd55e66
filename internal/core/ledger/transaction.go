package ledger

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is one normalized financial event.
// Adapters create it; after that only the tagger touches it, and only its Tags.
type Transaction struct {
	// ID is the unique identifier assigned by the statement adapter.
	ID string

	// DateTime is when the event happened (date and time of day).
	DateTime time.Time

	// Amount is the signed value normalized to the reference currency.
	Amount decimal.Decimal

	// Currency is the original currency code. On aggregated records it holds
	// the multiset summary produced by FormatCurrencySummary.
	Currency string

	// AmountCur is the signed value in the original currency.
	AmountCur decimal.Decimal

	// Description is the free-text statement line.
	Description string

	// Tags is the set of tag names attached by the tagger.
	Tags TagSet
}

// Clone returns a copy that shares no mutable state with t.
func (t Transaction) Clone() Transaction {
	c := t
	c.Tags = t.Tags.Clone()
	return c
}

// Value reads a field by its schema name.
// Values are string, time.Time, decimal.Decimal or TagSet depending on FieldKind.
func (t *Transaction) Value(field string) (any, bool) {
	switch field {
	case FieldID:
		return t.ID, true
	case FieldDateTime:
		return t.DateTime, true
	case FieldAmount:
		return t.Amount, true
	case FieldCurrency:
		return t.Currency, true
	case FieldAmountCur:
		return t.AmountCur, true
	case FieldDescription:
		return t.Description, true
	case FieldTags:
		return t.Tags, true
	}
	return nil, false
}

// Record returns the boundary representation accepted by FromRecord.
func (t Transaction) Record() map[string]any {
	return map[string]any{
		FieldID:          t.ID,
		FieldDateTime:    t.DateTime,
		FieldAmount:      t.Amount,
		FieldCurrency:    t.Currency,
		FieldAmountCur:   t.AmountCur,
		FieldDescription: t.Description,
		FieldTags:        t.Tags.Sorted(),
	}
}

type transactionJSON struct {
	ID          string          `json:"id"`
	DateTime    time.Time       `json:"datetime"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	AmountCur   decimal.Decimal `json:"amount_cur"`
	Description string          `json:"description"`
	Tags        []string        `json:"tags"`
}

// MarshalJSON writes the six schema fields plus the sorted tag list.
func (t Transaction) MarshalJSON() ([]byte, error) {
	return json.Marshal(transactionJSON{
		ID:          t.ID,
		DateTime:    t.DateTime,
		Amount:      t.Amount,
		Currency:    t.Currency,
		AmountCur:   t.AmountCur,
		Description: t.Description,
		Tags:        t.Tags.Sorted(),
	})
}

// UnmarshalJSON reads the shape written by MarshalJSON.
func (t *Transaction) UnmarshalJSON(data []byte) error {
	var raw transactionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*t = Transaction{
		ID:          raw.ID,
		DateTime:    raw.DateTime,
		Amount:      raw.Amount,
		Currency:    raw.Currency,
		AmountCur:   raw.AmountCur,
		Description: raw.Description,
		Tags:        NewTagSet(raw.Tags...),
	}
	return nil
}
