package ledger

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"
)

// Transaction field names as they appear in rule definitions and boundary records.
const (
	FieldID          = "id"
	FieldDateTime    = "datetime"
	FieldAmount      = "amount"
	FieldCurrency    = "currency"
	FieldAmountCur   = "amount_cur"
	FieldDescription = "description"
	FieldTags        = "tags"
)

// Kind is the static type of a field value, or of a transformed value.
type Kind int

const (
	KindString Kind = iota + 1
	KindTime
	KindNumber
	KindStrings
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindTime:
		return "datetime"
	case KindNumber:
		return "number"
	case KindStrings:
		return "string set"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

var fieldKinds = map[string]Kind{
	FieldID:          KindString,
	FieldDateTime:    KindTime,
	FieldAmount:      KindNumber,
	FieldCurrency:    KindString,
	FieldAmountCur:   KindNumber,
	FieldDescription: KindString,
	FieldTags:        KindStrings,
}

// requiredFields must be present in every boundary record. Tags may be omitted.
var requiredFields = []string{
	FieldID,
	FieldDateTime,
	FieldAmount,
	FieldCurrency,
	FieldAmountCur,
	FieldDescription,
}

// Fields returns every schema field name in a stable order.
func Fields() []string {
	return append(append([]string(nil), requiredFields...), FieldTags)
}

// FieldKind returns the kind of a schema field or a ValidationError wrapping ErrFieldNotFound.
func FieldKind(field string) (Kind, error) {
	k, ok := fieldKinds[field]
	if !ok {
		return 0, NewUnknownFieldError(field)
	}
	return k, nil
}

// Validate checks an already typed transaction for the fields a record may not leave empty.
func Validate(index int, t Transaction) error {
	if t.ID == "" {
		return newRequiredFieldError(index, FieldID)
	}
	if t.DateTime.IsZero() {
		return newRequiredFieldError(index, FieldDateTime)
	}
	if t.Currency == "" {
		return newRequiredFieldError(index, FieldCurrency)
	}
	return nil
}

// FromRecord converts one boundary record into a Transaction.
// The record must carry every required field and nothing outside the schema.
func FromRecord(index int, rec map[string]any) (Transaction, error) {
	var unknown []string
	for k := range rec {
		if _, ok := fieldKinds[k]; !ok {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return Transaction{}, &ValidationError{Index: index, Message: "unknown fields", UnknownFields: unknown}
	}
	for _, f := range requiredFields {
		if v, ok := rec[f]; !ok || v == nil {
			return Transaction{}, newRequiredFieldError(index, f)
		}
	}

	var (
		t   Transaction
		err error
	)
	if t.ID, err = parseID(rec[FieldID]); err != nil {
		return Transaction{}, newTypeError(index, FieldID, "string or integer id", rec[FieldID], err)
	}
	if t.DateTime, err = ParseTime(rec[FieldDateTime]); err != nil {
		return Transaction{}, newTypeError(index, FieldDateTime, "datetime", rec[FieldDateTime], err)
	}
	if t.Amount, err = ParseDecimal(rec[FieldAmount]); err != nil {
		return Transaction{}, newTypeError(index, FieldAmount, "number", rec[FieldAmount], err)
	}
	if t.AmountCur, err = ParseDecimal(rec[FieldAmountCur]); err != nil {
		return Transaction{}, newTypeError(index, FieldAmountCur, "number", rec[FieldAmountCur], err)
	}
	currency, ok := rec[FieldCurrency].(string)
	if !ok {
		return Transaction{}, newTypeError(index, FieldCurrency, "string", rec[FieldCurrency], nil)
	}
	t.Currency = currency
	description, ok := rec[FieldDescription].(string)
	if !ok {
		return Transaction{}, newTypeError(index, FieldDescription, "string", rec[FieldDescription], nil)
	}
	t.Description = description
	if t.Tags, err = parseTags(rec[FieldTags]); err != nil {
		return Transaction{}, newTypeError(index, FieldTags, "list of strings", rec[FieldTags], err)
	}

	if err := Validate(index, t); err != nil {
		return Transaction{}, err
	}
	return t, nil
}

// FromRecords converts a batch, collecting every failing record into one MultiValidationError.
func FromRecords(recs []map[string]any) ([]Transaction, error) {
	out := make([]Transaction, 0, len(recs))
	var multi MultiValidationError
	for i, rec := range recs {
		t, err := FromRecord(i, rec)
		if err != nil {
			if ve, ok := err.(*ValidationError); ok {
				multi.Errors = append(multi.Errors, ve)
				continue
			}
			return nil, err
		}
		out = append(out, t)
	}
	if len(multi.Errors) > 0 {
		return nil, &multi
	}
	return out, nil
}

func parseID(v any) (string, error) {
	switch id := v.(type) {
	case string:
		return id, nil
	case json.Number:
		if _, err := id.Int64(); err != nil {
			return "", err
		}
		return id.String(), nil
	case int:
		return strconv.Itoa(id), nil
	case int64:
		return strconv.FormatInt(id, 10), nil
	case float64:
		if id != float64(int64(id)) {
			return "", fmt.Errorf("id %v has a fractional part", id)
		}
		return strconv.FormatInt(int64(id), 10), nil
	}
	return "", fmt.Errorf("unsupported id type %T", v)
}

func parseTags(v any) (TagSet, error) {
	switch tags := v.(type) {
	case nil:
		return TagSet{}, nil
	case TagSet:
		return tags.Clone(), nil
	case []string:
		set := make(TagSet, len(tags))
		for i, name := range tags {
			if name == "" {
				return nil, fmt.Errorf("tags[%d] is empty", i)
			}
			set.Add(name)
		}
		return set, nil
	case []any:
		set := make(TagSet, len(tags))
		for i, item := range tags {
			name, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("tags[%d] is %T", i, item)
			}
			if name == "" {
				return nil, fmt.Errorf("tags[%d] is empty", i)
			}
			set.Add(name)
		}
		return set, nil
	}
	return nil, fmt.Errorf("unsupported tags type %T", v)
}

// timeLayouts are tried in order by ParseTime.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseTime accepts a time.Time or a string in one of the supported layouts.
// Strings without an offset are read as UTC.
func ParseTime(v any) (time.Time, error) {
	switch ts := v.(type) {
	case time.Time:
		return ts, nil
	case string:
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, ts); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("unrecognized datetime %q", ts)
	}
	return time.Time{}, fmt.Errorf("unsupported datetime type %T", v)
}
