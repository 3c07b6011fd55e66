package ledger

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func validRecord() map[string]any {
	return map[string]any{
		"id":          "tx-1",
		"datetime":    "2021-02-03 10:15:00",
		"amount":      -12.5,
		"currency":    "EUR",
		"amount_cur":  "-12.50",
		"description": "LIDL 1234",
		"tags":        []any{"groceries"},
	}
}

func TestFromRecord(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(rec map[string]any)
		wantErr   bool
		wantField string
		check     func(t *testing.T, tx Transaction)
	}{
		{
			name: "valid record",
			check: func(t *testing.T, tx Transaction) {
				require.Equal(t, "tx-1", tx.ID)
				require.Equal(t, time.Date(2021, 2, 3, 10, 15, 0, 0, time.UTC), tx.DateTime)
				require.True(t, decimal.RequireFromString("-12.5").Equal(tx.Amount))
				require.True(t, decimal.RequireFromString("-12.5").Equal(tx.AmountCur))
				require.True(t, tx.Tags.Has("groceries"))
			},
		},
		{
			name:   "tags may be omitted",
			mutate: func(rec map[string]any) { delete(rec, "tags") },
			check: func(t *testing.T, tx Transaction) {
				require.NotNil(t, tx.Tags)
				require.Equal(t, 0, tx.Tags.Len())
			},
		},
		{
			name:   "integer id is stringified",
			mutate: func(rec map[string]any) { rec["id"] = float64(17) },
			check: func(t *testing.T, tx Transaction) {
				require.Equal(t, "17", tx.ID)
			},
		},
		{
			name:   "duplicate tags collapse",
			mutate: func(rec map[string]any) { rec["tags"] = []string{"a", "a", "b"} },
			check: func(t *testing.T, tx Transaction) {
				require.Equal(t, []string{"a", "b"}, tx.Tags.Sorted())
			},
		},
		{name: "missing amount", mutate: func(rec map[string]any) { delete(rec, "amount") }, wantErr: true, wantField: "amount"},
		{name: "missing description", mutate: func(rec map[string]any) { delete(rec, "description") }, wantErr: true, wantField: "description"},
		{name: "bad datetime", mutate: func(rec map[string]any) { rec["datetime"] = "yesterday" }, wantErr: true, wantField: "datetime"},
		{name: "bad amount", mutate: func(rec map[string]any) { rec["amount"] = "ten" }, wantErr: true, wantField: "amount"},
		{name: "currency must be string", mutate: func(rec map[string]any) { rec["currency"] = 978 }, wantErr: true, wantField: "currency"},
		{name: "empty currency", mutate: func(rec map[string]any) { rec["currency"] = "" }, wantErr: true, wantField: "currency"},
		{name: "empty tag name", mutate: func(rec map[string]any) { rec["tags"] = []any{""} }, wantErr: true, wantField: "tags"},
		{name: "empty tag name in string list", mutate: func(rec map[string]any) { rec["tags"] = []string{"a", ""} }, wantErr: true, wantField: "tags"},
		{name: "unknown field", mutate: func(rec map[string]any) { rec["balance"] = 1 }, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := validRecord()
			if tc.mutate != nil {
				tc.mutate(rec)
			}
			tx, err := FromRecord(0, rec)
			if tc.wantErr {
				require.Error(t, err)
				require.ErrorIs(t, err, ErrSchemaValidation)
				var ve *ValidationError
				require.True(t, errors.As(err, &ve))
				require.Equal(t, tc.wantField, ve.Field)
				return
			}
			require.NoError(t, err)
			tc.check(t, tx)
		})
	}
}

func TestFromRecords_CollectsEveryFailure(t *testing.T) {
	bad1 := validRecord()
	delete(bad1, "id")
	bad2 := validRecord()
	bad2["amount"] = "x"

	_, err := FromRecords([]map[string]any{validRecord(), bad1, bad2})
	require.ErrorIs(t, err, ErrSchemaValidation)

	var multi *MultiValidationError
	require.True(t, errors.As(err, &multi))
	require.Len(t, multi.Errors, 2)
	require.Equal(t, []int{1, 2}, multi.Details()["indexes"])
}

func TestFieldKind(t *testing.T) {
	k, err := FieldKind("amount")
	require.NoError(t, err)
	require.Equal(t, KindNumber, k)

	_, err = FieldKind("balance")
	require.ErrorIs(t, err, ErrFieldNotFound)
	require.ErrorIs(t, err, ErrSchemaValidation)
}

func TestTransaction_RecordRoundTrip(t *testing.T) {
	tx, err := FromRecord(0, validRecord())
	require.NoError(t, err)

	again, err := FromRecord(0, tx.Record())
	require.NoError(t, err)
	require.Equal(t, tx.ID, again.ID)
	require.True(t, tx.DateTime.Equal(again.DateTime))
	require.True(t, tx.Amount.Equal(again.Amount))
	require.True(t, tx.Tags.Equal(again.Tags))
}

func TestTransaction_CloneDoesNotShareTags(t *testing.T) {
	tx := Transaction{ID: "1", Tags: NewTagSet("a")}
	c := tx.Clone()
	c.Tags.Add("b")
	require.False(t, tx.Tags.Has("b"))
}
