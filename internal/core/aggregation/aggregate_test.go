package aggregation

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spendlens/spendlens/internal/core/grouping"
	"github.com/spendlens/spendlens/internal/core/ledger"
	"github.com/stretchr/testify/require"
)

func record(id string, day time.Time, amount, currency, desc string, tags ...string) ledger.Transaction {
	return ledger.Transaction{
		ID:          id,
		DateTime:    day,
		Amount:      decimal.RequireFromString(amount),
		Currency:    currency,
		AmountCur:   decimal.RequireFromString(amount),
		Description: desc,
		Tags:        ledger.NewTagSet(tags...),
	}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func TestAggregateAll_WeeklySum(t *testing.T) {
	txns := []ledger.Transaction{
		record("1", date(2021, 2, 3), "100.0", "EUR", "a"),
		record("2", date(2021, 2, 1), "100.0", "EUR", "b", "tag1"),
		record("3", date(2021, 12, 31), "100.0", "USD", "c", "tag1", "tag2"),
	}

	out, err := AggregateAll(grouping.Weeks().Group(txns), DefaultSpec())
	require.NoError(t, err)
	require.Len(t, out, 2)

	feb, dec := out[0], out[1]
	require.True(t, decimal.NewFromInt(200).Equal(feb.Amount))
	require.Equal(t, []string{"tag1"}, feb.Tags.Sorted())
	require.Equal(t, time.Date(2021, 2, 1, 0, 0, 0, 0, time.UTC), feb.DateTime)
	require.Equal(t, "1", feb.ID)
	require.Equal(t, "b,a", feb.Description)
	require.Equal(t, "EUR:2", feb.Currency)

	require.True(t, decimal.NewFromInt(100).Equal(dec.Amount))
	require.Equal(t, []string{"tag1", "tag2"}, dec.Tags.Sorted())
	require.Equal(t, time.Date(2021, 12, 27, 0, 0, 0, 0, time.UTC), dec.DateTime)
	require.Equal(t, "USD:1", dec.Currency)
}

func TestAggregateAll_ConservesSum(t *testing.T) {
	var txns []ledger.Transaction
	start := time.Date(2020, 11, 29, 8, 0, 0, 0, time.UTC)
	total := decimal.Zero
	for i := 0; i < 200; i++ {
		amount := decimal.New(int64(i*37%1000-500), -2)
		total = total.Add(amount)
		txns = append(txns, ledger.Transaction{
			ID:        fmt.Sprint(i),
			DateTime:  start.Add(time.Duration(i*29) * time.Hour),
			Amount:    amount,
			Currency:  "EUR",
			AmountCur: amount,
		})
	}

	partitions := []grouping.Grouping{
		grouping.Days(), grouping.Weeks(), grouping.Months(), grouping.Years(),
		grouping.TagMembership(),
	}
	for _, g := range partitions {
		t.Run(g.Name(), func(t *testing.T) {
			out, err := AggregateAll(g.Group(txns), DefaultSpec())
			require.NoError(t, err)

			sum := decimal.Zero
			for _, r := range out {
				sum = sum.Add(r.Amount)
			}
			require.True(t, total.Equal(sum), "want %s, got %s", total, sum)
		})
	}
}

func TestAggregate_ChainedKeepsCurrencyCounts(t *testing.T) {
	txns := []ledger.Transaction{
		record("10", date(2021, 3, 1), "1", "EUR", "x"),
		record("9", date(2021, 3, 2), "2", "USD", "y"),
		record("11", date(2021, 3, 20), "3", "EUR", "z"),
	}

	weekly, err := AggregateAll(grouping.Weeks().Group(txns), DefaultSpec())
	require.NoError(t, err)
	require.Len(t, weekly, 2)
	require.Equal(t, "9", weekly[0].ID, "integer ids compare numerically")

	monthly, err := AggregateAll(grouping.Months().Group(weekly), Spec{Amount: OpMax, AmountCur: OpCount})
	require.NoError(t, err)
	require.Len(t, monthly, 1)
	require.Equal(t, "EUR:2,USD:1", monthly[0].Currency)
	require.True(t, decimal.NewFromInt(3).Equal(monthly[0].Amount))
	require.True(t, decimal.NewFromInt(2).Equal(monthly[0].AmountCur))
}

func TestAggregate_MixedIDsPickSameMinimum(t *testing.T) {
	orders := [][]string{
		{"10", "9", "9a"},
		{"9a", "10", "9"},
		{"9", "9a", "10"},
		{"10", "9a", "9"},
	}
	for _, ids := range orders {
		members := make([]ledger.Transaction, len(ids))
		for i, id := range ids {
			members[i] = record(id, date(2021, 1, 1), "1", "EUR", id)
		}
		got, err := Aggregate(grouping.Group{Start: date(2021, 1, 1), Members: members}, DefaultSpec())
		require.NoError(t, err)
		require.Equal(t, "9", got.ID, "members %v", ids)
	}
}

func TestLessID(t *testing.T) {
	require.True(t, lessID("9", "10"))
	require.True(t, lessID("10", "9a"))
	require.False(t, lessID("9a", "10"))
	require.True(t, lessID("07", "7"))
	require.True(t, lessID("a", "b"))
	require.False(t, lessID("5", "5"))
}

func TestAggregate_Errors(t *testing.T) {
	_, err := Aggregate(grouping.Group{Label: "empty"}, DefaultSpec())
	require.ErrorIs(t, err, ErrEmptyGroup)

	g := grouping.Group{Members: []ledger.Transaction{record("1", date(2021, 1, 1), "1", "EUR", "")}}
	_, err = Aggregate(g, Spec{Amount: "median", AmountCur: OpSum})
	require.ErrorIs(t, err, ErrUnknownOperator)
}

func TestParseSpec(t *testing.T) {
	spec, err := ParseSpec("amount=avg")
	require.NoError(t, err)
	require.Equal(t, Spec{Amount: OpAvg, AmountCur: OpSum}, spec)

	spec, err = ParseSpec(" amount = min , amount_cur=count ")
	require.NoError(t, err)
	require.Equal(t, Spec{Amount: OpMin, AmountCur: OpCount}, spec)

	spec, err = ParseSpec("")
	require.NoError(t, err)
	require.Equal(t, DefaultSpec(), spec)

	_, err = ParseSpec("amount=median")
	require.ErrorIs(t, err, ErrUnknownOperator)

	_, err = ParseSpec("amount")
	require.ErrorIs(t, err, ErrUnknownOperator)

	_, err = ParseSpec("price=sum")
	require.ErrorIs(t, err, ledger.ErrFieldNotFound)
}
