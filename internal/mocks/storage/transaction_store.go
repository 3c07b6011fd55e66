package storagemocks

import (
	"context"
	"time"

	"github.com/spendlens/spendlens/internal/core/ledger"
	"github.com/stretchr/testify/mock"
)

// TransactionStore is a testify mock of storage.TransactionStore.
type TransactionStore struct {
	mock.Mock
}

func (_m *TransactionStore) Save(ctx context.Context, txns []ledger.Transaction) error {
	ret := _m.Called(ctx, txns)

	if rf, ok := ret.Get(0).(func(context.Context, []ledger.Transaction) error); ok {
		return rf(ctx, txns)
	}
	return ret.Error(0)
}

func (_m *TransactionStore) Load(ctx context.Context, from, to time.Time) ([]ledger.Transaction, error) {
	ret := _m.Called(ctx, from, to)

	var r0 []ledger.Transaction
	if rf, ok := ret.Get(0).(func(context.Context, time.Time, time.Time) []ledger.Transaction); ok {
		r0 = rf(ctx, from, to)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).([]ledger.Transaction)
	}
	return r0, ret.Error(1)
}

func (_m *TransactionStore) UpdateTags(ctx context.Context, txns []ledger.Transaction) error {
	ret := _m.Called(ctx, txns)

	if rf, ok := ret.Get(0).(func(context.Context, []ledger.Transaction) error); ok {
		return rf(ctx, txns)
	}
	return ret.Error(0)
}

// NewTransactionStore creates a mock and asserts its expectations when the test ends.
func NewTransactionStore(t interface {
	mock.TestingT
	Cleanup(func())
}) *TransactionStore {
	m := &TransactionStore{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
