package storage

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/spendlens/spendlens/internal/core/ledger"
)

// ErrDuplicate is returned when a transaction with the same id already exists.
var ErrDuplicate = errors.New("transaction already exists")

// ErrNotFound is returned by UpdateTags for an id the store has never seen.
var ErrNotFound = errors.New("transaction not found")

// TransactionStore persists normalized transactions and their attached tags.
type TransactionStore interface {
	// Save inserts new transactions. Existing ids are rejected with ErrDuplicate
	// and nothing from the batch is stored.
	Save(ctx context.Context, txns []ledger.Transaction) error

	// Load returns transactions with from <= datetime < to, ordered by datetime then id.
	// A zero bound leaves that side of the range open.
	Load(ctx context.Context, from, to time.Time) ([]ledger.Transaction, error)

	// UpdateTags replaces the stored tag set of every given transaction.
	UpdateTags(ctx context.Context, txns []ledger.Transaction) error
}

// InRange reports whether t falls in [from, to) with zero bounds open.
func InRange(t, from, to time.Time) bool {
	if !from.IsZero() && t.Before(from) {
		return false
	}
	if !to.IsZero() && !t.Before(to) {
		return false
	}
	return true
}

// SortTransactions orders by datetime, then id.
func SortTransactions(txns []ledger.Transaction) {
	sort.SliceStable(txns, func(i, j int) bool {
		if !txns[i].DateTime.Equal(txns[j].DateTime) {
			return txns[i].DateTime.Before(txns[j].DateTime)
		}
		return txns[i].ID < txns[j].ID
	})
}

// MemoryStore is an in-process TransactionStore used by the CLI and tests.
type MemoryStore struct {
	mu   sync.RWMutex
	rows map[string]ledger.Transaction
}

// NewMemoryStore returns a store seeded with txns. Later duplicates overwrite earlier ones.
func NewMemoryStore(txns ...ledger.Transaction) *MemoryStore {
	s := &MemoryStore{rows: make(map[string]ledger.Transaction, len(txns))}
	for _, t := range txns {
		s.rows[t.ID] = t.Clone()
	}
	return s
}

func (s *MemoryStore) Save(ctx context.Context, txns []ledger.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{}, len(txns))
	for _, t := range txns {
		if _, ok := s.rows[t.ID]; ok {
			return ErrDuplicate
		}
		if _, ok := seen[t.ID]; ok {
			return ErrDuplicate
		}
		seen[t.ID] = struct{}{}
	}
	for _, t := range txns {
		s.rows[t.ID] = t.Clone()
	}
	return nil
}

func (s *MemoryStore) Load(ctx context.Context, from, to time.Time) ([]ledger.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]ledger.Transaction, 0, len(s.rows))
	for _, t := range s.rows {
		if InRange(t.DateTime, from, to) {
			out = append(out, t.Clone())
		}
	}
	SortTransactions(out)
	return out, nil
}

func (s *MemoryStore) UpdateTags(ctx context.Context, txns []ledger.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range txns {
		if _, ok := s.rows[t.ID]; !ok {
			return ErrNotFound
		}
	}
	for _, t := range txns {
		row := s.rows[t.ID]
		row.Tags = t.Tags.Clone()
		s.rows[t.ID] = row
	}
	return nil
}
