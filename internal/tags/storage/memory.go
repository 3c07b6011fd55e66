package storage

import (
	"context"
	"sync"

	"github.com/spendlens/spendlens/internal/tags"
)

// MemoryRepository is an in-memory implementation of tags.Repository.
// Useful for testing and development.
type MemoryRepository struct {
	mu   sync.RWMutex
	defs map[string]*tags.Definition
}

// NewMemoryRepository creates a repository seeded with defs.
func NewMemoryRepository(defs ...*tags.Definition) *MemoryRepository {
	r := &MemoryRepository{defs: make(map[string]*tags.Definition)}
	for _, d := range defs {
		copy := *d
		r.defs[d.Name] = &copy
	}
	return r
}

func (r *MemoryRepository) Get(_ context.Context, name string) (*tags.Definition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, exists := r.defs[name]
	if !exists {
		return nil, tags.ErrNotFound
	}
	copy := *d
	return &copy, nil
}

func (r *MemoryRepository) List(_ context.Context) ([]*tags.Definition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*tags.Definition, 0, len(r.defs))
	for _, d := range r.defs {
		copy := *d
		out = append(out, &copy)
	}
	tags.SortDefinitions(out)
	return out, nil
}

func (r *MemoryRepository) Save(_ context.Context, d *tags.Definition) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copy := *d
	r.defs[d.Name] = &copy
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.defs[name]; !exists {
		return tags.ErrNotFound
	}
	delete(r.defs, name)
	return nil
}
