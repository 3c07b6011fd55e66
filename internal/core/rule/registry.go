package rule

import (
	"fmt"
	"sort"
	"sync"
)

// Registry maps string keys to transforms or comparators.
// One instance is built at startup and handed to every constructor that resolves keys.
type Registry[T any] struct {
	mu      sync.RWMutex
	name    string
	unknown error
	entries map[string]T
}

// NewRegistry creates an empty registry. unknown is wrapped by Lookup misses.
func NewRegistry[T any](name string, unknown error) *Registry[T] {
	return &Registry[T]{
		name:    name,
		unknown: unknown,
		entries: make(map[string]T),
	}
}

// Register binds key to v. Returns ErrDuplicateKey if key is already bound.
func (r *Registry[T]) Register(key string, v T) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[key]; exists {
		return fmt.Errorf("%w: %s %q", ErrDuplicateKey, r.name, key)
	}
	r.entries[key] = v
	return nil
}

// Lookup returns the value bound to key.
func (r *Registry[T]) Lookup(key string) (T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.entries[key]
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: %q", r.unknown, key)
	}
	return v, nil
}

// Keys returns every bound key in ascending order.
func (r *Registry[T]) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, 0, len(r.entries))
	for k := range r.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Registries bundles the two lookup tables a rule definition resolves against.
type Registries struct {
	Transforms  *Registry[Transform]
	Comparators *Registry[Comparator]
}

// NewRegistries returns registries pre-loaded with the built-in transforms and comparators.
func NewRegistries() *Registries {
	regs := &Registries{
		Transforms:  NewRegistry[Transform]("transformation", ErrUnknownTransformation),
		Comparators: NewRegistry[Comparator]("comparator", ErrUnknownComparator),
	}
	for key, tr := range BuiltinTransforms() {
		_ = regs.Transforms.Register(key, tr)
	}
	for key, cmp := range BuiltinComparators() {
		_ = regs.Comparators.Register(key, cmp)
	}
	return regs
}
