package tags

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/spendlens/spendlens/internal/core/ledger"
	"github.com/spendlens/spendlens/internal/core/rule"
	"github.com/spendlens/spendlens/internal/core/tagging"
	"golang.org/x/sync/singleflight"
)

// DefaultCacheCapacity is the default number of compiled tags to cache.
const DefaultCacheCapacity = 256

// Registry compiles stored definitions into tags. Compiled tags are cached
// by name and fingerprint; concurrent compiles of one definition run once.
type Registry struct {
	repo         Repository
	rules        *rule.Registries
	cache        *LRUCache
	compileGroup singleflight.Group
	now          func() time.Time
}

// NewRegistry creates a registry with DefaultCacheCapacity.
func NewRegistry(repo Repository, rules *rule.Registries) *Registry {
	return NewRegistryWithCache(repo, rules, DefaultCacheCapacity)
}

// NewRegistryWithCache creates a registry with a custom cache capacity.
func NewRegistryWithCache(repo Repository, rules *rule.Registries, cacheCapacity int) *Registry {
	return &Registry{
		repo:  repo,
		rules: rules,
		cache: NewLRUCache(cacheCapacity),
		now:   time.Now,
	}
}

// Compile builds the tag described by def without consulting the cache.
func (r *Registry) Compile(def *Definition) (tagging.Tag, error) {
	parsed, err := rule.Parse(r.rules, def.Conditions)
	if err != nil {
		return tagging.Tag{}, fmt.Errorf("tag %q: %w", def.Name, err)
	}
	return tagging.NewTag(def.Name, parsed)
}

// Get returns the stored definition and its compiled tag.
func (r *Registry) Get(ctx context.Context, name string) (*Definition, tagging.Tag, error) {
	def, err := r.repo.Get(ctx, name)
	if err != nil {
		return nil, tagging.Tag{}, err
	}
	tag, err := r.compiled(def)
	if err != nil {
		return nil, tagging.Tag{}, err
	}
	return def, tag, nil
}

// List returns every stored definition ordered by name.
func (r *Registry) List(ctx context.Context) ([]*Definition, error) {
	return r.repo.List(ctx)
}

// Tags compiles every stored definition and orders the tags so that each
// comes after the tags its rule reads.
func (r *Registry) Tags(ctx context.Context) ([]tagging.Tag, error) {
	defs, err := r.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]tagging.Tag, 0, len(defs))
	for _, def := range defs {
		tag, err := r.compiled(def)
		if err != nil {
			return nil, err
		}
		out = append(out, tag)
	}
	return tagging.Order(out)
}

// Save validates and stores a definition. The rule must compile, and the
// full tag set must still have an order without cycles.
func (r *Registry) Save(ctx context.Context, name string, conditions any) (*Definition, error) {
	def, err := NewDefinition(name, conditions, r.now())
	if err != nil {
		return nil, err
	}
	tag, err := r.Compile(def)
	if err != nil {
		return nil, err
	}

	existing, err := r.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	all := []tagging.Tag{tag}
	for _, other := range existing {
		if other.Name == name {
			continue
		}
		compiled, err := r.compiled(other)
		if err != nil {
			return nil, err
		}
		all = append(all, compiled)
	}
	if _, err := tagging.Order(all); err != nil {
		return nil, err
	}

	if err := r.repo.Save(ctx, def); err != nil {
		return nil, err
	}
	r.cache.Put(def.Name, def.Fingerprint, tag)
	return def, nil
}

// Delete removes a definition and its cached tag.
func (r *Registry) Delete(ctx context.Context, name string) error {
	if err := r.repo.Delete(ctx, name); err != nil {
		return err
	}
	r.cache.Invalidate(name)
	return nil
}

func (r *Registry) compiled(def *Definition) (tagging.Tag, error) {
	if tag, ok := r.cache.Get(def.Name, def.Fingerprint); ok {
		return tag, nil
	}

	key := def.Name + ":" + def.Fingerprint
	result, err, _ := r.compileGroup.Do(key, func() (interface{}, error) {
		if tag, ok := r.cache.Get(def.Name, def.Fingerprint); ok {
			return tag, nil
		}
		tag, err := r.Compile(def)
		if err != nil {
			return nil, err
		}
		r.cache.Put(def.Name, def.Fingerprint, tag)
		return tag, nil
	})
	if err != nil {
		return tagging.Tag{}, err
	}
	return result.(tagging.Tag), nil
}

// IsDefinitionError reports whether err comes from a bad tag definition
// rather than from storage.
func IsDefinitionError(err error) bool {
	for _, target := range []error{
		ledger.ErrSchemaValidation,
		rule.ErrMalformedRule,
		rule.ErrUnknownComparator,
		rule.ErrUnknownTransformation,
		tagging.ErrInvalidTag,
		tagging.ErrTagCycle,
		tagging.ErrTagOrder,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// SortDefinitions orders defs by name in place.
func SortDefinitions(defs []*Definition) {
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
}
