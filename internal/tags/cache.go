package tags

import (
	"container/list"
	"sync"

	"github.com/spendlens/spendlens/internal/core/tagging"
)

// compiledTag is a tag built from the definition with the given fingerprint.
type compiledTag struct {
	fingerprint string
	tag         tagging.Tag
}

// LRUCache is a thread-safe LRU cache of compiled tags keyed by name.
type LRUCache struct {
	mu       sync.Mutex
	capacity int
	cache    map[string]*list.Element
	order    *list.List
}

type cacheEntry struct {
	name     string
	compiled compiledTag
}

// NewLRUCache creates a new LRU cache with the given capacity.
func NewLRUCache(capacity int) *LRUCache {
	if capacity < 1 {
		capacity = 1
	}
	return &LRUCache{
		capacity: capacity,
		cache:    make(map[string]*list.Element),
		order:    list.New(),
	}
}

// Get returns the compiled tag for name if it was built from fingerprint.
func (c *LRUCache) Get(name, fingerprint string) (tagging.Tag, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, exists := c.cache[name]
	if !exists {
		return tagging.Tag{}, false
	}
	entry := elem.Value.(*cacheEntry)
	if entry.compiled.fingerprint != fingerprint {
		return tagging.Tag{}, false
	}
	c.order.MoveToFront(elem)
	return entry.compiled.tag, true
}

// Put adds a compiled tag, evicting the least recently used if full.
func (c *LRUCache) Put(name, fingerprint string, tag tagging.Tag) {
	c.mu.Lock()
	defer c.mu.Unlock()

	compiled := compiledTag{fingerprint: fingerprint, tag: tag}
	if elem, exists := c.cache[name]; exists {
		c.order.MoveToFront(elem)
		elem.Value.(*cacheEntry).compiled = compiled
		return
	}

	if c.order.Len() >= c.capacity {
		if oldest := c.order.Back(); oldest != nil {
			delete(c.cache, oldest.Value.(*cacheEntry).name)
			c.order.Remove(oldest)
		}
	}
	c.cache[name] = c.order.PushFront(&cacheEntry{name: name, compiled: compiled})
}

// Invalidate removes name from the cache.
func (c *LRUCache) Invalidate(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, exists := c.cache[name]; exists {
		delete(c.cache, name)
		c.order.Remove(elem)
	}
}

// Len is the number of cached tags.
func (c *LRUCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
