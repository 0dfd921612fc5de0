package render

import (
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/goliatone/go-view/pkg/engine"
)

// CacheKey identifies one compiled template: the same identity compiled by a
// different adapter is a different entry, so switching adapters never serves
// a stale compiled form.
type CacheKey struct {
	Identity  string
	Extension string
	Adapter   string
}

func (k CacheKey) flight(generation uint64) string {
	return strconv.FormatUint(generation, 10) + "\x00" + k.Identity + "\x00" + k.Extension + "\x00" + k.Adapter
}

// Cache stores compiled templates by key. Lookups for different keys never
// wait on each other's compilation; concurrent misses on one key share a
// single compile. Clear bumps a generation so compiles that were in flight
// when the cache was cleared do not repopulate it.
type Cache struct {
	mu         sync.RWMutex
	generation uint64
	entries    map[CacheKey]engine.Template

	flights singleflight.Group
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{
		entries: make(map[CacheKey]engine.Template),
	}
}

// Get returns the compiled template stored under key.
func (c *Cache) Get(key CacheKey) (engine.Template, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	tpl, ok := c.entries[key]
	return tpl, ok
}

// GetOrCompile returns the entry for key, running compile on a miss. hit
// reports whether the entry was already cached. Compile errors are not
// cached.
func (c *Cache) GetOrCompile(key CacheKey, compile func() (engine.Template, error)) (tpl engine.Template, hit bool, err error) {
	c.mu.RLock()
	tpl, ok := c.entries[key]
	generation := c.generation
	c.mu.RUnlock()
	if ok {
		return tpl, true, nil
	}

	value, err, _ := c.flights.Do(key.flight(generation), func() (any, error) {
		if existing, ok := c.Get(key); ok {
			return existing, nil
		}
		compiled, err := compile()
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		defer c.mu.Unlock()
		if c.generation != generation {
			return compiled, nil
		}
		if existing, ok := c.entries[key]; ok {
			return existing, nil
		}
		c.entries[key] = compiled
		return compiled, nil
	})
	if err != nil {
		return nil, false, err
	}
	return value.(engine.Template), false, nil
}

// Clear empties the cache. Once it returns no lookup observes an entry that
// existed before the call.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[CacheKey]engine.Template)
	c.generation++
}

// Forget drops every entry compiled for identity, whatever the adapter, and
// returns how many entries were removed.
func (c *Cache) Forget(identity string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key := range c.entries {
		if key.Identity == identity {
			delete(c.entries, key)
			removed++
		}
	}
	if removed > 0 {
		c.generation++
	}
	return removed
}

// Len returns the number of cached templates.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
