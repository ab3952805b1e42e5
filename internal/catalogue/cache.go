// Package catalogue caches catalogue listings per category facet.
//
// Reads are deduplicated with singleflight and committed under a per-key
// generation counter: a fetch may only publish its result if no newer fetch
// or invalidation was issued for that key while it was in flight. A stale
// response is returned to its own caller but never overwrites newer state.
package catalogue

import (
	"context"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/billionaireobi/adaladesigns/internal/models"
)

// Fetcher is the upstream listing call, satisfied by *api.Client.
type Fetcher interface {
	ListDesigns(ctx context.Context, category string) ([]models.Design, error)
}

type entry struct {
	gen       uint64 // generation of the newest issued fetch or invalidation
	committed bool
	designs   []models.Design
	fetchedAt time.Time
}

type Cache struct {
	fetch Fetcher
	ttl   time.Duration

	mu      sync.Mutex
	entries map[string]*entry
	group   singleflight.Group
}

// New builds a cache over fetch. Entries older than ttl are refetched on the
// next read; a ttl of zero disables caching and turns the cache into a
// pass-through that still enforces the commit ordering.
func New(fetch Fetcher, ttl time.Duration) *Cache {
	return &Cache{
		fetch:   fetch,
		ttl:     ttl,
		entries: make(map[string]*entry),
	}
}

// Get returns the designs for a category facet; the empty category is the
// full catalogue. The returned slice is the caller's to keep.
func (c *Cache) Get(ctx context.Context, category string) ([]models.Design, error) {
	c.mu.Lock()
	e := c.ensure(category)
	if e.committed && time.Since(e.fetchedAt) < c.ttl {
		designs := slices.Clone(e.designs)
		c.mu.Unlock()
		return designs, nil
	}
	c.mu.Unlock()

	v, err, _ := c.group.Do(category, func() (any, error) {
		c.mu.Lock()
		e := c.ensure(category)
		e.gen++
		gen := e.gen
		c.mu.Unlock()

		designs, err := c.fetch.ListDesigns(ctx, category)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		defer c.mu.Unlock()
		if e.gen == gen {
			e.designs = designs
			e.committed = true
			e.fetchedAt = time.Now()
		}
		return designs, nil
	})
	if err != nil {
		return nil, err
	}
	return slices.Clone(v.([]models.Design)), nil
}

// Invalidate drops every committed entry and supersedes in-flight fetches,
// so results read before a mutation can never be published after it. Admin
// create/update/delete call this.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, e := range c.entries {
		e.gen++
		e.committed = false
		e.designs = nil
		c.group.Forget(key)
	}
}

// caller must hold mu
func (c *Cache) ensure(key string) *entry {
	e, ok := c.entries[key]
	if !ok {
		e = &entry{}
		c.entries[key] = e
	}
	return e
}
