// Package analytics computes derived financial metrics from the local store
// behind a short-lived materialized projection.
package analytics

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// TTL is how long a built projection stays valid without an explicit
// invalidation.
const TTL = 60 * time.Second

// Cache is the short-lived materialized projection of all transactions.
// Reads may run concurrently; a rebuild happens at most once per staleness.
type Cache struct {
	mu      sync.Mutex
	builtAt time.Time
	entries []Entry

	// FiscalYearStartMonth is the month the fiscal year-to-date ranges
	// start in.
	FiscalYearStartMonth time.Month
}

// NewCache returns an empty cache. The first read builds the projection.
func NewCache(fiscalYearStartMonth time.Month) *Cache {
	return &Cache{FiscalYearStartMonth: fiscalYearStartMonth}
}

// Projection returns the cached entries, rebuilding them from the local
// store when the cache is empty or older than the TTL. The returned slice
// is shared: callers must not modify it.
func (c *Cache) Projection() ([]Entry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.entries != nil && time.Since(c.builtAt) < TTL {
		return c.entries, nil
	}

	start := time.Now()
	entries, err := buildProjection()
	if err != nil {
		return nil, err
	}

	c.entries = entries
	c.builtAt = time.Now()

	log.Debug().
		Int("transactions", len(entries)).
		Dur("duration", time.Since(start)).
		Msg("rebuilt analytics projection")

	return c.entries, nil
}

// Invalidate drops the cached projection. Writers call this after mutating
// the store; the next read rebuilds.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = nil
	c.builtAt = time.Time{}
}
