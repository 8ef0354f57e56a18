// Package cache provides the read cache of loaded records and the
// invalidation sinks that keep it, other instances and the front-end fresh.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"healthops/internal/domain"
)

// RecordCache is a process-local LRU of loaded records keyed by record tag
// ("tag:payer:<pubId>"). Entries expire after a TTL even without an
// invalidation, which bounds staleness when a NOTIFY is missed.
//
// Every tag invalidation bumps one generation counter. Add refuses values
// loaded under an older generation.
type RecordCache struct {
	mu  sync.Mutex
	gen uint64
	lru *expirable.LRU[string, any]
}

// NewRecordCache creates a cache holding at most size entries for ttl.
func NewRecordCache(size int, ttl time.Duration) *RecordCache {
	if size <= 0 {
		size = 1024
	}
	return &RecordCache{lru: expirable.NewLRU[string, any](size, nil, ttl)}
}

// Get implements domain.ReadCache.
func (c *RecordCache) Get(key string) (any, bool) {
	return c.lru.Get(key)
}

// Generation implements domain.ReadCache.
func (c *RecordCache) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

// Add implements domain.ReadCache.
func (c *RecordCache) Add(key string, value any, gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return false
	}
	c.lru.Add(key, value)
	return true
}

// Invalidate evicts the entry of a tag key. Path keys do not address records.
func (c *RecordCache) Invalidate(_ context.Context, key domain.CacheKey) error {
	if key.Kind != domain.KindTag {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.lru.Remove(key.String())
	return nil
}

// Len returns the number of cached entries.
func (c *RecordCache) Len() int {
	return c.lru.Len()
}

var (
	_ domain.ReadCache   = (*RecordCache)(nil)
	_ domain.Invalidator = (*RecordCache)(nil)
)
