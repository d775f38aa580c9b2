package revision

import (
	"context"
	"sync"
	"time"

	"github.com/spicyhq/peppers/internal/clock"
)

// CachedReader fronts Tracker reads with a short-lived per-tenant cache so
// many streaming connections on one process share a single backend read per
// TTL window. An optimization only: other processes still poll independently,
// and mutating handlers invalidate the local entry so their own subscribers
// catch up on the next tick.
type CachedReader struct {
	tracker Tracker
	ttl     func() time.Duration
	clock   clock.Clock

	mu      sync.Mutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	value     int64
	fetchedAt time.Time
}

func NewCachedReader(tracker Tracker, ttl func() time.Duration, clk clock.Clock) *CachedReader {
	if clk == nil {
		clk = clock.NewSystemClock()
	}
	return &CachedReader{
		tracker: tracker,
		ttl:     ttl,
		clock:   clk,
		entries: make(map[string]cacheEntry),
	}
}

func (c *CachedReader) Get(ctx context.Context, tenantID string) (int64, error) {
	ttl := c.ttl()
	now := c.clock.Now()

	c.mu.Lock()
	entry, ok := c.entries[tenantID]
	c.mu.Unlock()
	if ok && ttl > 0 && now.Sub(entry.fetchedAt) < ttl {
		return entry.value, nil
	}

	value, err := c.tracker.Get(ctx, tenantID)
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	c.entries[tenantID] = cacheEntry{value: value, fetchedAt: now}
	c.mu.Unlock()
	return value, nil
}

// Invalidate drops the cached entry so the next Get hits the backend.
func (c *CachedReader) Invalidate(tenantID string) {
	c.mu.Lock()
	delete(c.entries, tenantID)
	c.mu.Unlock()
}
