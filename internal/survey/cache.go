package survey

import (
	"context"
	"sync"
	"time"
)

// CachedSource keeps the last sheet loaded from src for ttl. Failed loads are
// not cached. A zero ttl disables caching.
type CachedSource struct {
	mu       sync.Mutex
	src      Source
	ttl      time.Duration
	sheet    *Sheet
	loadedAt time.Time
	now      func() time.Time
}

func NewCachedSource(src Source, ttl time.Duration) *CachedSource {
	return &CachedSource{src: src, ttl: ttl, now: time.Now}
}

// Load returns the cached sheet while it is fresh. Concurrent callers wait
// for a single reload.
func (c *CachedSource) Load(ctx context.Context) (*Sheet, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sheet != nil && c.now().Sub(c.loadedAt) < c.ttl {
		return c.sheet, nil
	}
	sheet, err := c.src.Load(ctx)
	if err != nil {
		return nil, err
	}
	c.sheet = sheet
	c.loadedAt = c.now()
	return sheet, nil
}

// Invalidate drops the cached sheet.
func (c *CachedSource) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sheet = nil
}

// LoadedAt reports when the cached sheet was loaded, zero when empty.
func (c *CachedSource) LoadedAt() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sheet == nil {
		return time.Time{}
	}
	return c.loadedAt
}
