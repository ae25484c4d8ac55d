package blog

import (
	"context"
	"sync"
	"time"
)

// SnapshotSource supplies the records a View is built from. *Store
// implements it.
type SnapshotSource interface {
	Snapshot(ctx context.Context) (Collection, error)
}

// ViewCache is an in-memory cache of the View built from the latest
// snapshot, refreshed after a TTL.
type ViewCache struct {
	mu      sync.RWMutex
	view    *View
	fetched time.Time
	ttl     time.Duration
	src     SnapshotSource
	opts    []ViewOption
	onLoad  []func(*View)
}

// NewViewCache creates a ViewCache backed by src. opts are applied to every
// View it builds.
func NewViewCache(src SnapshotSource, ttl time.Duration, opts ...ViewOption) *ViewCache {
	return &ViewCache{src: src, ttl: ttl, opts: opts}
}

// OnLoad registers fn to run, under the cache's write lock, each time a
// fresh View is built.
func (c *ViewCache) OnLoad(fn func(*View)) {
	c.mu.Lock()
	c.onLoad = append(c.onLoad, fn)
	c.mu.Unlock()
}

func (c *ViewCache) valid() bool {
	return c.view != nil && time.Since(c.fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *ViewCache) Invalidate() {
	c.mu.Lock()
	c.view = nil
	c.mu.Unlock()
}

func (c *ViewCache) load(ctx context.Context) error {
	if c.valid() {
		return nil
	}
	coll, err := c.src.Snapshot(ctx)
	if err != nil {
		return err
	}
	c.view = NewView(coll, c.opts...)
	c.fetched = time.Now()
	for _, fn := range c.onLoad {
		fn(c.view)
	}
	return nil
}

// View returns the cached View after ensuring it is fresh. It tries a read
// lock first and only takes the write lock if a reload is needed.
func (c *ViewCache) View(ctx context.Context) (*View, error) {
	c.mu.RLock()
	if c.valid() {
		v := c.view
		c.mu.RUnlock()
		return v, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.load(ctx); err != nil {
		return nil, err
	}
	return c.view, nil
}
