package localcache

import (
	"context"
	"sync"
	"time"

	"techpoints/internal/pkg/clock"
)

// MemoryCache keeps encoded entries in process. Atomic holds the lock for the
// whole callback, so concurrent updates are serialized.
type MemoryCache struct {
	mu    sync.Mutex
	data  map[string][]byte
	clock clock.Clock
}

func NewMemoryCache(clk clock.Clock) *MemoryCache {
	return &MemoryCache{
		data:  make(map[string][]byte),
		clock: clk,
	}
}

func (c *MemoryCache) Get(_ context.Context, key string) (Entry, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.getLocked(key)
}

func (c *MemoryCache) getLocked(key string) (Entry, bool, error) {
	b, ok := c.data[key]
	if !ok {
		return Entry{}, false, nil
	}
	e, err := decodeEntry(b)
	if err != nil {
		return Entry{}, false, err
	}
	if e.Expired(c.clock.Now()) {
		delete(c.data, key)
		return Entry{}, false, nil
	}
	return e, true, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	b, err := encodeEntry(value, ttl, c.clock.Now())
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.data[key] = b
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) Remove(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.data, key)
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) Atomic(ctx context.Context, keys []string, fn func(view AtomicView) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	reads := make(map[string]Entry, len(keys))
	for _, key := range keys {
		e, ok, err := c.getLocked(key)
		if err != nil {
			return err
		}
		if ok {
			reads[key] = e
		}
	}

	view := newStagedView(c.clock.Now(), reads)
	if err := fn(view); err != nil {
		return err
	}

	for _, key := range view.ordered {
		w := view.writes[key]
		if w.data == nil {
			delete(c.data, key)
			continue
		}
		c.data[key] = w.data
	}
	return nil
}
