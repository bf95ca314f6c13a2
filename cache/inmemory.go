package cache

import (
	"context"
	"sync"
	"time"
)

type inMemoryItem struct {
	value      []byte
	expiration time.Time
}

func (i inMemoryItem) expired(now time.Time) bool {
	return !i.expiration.IsZero() && now.After(i.expiration)
}

// InMemoryCache is a process local RawCache. Values do not outlive the process.
type InMemoryCache struct {
	mu    sync.RWMutex
	items map[string]inMemoryItem
	now   func() time.Time
}

// NewInMemoryCache creates a new in-memory cache.
func NewInMemoryCache() RawCache {
	return &InMemoryCache{
		items: make(map[string]inMemoryItem),
		now:   time.Now,
	}
}

func (c *InMemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	item, ok := c.items[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false, nil
	}

	if item.expired(c.now()) {
		c.mu.Lock()
		// a Set may have replaced the entry since the read lock was released
		if current, still := c.items[key]; still && current.expired(c.now()) {
			delete(c.items, key)
		}
		c.mu.Unlock()
		return nil, false, nil
	}

	out := make([]byte, len(item.value))
	copy(out, item.value)
	return out, true, nil
}

func (c *InMemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	stored := make([]byte, len(value))
	copy(stored, value)

	item := inMemoryItem{value: stored}
	if ttl > 0 {
		item.expiration = c.now().Add(ttl)
	}

	c.mu.Lock()
	c.items[key] = item
	c.mu.Unlock()
	return nil
}

func (c *InMemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
	return nil
}

func (c *InMemoryCache) Exists(ctx context.Context, key string) (bool, error) {
	_, found, err := c.Get(ctx, key)
	return found, err
}

func (c *InMemoryCache) Flush(_ context.Context) error {
	c.mu.Lock()
	c.items = make(map[string]inMemoryItem)
	c.mu.Unlock()
	return nil
}

// Close is a no-op; the map is released with the cache.
func (c *InMemoryCache) Close() error {
	return nil
}
