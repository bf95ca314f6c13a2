package cache

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

type registry struct {
	mu       sync.RWMutex
	backends map[string]RawCache
}

// NewManager returns an empty backend registry.
func NewManager() Manager {
	return &registry{backends: make(map[string]RawCache)}
}

func (r *registry) AddCache(name string, raw RawCache) {
	r.mu.Lock()
	r.backends[name] = raw
	r.mu.Unlock()
}

func (r *registry) GetRawCache(name string) (RawCache, bool) {
	r.mu.RLock()
	raw, ok := r.backends[name]
	r.mu.RUnlock()
	return raw, ok
}

// Close closes backends in name order and joins their errors.
func (r *registry) Close() error {
	r.mu.Lock()
	backends := r.backends
	r.backends = make(map[string]RawCache)
	r.mu.Unlock()

	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)

	var errs []error
	for _, name := range names {
		if err := backends[name].Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}
