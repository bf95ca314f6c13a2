package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pitabwire/clientkit/internal"
)

// ErrUnsupportedDSN is returned when no backend understands a connection string.
var ErrUnsupportedDSN = errors.New("unsupported persistence dsn")

// Cache is a typed key-value store with automatic serialization.
type Cache[K comparable, V any] interface {
	// Get retrieves an item, reporting whether it was present.
	Get(ctx context.Context, key K) (V, bool, error)

	// Set stores an item. A ttl of zero keeps it until deleted.
	Set(ctx context.Context, key K, value V, ttl time.Duration) error

	Delete(ctx context.Context, key K) error
	Exists(ctx context.Context, key K) (bool, error)
	Flush(ctx context.Context) error
	Close() error
}

// RawCache is the byte level contract every backend implements.
type RawCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Flush(ctx context.Context) error
	Close() error
}

// GenericCache wraps a RawCache and provides automatic serialization.
type GenericCache[K comparable, V any] struct {
	raw     RawCache
	keyFunc func(K) string
}

// NewGenericCache creates a typed view over raw. A nil keyFunc formats keys with %v.
func NewGenericCache[K comparable, V any](raw RawCache, keyFunc func(K) string) Cache[K, V] {
	if keyFunc == nil {
		keyFunc = func(k K) string {
			return fmt.Sprintf("%v", k)
		}
	}
	return &GenericCache[K, V]{
		raw:     raw,
		keyFunc: keyFunc,
	}
}

func (g *GenericCache[K, V]) Get(ctx context.Context, key K) (V, bool, error) {
	var zero V
	data, found, err := g.raw.Get(ctx, g.keyFunc(key))
	if err != nil || !found {
		return zero, found, err
	}

	var value V
	if unmarshalErr := internal.Unmarshal(data, &value); unmarshalErr != nil {
		return zero, false, fmt.Errorf("decode %v: %w", key, unmarshalErr)
	}
	return value, true, nil
}

func (g *GenericCache[K, V]) Set(ctx context.Context, key K, value V, ttl time.Duration) error {
	data, err := internal.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %v: %w", key, err)
	}
	return g.raw.Set(ctx, g.keyFunc(key), data, ttl)
}

func (g *GenericCache[K, V]) Delete(ctx context.Context, key K) error {
	return g.raw.Delete(ctx, g.keyFunc(key))
}

func (g *GenericCache[K, V]) Exists(ctx context.Context, key K) (bool, error) {
	return g.raw.Exists(ctx, g.keyFunc(key))
}

func (g *GenericCache[K, V]) Flush(ctx context.Context) error {
	return g.raw.Flush(ctx)
}

func (g *GenericCache[K, V]) Close() error {
	return g.raw.Close()
}
