package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pitabwire/clientkit/cache"
)

const (
	connectionTimeout = 5 * time.Second
	scanBatch         = 100
)

// Cache is a Redis-backed RawCache. Keys are stored under "<name>:" so several
// stores can share one database.
type Cache struct {
	client *redis.Client
	prefix string
	maxAge time.Duration
}

// New connects to the redis:// DSN in opts and verifies the connection.
func New(ctx context.Context, opts ...cache.Option) (cache.RawCache, error) {
	cacheOpts := cache.NewOptions(opts...)

	redisOpts, err := redis.ParseURL(cacheOpts.DSN.AsRedis().String())
	if err != nil {
		return nil, fmt.Errorf("parse redis dsn: %w", err)
	}

	client := redis.NewClient(redisOpts)

	pingCtx, cancel := context.WithTimeout(ctx, connectionTimeout)
	defer cancel()

	if err = client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &Cache{
		client: client,
		prefix: cacheOpts.Name + ":",
		maxAge: cacheOpts.MaxAge,
	}, nil
}

func (rc *Cache) key(key string) string {
	return rc.prefix + key
}

func (rc *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := rc.client.Get(ctx, rc.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return val, true, nil
}

// Set stores the value; a non-positive ttl falls back to the configured max age.
func (rc *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = rc.maxAge
	}
	return rc.client.Set(ctx, rc.key(key), value, ttl).Err()
}

func (rc *Cache) Delete(ctx context.Context, key string) error {
	return rc.client.Del(ctx, rc.key(key)).Err()
}

func (rc *Cache) Exists(ctx context.Context, key string) (bool, error) {
	count, err := rc.client.Exists(ctx, rc.key(key)).Result()
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Flush deletes only the keys under this cache's prefix.
func (rc *Cache) Flush(ctx context.Context) error {
	iter := rc.client.Scan(ctx, 0, rc.prefix+"*", scanBatch).Iterator()
	for iter.Next(ctx) {
		if err := rc.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

func (rc *Cache) Close() error {
	return rc.client.Close()
}
