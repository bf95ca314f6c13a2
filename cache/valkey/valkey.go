package valkey

import (
	"context"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/pitabwire/clientkit/cache"
)

const (
	connectionTimeout = 5 * time.Second
	scanBatch         = 100
)

// Cache is a Valkey-backed RawCache using the official client.
// Keys are stored under "<name>:".
type Cache struct {
	client valkey.Client
	prefix string
	maxAge time.Duration
}

// New connects to the valkey:// or redis:// DSN in opts and verifies the connection.
func New(ctx context.Context, opts ...cache.Option) (cache.RawCache, error) {
	cacheOpts := cache.NewOptions(opts...)

	valkeyOpts, err := valkey.ParseURL(cacheOpts.DSN.AsRedis().String())
	if err != nil {
		return nil, fmt.Errorf("parse valkey dsn: %w", err)
	}

	client, err := valkey.NewClient(valkeyOpts)
	if err != nil {
		return nil, fmt.Errorf("connect valkey: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectionTimeout)
	defer cancel()

	if pingErr := client.Do(pingCtx, client.B().Ping().Build()).Error(); pingErr != nil {
		client.Close()
		return nil, fmt.Errorf("ping valkey: %w", pingErr)
	}

	return &Cache{
		client: client,
		prefix: cacheOpts.Name + ":",
		maxAge: cacheOpts.MaxAge,
	}, nil
}

func (vc *Cache) key(key string) string {
	return vc.prefix + key
}

func (vc *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	resp := vc.client.Do(ctx, vc.client.B().Get().Key(vc.key(key)).Build())

	if err := resp.Error(); err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, false, nil
		}
		return nil, false, err
	}

	val, err := resp.AsBytes()
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

// Set stores the value; a non-positive ttl falls back to the configured max age,
// and a zero max age stores without expiry.
func (vc *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = vc.maxAge
	}

	if ttl <= 0 {
		cmd := vc.client.B().Set().Key(vc.key(key)).Value(valkey.BinaryString(value)).Build()
		return vc.client.Do(ctx, cmd).Error()
	}

	// EX takes whole seconds
	seconds := int64(ttl.Seconds())
	if seconds == 0 {
		seconds = 1
	}
	cmd := vc.client.B().Set().Key(vc.key(key)).Value(valkey.BinaryString(value)).ExSeconds(seconds).Build()
	return vc.client.Do(ctx, cmd).Error()
}

func (vc *Cache) Delete(ctx context.Context, key string) error {
	return vc.client.Do(ctx, vc.client.B().Del().Key(vc.key(key)).Build()).Error()
}

func (vc *Cache) Exists(ctx context.Context, key string) (bool, error) {
	resp := vc.client.Do(ctx, vc.client.B().Exists().Key(vc.key(key)).Build())
	if err := resp.Error(); err != nil {
		return false, err
	}

	count, err := resp.AsInt64()
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Flush deletes only the keys under this cache's prefix.
func (vc *Cache) Flush(ctx context.Context) error {
	var cursor uint64
	for {
		cmd := vc.client.B().Scan().Cursor(cursor).Match(vc.prefix + "*").Count(scanBatch).Build()
		entry, err := vc.client.Do(ctx, cmd).AsScanEntry()
		if err != nil {
			return err
		}

		if len(entry.Elements) > 0 {
			delCmd := vc.client.B().Del().Key(entry.Elements...).Build()
			if err = vc.client.Do(ctx, delCmd).Error(); err != nil {
				return err
			}
		}

		cursor = entry.Cursor
		if cursor == 0 {
			return nil
		}
	}
}

func (vc *Cache) Close() error {
	vc.client.Close()
	return nil
}
