// Package driver opens the RawCache backend a connection string names.
package driver

import (
	"context"
	"fmt"

	"github.com/pitabwire/clientkit/cache"
	"github.com/pitabwire/clientkit/cache/file"
	"github.com/pitabwire/clientkit/cache/jetstream"
	"github.com/pitabwire/clientkit/cache/redis"
	"github.com/pitabwire/clientkit/cache/valkey"
)

// Open selects a backend from the DSN scheme:
//
//	mem://     process local, lost on exit
//	file://    one file per key under the given directory
//	redis://   go-redis client
//	valkey://  valkey-go client
//	nats://    JetStream KeyValue bucket
func Open(ctx context.Context, opts ...cache.Option) (cache.RawCache, error) {
	dsn := cache.NewOptions(opts...).DSN

	switch {
	case dsn.IsMem():
		return cache.NewInMemoryCache(), nil
	case dsn.IsFile():
		return file.New(ctx, opts...)
	case dsn.IsRedis():
		return redis.New(ctx, opts...)
	case dsn.IsValkey():
		return valkey.New(ctx, opts...)
	case dsn.IsNats():
		return jetstream.New(ctx, opts...)
	default:
		return nil, fmt.Errorf("%w: %q", cache.ErrUnsupportedDSN, dsn)
	}
}
