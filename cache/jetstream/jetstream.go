package jetstream

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/pitabwire/clientkit/cache"
)

// Cache is a RawCache on a NATS JetStream KeyValue bucket named after the cache.
// Expiry is bucket wide; per call ttls are ignored.
type Cache struct {
	conn   *nats.Conn
	client nats.KeyValue
}

// New connects to the nats:// DSN in opts and opens, or creates, the bucket.
func New(_ context.Context, opts ...cache.Option) (cache.RawCache, error) {
	cacheOpts := cache.NewOptions(opts...)

	natsConn, err := nats.Connect(cacheOpts.DSN.String())
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}

	client, err := openBucket(natsConn, cacheOpts)
	if err != nil {
		natsConn.Close()
		return nil, err
	}

	return &Cache{
		conn:   natsConn,
		client: client,
	}, nil
}

func openBucket(natsConn *nats.Conn, cacheOpts *cache.Options) (nats.KeyValue, error) {
	js, err := natsConn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream context: %w", err)
	}

	client, err := js.CreateKeyValue(&nats.KeyValueConfig{
		Bucket: cacheOpts.Name,
		TTL:    cacheOpts.MaxAge,
	})
	if err != nil {
		var apiErr *nats.APIError
		if !errors.As(err, &apiErr) || apiErr.ErrorCode != nats.JSErrCodeStreamNameInUse {
			return nil, fmt.Errorf("create bucket %s: %w", cacheOpts.Name, err)
		}

		// bucket already exists
		client, err = js.KeyValue(cacheOpts.Name)
		if err != nil {
			return nil, fmt.Errorf("open bucket %s: %w", cacheOpts.Name, err)
		}
	}

	if _, err = client.Status(); err != nil {
		return nil, err
	}
	return client, nil
}

func (jc *Cache) Get(_ context.Context, key string) ([]byte, bool, error) {
	resp, err := jc.client.Get(key)
	if err != nil {
		if errors.Is(err, nats.ErrKeyNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return resp.Value(), true, nil
}

func (jc *Cache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	_, err := jc.client.Put(key, value)
	return err
}

func (jc *Cache) Delete(_ context.Context, key string) error {
	err := jc.client.Delete(key)
	if errors.Is(err, nats.ErrKeyNotFound) {
		return nil
	}
	return err
}

func (jc *Cache) Exists(ctx context.Context, key string) (bool, error) {
	_, found, err := jc.Get(ctx, key)
	return found, err
}

func (jc *Cache) Flush(_ context.Context) error {
	keys, err := jc.client.Keys()
	if err != nil {
		if errors.Is(err, nats.ErrNoKeysFound) {
			return nil
		}
		return err
	}

	for _, key := range keys {
		if err = jc.client.Delete(key); err != nil {
			return err
		}
	}
	return nil
}

func (jc *Cache) Close() error {
	jc.conn.Close()
	return nil
}
