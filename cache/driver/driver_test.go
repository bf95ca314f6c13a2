package driver_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pitabwire/clientkit/cache"
	"github.com/pitabwire/clientkit/cache/driver"
	"github.com/pitabwire/clientkit/cache/file"
	"github.com/pitabwire/clientkit/data"
)

func TestOpen(t *testing.T) {
	ctx := context.Background()

	t.Run("mem", func(t *testing.T) {
		raw, err := driver.Open(ctx, cache.WithDSN("mem://prefs"))
		require.NoError(t, err)
		require.IsType(t, &cache.InMemoryCache{}, raw)
	})

	t.Run("file", func(t *testing.T) {
		raw, err := driver.Open(ctx, cache.WithDSN(data.DSN("file://"+t.TempDir())))
		require.NoError(t, err)
		require.IsType(t, &file.Cache{}, raw)
	})

	t.Run("unsupported", func(t *testing.T) {
		_, err := driver.Open(ctx, cache.WithDSN("ftp://example.com"))
		require.ErrorIs(t, err, cache.ErrUnsupportedDSN)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := driver.Open(ctx)
		require.ErrorIs(t, err, cache.ErrUnsupportedDSN)
	})
}
