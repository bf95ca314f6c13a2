package locale_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/pitabwire/clientkit/cache"
	"github.com/pitabwire/clientkit/cache/file"
	"github.com/pitabwire/clientkit/config"
	"github.com/pitabwire/clientkit/data"
	"github.com/pitabwire/clientkit/locale"
)

type StoreSuite struct {
	suite.Suite
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}

type brokenBackend struct {
	cache.RawCache
	getErr error
	setErr error
}

func (b brokenBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if b.getErr != nil {
		return nil, false, b.getErr
	}
	return b.RawCache.Get(ctx, key)
}

func (b brokenBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if b.setErr != nil {
		return b.setErr
	}
	return b.RawCache.Set(ctx, key, value, ttl)
}

// gatedBackend holds the first Set until release is closed.
type gatedBackend struct {
	cache.RawCache
	calls   atomic.Int32
	entered chan struct{}
	release chan struct{}
}

func (b *gatedBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if b.calls.Add(1) == 1 {
		close(b.entered)
		<-b.release
	}
	return b.RawCache.Set(ctx, key, value, ttl)
}

func (s *StoreSuite) TestDefaults() {
	ctx := context.Background()

	testCases := []struct {
		name     string
		opts     []locale.Option
		expected string
	}{
		{name: "built in default", expected: locale.DefaultLocale},
		{name: "configured default", opts: []locale.Option{locale.WithDefault("en")}, expected: "en"},
		{name: "empty default ignored", opts: []locale.Option{locale.WithDefault("")}, expected: locale.DefaultLocale},
		{
			name:     "persistence disabled",
			opts:     []locale.Option{locale.WithPersistence(locale.PersistenceDisabled), locale.WithDefault("sw")},
			expected: "sw",
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			store := locale.New(ctx, tc.opts...)
			s.Equal(tc.expected, store.CurrentLocale())
			s.Equal(tc.expected, store.Default())
		})
	}
}

func (s *StoreSuite) TestSetThenGet() {
	ctx := context.Background()
	store := locale.New(ctx, locale.WithBackend(cache.NewInMemoryCache()))

	for _, code := range []string{"en", "fr", "de-AT", "not-a-real-code", "x"} {
		store.SetLocale(ctx, code)
		s.Equal(code, store.CurrentLocale())
	}
}

func (s *StoreSuite) TestEmptyResetsToDefault() {
	ctx := context.Background()
	store := locale.New(ctx, locale.WithDefault("en"))

	store.SetLocale(ctx, "fr")
	store.SetLocale(ctx, "")
	s.Equal("en", store.CurrentLocale())
}

func (s *StoreSuite) TestPersistsAcrossRestarts() {
	ctx := context.Background()
	dsn := data.DSN("file://" + s.T().TempDir())

	open := func() *locale.Store {
		backend, err := file.New(ctx, cache.WithDSN(dsn))
		s.Require().NoError(err)
		return locale.New(ctx, locale.WithBackend(backend), locale.WithName("prefs"))
	}

	first := open()
	s.Equal(locale.DefaultLocale, first.CurrentLocale())
	first.SetLocale(ctx, "en")

	second := open()
	s.Equal("en", second.CurrentLocale())
}

func (s *StoreSuite) TestPersistedRecordFormat() {
	ctx := context.Background()
	backend := cache.NewInMemoryCache()

	store := locale.New(ctx, locale.WithBackend(backend))
	store.SetLocale(ctx, "en")

	raw, found, err := backend.Get(ctx, locale.DefaultStoreName)
	s.Require().NoError(err)
	s.Require().True(found)
	s.JSONEq(`{"state":{"currentLocale":"en"},"version":0}`, string(raw))
}

func (s *StoreSuite) TestRestoreEdgeCases() {
	ctx := context.Background()

	testCases := []struct {
		name     string
		stored   string
		expected string
	}{
		{name: "valid record", stored: `{"state":{"currentLocale":"fr"},"version":0}`, expected: "fr"},
		{name: "empty locale", stored: `{"state":{"currentLocale":""},"version":0}`, expected: locale.DefaultLocale},
		{name: "corrupt record", stored: `{"state":`, expected: locale.DefaultLocale},
		{name: "unrelated json", stored: `{"theme":"dark"}`, expected: locale.DefaultLocale},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			backend := cache.NewInMemoryCache()
			s.Require().NoError(backend.Set(ctx, locale.DefaultStoreName, []byte(tc.stored), 0))

			store := locale.New(ctx, locale.WithBackend(backend))
			s.Equal(tc.expected, store.CurrentLocale())
		})
	}
}

func (s *StoreSuite) TestDisabledPersistenceIgnoresBackend() {
	ctx := context.Background()
	backend := cache.NewInMemoryCache()
	s.Require().NoError(backend.Set(ctx, locale.DefaultStoreName,
		[]byte(`{"state":{"currentLocale":"fr"},"version":0}`), 0))

	store := locale.New(ctx, locale.WithBackend(backend), locale.WithPersistence(locale.PersistenceDisabled))
	s.Equal(locale.DefaultLocale, store.CurrentLocale())
	s.Equal(locale.PersistenceDisabled, store.Persistence())

	store.SetLocale(ctx, "en")
	raw, _, err := backend.Get(ctx, locale.DefaultStoreName)
	s.Require().NoError(err)
	s.Contains(string(raw), "fr")
}

func (s *StoreSuite) TestBackendFailuresAreSwallowed() {
	ctx := context.Background()
	backend := brokenBackend{
		RawCache: cache.NewInMemoryCache(),
		getErr:   errors.New("read refused"),
		setErr:   errors.New("disk full"),
	}

	store := locale.New(ctx, locale.WithBackend(backend), locale.WithDefault("en"))
	s.Equal("en", store.CurrentLocale())

	store.SetLocale(ctx, "fr")
	s.Equal("fr", store.CurrentLocale())
}

func (s *StoreSuite) TestConcurrentSetsPersistLastWrite() {
	ctx := context.Background()
	backend := &gatedBackend{
		RawCache: cache.NewInMemoryCache(),
		entered:  make(chan struct{}),
		release:  make(chan struct{}),
	}
	store := locale.New(ctx, locale.WithBackend(backend))

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		store.SetLocale(ctx, "en")
	}()
	<-backend.entered

	go func() {
		defer wg.Done()
		store.SetLocale(ctx, "fr")
	}()
	time.Sleep(20 * time.Millisecond)
	close(backend.release)
	wg.Wait()

	restarted := locale.New(ctx, locale.WithBackend(backend.RawCache))
	s.Equal(store.CurrentLocale(), restarted.CurrentLocale())
	s.Equal("fr", restarted.CurrentLocale())
}

func (s *StoreSuite) TestSubscribe() {
	ctx := context.Background()
	store := locale.New(ctx)

	var changes []string
	unsubscribe := store.Subscribe(func(prev, next string) {
		changes = append(changes, fmt.Sprintf("%s->%s", prev, next))
	})

	store.SetLocale(ctx, "en")
	store.SetLocale(ctx, "en")
	unsubscribe()
	store.SetLocale(ctx, "fr")

	s.Equal([]string{"de->en", "en->en"}, changes)
}

func (s *StoreSuite) TestFromConfig() {
	ctx := context.Background()
	backend := cache.NewInMemoryCache()

	cfg := &config.ConfigurationDefault{
		LocaleDefaultValue:   "sw",
		LocalePersist:        true,
		LocaleStoreNameValue: "ui-locale",
		PersistenceMaxAge:    "1h",
	}

	store := locale.FromConfig(ctx, cfg, backend)
	s.Equal("sw", store.CurrentLocale())
	s.Equal("ui-locale", store.Name())

	store.SetLocale(ctx, "en")
	exists, err := backend.Exists(ctx, "ui-locale")
	s.Require().NoError(err)
	s.True(exists)

	cfg.LocalePersist = false
	s.Equal(locale.PersistenceDisabled, locale.FromConfig(ctx, cfg, backend).Persistence())
	s.Equal("disabled", locale.PersistenceDisabled.String())
	s.Equal("enabled", locale.PersistenceEnabled.String())
}
