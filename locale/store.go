package locale

import (
	"context"
	"sync"

	"github.com/pitabwire/util"

	"github.com/pitabwire/clientkit/cache"
	"github.com/pitabwire/clientkit/config"
)

// stateVersion is written with every persisted record.
const stateVersion = 0

// persistedState is the record saved under the store name.
type persistedState struct {
	State struct {
		CurrentLocale string `json:"currentLocale"`
	} `json:"state"`
	Version int `json:"version"`
}

// Listener observes locale changes.
type Listener func(prev, next string)

// Store holds the active locale and persists it so a restart restores it.
type Store struct {
	// writeMu orders in-memory updates with their persisted copy.
	writeMu sync.Mutex
	mu      sync.RWMutex
	current string

	opts      *Options
	persisted cache.Cache[string, persistedState]

	listenerMu sync.Mutex
	listeners  map[uint64]Listener
	nextID     uint64
}

// New builds the store and restores a previously saved value when persistence is enabled.
// A missing, empty or unreadable record leaves the default in place.
func New(ctx context.Context, opts ...Option) *Store {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	s := &Store{
		current:   o.Default,
		opts:      o,
		listeners: make(map[uint64]Listener),
	}

	if o.Persistence != PersistenceEnabled {
		return s
	}

	backend := o.Backend
	if backend == nil {
		util.Log(ctx).WithField("store", o.Name).
			Debug("no persistence backend supplied, locale will not outlive the process")
		backend = cache.NewInMemoryCache()
	}
	s.persisted = cache.NewGenericCache[string, persistedState](backend, nil)

	s.restore(ctx)
	return s
}

// FromConfig builds a store from configuration, persisting to backend.
func FromConfig(ctx context.Context, cfg config.ConfigurationLocale, backend cache.RawCache, opts ...Option) *Store {
	persistence := PersistenceDisabled
	if cfg.LocalePersistenceEnabled() {
		persistence = PersistenceEnabled
	}

	base := []Option{
		WithDefault(cfg.LocaleDefault()),
		WithName(cfg.LocaleStoreName()),
		WithPersistence(persistence),
		WithBackend(backend),
	}
	if pcfg, ok := cfg.(config.ConfigurationPersistence); ok {
		base = append(base, WithMaxAge(pcfg.PersistenceMaxAgeDuration()))
	}

	return New(ctx, append(base, opts...)...)
}

func (s *Store) restore(ctx context.Context) {
	log := util.Log(ctx).WithField("store", s.opts.Name)

	record, found, err := s.persisted.Get(ctx, s.opts.Name)
	if err != nil {
		log.WithError(err).Warn("could not restore persisted locale, using default")
		return
	}
	if !found || record.State.CurrentLocale == "" {
		return
	}

	s.current = record.State.CurrentLocale
	log.WithField("locale", s.current).Debug("restored persisted locale")
}

// Name is the store identifier.
func (s *Store) Name() string {
	return s.opts.Name
}

// Default is the configured fallback locale.
func (s *Store) Default() string {
	return s.opts.Default
}

// Persistence reports whether values are written to a backend.
func (s *Store) Persistence() Persistence {
	return s.opts.Persistence
}

// CurrentLocale returns the active locale. It never fails and is never empty.
func (s *Store) CurrentLocale() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// SetLocale replaces the active locale. The code is not validated; an empty
// code resets to the default. With persistence enabled the value is saved, and
// a failed save is logged rather than returned.
func (s *Store) SetLocale(ctx context.Context, locale string) {
	if locale == "" {
		locale = s.opts.Default
	}

	s.writeMu.Lock()

	s.mu.Lock()
	prev := s.current
	s.current = locale
	s.mu.Unlock()

	if s.persisted != nil {
		var record persistedState
		record.State.CurrentLocale = locale
		record.Version = stateVersion

		if err := s.persisted.Set(ctx, s.opts.Name, record, s.opts.MaxAge); err != nil {
			util.Log(ctx).WithError(err).
				WithField("store", s.opts.Name).
				WithField("locale", locale).
				Warn("could not persist locale")
		}
	}

	s.writeMu.Unlock()

	s.notify(prev, locale)
}

// Subscribe registers fn to run after every SetLocale, on the caller's goroutine.
// The returned func removes the listener.
func (s *Store) Subscribe(fn Listener) func() {
	s.listenerMu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.listenerMu.Unlock()

	return func() {
		s.listenerMu.Lock()
		delete(s.listeners, id)
		s.listenerMu.Unlock()
	}
}

func (s *Store) notify(prev, next string) {
	s.listenerMu.Lock()
	fns := make([]Listener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.listenerMu.Unlock()

	for _, fn := range fns {
		fn(prev, next)
	}
}
