package locale

import (
	"time"

	"github.com/pitabwire/clientkit/cache"
)

// Persistence selects whether the store writes its value to a backend.
type Persistence int

const (
	PersistenceDisabled Persistence = iota
	PersistenceEnabled
)

func (p Persistence) String() string {
	if p == PersistenceEnabled {
		return "enabled"
	}
	return "disabled"
}

const (
	// DefaultLocale is used when nothing else is configured or persisted.
	DefaultLocale = "de"
	// DefaultStoreName is the key the persisted value is saved under.
	DefaultStoreName = "locale-store"
)

// Options holds the store configuration.
type Options struct {
	Default     string
	Name        string
	Persistence Persistence
	Backend     cache.RawCache
	MaxAge      time.Duration
}

// Option configures a Store.
type Option func(*Options)

// WithDefault sets the fallback locale. Empty values are ignored.
func WithDefault(code string) Option {
	return func(o *Options) {
		if code != "" {
			o.Default = code
		}
	}
}

// WithName sets the store identifier used as the persistence key.
func WithName(name string) Option {
	return func(o *Options) {
		if name != "" {
			o.Name = name
		}
	}
}

func WithPersistence(p Persistence) Option {
	return func(o *Options) {
		o.Persistence = p
	}
}

// WithBackend sets where the value is persisted. It has no effect while
// persistence is disabled.
func WithBackend(backend cache.RawCache) Option {
	return func(o *Options) {
		o.Backend = backend
	}
}

// WithMaxAge expires the persisted value after d. Zero keeps it indefinitely.
func WithMaxAge(d time.Duration) Option {
	return func(o *Options) {
		o.MaxAge = d
	}
}

func defaultOptions() *Options {
	return &Options{
		Default:     DefaultLocale,
		Name:        DefaultStoreName,
		Persistence: PersistenceEnabled,
	}
}
