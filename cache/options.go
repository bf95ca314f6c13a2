package cache

import (
	"time"

	"github.com/pitabwire/clientkit/data"
)

// Option configures a backend connection.
type Option func(*Options)

// Options holds backend connection configuration.
type Options struct {
	DSN    data.DSN
	Name   string
	MaxAge time.Duration
}

// NewOptions applies opts over the defaults shared by every backend.
func NewOptions(opts ...Option) *Options {
	o := &Options{Name: "clientkit"}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func WithDSN(dsn data.DSN) Option {
	return func(o *Options) {
		o.DSN = dsn
	}
}

// WithName sets the bucket, directory or key prefix the backend scopes its entries under.
func WithName(name string) Option {
	return func(o *Options) {
		o.Name = name
	}
}

// WithMaxAge sets the default expiry for entries stored without an explicit ttl.
// Zero keeps entries forever.
func WithMaxAge(maxAge time.Duration) Option {
	return func(o *Options) {
		o.MaxAge = maxAge
	}
}
