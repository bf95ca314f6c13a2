package workerpool

import (
	"context"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/pitabwire/util"

	"github.com/pitabwire/clientkit/config"
)

const defaultCapacity = 16

// Options defines the worker pool configuration.
type Options struct {
	Capacity       int
	ExpiryDuration time.Duration
	Nonblocking    bool
	PanicHandler   func(any)
	Logger         *util.LogEntry
}

// Option defines a function that configures worker pool options.
type Option func(*Options)

// WithCapacity sets the maximum number of concurrently running tasks.
func WithCapacity(capacity int) Option {
	return func(opts *Options) {
		opts.Capacity = capacity
	}
}

// WithPoolExpiryDuration sets how long an idle worker is kept.
func WithPoolExpiryDuration(duration time.Duration) Option {
	return func(opts *Options) {
		opts.ExpiryDuration = duration
	}
}

// WithPoolNonblocking makes Submit fail with ants.ErrPoolOverload instead of
// waiting when every worker is busy.
func WithPoolNonblocking(nonblocking bool) Option {
	return func(opts *Options) {
		opts.Nonblocking = nonblocking
	}
}

// WithPoolPanicHandler sets a panic handler for the pool.
func WithPoolPanicHandler(handler func(any)) Option {
	return func(opts *Options) {
		opts.PanicHandler = handler
	}
}

// WithPoolLogger sets a logger for the pool.
func WithPoolLogger(logger *util.LogEntry) Option {
	return func(opts *Options) {
		opts.Logger = logger
	}
}

// FromConfig derives pool options from configuration.
func FromConfig(cfg config.ConfigurationWorkerPool) []Option {
	return []Option{
		WithCapacity(cfg.GetCapacity()),
		WithPoolExpiryDuration(cfg.GetExpiryDuration()),
	}
}

// NewPool builds an ants backed pool. Panics inside tasks are logged, not propagated.
func NewPool(ctx context.Context, opts ...Option) (WorkerPool, error) {
	wopts := &Options{
		Capacity:    defaultCapacity,
		Nonblocking: true,
		Logger:      util.Log(ctx),
	}
	for _, opt := range opts {
		opt(wopts)
	}
	if wopts.Capacity <= 0 {
		wopts.Capacity = defaultCapacity
	}
	if wopts.Logger == nil {
		wopts.Logger = util.Log(ctx)
	}
	if wopts.PanicHandler == nil {
		log := wopts.Logger
		wopts.PanicHandler = func(p any) {
			log.WithField("panic", p).Error("worker task panicked")
		}
	}

	antsOpts := []ants.Option{
		ants.WithNonblocking(wopts.Nonblocking),
		ants.WithPanicHandler(wopts.PanicHandler),
		ants.WithLogger(wopts.Logger),
	}
	if wopts.ExpiryDuration > 0 {
		antsOpts = append(antsOpts, ants.WithExpiryDuration(wopts.ExpiryDuration))
	}

	p, err := ants.NewPool(wopts.Capacity, antsOpts...)
	if err != nil {
		return nil, err
	}
	return &pool{pool: p}, nil
}

type pool struct {
	pool *ants.Pool
}

func (w *pool) Submit(ctx context.Context, task func()) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return w.pool.Submit(task)
}

func (w *pool) Running() int {
	return w.pool.Running()
}

func (w *pool) Shutdown() {
	w.pool.Release()
}
