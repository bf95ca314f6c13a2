package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pitabwire/util"

	"github.com/pitabwire/clientkit/cache"
	"github.com/pitabwire/clientkit/cache/driver"
	"github.com/pitabwire/clientkit/config"
	"github.com/pitabwire/clientkit/idgen"
	"github.com/pitabwire/clientkit/locale"
	"github.com/pitabwire/clientkit/plz"
	"github.com/pitabwire/clientkit/tracking"
	"github.com/pitabwire/clientkit/version"
	"github.com/pitabwire/clientkit/workerpool"
)

const (
	persistenceCacheName = "clientkit"
	trackerDrainTimeout  = 5 * time.Second
)

var errUsage = errors.New("invalid arguments, see clientkit help")

type app struct {
	cfg *config.ConfigurationDefault
	out io.Writer

	caches  cache.Manager
	store   *locale.Store
	pool    workerpool.WorkerPool
	tracker tracking.Tracker
	closed  bool
}

func newApp(cfg *config.ConfigurationDefault, out io.Writer) *app {
	return &app{
		cfg:    cfg,
		out:    out,
		caches: cache.NewManager(),
	}
}

// Close drains queued tracking events and releases backends. Safe to call twice.
func (a *app) Close(ctx context.Context) {
	if a.closed {
		return
	}
	a.closed = true

	if closer, ok := a.tracker.(interface{ Close(context.Context) error }); ok {
		drainCtx, cancel := context.WithTimeout(ctx, trackerDrainTimeout)
		if err := closer.Close(drainCtx); err != nil {
			util.Log(ctx).WithError(err).Warn("tracking events still queued at exit")
		}
		cancel()
	}
	if a.pool != nil {
		a.pool.Shutdown()
	}
	if err := a.caches.Close(); err != nil {
		util.Log(ctx).WithError(err).Warn("could not close persistence backend")
	}
}

func (a *app) localeStore(ctx context.Context) (*locale.Store, error) {
	if a.store != nil {
		return a.store, nil
	}

	var backend cache.RawCache
	if a.cfg.LocalePersistenceEnabled() {
		raw, err := a.persistence(ctx)
		if err != nil {
			return nil, err
		}
		backend = raw
	}

	a.store = locale.FromConfig(ctx, a.cfg, backend)
	return a.store, nil
}

// persistence returns the registered persistence backend, opening it on first use.
func (a *app) persistence(ctx context.Context) (cache.RawCache, error) {
	if raw, ok := a.caches.GetRawCache(persistenceCacheName); ok {
		return raw, nil
	}

	raw, err := driver.Open(ctx,
		cache.WithDSN(a.cfg.PersistenceDSN()),
		cache.WithName(persistenceCacheName),
		cache.WithMaxAge(a.cfg.PersistenceMaxAgeDuration()))
	if err != nil {
		return nil, fmt.Errorf("open locale persistence: %w", err)
	}
	a.caches.AddCache(persistenceCacheName, raw)
	return raw, nil
}

func (a *app) trackerFor(ctx context.Context) (tracking.Tracker, error) {
	if a.tracker != nil {
		return a.tracker, nil
	}

	store, err := a.localeStore(ctx)
	if err != nil {
		return nil, err
	}

	var pool workerpool.WorkerPool
	if a.cfg.TrackerHostURL() != "" {
		poolOpts := append(workerpool.FromConfig(a.cfg), workerpool.WithPoolNonblocking(false))
		pool, err = workerpool.NewPool(ctx, poolOpts...)
		if err != nil {
			return nil, fmt.Errorf("create worker pool: %w", err)
		}
		a.pool = pool
	}

	a.tracker = tracking.FromConfig(ctx, a.cfg, store, pool)
	return a.tracker, nil
}

func (a *app) cmdLocale(ctx context.Context, args []string) error {
	sub := "get"
	if len(args) > 0 {
		sub = args[0]
	}

	switch sub {
	case "get":
		store, err := a.localeStore(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(a.out, store.CurrentLocale())
		return nil

	case "set":
		if len(args) < 2 {
			return fmt.Errorf("%w: locale set needs a code", errUsage)
		}
		store, err := a.localeStore(ctx)
		if err != nil {
			return err
		}
		code := args[1]
		if _, ok := locale.Normalize(code); !ok && code != "" {
			util.Log(ctx).WithField("locale", code).Warn("locale is not a well formed language tag")
		}
		store.SetLocale(ctx, code)
		fmt.Fprintln(a.out, store.CurrentLocale())
		return nil

	case "negotiate":
		if len(args) < 2 {
			return fmt.Errorf("%w: locale negotiate needs an Accept-Language value", errUsage)
		}
		fmt.Fprintln(a.out, locale.Negotiate(args[1], a.cfg.LocaleLanguages()))
		return nil

	case "translate":
		if len(args) < 2 {
			return fmt.Errorf("%w: locale translate needs a message id", errUsage)
		}
		variables, err := parsePairs(args[2:])
		if err != nil {
			return err
		}
		store, err := a.localeStore(ctx)
		if err != nil {
			return err
		}
		translator, err := locale.NewTranslator(store, a.cfg.LocaleTranslations(), a.cfg.LocaleLanguages()...)
		if err != nil {
			return err
		}
		fmt.Fprintln(a.out, translator.TranslateWithMap(ctx, args[1], variables))
		return nil

	default:
		return fmt.Errorf("%w: unknown locale command %q", errUsage, sub)
	}
}

func (a *app) cmdID(args []string) error {
	fs := flag.NewFlagSet("id", flag.ContinueOnError)
	fs.SetOutput(a.out)
	count := fs.Int("count", 1, "number of identifiers to print")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *count < 1 {
		return fmt.Errorf("%w: --count must be positive", errUsage)
	}

	kind := "full"
	if fs.NArg() > 0 {
		kind = fs.Arg(0)
	}

	var next func() string
	switch kind {
	case "full":
		next = idgen.NewFull
	case "short":
		next = idgen.NewShort
	case "sortable":
		next = idgen.NewSortable
	default:
		return fmt.Errorf("%w: unknown id kind %q", errUsage, kind)
	}

	for range *count {
		fmt.Fprintln(a.out, next())
	}
	return nil
}

func (a *app) cmdPLZ(args []string) error {
	text := strings.Join(args, " ")
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: plz needs some text", errUsage)
	}

	code, ok := plz.Extract(text)
	if !ok {
		return errors.New("no postal code found")
	}
	fmt.Fprintln(a.out, code)
	return nil
}

func (a *app) cmdTrack(ctx context.Context, args []string) error {
	if len(args) < 1 || args[0] == "" {
		return fmt.Errorf("%w: track needs an event name", errUsage)
	}
	data, err := parsePairs(args[1:])
	if err != nil {
		return err
	}

	tracker, err := a.trackerFor(ctx)
	if err != nil {
		return err
	}
	tracker.Track(ctx, args[0], data)
	return nil
}

func (a *app) cmdVersion() error {
	fmt.Fprintf(a.out, "clientkit %s\n", orDefault(version.Version, "dev"))
	fmt.Fprintf(a.out, "  repository: %s\n", orDefault(version.Repository, "unknown"))
	fmt.Fprintf(a.out, "  commit:     %s\n", orDefault(version.Commit, "unknown"))
	fmt.Fprintf(a.out, "  built:      %s\n", orDefault(version.Date, "unknown"))
	return nil
}

// parsePairs turns key=value arguments into a map; nil when there are none.
func parsePairs(args []string) (map[string]any, error) {
	if len(args) == 0 {
		return nil, nil //nolint:nilnil // absent data is a valid result
	}

	pairs := make(map[string]any, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: expected key=value, got %q", errUsage, arg)
		}
		pairs[key] = value
	}
	return pairs, nil
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
