package tracking

import (
	"context"
	"errors"
	"maps"
	"sync"

	"github.com/pitabwire/util"

	"github.com/pitabwire/clientkit/workerpool"
)

// ErrTrackerClosed is logged for events tracked after Close.
var ErrTrackerClosed = errors.New("tracker closed")

// AsyncTracker hands each event to a worker pool so Track returns immediately.
type AsyncTracker struct {
	next Tracker
	pool workerpool.WorkerPool

	mu       sync.RWMutex
	closed   bool
	inflight sync.WaitGroup
}

// Async wraps next so events are delivered on pool.
func Async(next Tracker, pool workerpool.WorkerPool) *AsyncTracker {
	return &AsyncTracker{next: next, pool: pool}
}

// Track queues the event. Data is copied so callers may reuse the map.
func (a *AsyncTracker) Track(ctx context.Context, event string, data map[string]any) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.closed {
		util.Log(ctx).WithError(ErrTrackerClosed).WithField("event", event).Debug("dropping tracking event")
		return
	}

	data = maps.Clone(data)
	detached := context.WithoutCancel(ctx)

	a.inflight.Add(1)
	err := a.pool.Submit(ctx, func() {
		defer a.inflight.Done()
		a.next.Track(detached, event, data)
	})
	if err != nil {
		a.inflight.Done()
		util.Log(ctx).WithError(err).WithField("event", event).Warn("could not queue tracking event")
	}
}

// Close stops accepting events and waits for queued ones, or for ctx to end.
func (a *AsyncTracker) Close(ctx context.Context) error {
	a.mu.Lock()
	a.closed = true
	a.mu.Unlock()

	done := make(chan struct{})
	go func() {
		a.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
