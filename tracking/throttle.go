package tracking

import (
	"context"
	"sync"
	"time"

	"github.com/pitabwire/util"
	"golang.org/x/time/rate"
)

const maxThrottledEvents = 1024

// Throttled drops events whose name exceeds a token bucket limit.
type Throttled struct {
	next  Tracker
	limit rate.Limit
	burst int
	now   func() time.Time

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// Throttle limits each event name to perSecond events with the given burst.
// A non positive perSecond returns next unchanged.
func Throttle(next Tracker, perSecond float64, burst int) Tracker {
	if perSecond <= 0 {
		return next
	}
	if burst < 1 {
		burst = 1
	}
	return &Throttled{
		next:     next,
		limit:    rate.Limit(perSecond),
		burst:    burst,
		now:      time.Now,
		limiters: make(map[string]*rate.Limiter),
	}
}

func (t *Throttled) Track(ctx context.Context, event string, data map[string]any) {
	if !t.limiterFor(event).AllowN(t.now(), 1) {
		util.Log(ctx).WithField("event", event).Debug("tracking event rate limited")
		return
	}
	t.next.Track(ctx, event, data)
}

func (t *Throttled) limiterFor(event string) *rate.Limiter {
	t.mu.Lock()
	defer t.mu.Unlock()

	limiter, found := t.limiters[event]
	if found {
		return limiter
	}

	// event names come from callers; keep the table bounded.
	if len(t.limiters) >= maxThrottledEvents {
		clear(t.limiters)
	}
	limiter = rate.NewLimiter(t.limit, t.burst)
	t.limiters[event] = limiter
	return limiter
}

// Close closes the wrapped tracker when it supports closing.
func (t *Throttled) Close(ctx context.Context) error {
	if closer, ok := t.next.(interface{ Close(context.Context) error }); ok {
		return closer.Close(ctx)
	}
	return nil
}
