// Package tracking forwards analytics events to an optional backend.
//
// Callers depend on Tracker and never see failures: an unconfigured tracker is
// Noop, and delivery errors are logged.
package tracking

import (
	"context"
)

// Tracker records a named event with optional data.
type Tracker interface {
	Track(ctx context.Context, event string, data map[string]any)
}

// LocaleSource reports the active UI locale attached to events.
type LocaleSource interface {
	CurrentLocale() string
}

type noop struct{}

func (noop) Track(context.Context, string, map[string]any) {}

// Noop returns a Tracker that discards every event.
func Noop() Tracker {
	return noop{}
}
