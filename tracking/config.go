package tracking

import (
	"context"

	"github.com/pitabwire/util"

	"github.com/pitabwire/clientkit/client"
	"github.com/pitabwire/clientkit/config"
	"github.com/pitabwire/clientkit/workerpool"
)

// FromConfig returns Noop when no tracker host is configured. Otherwise it
// returns an Umami tracker, queued on pool when one is given and throttled
// per event name when a rate is configured.
func FromConfig(
	ctx context.Context,
	cfg config.ConfigurationTracker,
	locale LocaleSource,
	pool workerpool.WorkerPool,
) Tracker {
	if cfg == nil || cfg.TrackerHostURL() == "" {
		util.Log(ctx).Debug("tracking disabled, no tracker host configured")
		return Noop()
	}

	var httpOpts []client.HTTPOption
	if cfg.TrackerTraceReq() {
		httpOpts = append(httpOpts, client.WithHTTPTraceRequests())
	}

	opts := []UmamiOption{
		WithHTTPClient(client.NewHTTPClient(httpOpts...)),
		WithHostname(cfg.TrackerHostname()),
	}
	if locale != nil {
		opts = append(opts, WithLocaleSource(locale))
	}

	var tracker Tracker = NewUmami(cfg.TrackerHostURL(), cfg.TrackerWebsiteID(), opts...)
	if pool != nil {
		tracker = Async(tracker, pool)
	}
	return Throttle(tracker, cfg.TrackerEventRate(), cfg.TrackerEventBurstSize())
}
