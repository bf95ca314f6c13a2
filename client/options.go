package client

import (
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	defaultHTTPTimeout     = 10 * time.Second
	defaultHTTPIdleTimeout = 90 * time.Second
)

// HTTPOption configures HTTP client behavior.
type HTTPOption func(*httpConfig)

type httpConfig struct {
	timeout     time.Duration
	transport   http.RoundTripper
	idleTimeout time.Duration

	traceRequests       bool
	traceRequestHeaders bool
}

// WithHTTPTimeout sets the request timeout.
func WithHTTPTimeout(timeout time.Duration) HTTPOption {
	return func(c *httpConfig) {
		c.timeout = timeout
	}
}

// WithHTTPTransport sets the HTTP transport.
func WithHTTPTransport(transport http.RoundTripper) HTTPOption {
	return func(c *httpConfig) {
		c.transport = transport
	}
}

// WithHTTPIdleTimeout sets the idle timeout of the default transport, or of a
// plain *http.Transport passed with WithHTTPTransport.
func WithHTTPIdleTimeout(timeout time.Duration) HTTPOption {
	return func(c *httpConfig) {
		c.idleTimeout = timeout
	}
}

// WithHTTPTraceRequests logs every request and response.
func WithHTTPTraceRequests() HTTPOption {
	return func(c *httpConfig) {
		c.traceRequests = true
	}
}

// WithHTTPTraceRequestHeaders also logs headers when tracing is on.
func WithHTTPTraceRequestHeaders() HTTPOption {
	return func(c *httpConfig) {
		c.traceRequestHeaders = true
	}
}

// NewHTTPClient creates an HTTP client. Without an explicit transport it uses a
// clone of http.DefaultTransport, with the idle timeout applied, wrapped by otelhttp.
func NewHTTPClient(opts ...HTTPOption) *http.Client {
	cfg := &httpConfig{
		timeout:     defaultHTTPTimeout,
		idleTimeout: defaultHTTPIdleTimeout,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	switch t := cfg.transport.(type) {
	case nil:
		cfg.transport = otelhttp.NewTransport(baseTransport(cfg.idleTimeout))
	case *http.Transport:
		if cfg.idleTimeout > 0 {
			t = t.Clone()
			t.IdleConnTimeout = cfg.idleTimeout
			cfg.transport = t
		}
	}

	if cfg.traceRequests {
		cfg.transport = NewLoggingTransport(cfg.transport,
			WithTransportLogHeaders(cfg.traceRequestHeaders),
			WithTransportLogBody(true))
	}

	return &http.Client{
		Transport: cfg.transport,
		Timeout:   cfg.timeout,
	}
}

func baseTransport(idleTimeout time.Duration) *http.Transport {
	var t *http.Transport
	if def, ok := http.DefaultTransport.(*http.Transport); ok {
		t = def.Clone()
	} else {
		t = &http.Transport{Proxy: http.ProxyFromEnvironment}
	}
	if idleTimeout > 0 {
		t.IdleConnTimeout = idleTimeout
	}
	return t
}
