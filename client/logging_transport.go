package client

import (
	"bytes"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pitabwire/util"
)

const defaultMaxBodySize = 1024

// LoggingTransportOption configures the logging HTTP transport.
type LoggingTransportOption func(*loggingTransport)

type loggingTransport struct {
	transport   http.RoundTripper
	logHeaders  bool
	logBody     bool
	maxBodySize int64
}

// NewLoggingTransport wraps transport so each round trip is logged through the
// request context's logger. Headers and bodies are off unless enabled.
func NewLoggingTransport(transport http.RoundTripper, opts ...LoggingTransportOption) http.RoundTripper {
	if transport == nil {
		transport = http.DefaultTransport
	}

	t := &loggingTransport{
		transport:   transport,
		maxBodySize: defaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// WithTransportLogHeaders enables header logging.
func WithTransportLogHeaders(enabled bool) LoggingTransportOption {
	return func(t *loggingTransport) {
		t.logHeaders = enabled
	}
}

// WithTransportLogBody enables body logging, capped by WithTransportMaxBodySize.
func WithTransportLogBody(enabled bool) LoggingTransportOption {
	return func(t *loggingTransport) {
		t.logBody = enabled
	}
}

// WithTransportMaxBodySize sets the maximum body size to log.
func WithTransportMaxBodySize(size int64) LoggingTransportOption {
	return func(t *loggingTransport) {
		t.maxBodySize = size
	}
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	log := util.Log(req.Context()).WithFields(map[string]any{
		"method": req.Method,
		"url":    req.URL.String(),
	})
	if t.logHeaders {
		log = log.WithField("headers", flatten(req.Header))
	}
	if t.logBody && req.Body != nil {
		var body []byte
		body, req.Body = t.peek(req.Body)
		log = log.WithField("body", string(body))
	}
	log.Debug("HTTP request sent")

	resp, err := t.transport.RoundTrip(req)

	log = log.WithField("duration", time.Since(start).String())
	if err != nil {
		log.WithError(err).Error("HTTP request failed")
		return resp, err
	}

	log = log.WithField("status", resp.StatusCode)
	if t.logHeaders {
		log = log.WithField("responseHeaders", flatten(resp.Header))
	}
	if t.logBody && resp.Body != nil {
		var body []byte
		body, resp.Body = t.peek(resp.Body)
		log = log.WithField("responseBody", string(body))
	}
	log.Debug("HTTP response received")

	return resp, nil
}

// peek reads up to maxBodySize bytes and returns a body that replays them
// ahead of the unread remainder.
func (t *loggingTransport) peek(body io.ReadCloser) ([]byte, io.ReadCloser) {
	head, err := io.ReadAll(io.LimitReader(body, t.maxBodySize))
	if err != nil {
		return nil, body
	}
	return head, struct {
		io.Reader
		io.Closer
	}{io.MultiReader(bytes.NewReader(head), body), body}
}

func flatten(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for name, values := range h {
		out[name] = strings.Join(values, ", ")
	}
	return out
}

// WrapClient returns a copy of client whose transport logs round trips.
func WrapClient(client *http.Client, opts ...LoggingTransportOption) *http.Client {
	if client == nil {
		client = http.DefaultClient
	}

	newClient := *client
	newClient.Transport = NewLoggingTransport(client.Transport, opts...)
	return &newClient
}
