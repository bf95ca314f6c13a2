package tracking

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pitabwire/util"

	"github.com/pitabwire/clientkit/client"
)

const (
	umamiSendPath  = "/api/send"
	umamiEventType = "event"
	userAgent      = "Mozilla/5.0 (compatible; clientkit)"
	maxErrorBody   = 512
)

type umamiRequest struct {
	Type    string     `json:"type"`
	Payload umamiEvent `json:"payload"`
}

type umamiEvent struct {
	Website  string         `json:"website"`
	Hostname string         `json:"hostname,omitempty"`
	Language string         `json:"language,omitempty"`
	URL      string         `json:"url,omitempty"`
	Name     string         `json:"name"`
	Data     map[string]any `json:"data,omitempty"`
}

// UmamiOption configures an Umami tracker.
type UmamiOption func(*Umami)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(cl *http.Client) UmamiOption {
	return func(u *Umami) {
		if cl != nil {
			u.client = cl
		}
	}
}

// WithHostname sets the hostname reported with every event.
func WithHostname(hostname string) UmamiOption {
	return func(u *Umami) {
		u.hostname = hostname
	}
}

// WithPageURL sets the url reported with every event.
func WithPageURL(url string) UmamiOption {
	return func(u *Umami) {
		u.pageURL = url
	}
}

// WithLocaleSource reports the source's current locale as the event language.
func WithLocaleSource(source LocaleSource) UmamiOption {
	return func(u *Umami) {
		u.locale = source
	}
}

// Umami sends events to an Umami analytics server.
type Umami struct {
	endpoint  string
	websiteID string
	hostname  string
	pageURL   string
	locale    LocaleSource
	client    *http.Client
}

// NewUmami targets the server at hostURL for the given website id.
func NewUmami(hostURL, websiteID string, opts ...UmamiOption) *Umami {
	u := &Umami{
		endpoint:  strings.TrimSuffix(hostURL, "/") + umamiSendPath,
		websiteID: websiteID,
		pageURL:   "/",
	}
	for _, opt := range opts {
		opt(u)
	}
	if u.client == nil {
		u.client = client.NewHTTPClient()
	}
	return u
}

// Track sends the event and logs, rather than returns, any failure.
func (u *Umami) Track(ctx context.Context, event string, data map[string]any) {
	if err := u.Send(ctx, event, data); err != nil {
		util.Log(ctx).WithError(err).WithField("event", event).Warn("could not deliver tracking event")
	}
}

// Send delivers one event and reports the outcome.
func (u *Umami) Send(ctx context.Context, event string, data map[string]any) error {
	payload := umamiRequest{
		Type: umamiEventType,
		Payload: umamiEvent{
			Website:  u.websiteID,
			Hostname: u.hostname,
			URL:      u.pageURL,
			Name:     event,
			Data:     data,
		},
	}
	if u.locale != nil {
		payload.Payload.Language = u.locale.CurrentLocale()
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode event %q: %w", event, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := u.client.Do(req)
	if err != nil {
		return fmt.Errorf("send event %q: %w", event, err)
	}
	defer util.CloseAndLogOnError(ctx, resp.Body)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("send event %q: status %d: %s", event, resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
