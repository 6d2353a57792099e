// Package webhook invokes the external workflow engine's HTTP endpoints.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/nfrund/applydash/internal/domain"
	"github.com/nfrund/applydash/internal/middleware"
	"github.com/nfrund/applydash/internal/notify"
	"github.com/nfrund/applydash/internal/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Resolver maps an endpoint key to its URL.
type Resolver interface {
	URL(key domain.EndpointKey) (string, bool)
}

// Client calls webhooks and decodes their JSON responses. Every failure is
// shown to the user through the Notifier before it is returned; there are
// no retries.
type Client struct {
	endpoints  Resolver
	notifier   notify.Notifier
	httpClient *http.Client
	timeout    time.Duration
	tracer     trace.Tracer
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client. The client is never
// modified; WithTimeout applies to a copy.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout bounds every call.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithTracer records a span per call.
func WithTracer(t trace.Tracer) Option {
	return func(c *Client) { c.tracer = t }
}

// DefaultTimeout bounds calls made with the default HTTP client.
const DefaultTimeout = 30 * time.Second

// NewClient creates a Client resolving URLs through endpoints.
func NewClient(endpoints Resolver, notifier notify.Notifier, opts ...Option) *Client {
	c := &Client{
		endpoints:  endpoints,
		notifier:   notifier,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		tracer:     tracing.Noop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		hc := *c.httpClient
		hc.Timeout = c.timeout
		c.httpClient = &hc
	}
	return c
}

// Call invokes key and returns the decoded JSON body as generic data
// (map[string]any, []any, or a scalar).
func (c *Client) Call(ctx context.Context, key domain.EndpointKey, method string, payload any) (any, error) {
	var out any
	if err := c.Do(ctx, key, method, payload, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Fetch invokes key and decodes the JSON body into T.
func Fetch[T any](ctx context.Context, c *Client, key domain.EndpointKey, method string, payload any) (T, error) {
	var out T
	if err := c.Do(ctx, key, method, payload, &out); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// Do invokes key and decodes the JSON body into out. GET requests carry no
// body; other methods send payload as JSON.
func (c *Client) Do(ctx context.Context, key domain.EndpointKey, method string, payload any, out any) (err error) {
	ctx, span := c.tracer.Start(ctx, "webhook."+string(key),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("webhook.endpoint", string(key)),
			attribute.String("http.request.method", method),
		),
	)
	defer span.End()

	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			c.fail(ctx, key, err)
		}
	}()

	url, ok := c.endpoints.URL(key)
	if !ok || url == "" {
		return &domain.TransportError{Endpoint: key, Err: domain.ErrUnknownEndpoint}
	}
	span.SetAttributes(attribute.String("url.full", url))

	var body io.Reader
	if method != http.MethodGet && payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return &domain.TransportError{Endpoint: key, Err: fmt.Errorf("encode payload: %w", err)}
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return &domain.TransportError{Endpoint: key, Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &domain.TransportError{Endpoint: key, Err: err}
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &domain.TransportError{Endpoint: key, Status: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &domain.TransportError{Endpoint: key, Err: fmt.Errorf("read body: %w", err)}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &domain.DecodeError{Endpoint: key, Err: err}
	}

	middleware.FromContext(ctx).Debug("Webhook call succeeded", "endpoint", key, "status", resp.StatusCode, "bytes", len(data))
	return nil
}

// fail logs the error and shows it to the user.
func (c *Client) fail(ctx context.Context, key domain.EndpointKey, err error) {
	middleware.FromContext(ctx).Error("Webhook call failed", "endpoint", key, "error", err)
	if c.notifier != nil {
		c.notifier.Notify(ctx, notify.LevelError, "Error: "+err.Error())
	}
}
