// Package livedns manages record sets through the Gandi LiveDNS v5 REST API.
//
// The package is layered the way a request flows: Client.Call is the only
// code that touches HTTP, zones.go and records.go build on it to resolve zone
// identifiers and read or write a single record set, and Reconciler compares
// desired state against what the provider reports and issues the minimal
// calls to converge.
package livedns

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	// DefaultBaseURL is the LiveDNS v5 endpoint.
	DefaultBaseURL = "https://dns.api.gandi.net/api/v5"
	// DefaultTimeout bounds every request, including reading the body.
	DefaultTimeout = 30 * time.Second

	apiKeyHeader = "X-Api-Key"
	tracerName   = "github.com/yuriy-kovalchuk/livedns-manager/internal/livedns"
)

// Client issues authenticated JSON requests against the LiveDNS API.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
	log     logr.Logger
	tracer  trace.Tracer
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at a different API root (used by tests).
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithTimeout overrides DefaultTimeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.client.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client. Its Timeout is kept
// as-is.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.client = hc
		}
	}
}

// New creates a LiveDNS client. The API key is sent on every request and
// never logged.
func New(log logr.Logger, apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("livedns: missing api key")
	}

	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: DefaultTimeout},
		log:     log,
		tracer:  otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type callOptions struct {
	allowNotFound bool
}

// CallOption adjusts how Call treats a response.
type CallOption func(*callOptions)

// AllowNotFound makes a 404 a normal outcome instead of an APIError. The
// caller inspects the returned status.
func AllowNotFound() CallOption {
	return func(o *callOptions) {
		o.allowNotFound = true
	}
}

// Call sends payload (when non-nil) as JSON to path with the given method and
// returns the raw JSON body and the HTTP status. A status >= 400 yields an
// *APIError; a body that is not valid JSON yields a *DecodeError (or is
// attached to the APIError); network failures yield a *TransportError.
func (c *Client) Call(ctx context.Context, method, path string, payload any, opts ...CallOption) (json.RawMessage, int, error) {
	var o callOptions
	for _, opt := range opts {
		opt(&o)
	}

	ctx, span := c.tracer.Start(ctx, "livedns.Call",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("livedns.path", path),
		))
	defer span.End()

	body, status, err := c.do(ctx, method, path, payload, o)
	if status != 0 {
		span.SetAttributes(attribute.Int("http.response.status_code", status))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return body, status, err
}

func (c *Client) do(ctx context.Context, method, path string, payload any, o callOptions) (json.RawMessage, int, error) {
	var bodyReader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, &EncodeError{Err: err}
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, 0, fmt.Errorf("livedns: build request: %w", err)
	}
	req.Header.Set(apiKeyHeader, c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, &TransportError{Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, &TransportError{Method: method, Path: path, Err: err}
	}
	c.log.V(1).Info("api call", "method", method, "path", path, "status", resp.StatusCode)

	var apiErr *APIError
	if resp.StatusCode >= 400 && (resp.StatusCode != http.StatusNotFound || !o.allowNotFound) {
		apiErr = &APIError{
			Status: resp.StatusCode,
			Label:  StatusLabel(resp.StatusCode),
			Method: method,
			Path:   path,
		}
	}

	var result json.RawMessage
	if len(bytes.TrimSpace(content)) > 0 {
		if err := json.Unmarshal(content, &result); err != nil {
			decodeErr := &DecodeError{Err: err, Body: string(content)}
			if apiErr != nil {
				apiErr.DecodeErr = decodeErr
				return nil, resp.StatusCode, apiErr
			}
			return nil, resp.StatusCode, decodeErr
		}
	}

	if apiErr != nil {
		return result, resp.StatusCode, apiErr
	}
	return result, resp.StatusCode, nil
}
