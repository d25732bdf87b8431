package livedns

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

var (
	// ErrZoneNotFound is returned when no zone matches the requested name.
	ErrZoneNotFound = errors.New("zone not found")

	// ErrDuplicateRecordSet is returned when the provider reports more than
	// one record set for a single (name, type) pair.
	ErrDuplicateRecordSet = errors.New("multiple record sets for the same name and type")
)

var statusLabels = map[int]string{
	http.StatusBadRequest:   "Bad request",
	http.StatusUnauthorized: "Permission denied",
	http.StatusNotFound:     "Resource not found",
}

// StatusLabel returns the human-readable label for an HTTP error status,
// or "" when the status has none.
func StatusLabel(status int) string {
	return statusLabels[status]
}

// APIError is a provider-reported failure (HTTP status >= 400).
type APIError struct {
	Status int
	Label  string
	Method string
	Path   string
	// DecodeErr is set when the error body itself could not be parsed.
	DecodeErr error
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("API error %s; Status: %d; Method: %s; Call: %s", e.Label, e.Status, e.Method, e.Path)
	if e.DecodeErr != nil {
		msg += "; " + e.DecodeErr.Error()
	}
	return msg
}

func (e *APIError) Unwrap() error { return e.DecodeErr }

// IsNotFound reports whether err is an APIError with status 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// EncodeError wraps a failure to serialize a request payload.
type EncodeError struct {
	Err error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("failed to encode payload as JSON: %v", e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

// DecodeError wraps a failure to parse a response body.
type DecodeError struct {
	Err  error
	Body string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to parse API response with error %v: %s", e.Err, e.Body)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// TransportError is a network-level failure: the request never produced an
// HTTP response.
type TransportError struct {
	Method string
	Path   string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("livedns: %s %s: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// MisuseError reports a call that is invalid regardless of remote state.
type MisuseError struct {
	Msg string
}

func (e *MisuseError) Error() string { return e.Msg }

// ValidationError collects every problem found in a set of Params.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid parameters: " + strings.Join(e.Problems, "; ")
}

// IsTransient reports whether err belongs to the retryable category:
// timeouts, resets and other network failures. Provider HTTP errors and
// caller cancellation are never transient. Nothing in this package retries.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	return true
}

// IsTimeout reports whether err is a request that ran out of time.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
