package fetch

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrInvalidProxyAddress is returned when the proxy address is not in
// "host:port" format.
var ErrInvalidProxyAddress = errors.New("fetch: invalid proxy address, expected host:port")

// ErrTooManyRedirects is returned when a request exceeds the redirect
// cap, usually because of a redirect loop.
var ErrTooManyRedirects = errors.New("fetch: too many redirects")

// Kind classifies fetch failures so callers can decide how to record them.
type Kind int

const (
	// KindNetwork covers DNS failures, refused connections, and other
	// transport-level errors.
	KindNetwork Kind = iota

	// KindTimeout covers deadline-exceeded failures, both from the
	// request context and from the underlying connection.
	KindTimeout

	// KindHTTPStatus means the server responded with a 4xx or 5xx status.
	KindHTTPStatus
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindTimeout:
		return "timeout"
	case KindHTTPStatus:
		return "http status"
	default:
		return "unknown"
	}
}

// Error describes a failed fetch. It carries the URL, the failure kind,
// and for KindHTTPStatus the response status code.
type Error struct {
	// URL is the URL that failed to fetch.
	URL string

	// Kind classifies the failure.
	Kind Kind

	// StatusCode is the HTTP status code for KindHTTPStatus errors.
	// Zero otherwise.
	StatusCode int

	// Err is the underlying error, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Kind == KindHTTPStatus {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Kind, e.Err)
	}
	return fmt.Sprintf("fetch %s: %s", e.URL, e.Kind)
}

// Unwrap returns the underlying error for errors.Is/errors.As chains.
func (e *Error) Unwrap() error {
	return e.Err
}

// Timeout reports whether the error represents a timeout.
func (e *Error) Timeout() bool {
	return e.Kind == KindTimeout
}

// classify wraps a transport error in an *Error, distinguishing
// timeouts from other network failures. Context cancellation counts as
// a timeout because the crawler only cancels on deadline expiry.
func classify(pageURL string, err error) *Error {
	kind := KindNetwork

	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		kind = KindTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		kind = KindTimeout
	}

	return &Error{URL: pageURL, Kind: kind, Err: err}
}
