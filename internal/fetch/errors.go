// Package fetch performs HTTP retrieval of listing and detail pages with
// timeout, retry, and per-host rate-limit policy.
package fetch

import (
	"errors"
	"fmt"
)

// ErrorKind classifies fetch failures.
type ErrorKind string

// Fetch error kinds.
const (
	// KindTimeout means the request exceeded its deadline.
	KindTimeout ErrorKind = "timeout"
	// KindNetwork means the connection failed below the HTTP layer.
	KindNetwork ErrorKind = "network"
	// KindHTTPStatus means the server answered with a non-success status.
	KindHTTPStatus ErrorKind = "http_status"
	// KindTooManyRedirects means the redirect hop limit was exceeded.
	KindTooManyRedirects ErrorKind = "too_many_redirects"
)

// Error is a classified fetch failure. All kinds are recoverable at the
// orchestrator level: the URL is skipped and processing continues.
type Error struct {
	Kind ErrorKind
	// StatusCode is set for KindHTTPStatus, zero otherwise.
	StatusCode int
	URL        string
	Err        error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Kind == KindHTTPStatus {
		return fmt.Sprintf("fetch %s: http status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Kind, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the fetch error kind of err, or an empty kind when err is
// not a fetch error.
func KindOf(err error) ErrorKind {
	var ferr *Error
	if errors.As(err, &ferr) {
		return ferr.Kind
	}
	return ""
}
