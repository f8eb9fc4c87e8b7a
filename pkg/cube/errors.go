package cube

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a non-2xx response from CUBE. The response body, when one
// was obtained, is attached verbatim so callers can display the server's
// explanation.
type Error struct {
	StatusCode int
	Reason     string
	Body       string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%d %s", e.StatusCode, e.Reason)
	}

	return fmt.Sprintf("%d %s: %s", e.StatusCode, e.Reason, e.Body)
}

// NewError creates an Error from a status code and the raw response body.
func NewError(statusCode int, body []byte) *Error {
	reason := http.StatusText(statusCode)
	if reason == "" {
		reason = "unknown reason"
	}

	return &Error{
		StatusCode: statusCode,
		Reason:     reason,
		Body:       string(body),
	}
}

// Collection-shape errors returned by Search.Only. They encode a usage
// invariant violation and are never retried.
var (
	ErrEmptyCollection = errors.New("empty collection")
	ErrTooManyResults  = errors.New("more than one result in collection")
)

// Executor invariant errors. They indicate a wrong declared length or a
// mid-run change of the remote collection, and are never silently corrected.
var (
	ErrOverfull  = errors.New("executor received more completions than declared")
	ErrUnderfull = errors.New("executor received fewer completions than declared")
)

// Static errors that can be wrapped with context.
var (
	ErrReadOnlyAccess      = errors.New("operation requires read-write access")
	ErrConfigRequired      = errors.New("config is required")
	ErrAddressRequired     = errors.New("CUBE address is required")
	ErrNotLoggedIn         = errors.New("not logged in")
	ErrInvalidAddress      = errors.New("invalid CUBE address")
	ErrMissingLink         = errors.New("collection link missing from base response")
	ErrConcurrencyRequired = errors.New("executor concurrency must be positive")
	ErrKeyNotFound         = errors.New("key not found in cache")
	ErrEntryExpired        = errors.New("cache entry expired")
	ErrCacheDisabled       = errors.New("cache disabled")
	ErrNATSConfigRequired  = errors.New("NATS configuration required for NATS cache")
	ErrUnsupportedCache    = errors.New("unsupported cache type")
)

// IsNotFound reports whether err is a CUBE error with status 404.
func IsNotFound(err error) bool {
	cubeErr := &Error{}
	if errors.As(err, &cubeErr) {
		return cubeErr.StatusCode == http.StatusNotFound
	}

	return false
}

// IsUnauthorized reports whether err is a CUBE error with status 401.
func IsUnauthorized(err error) bool {
	cubeErr := &Error{}
	if errors.As(err, &cubeErr) {
		return cubeErr.StatusCode == http.StatusUnauthorized
	}

	return false
}
