package source

import (
	"errors"
	"fmt"
	"net/http"
)

// Error kinds surfaced to callers. Every failure from this package wraps
// exactly one of them.
var (
	ErrInvalidReference = errors.New("invalid repository reference")
	ErrAuthRequired     = errors.New("repository not found or private: an access token is required")
	ErrAuthDenied       = errors.New("access denied: check your personal access token and try again")
	ErrUpstream         = errors.New("upstream request failed")
)

// StatusError carries the HTTP status of a failed upstream call.
type StatusError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *StatusError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: HTTP %d: %v", e.Op, e.StatusCode, e.Err)
}

func (e *StatusError) Unwrap() error { return e.Err }

// upstream wraps err as an ErrUpstream failure for op.
func upstream(op string, status int, err error) error {
	return &StatusError{Op: op, StatusCode: status, Err: fmt.Errorf("%w: %v", ErrUpstream, err)}
}

// classifyMetadataStatus maps a failed metadata lookup to an error kind.
// Without a user token, 403/404 look like a private repository; with one,
// 401/403/404 mean the token itself was rejected.
func classifyMetadataStatus(status int, userToken bool, err error) error {
	switch {
	case !userToken && (status == http.StatusNotFound || status == http.StatusForbidden):
		return fmt.Errorf("%w (HTTP %d)", ErrAuthRequired, status)
	case userToken && (status == http.StatusUnauthorized || status == http.StatusForbidden || status == http.StatusNotFound):
		return fmt.Errorf("%w (HTTP %d)", ErrAuthDenied, status)
	default:
		return upstream("repository lookup", status, err)
	}
}

// HTTPStatus extracts the upstream status code from err, or 0.
func HTTPStatus(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}
