package api

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnauthorized is returned when the backend rejects the credentials or token
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound is returned when the requested resource does not exist
	ErrNotFound = errors.New("not found")

	// ErrBackendUnavailable covers transport failures, timeouts and 5xx responses
	ErrBackendUnavailable = errors.New("backend unavailable")
)

// APIError is a non-2xx response from the backend
type APIError struct {
	Message    string
	StatusCode int
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("server error (%d): %s", e.StatusCode, e.Message)
}

// Unwrap maps the status code onto the package sentinels so that callers
// can use errors.Is(err, ErrUnauthorized) and friends.
func (e *APIError) Unwrap() error {
	switch {
	case e.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	case e.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case e.StatusCode >= http.StatusInternalServerError:
		return ErrBackendUnavailable
	default:
		return nil
	}
}
