package storage

import "errors"

// Common client storage errors
var (
	// ErrUnavailable indicates that device-local storage cannot be used at all
	// (file cannot be opened, disabled by the environment, etc.)
	ErrUnavailable = errors.New("local storage unavailable")

	// ErrStorageClosed indicates that storage is closed
	ErrStorageClosed = errors.New("storage is closed")
)
