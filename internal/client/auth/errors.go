package auth

import (
	"errors"
	"fmt"
)

var (
	// ErrNotSignedIn is returned when an operation needs an active session and there is none
	ErrNotSignedIn = errors.New("not signed in")

	// ErrSessionExpired is returned when the active session can no longer be refreshed
	ErrSessionExpired = errors.New("session expired, sign in again")
)

// RestoreReason explains why a silent session restore did not succeed
type RestoreReason string

const (
	ReasonNoStoredSession       RestoreReason = "no_stored_session"
	ReasonTokenExpiredOrRevoked RestoreReason = "token_expired_or_revoked"
	ReasonBackendUnavailable    RestoreReason = "backend_unavailable"
)

// RestoreError is the expected failure outcome of RestoreSession.
// Callers fall back to the password prompt whatever the reason.
type RestoreError struct {
	Err       error
	AccountID string
	Reason    RestoreReason
}

func (e *RestoreError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("restore session for account %s: %s", e.AccountID, e.Reason)
	}
	return fmt.Sprintf("restore session for account %s: %s: %v", e.AccountID, e.Reason, e.Err)
}

func (e *RestoreError) Unwrap() error {
	return e.Err
}

// ReasonOf extracts the restore reason from err
func ReasonOf(err error) (RestoreReason, bool) {
	var rErr *RestoreError
	if errors.As(err, &rErr) {
		return rErr.Reason, true
	}
	return "", false
}
