package services

import "errors"

var (
	// ErrNotFound covers unknown share tokens and unknown user ids.
	ErrNotFound = errors.New("not found")
	// ErrPermission covers non-admin callers and invalid or expired sessions.
	ErrPermission = errors.New("permission denied")
)

// ValidationError rejects malformed sender input (empty or oversized
// message text, non-numeric ids).
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }
