package service

import "errors"

var (
	ErrUserAlreadyExist   = errors.New("user already exist")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrRecordNotFound = errors.New("record not found")
)

// Refresh session failure taxonomy. Every rotation failure maps to "reject
// the refresh and clear the client's session cookie" at the HTTP boundary;
// after any of these the presented token is either untouched or definitively
// dead, never in between.
var (
	// ErrSessionNotFound: token unknown, already rotated, or forged.
	ErrSessionNotFound = errors.New("refresh session not found")
	// ErrSessionExpired: session lapsed; the row is reaped lazily.
	ErrSessionExpired = errors.New("refresh session expired")
	// ErrSessionLifetimeExceeded: the absolute cap on the lineage is reached;
	// no new session was created and nothing was deleted.
	ErrSessionLifetimeExceeded = errors.New("refresh session lifetime limit reached")
	// ErrSessionRotationFailed: transient storage error during the atomic
	// swap; the presented session remains valid.
	ErrSessionRotationFailed = errors.New("refresh session rotation failed")
)
