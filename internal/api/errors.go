package api

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals the requested design id does not resolve.
	ErrNotFound = errors.New("api: design not found")
	// ErrSessionExpired signals the backend rejected the bearer token on a
	// protected call. Public calls never produce it.
	ErrSessionExpired = errors.New("api: session expired")
	// ErrPayloadTooLarge signals the backend refused the upload size.
	ErrPayloadTooLarge = errors.New("api: payload too large")
)

// AuthError carries the backend's message for rejected login credentials.
// It does not invalidate any existing session.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	if e.Message == "" {
		return "api: invalid credentials"
	}
	return "api: " + e.Message
}

// ValidationError carries the backend's message for a malformed or
// incomplete submission.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	if e.Message == "" {
		return "api: validation failed"
	}
	return "api: " + e.Message
}

// NetworkError wraps a transport-level failure: the backend was unreachable
// or the connection broke before a status was received.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string { return "api: request failed: " + e.Err.Error() }
func (e *NetworkError) Unwrap() error { return e.Err }

// StatusError reports an unexpected backend status outside the taxonomy
// above.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: unexpected status %d", e.Code)
	}
	return fmt.Sprintf("api: status %d: %s", e.Code, e.Message)
}

// Message extracts the backend-provided text from an error, or returns
// fallback when the error carries none. Pages use it to show server error
// text with a generic message as the fallback.
func Message(err error, fallback string) string {
	var authErr *AuthError
	if errors.As(err, &authErr) && authErr.Message != "" {
		return authErr.Message
	}
	var valErr *ValidationError
	if errors.As(err, &valErr) && valErr.Message != "" {
		return valErr.Message
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) && statusErr.Message != "" {
		return statusErr.Message
	}
	return fallback
}
