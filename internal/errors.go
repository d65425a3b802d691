package internal

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthRequired is matched by every AuthFailureError via errors.Is.
	ErrAuthRequired = errors.New("re-authentication required")

	// ErrNotAuthenticated means no credential has been stored yet.
	ErrNotAuthenticated = errors.New("not logged in")

	// ErrEmptyMessage rejects a send whose text is blank after trimming.
	ErrEmptyMessage = errors.New("message is empty")

	// ErrSendInFlight rejects a send while another is pending for the same session.
	ErrSendInFlight = errors.New("a message is already being sent")

	// ErrEmptySessionID rejects session operations without an identifier.
	ErrEmptySessionID = errors.New("session id is empty")
)

// AuthFailureError represents a rejected or missing bearer credential.
// The credential store has already been cleared when this is returned.
type AuthFailureError struct {
	Op     string // "send", "list", "history", "delete"
	Status int    // 0 when no request was made
	Err    error
}

func (e *AuthFailureError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("auth failure [%s] (HTTP %d): %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("auth failure [%s]: %v", e.Op, e.Err)
}

func (e *AuthFailureError) Unwrap() error {
	return e.Err
}

// Is makes every AuthFailureError match ErrAuthRequired.
func (e *AuthFailureError) Is(target error) bool {
	return target == ErrAuthRequired
}

// TransportError represents network, status, or decoding failures talking to the backend
type TransportError struct {
	Op     string
	Status int // HTTP status, 0 when no response was received
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("transport error [%s] (HTTP %d): %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("transport error [%s]: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ValidationError represents local input rejected before any network call
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error [%s]: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// StorageCorruptionError represents an unreadable persisted credential or profile
type StorageCorruptionError struct {
	Path string
	Err  error
}

func (e *StorageCorruptionError) Error() string {
	return fmt.Sprintf("corrupt credential storage %s: %v", e.Path, e.Err)
}

func (e *StorageCorruptionError) Unwrap() error {
	return e.Err
}

// CacheError represents errors reading or writing the session list cache
type CacheError struct {
	Op   string // "open", "load", "save", "clear"
	Path string
	Err  error
}

func (e *CacheError) Error() string {
	return fmt.Sprintf("cache error: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *CacheError) Unwrap() error {
	return e.Err
}

// ExportError represents errors during export
type ExportError struct {
	Format    string
	SessionID string
	Err       error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export error [%s] %s: %v", e.Format, e.SessionID, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}

// IsAuthFailure reports whether err carries an AuthFailureError.
func IsAuthFailure(err error) bool {
	var af *AuthFailureError
	return errors.As(err, &af)
}

// IsTransport reports whether err carries a TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// HTTPStatus returns the HTTP status carried by err, or 0.
func HTTPStatus(err error) int {
	var te *TransportError
	if errors.As(err, &te) {
		return te.Status
	}
	var af *AuthFailureError
	if errors.As(err, &af) {
		return af.Status
	}
	return 0
}
