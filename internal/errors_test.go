package internal

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestAuthFailureError(t *testing.T) {
	originalErr := errors.New("token expired")
	err := &AuthFailureError{
		Op:     "send",
		Status: http.StatusUnauthorized,
		Err:    originalErr,
	}

	errorMsg := err.Error()
	if !strings.Contains(errorMsg, "auth failure") {
		t.Errorf("AuthFailureError.Error() should contain 'auth failure', got: %q", errorMsg)
	}
	if !strings.Contains(errorMsg, "401") {
		t.Errorf("AuthFailureError.Error() should contain status, got: %q", errorMsg)
	}

	if !errors.Is(err, originalErr) {
		t.Error("AuthFailureError.Unwrap() should return original error")
	}
	if !errors.Is(err, ErrAuthRequired) {
		t.Error("AuthFailureError should match ErrAuthRequired")
	}

	wrapped := fmt.Errorf("refresh: %w", err)
	if !IsAuthFailure(wrapped) {
		t.Error("IsAuthFailure() should see through wrapping")
	}
	if IsTransport(wrapped) {
		t.Error("IsTransport() should be false for an auth failure")
	}
}

func TestTransportError(t *testing.T) {
	originalErr := errors.New("connection refused")
	err := &TransportError{
		Op:  "list",
		Err: originalErr,
	}

	errorMsg := err.Error()
	if !strings.Contains(errorMsg, "transport error") {
		t.Errorf("TransportError.Error() should contain 'transport error', got: %q", errorMsg)
	}
	if !strings.Contains(errorMsg, "list") {
		t.Errorf("TransportError.Error() should contain op, got: %q", errorMsg)
	}
	if !errors.Is(err, originalErr) {
		t.Error("TransportError.Unwrap() should return original error")
	}
	if errors.Is(err, ErrAuthRequired) {
		t.Error("TransportError must not match ErrAuthRequired")
	}
	if !IsTransport(err) {
		t.Error("IsTransport() should be true")
	}
}

func TestValidationError(t *testing.T) {
	err := &ValidationError{Field: "message", Err: ErrEmptyMessage}

	if !strings.Contains(err.Error(), "validation error") {
		t.Errorf("ValidationError.Error() should contain 'validation error', got: %q", err.Error())
	}
	if !errors.Is(err, ErrEmptyMessage) {
		t.Error("ValidationError.Unwrap() should return ErrEmptyMessage")
	}
}

func TestStorageCorruptionError(t *testing.T) {
	originalErr := errors.New("yaml: line 1: did not find expected key")
	err := &StorageCorruptionError{Path: "/tmp/credentials.yaml", Err: originalErr}

	if !strings.Contains(err.Error(), "/tmp/credentials.yaml") {
		t.Errorf("StorageCorruptionError.Error() should contain path, got: %q", err.Error())
	}
	if !errors.Is(err, originalErr) {
		t.Error("StorageCorruptionError.Unwrap() should return original error")
	}
}

func TestCacheError(t *testing.T) {
	originalErr := errors.New("database is locked")
	err := &CacheError{Op: "save", Path: "/cache/sessions.db", Err: originalErr}

	if !strings.Contains(err.Error(), "cache error") {
		t.Errorf("CacheError.Error() should contain 'cache error', got: %q", err.Error())
	}
	if !errors.Is(err, originalErr) {
		t.Error("CacheError.Unwrap() should return original error")
	}
}

func TestExportError(t *testing.T) {
	originalErr := errors.New("write failed")
	err := &ExportError{Format: "jsonl", SessionID: "abc", Err: originalErr}

	errorMsg := err.Error()
	if !strings.Contains(errorMsg, "export error") {
		t.Errorf("ExportError.Error() should contain 'export error', got: %q", errorMsg)
	}
	if !strings.Contains(errorMsg, "jsonl") {
		t.Errorf("ExportError.Error() should contain format, got: %q", errorMsg)
	}
	if !errors.Is(err, originalErr) {
		t.Error("ExportError.Unwrap() should return original error")
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"plain", errors.New("boom"), 0},
		{"transport", &TransportError{Op: "delete", Status: 404, Err: errors.New("not found")}, 404},
		{"auth", &AuthFailureError{Op: "send", Status: 401, Err: errors.New("denied")}, 401},
		{"wrapped", fmt.Errorf("x: %w", &TransportError{Status: 502, Err: errors.New("bad gateway")}), 502},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTTPStatus(tt.err); got != tt.want {
				t.Errorf("HTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}
