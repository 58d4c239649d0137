// Package errors provides custom error types for the refsync system.
// These errors enable better error handling, programmatic error checking,
// and improved debugging throughout the application.
package errors

import (
	"errors"
	"fmt"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// As, Is, and Unwrap are aliases for the standard library equivalents.
var (
	As     = errors.As
	Is     = errors.Is
	Unwrap = errors.Unwrap
)

// Common sentinel errors for the refsync system
var (
	// ErrSourceUnavailable indicates the source store could not be reached after retries
	ErrSourceUnavailable = errors.New("source store unavailable")

	// ErrTargetUnavailable indicates the target store could not be reached after retries
	ErrTargetUnavailable = errors.New("target store unavailable")

	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrRateLimited indicates that an API rate limit has been exceeded
	ErrRateLimited = errors.New("rate limited")

	// ErrTimeout indicates that an operation timed out
	ErrTimeout = errors.New("operation timed out")

	// ErrCanceled indicates that an operation was canceled
	ErrCanceled = errors.New("operation canceled")
)

// ItemError reports a single malformed or unconvertible source item.
// It never aborts a traversal; callers filter, log, and continue.
type ItemError struct {
	Key string // raw source item key, best effort
	Err error
}

// Error implements the error interface
func (e *ItemError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("source item %s: %v", e.Key, e.Err)
	}
	return fmt.Sprintf("source item: %v", e.Err)
}

// Unwrap implements errors.Unwrap
func (e *ItemError) Unwrap() error {
	return e.Err
}

// WriteError reports a rejected create or update against the target store.
// One failed write marks its action failed; the run continues.
type WriteError struct {
	Op       string // "create" or "update"
	RecordID string // empty for creates
	Err      error
}

// Error implements the error interface
func (e *WriteError) Error() string {
	if e.RecordID != "" {
		return fmt.Sprintf("target %s of record %s failed: %v", e.Op, e.RecordID, e.Err)
	}
	return fmt.Sprintf("target %s failed: %v", e.Op, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *WriteError) Unwrap() error {
	return e.Err
}

// APIError represents an error response from a store API
type APIError struct {
	Store      string // "zotero" or "notion"
	Endpoint   string
	StatusCode int
	Message    string
	Err        error
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("API error from %s (status %d): %s", e.Store, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("API error from %s: %s", e.Store, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *APIError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *APIError) Is(target error) bool {
	switch {
	case e.StatusCode == 429:
		return target == ErrRateLimited
	case e.StatusCode == 404:
		return target == ErrNotFound
	case e.StatusCode >= 500:
		return target == ErrSourceUnavailable && e.Store == "zotero" ||
			target == ErrTargetUnavailable && e.Store == "notion"
	}
	return false
}

// ValidationError represents a validation failure
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// ConfigError represents a configuration error
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// ParseError represents an error when parsing data formats
type ParseError struct {
	Format  string // "json", "yaml", "date", etc.
	Subject string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.Subject != "" {
		return fmt.Sprintf("%s parse error in %s: %v", e.Format, e.Subject, e.Err)
	}
	return fmt.Sprintf("%s parse error: %v", e.Format, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// WrapResource wraps an error from a resource operation with context
func WrapResource(op, resource, id string, err error) error {
	if err == nil {
		return nil
	}
	if id != "" {
		return fmt.Errorf("%s %s %s: %w", op, resource, id, err)
	}
	return fmt.Errorf("%s %s: %w", op, resource, err)
}

// WrapParse wraps a parse failure with format and subject context
func WrapParse(format, subject string, err error) error {
	if err == nil {
		return nil
	}
	return &ParseError{Format: format, Subject: subject, Err: err}
}

// Helper functions for error checking

// IsItemError reports whether err is a per-item source error
func IsItemError(err error) bool {
	var ie *ItemError
	return errors.As(err, &ie)
}

// IsWriteError reports whether err is a per-action target write error
func IsWriteError(err error) bool {
	var we *WriteError
	return errors.As(err, &we)
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsRateLimited checks if an error is a rate limit error
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// IsTimeout checks if an error is a timeout error
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// IsCanceled checks if an error is a cancellation error
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled)
}

// IsUnavailable checks if an error indicates either store is unreachable
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrSourceUnavailable) || errors.Is(err, ErrTargetUnavailable)
}

// IsRetryable reports whether a request-level error is worth retrying.
// Rate limits and server-side failures are; validation and not-found are not.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429 || apiErr.StatusCode >= 500
	}
	return false
}
