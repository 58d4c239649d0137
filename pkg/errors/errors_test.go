package errors

import (
	"fmt"
	"testing"
)

func TestItemError(t *testing.T) {
	cause := New("missing title")
	err := &ItemError{Key: "ABCD1234", Err: cause}

	if got := err.Error(); got != "source item ABCD1234: missing title" {
		t.Errorf("unexpected message: %q", got)
	}
	if !Is(err, cause) {
		t.Error("ItemError should unwrap to its cause")
	}
	if !IsItemError(err) {
		t.Error("IsItemError should match")
	}
	if !IsItemError(fmt.Errorf("wrapped: %w", err)) {
		t.Error("IsItemError should match through wrapping")
	}
}

func TestWriteError(t *testing.T) {
	err := &WriteError{Op: "update", RecordID: "page-1", Err: ErrNotFound}

	if !IsWriteError(err) {
		t.Error("IsWriteError should match")
	}
	if !IsNotFound(err) {
		t.Error("WriteError wrapping ErrNotFound should satisfy IsNotFound")
	}

	create := &WriteError{Op: "create", Err: New("schema mismatch")}
	if got := create.Error(); got != "target create failed: schema mismatch" {
		t.Errorf("unexpected message: %q", got)
	}
}

func TestAPIErrorIs(t *testing.T) {
	tests := []struct {
		name   string
		err    *APIError
		target error
		want   bool
	}{
		{"rate limited", &APIError{Store: "notion", StatusCode: 429}, ErrRateLimited, true},
		{"not found", &APIError{Store: "notion", StatusCode: 404}, ErrNotFound, true},
		{"zotero 500", &APIError{Store: "zotero", StatusCode: 503}, ErrSourceUnavailable, true},
		{"notion 500", &APIError{Store: "notion", StatusCode: 502}, ErrTargetUnavailable, true},
		{"zotero 500 is not target", &APIError{Store: "zotero", StatusCode: 503}, ErrTargetUnavailable, false},
		{"bad request is nothing", &APIError{Store: "notion", StatusCode: 400}, ErrRateLimited, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.target); got != tt.want {
				t.Errorf("Is(%v, %v) = %v, want %v", tt.err, tt.target, got, tt.want)
			}
		})
	}
}

func TestIsRetryable(t *testing.T) {
	if IsRetryable(nil) {
		t.Error("nil is not retryable")
	}
	if !IsRetryable(&APIError{Store: "notion", StatusCode: 429}) {
		t.Error("429 should be retryable")
	}
	if !IsRetryable(&APIError{Store: "zotero", StatusCode: 500}) {
		t.Error("500 should be retryable")
	}
	if IsRetryable(&APIError{Store: "notion", StatusCode: 404}) {
		t.Error("404 should not be retryable")
	}
	if IsRetryable(&ValidationError{Field: "token", Message: "missing"}) {
		t.Error("validation errors should not be retryable")
	}
}

func TestValidationError(t *testing.T) {
	err := &ValidationError{Field: "group_id", Message: "cannot be empty"}
	if !Is(err, ErrInvalidInput) {
		t.Error("ValidationError should satisfy ErrInvalidInput")
	}
}

func TestIsUnavailable(t *testing.T) {
	if !IsUnavailable(fmt.Errorf("fetch: %w", ErrSourceUnavailable)) {
		t.Error("wrapped ErrSourceUnavailable should be unavailable")
	}
	if IsUnavailable(ErrNotFound) {
		t.Error("ErrNotFound is not unavailability")
	}
}
