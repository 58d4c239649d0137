// Package constants provides shared constants used throughout the refsync codebase.
// This includes timeouts, retry policy values, pagination sizes, and other
// configuration values that should be consistent across the application.
package constants

import "time"

// Timeout constants define various timeout durations used in the application
const (
	// DefaultHTTPTimeout is the standard timeout for a single HTTP request to either store
	DefaultHTTPTimeout = 30 * time.Second

	// DefaultRunTimeout is the timeout for a full synchronization run
	DefaultRunTimeout = 10 * time.Minute

	// RetryBackoff is the base backoff duration for retries
	RetryBackoff = 1 * time.Second

	// MaxRetryBackoff is the maximum backoff duration for retries
	MaxRetryBackoff = 30 * time.Second
)

// Limit constants define various limits and capacities
const (
	// MaxRetries is the maximum number of attempts for a single request
	MaxRetries = 3

	// ZoteroPageSize is the number of items requested per Zotero page
	ZoteroPageSize = 100

	// NotionPageSize is the number of records requested per Notion query page
	NotionPageSize = 100

	// RichTextLimit is the maximum length Notion accepts for a rich text value
	RichTextLimit = 2000

	// MaxConcurrency caps the executor worker pool
	MaxConcurrency = 8
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644

	// SecureFilePermissions is for sensitive files like API tokens (rw-------)
	SecureFilePermissions = 0600
)

// API constants pin the wire protocol versions spoken to each store
const (
	// ZoteroAPIVersion is the Zotero Web API version header value
	ZoteroAPIVersion = "3"

	// NotionAPIVersion is the Notion-Version header value
	NotionAPIVersion = "2022-06-28"
)
