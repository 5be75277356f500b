package config

import "errors"

// Configuration validation errors returned by Config.Validate.
//
// Design decision: We use package-level sentinel errors rather than creating
// new error instances in Validate. Callers can use errors.Is for
// programmatic handling while still getting human-readable messages.
var (
	// ErrInvalidMaxDepth is returned when the depth limit is negative.
	// Use 0 for unlimited depth.
	ErrInvalidMaxDepth = errors.New("invalid max depth: must be non-negative (0 = unlimited)")

	// ErrInvalidConcurrency is returned when the concurrency ceiling is not
	// positive. Zero concurrent requests would mean no crawling at all.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	// A zero or negative timeout would fail every request immediately.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidMaxURLs is returned when the URL cap is negative.
	// Use 0 for no cap.
	ErrInvalidMaxURLs = errors.New("invalid max URLs: must be non-negative (0 = unlimited)")

	// ErrInvalidDelay is returned when the inter-request delay is negative.
	// Use 0 for no delay.
	ErrInvalidDelay = errors.New("invalid delay: must be non-negative")

	// ErrEmptyUserAgent is returned when the user agent is empty or blank.
	ErrEmptyUserAgent = errors.New("invalid user agent: must not be empty")
)
