package config

import "errors"

// Configuration validation errors, as sentinels so callers can use
// errors.Is while still getting a readable message.
var (
	// ErrNoTarget is returned when no target expression was given.
	ErrNoTarget = errors.New("no target specified: provide an IP, CIDR, range, or hostname")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidConcurrency is returned when the concurrency limit is
	// not positive; zero would admit no jobs at all.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrConflictingReportFormats is returned when both --json and
	// --markdown are requested.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrNotAuthorized is returned when the operator has not confirmed
	// authorization to scan the targets. This tool only performs
	// authorized reconnaissance.
	ErrNotAuthorized = errors.New("refusing to scan: confirm authorization with --authorized")
)
