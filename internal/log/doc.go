// Package log provides sanitized structured logging for scan output.
//
// Remote services control large parts of what the tool logs: banners,
// HTTP header lines, TLS certificate fields. A malicious service can
// embed terminal escape sequences or multi-kilobyte payloads in any of
// them, so every string attribute is scrubbed before it reaches the
// underlying slog handler.
//
// Usage:
//
//	logger := log.NewLogger(os.Stderr, verbose)
//	logger.Info("port open", "target", host, "banner", banner)
package log
