package log

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"unicode"
)

// MaxAttrLen is the maximum length of a logged string attribute.
// Longer values are truncated with a marker so a hostile service
// cannot flood the log through a banner or header line.
const MaxAttrLen = 512

// truncationMarker is appended to values cut at MaxAttrLen.
const truncationMarker = "...(truncated)"

// SanitizeHandler wraps an slog.Handler and scrubs string attributes
// of records before they are written.
//
// Design decision: We use a handler wrapper rather than sanitizing at
// each call site because:
//  1. It integrates seamlessly with standard slog APIs
//  2. It works with any underlying handler (text, JSON, etc.)
//  3. Call sites cannot forget to scrub a field that came off the wire
type SanitizeHandler struct {
	// handler is the underlying slog handler that receives scrubbed records.
	handler slog.Handler
}

// NewSanitizeHandler creates a SanitizeHandler wrapping the given handler.
// If handler is nil, the returned SanitizeHandler wraps slog.Default().Handler().
func NewSanitizeHandler(handler slog.Handler) *SanitizeHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &SanitizeHandler{handler: handler}
}

// Enabled reports whether the handler handles records at the given level.
// It delegates to the underlying handler.
func (h *SanitizeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle scrubs the record's message and attributes and passes the
// result to the underlying handler.
func (h *SanitizeHandler) Handle(ctx context.Context, r slog.Record) error {
	scrubbed := slog.NewRecord(r.Time, r.Level, Sanitize(r.Message), r.PC)

	r.Attrs(func(a slog.Attr) bool {
		scrubbed.AddAttrs(h.sanitizeAttr(a))
		return true
	})

	return h.handler.Handle(ctx, scrubbed)
}

// WithAttrs returns a new handler with the given attributes added.
// Attributes are scrubbed before being added.
func (h *SanitizeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	scrubbed := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		scrubbed[i] = h.sanitizeAttr(a)
	}
	return &SanitizeHandler{handler: h.handler.WithAttrs(scrubbed)}
}

// WithGroup returns a new handler with the given group name.
func (h *SanitizeHandler) WithGroup(name string) slog.Handler {
	return &SanitizeHandler{handler: h.handler.WithGroup(name)}
}

// sanitizeAttr scrubs a single attribute, recursively handling groups.
func (h *SanitizeHandler) sanitizeAttr(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		scrubbed := make([]slog.Attr, len(attrs))
		for i, groupAttr := range attrs {
			scrubbed[i] = h.sanitizeAttr(groupAttr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(scrubbed...)}
	}

	if a.Value.Kind() == slog.KindString {
		return slog.String(a.Key, Sanitize(a.Value.String()))
	}

	return a
}

// Sanitize returns s with control characters replaced and the length
// capped at MaxAttrLen. Escape sequences lose their ESC byte, which
// leaves the remainder inert as plain text.
func Sanitize(s string) string {
	if s == "" {
		return s
	}

	var b strings.Builder
	b.Grow(min(len(s), MaxAttrLen))
	for _, r := range s {
		if b.Len() >= MaxAttrLen {
			b.WriteString(truncationMarker)
			break
		}
		switch {
		case r == '\n' || r == '\t':
			b.WriteRune(' ')
		case unicode.IsControl(r) || r == unicode.ReplacementChar:
			b.WriteRune('.')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NewLogger creates a *slog.Logger whose output is scrubbed of control
// characters and oversized values.
//
// Parameters:
//   - w: The io.Writer to write log output to (typically os.Stderr)
//   - verbose: If true, sets log level to Debug; otherwise Warn
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	textHandler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(NewSanitizeHandler(textHandler))
}
