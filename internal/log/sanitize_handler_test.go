package log

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestSanitize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain text unchanged",
			input: "OpenSSH_9.3p1 Ubuntu",
			want:  "OpenSSH_9.3p1 Ubuntu",
		},
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
		{
			name:  "newline and tab become spaces",
			input: "line one\nline\ttwo",
			want:  "line one line two",
		},
		{
			name:  "ansi escape sequence defanged",
			input: "banner\x1b[2Jrest",
			want:  "banner.[2Jrest",
		},
		{
			name:  "carriage return replaced",
			input: "SSH-2.0-OpenSSH_9.3\r",
			want:  "SSH-2.0-OpenSSH_9.3.",
		},
		{
			name:  "null bytes replaced",
			input: "a\x00b\x00c",
			want:  "a.b.c",
		},
		{
			name:  "unicode preserved",
			input: "servidor versión 2",
			want:  "servidor versión 2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Sanitize(tt.input); got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeTruncatesLongValues(t *testing.T) {
	t.Parallel()

	input := strings.Repeat("A", MaxAttrLen*2)
	got := Sanitize(input)

	if !strings.HasSuffix(got, truncationMarker) {
		t.Errorf("Sanitize() of oversized value missing truncation marker: %q", got[len(got)-30:])
	}
	if len(got) > MaxAttrLen+len(truncationMarker) {
		t.Errorf("Sanitize() length = %d, want at most %d", len(got), MaxAttrLen+len(truncationMarker))
	}
}

func TestSanitizeHandlerScrubsAttrs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(NewSanitizeHandler(slog.NewTextHandler(&buf, nil)))

	logger.Info("port open", "banner", "SSH-2.0\x1b[31mEVIL")

	out := buf.String()
	if strings.Contains(out, "\x1b") {
		t.Errorf("log output contains raw escape byte: %q", out)
	}
	if !strings.Contains(out, "SSH-2.0.[31mEVIL") {
		t.Errorf("log output missing defanged banner: %q", out)
	}
}

func TestSanitizeHandlerScrubsMessage(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(NewSanitizeHandler(slog.NewTextHandler(&buf, nil)))

	logger.Warn("bad\x07message")

	if strings.Contains(buf.String(), "\x07") {
		t.Errorf("log output contains raw bell byte: %q", buf.String())
	}
}

func TestSanitizeHandlerScrubsGroups(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(NewSanitizeHandler(slog.NewTextHandler(&buf, nil)))

	logger.Info("fingerprint",
		slog.Group("service",
			slog.String("product", "nginx"),
			slog.String("evidence", "header\x1b[0m"),
		),
	)

	out := buf.String()
	if strings.Contains(out, "\x1b") {
		t.Errorf("group attribute not scrubbed: %q", out)
	}
	if !strings.Contains(out, "nginx") {
		t.Errorf("benign group attribute lost: %q", out)
	}
}

func TestSanitizeHandlerWithAttrs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(NewSanitizeHandler(slog.NewTextHandler(&buf, nil)))

	logger.With("target", "host\x00name").Info("scanning")

	if strings.Contains(buf.String(), "\x00") {
		t.Errorf("WithAttrs value not scrubbed: %q", buf.String())
	}
}

func TestSanitizeHandlerNonStringAttrsUntouched(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(NewSanitizeHandler(slog.NewTextHandler(&buf, nil)))

	logger.Info("progress", "scanned", 42, "open", 7)

	out := buf.String()
	if !strings.Contains(out, "scanned=42") || !strings.Contains(out, "open=7") {
		t.Errorf("numeric attributes altered: %q", out)
	}
}

func TestSanitizeHandlerEnabled(t *testing.T) {
	t.Parallel()

	h := NewSanitizeHandler(slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))

	if h.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("Enabled(Debug) = true under Warn handler, want false")
	}
	if !h.Enabled(context.Background(), slog.LevelError) {
		t.Error("Enabled(Error) = false under Warn handler, want true")
	}
}

func TestNewLoggerLevels(t *testing.T) {
	t.Parallel()

	var quiet bytes.Buffer
	NewLogger(&quiet, false).Info("hidden")
	if quiet.Len() != 0 {
		t.Errorf("non-verbose logger emitted info output: %q", quiet.String())
	}

	var loud bytes.Buffer
	NewLogger(&loud, true).Debug("visible")
	if loud.Len() == 0 {
		t.Error("verbose logger suppressed debug output")
	}
}
