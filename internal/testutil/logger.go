package testutil

import (
	"bytes"
	"log/slog"
	"testing"
)

// NopLogger discards everything
func NopLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// TestLogger routes debug-level text logs into t.Log so they only show up
// for failing or verbose runs
func TestLogger(t testing.TB) *slog.Logger {
	t.Helper()
	return slog.New(slog.NewTextHandler(tbWriter{t}, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

type tbWriter struct{ t testing.TB }

func (w tbWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Log(string(bytes.TrimRight(p, "\n")))
	return len(p), nil
}

// CaptureLogger records JSON log entries into the returned buffer
func CaptureLogger(level slog.Level) (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: level})), &buf
}
