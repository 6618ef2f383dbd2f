// Package testutil provides test utilities for structured logging.
package testutil

import (
	"context"
	"log/slog"
	"sync"
	"testing"
)

// NewTestLogger returns a logger that writes to t.Log().
// Logs only appear on test failure or when running with -v.
func NewTestLogger(t testing.TB) *slog.Logger {
	t.Helper()
	return slog.New(slog.NewTextHandler(testWriter{t}, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

type testWriter struct {
	t testing.TB
}

func (w testWriter) Write(p []byte) (n int, err error) {
	w.t.Helper()
	w.t.Log(string(p))
	return len(p), nil
}

// LogEntry is one captured record with its attributes flattened.
type LogEntry struct {
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

// LogRecorder is a slog.Handler that keeps every record at debug and above.
// Loggers derived with With share the recorder's entries.
type LogRecorder struct {
	store *logStore
	attrs []slog.Attr
}

type logStore struct {
	mu      sync.Mutex
	entries []LogEntry
}

// NewRecordingLogger returns a logger and the recorder behind it.
func NewRecordingLogger() (*slog.Logger, *LogRecorder) {
	rec := &LogRecorder{store: &logStore{}}
	return slog.New(rec), rec
}

// Enabled implements slog.Handler.
func (r *LogRecorder) Enabled(context.Context, slog.Level) bool { return true }

// Handle implements slog.Handler.
func (r *LogRecorder) Handle(_ context.Context, record slog.Record) error {
	e := LogEntry{Level: record.Level, Message: record.Message, Attrs: map[string]any{}}
	for _, a := range r.attrs {
		e.Attrs[a.Key] = a.Value.Any()
	}
	record.Attrs(func(a slog.Attr) bool {
		e.Attrs[a.Key] = a.Value.Any()
		return true
	})
	r.store.mu.Lock()
	r.store.entries = append(r.store.entries, e)
	r.store.mu.Unlock()
	return nil
}

// WithAttrs implements slog.Handler.
func (r *LogRecorder) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &LogRecorder{store: r.store, attrs: append(append([]slog.Attr{}, r.attrs...), attrs...)}
}

// WithGroup implements slog.Handler. Groups are flattened.
func (r *LogRecorder) WithGroup(string) slog.Handler { return r }

// Entries returns a copy of the captured records.
func (r *LogRecorder) Entries() []LogEntry {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return append([]LogEntry(nil), r.store.entries...)
}

// Find returns the first record with msg.
func (r *LogRecorder) Find(msg string) (LogEntry, bool) {
	for _, e := range r.Entries() {
		if e.Message == msg {
			return e, true
		}
	}
	return LogEntry{}, false
}
