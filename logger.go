package spatialhash

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with table-specific helpers so every message uses
// the same field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a Logger with the given handler.
// If handler is nil, a text handler at info level writes to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that writes JSON to stderr.
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewTextLogger creates a Logger that writes human-readable text to stderr.
// Use slog.LevelDebug to see per-probe traces.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NoopLogger creates a Logger that discards everything.
func NoopLogger() *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // unreachable
	}))
}

// WithTable tags every message with a table name.
func (l *Logger) WithTable(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("table", name),
	}
}

func (l *Logger) tracing() bool {
	return l.Enabled(context.Background(), slog.LevelDebug)
}

// LogProbe traces one probe step of Get or of the update phase of Set.
func (l *Logger) LogProbe(op string, slot, distance int) {
	l.Debug("probe", "op", op, "slot", slot, "distance", distance)
}

// LogUpdate traces an in-place value update.
func (l *Logger) LogUpdate(k Key, slot int) {
	l.Debug("key found, updated in place", "key", k, "slot", slot)
}

// LogEmptySlot traces an insertion into an empty slot.
func (l *Logger) LogEmptySlot(k Key, slot, distance int) {
	l.Debug("found empty slot", "key", k, "slot", slot, "distance", distance)
}

// LogOccupied traces a skipped occupied slot during insertion.
func (l *Logger) LogOccupied(slot, value int) {
	l.Debug("probing for empty slot", "slot", slot, "occupant", value)
}

// LogTableFull reports a dropped insertion.
func (l *Logger) LogTableFull(k Key, capacity int) {
	l.Warn("table full, insertion rejected", "key", k, "capacity", capacity)
}

// LogSnapshot reports a snapshot save.
func (l *Logger) LogSnapshot(ctx context.Context, name string, entries, bytes int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "snapshot failed",
			"name", name,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "snapshot saved",
		"name", name,
		"entries", entries,
		"bytes", bytes,
	)
}

// LogLoad reports a snapshot load.
func (l *Logger) LogLoad(ctx context.Context, name string, entries int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "snapshot load failed",
			"name", name,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "snapshot loaded",
		"name", name,
		"entries", entries,
	)
}
