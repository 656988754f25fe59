package procmem

import (
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with procmem-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
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

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithPID adds a pid field to the logger.
func (l *Logger) WithPID(pid int) *Logger {
	return &Logger{
		Logger: l.Logger.With("pid", pid),
	}
}

// WithRegionCount adds a regions field to the logger.
func (l *Logger) WithRegionCount(count int) *Logger {
	return &Logger{
		Logger: l.Logger.With("regions", count),
	}
}

// LogCollect logs a one-shot collection attempt.
func (l *Logger) LogCollect(pid, regions int, err error) {
	if err != nil {
		l.Error("collect failed",
			"pid", pid,
			"error", err,
		)
	} else {
		l.Debug("collect completed",
			"pid", pid,
			"regions", regions,
		)
	}
}

// LogEnrich logs an smaps enrichment attempt.
func (l *Logger) LogEnrich(pid int, err error) {
	if err != nil {
		l.Warn("enrichment failed",
			"pid", pid,
			"error", err,
		)
	} else {
		l.Debug("enrichment completed",
			"pid", pid,
		)
	}
}

// LogScan logs a system-wide scan.
func (l *Logger) LogScan(collected, skipped int, err error) {
	if err != nil {
		l.Error("scan failed",
			"error", err,
		)
	} else {
		l.Info("scan completed",
			"collected", collected,
			"skipped", skipped,
		)
	}
}
