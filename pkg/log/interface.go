// Package log provides a structured logging interface for flexcv.
//
// The interface is a minimal, slog-compatible subset so the cross-validator can
// log through log/slog (the default), zerolog, or an in-memory test logger
// without depending on any of them directly.
//
// Example usage:
//
//	logger := log.GetLogger().With(
//	    log.ComponentKey, "crossval",
//	    log.SchemeKey, "holdout",
//	)
//	logger.Info("Cross-validation started",
//	    log.RepetitionsKey, 100,
//	    log.SamplesKey, 221,
//	)

package log

import (
	"context"
)

// Logger defines a structured logging interface compatible with Go's log/slog.
//
// The interface supports method chaining through the With method, allowing
// for creation of contextual loggers with pre-populated fields.
type Logger interface {
	// Debug logs a debug-level message with optional key-value pairs.
	Debug(msg string, fields ...any)

	// Info logs an info-level message with optional key-value pairs.
	//
	// Example:
	//   logger.Info("Repetition finished",
	//       log.RepetitionKey, 12,
	//       log.DurationMsKey, 3,
	//   )
	Info(msg string, fields ...any)

	// Warn logs a warning-level message. The cross-validator uses it for
	// per-repetition failures that do not abort the run.
	//
	// Example:
	//   logger.Warn("Model failed",
	//       log.ModelKindKey, "wiggly",
	//       log.RepetitionKey, 3,
	//       "error", err,
	//   )
	Warn(msg string, fields ...any)

	// Error logs an error-level message with optional key-value pairs.
	// Pass errors under the "error" key so stack traces are attached by
	// ErrFmtHandler.
	Error(msg string, fields ...any)

	// With returns a new Logger with the given fields pre-populated.
	With(fields ...any) Logger

	// Enabled reports whether the logger emits log records at the given level.
	//
	// Example:
	//   if logger.Enabled(ctx, LevelDebug) {
	//       logger.Debug("Split drawn", "train", split.Train)
	//   }
	Enabled(ctx context.Context, level Level) bool
}

// Level represents a logging level, compatible with slog.Level.
type Level int

// Standard logging levels, values are compatible with slog.Level.
const (
	LevelDebug Level = -4 // Detailed diagnostic information
	LevelInfo  Level = 0  // General operational information
	LevelWarn  Level = 4  // Warning conditions
	LevelError Level = 8  // Error conditions
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}
