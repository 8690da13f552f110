package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
)

// Output formats accepted by SetupLogger.
const (
	FormatJSON = "json"
	FormatText = "text"
)

// SetupLogger installs the process-wide slog default.
//
// "json" emits Cloud Logging compatible JSON on stdout, "text" emits
// colourised console output on stderr. Both are wrapped by ErrFmtHandler so
// errors logged under ErrAttrKey carry their stack trace.
func SetupLogger(loglevel, format string) {
	slog.SetDefault(slog.New(NewHandler(os.Stdout, os.Stderr, loglevel, format)))
}

// NewHandler builds the handler SetupLogger installs, writing JSON to
// jsonOut and console text to textOut.
func NewHandler(jsonOut, textOut io.Writer, loglevel, format string) slog.Handler {
	level := ToLogLevel(loglevel)
	var handler slog.Handler
	switch format {
	case FormatText:
		handler = tint.NewHandler(textOut, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	case FormatJSON, "":
		ops := slog.HandlerOptions{
			AddSource: true,
			Level:     level,
			// Replace attributes to convert to CloudLogging format.
			ReplaceAttr: func(groups []string, attr slog.Attr) slog.Attr {
				switch attr.Key {
				case slog.LevelKey:
					attr = slog.Attr{
						Key:   "severity",
						Value: attr.Value,
					}
				case slog.MessageKey:
					attr = slog.Attr{
						Key:   "message",
						Value: attr.Value,
					}
				case slog.SourceKey:
					attr = slog.Attr{
						Key:   "logging.googleapis.com/sourceLocation",
						Value: attr.Value,
					}
				}
				return attr
			},
		}
		handler = slog.NewJSONHandler(jsonOut, &ops)
	default:
		panic(fmt.Sprintf("invalid log format :%s", format))
	}
	return WrapByErrFmtHandler(handler)
}

func ToLogLevel(level string) slog.Level {
	switch level {
	case "info", "":
		return slog.LevelInfo
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		panic(fmt.Sprintf("invalid log level :%s", level))
	}
}

const (
	ErrAttrKey        = "error"
	StacktraceAttrKey = "stacktrace"
)

// ErrAttr is a wrapper to pass err to slog.
func ErrAttr(err error) slog.Attr {
	return slog.Any(ErrAttrKey, err)
}

// SlogLogger adapts *slog.Logger to Logger.
type SlogLogger struct {
	logger *slog.Logger
}

// NewSlogLogger wraps l. A nil l wraps slog.Default() at call time.
func NewSlogLogger(l *slog.Logger) *SlogLogger {
	return &SlogLogger{logger: l}
}

// GetLogger returns a Logger backed by the current slog default.
func GetLogger() Logger {
	return NewSlogLogger(nil)
}

func (s *SlogLogger) target() *slog.Logger {
	if s.logger == nil {
		return slog.Default()
	}
	return s.logger
}

func (s *SlogLogger) Debug(msg string, fields ...any) { s.target().Debug(msg, fields...) }
func (s *SlogLogger) Info(msg string, fields ...any)  { s.target().Info(msg, fields...) }
func (s *SlogLogger) Warn(msg string, fields ...any)  { s.target().Warn(msg, fields...) }
func (s *SlogLogger) Error(msg string, fields ...any) { s.target().Error(msg, fields...) }

func (s *SlogLogger) With(fields ...any) Logger {
	return &SlogLogger{logger: s.target().With(fields...)}
}

func (s *SlogLogger) Enabled(ctx context.Context, level Level) bool {
	return s.target().Enabled(ctx, slog.Level(level))
}

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) Debug(string, ...any)                {}
func (NopLogger) Info(string, ...any)                 {}
func (NopLogger) Warn(string, ...any)                 {}
func (NopLogger) Error(string, ...any)                {}
func (n NopLogger) With(...any) Logger                { return n }
func (NopLogger) Enabled(context.Context, Level) bool { return false }
