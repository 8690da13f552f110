package log

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ZerologLogger adapts zerolog.Logger to Logger.
//
// Errors implementing zerolog.LogObjectMarshaler (every error kind in
// pkg/errors does) are embedded as structured objects instead of strings.
type ZerologLogger struct {
	logger zerolog.Logger
}

// NewZerologLogger wraps l.
func NewZerologLogger(l zerolog.Logger) *ZerologLogger {
	return &ZerologLogger{logger: l}
}

func (z *ZerologLogger) Debug(msg string, fields ...any) {
	z.emit(z.logger.Debug(), msg, fields)
}

func (z *ZerologLogger) Info(msg string, fields ...any) {
	z.emit(z.logger.Info(), msg, fields)
}

func (z *ZerologLogger) Warn(msg string, fields ...any) {
	z.emit(z.logger.Warn(), msg, fields)
}

func (z *ZerologLogger) Error(msg string, fields ...any) {
	z.emit(z.logger.Error(), msg, fields)
}

func (z *ZerologLogger) With(fields ...any) Logger {
	ctx := z.logger.With()
	for i := 0; i+1 < len(fields); i += 2 {
		ctx = ctx.Interface(fmt.Sprint(fields[i]), fields[i+1])
	}
	return &ZerologLogger{logger: ctx.Logger()}
}

func (z *ZerologLogger) Enabled(_ context.Context, level Level) bool {
	return toZerologLevel(level) >= z.logger.GetLevel()
}

func (z *ZerologLogger) emit(e *zerolog.Event, msg string, fields []any) {
	if e == nil {
		return
	}
	for i := 0; i+1 < len(fields); i += 2 {
		key := fmt.Sprint(fields[i])
		if err, ok := fields[i+1].(error); ok {
			e = e.AnErr(key, err)
			var m zerolog.LogObjectMarshaler
			if errors.As(err, &m) {
				e = e.Object(key+".details", m)
			}
			continue
		}
		e = e.Interface(key, fields[i+1])
	}
	e.Msg(msg)
}

func toZerologLevel(level Level) zerolog.Level {
	switch {
	case level <= LevelDebug:
		return zerolog.DebugLevel
	case level <= LevelInfo:
		return zerolog.InfoLevel
	case level <= LevelWarn:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}

// ZerologWarnFunc returns a function suitable for errors.SetZerologWarnFunc
// that logs each warning at warn level on l.
func ZerologWarnFunc(l zerolog.Logger) func(warning error) {
	return func(warning error) {
		e := l.Warn().Str("warning", warning.Error())
		var m zerolog.LogObjectMarshaler
		if errors.As(warning, &m) {
			e = e.EmbedObject(m)
		}
		e.Msg("flexcv warning")
	}
}
