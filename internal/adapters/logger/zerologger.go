package logger

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"patternScout/internal/ports"
)

// ZeroLogger implements ports.Logger on top of zerolog, emitting one JSON object per line.
type ZeroLogger struct {
	logger zerolog.Logger
}

// NewZeroLogger creates a JSON logger writing to os.Stderr.
func NewZeroLogger(level LogLevel, component string) *ZeroLogger {
	return NewZeroLoggerTo(os.Stderr, level, component)
}

// NewZeroLoggerTo creates a JSON logger writing to w.
func NewZeroLoggerTo(w io.Writer, level LogLevel, component string) *ZeroLogger {
	zl := zerolog.New(w).
		Level(toZerologLevel(level)).
		With().
		Timestamp().
		Logger()
	if component != "" {
		zl = zl.With().Str("component", component).Logger()
	}
	return &ZeroLogger{logger: zl}
}

// WithComponent returns a child logger tagged with a component name.
func (z *ZeroLogger) WithComponent(component string) *ZeroLogger {
	return &ZeroLogger{logger: z.logger.With().Str("component", component).Logger()}
}

func toZerologLevel(level LogLevel) zerolog.Level {
	switch level {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func withFields(e *zerolog.Event, fields []ports.Fields) *zerolog.Event {
	if len(fields) == 0 || len(fields[0]) == 0 {
		return e
	}
	for k, v := range fields[0] {
		switch val := v.(type) {
		case time.Duration:
			e = e.Dur(k, val)
		case error:
			e = e.AnErr(k, val)
		default:
			e = e.Interface(k, val)
		}
	}
	return e
}

// Debug logs a message at Debug level.
func (z *ZeroLogger) Debug(_ context.Context, msg string, fields ...ports.Fields) {
	withFields(z.logger.Debug(), fields).Msg(msg)
}

// Info logs a message at Info level.
func (z *ZeroLogger) Info(_ context.Context, msg string, fields ...ports.Fields) {
	withFields(z.logger.Info(), fields).Msg(msg)
}

// Warn logs a message at Warning level.
func (z *ZeroLogger) Warn(_ context.Context, msg string, fields ...ports.Fields) {
	withFields(z.logger.Warn(), fields).Msg(msg)
}

// Error logs an error message at Error level.
func (z *ZeroLogger) Error(_ context.Context, err error, msg string, fields ...ports.Fields) {
	withFields(z.logger.Error().Err(err), fields).Msg(msg)
}
