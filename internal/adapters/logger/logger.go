package logger

import (
	"context"
	"io"
	"strings"

	"patternScout/internal/ports"
)

// Format selects the log line encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// ParseFormat converts a string to a Format, defaulting to JSON.
func ParseFormat(s string) Format {
	if strings.EqualFold(strings.TrimSpace(s), string(FormatText)) {
		return FormatText
	}
	return FormatJSON
}

// New builds the logger selected by format.
func New(w io.Writer, format Format, level LogLevel, component string) ports.Logger {
	if format == FormatText {
		return NewStdLoggerTo(w, level, component)
	}
	return NewZeroLoggerTo(w, level, component)
}

// nopLogger discards everything.
type nopLogger struct{}

// Nop returns a logger that discards all messages.
func Nop() ports.Logger { return nopLogger{} }

func (nopLogger) Debug(context.Context, string, ...ports.Fields)        {}
func (nopLogger) Info(context.Context, string, ...ports.Fields)         {}
func (nopLogger) Warn(context.Context, string, ...ports.Fields)         {}
func (nopLogger) Error(context.Context, error, string, ...ports.Fields) {}
