package common

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Severity represents log message severity levels
type Severity int

const (
	SeverityDebug Severity = iota
	SeverityInfo
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "DEBUG"
	case SeverityInfo:
		return "INFO"
	case SeverityWarning:
		return "WARNING"
	case SeverityError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseSeverity maps a level name ("debug", "info", "warn", "error") to a Severity.
func ParseSeverity(s string) (Severity, error) {
	lvl, err := zerolog.ParseLevel(s)
	if err != nil {
		return SeverityInfo, err
	}
	switch {
	case lvl <= zerolog.DebugLevel:
		return SeverityDebug, nil
	case lvl == zerolog.InfoLevel:
		return SeverityInfo, nil
	case lvl == zerolog.WarnLevel:
		return SeverityWarning, nil
	default:
		return SeverityError, nil
	}
}

func (s Severity) zerologLevel() zerolog.Level {
	switch s {
	case SeverityDebug:
		return zerolog.DebugLevel
	case SeverityInfo:
		return zerolog.InfoLevel
	case SeverityWarning:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}

// Logger interface defines the logging contract for the decoder and recorder
type Logger interface {
	// Log logs a message with the specified severity
	Log(severity Severity, msg string)

	// Logf logs a formatted message with the specified severity
	Logf(severity Severity, format string, args ...interface{})

	// Error logs an error
	Error(err error)

	// Debug logs a debug message
	Debug(msg string)

	// Info logs an info message
	Info(msg string)

	// Warning logs a warning message
	Warning(msg string)
}

// ZeroLogger implements the Logger interface on top of zerolog
type ZeroLogger struct {
	zl zerolog.Logger
}

// NewZeroLogger creates a JSON logger writing to w, dropping messages below minLevel.
func NewZeroLogger(w io.Writer, minLevel Severity) *ZeroLogger {
	zl := zerolog.New(w).Level(minLevel.zerologLevel()).With().Timestamp().Logger()
	return &ZeroLogger{zl: zl}
}

// NewConsoleLogger creates a human readable logger on stderr.
func NewConsoleLogger(minLevel Severity) *ZeroLogger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	out := zerolog.ConsoleWriter{Out: os.Stderr}
	zl := zerolog.New(out).Level(minLevel.zerologLevel()).With().Timestamp().Caller().Logger()
	return &ZeroLogger{zl: zl}
}

// FromZerolog wraps an already configured zerolog logger.
func FromZerolog(zl zerolog.Logger) *ZeroLogger {
	return &ZeroLogger{zl: zl}
}

// Zerolog exposes the underlying logger for structured fields.
func (l *ZeroLogger) Zerolog() *zerolog.Logger {
	return &l.zl
}

// Log logs a message with the specified severity
func (l *ZeroLogger) Log(severity Severity, msg string) {
	l.zl.WithLevel(severity.zerologLevel()).Msg(msg)
}

// Logf logs a formatted message with the specified severity
func (l *ZeroLogger) Logf(severity Severity, format string, args ...interface{}) {
	l.Log(severity, fmt.Sprintf(format, args...))
}

// Error logs an error
func (l *ZeroLogger) Error(err error) {
	if err != nil {
		l.zl.Error().Err(err).Send()
	}
}

// Debug logs a debug message
func (l *ZeroLogger) Debug(msg string) {
	l.Log(SeverityDebug, msg)
}

// Info logs an info message
func (l *ZeroLogger) Info(msg string) {
	l.Log(SeverityInfo, msg)
}

// Warning logs a warning message
func (l *ZeroLogger) Warning(msg string) {
	l.Log(SeverityWarning, msg)
}

// NoOpLogger is a logger that doesn't log anything
type NoOpLogger struct{}

// NewNoOpLogger creates a new no-op logger
func NewNoOpLogger() *NoOpLogger {
	return &NoOpLogger{}
}

// Log does nothing
func (l *NoOpLogger) Log(severity Severity, msg string) {}

// Logf does nothing
func (l *NoOpLogger) Logf(severity Severity, format string, args ...interface{}) {}

// Error does nothing
func (l *NoOpLogger) Error(err error) {}

// Debug does nothing
func (l *NoOpLogger) Debug(msg string) {}

// Info does nothing
func (l *NoOpLogger) Info(msg string) {}

// Warning does nothing
func (l *NoOpLogger) Warning(msg string) {}
