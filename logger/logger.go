// Package logger provides leveled, printf-style logging for the library,
// backed by zerolog with a human-readable console writer.
package logger

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// --------------------------------------------------------------------------------
// Types

// Interface is the logging contract consumed by the rest of the library.
//
// Implementations must be safe for concurrent use.
type Interface interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Logger adapts a zerolog.Logger to Interface.
type Logger struct {
	zl zerolog.Logger
}

var _ Interface = (*Logger)(nil)

// --------------------------------------------------------------------------------
// Constructors

// New creates a Logger writing to out at the given level ("debug", "info",
// "warn", "error" or "disabled").
//
// It returns an error if the level string is not recognized.
func New(level string, out io.Writer) (*Logger, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	zl := zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}).
		Level(lvl).
		With().
		Timestamp().
		Logger()

	return &Logger{zl: zl}, nil
}

// Nop returns a Logger that discards everything. Useful in tests.
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

// --------------------------------------------------------------------------------
// Interface Implementation

// Debug logs a message at debug level.
func (l *Logger) Debug(format string, args ...any) {
	l.zl.Debug().Msgf(format, args...)
}

// Info logs a message at info level.
func (l *Logger) Info(format string, args ...any) {
	l.zl.Info().Msgf(format, args...)
}

// Warn logs a message at warn level.
func (l *Logger) Warn(format string, args ...any) {
	l.zl.Warn().Msgf(format, args...)
}

// Error logs a message at error level.
func (l *Logger) Error(format string, args ...any) {
	l.zl.Error().Msgf(format, args...)
}
