// =============================================================================
// CSV to XLSX Converter - Logging
// =============================================================================
//
// Components log through the small Logger interface below so that library
// callers can plug in their own logger or silence output entirely. The
// default implementation writes structured records with zerolog.
//
// =============================================================================

package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the logging interface used throughout the converter.
// Messages are printf-style format strings.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// DefaultLevel is used when no level is configured.
const DefaultLevel = "info"

// ParseLevel maps a configured level name to a zerolog level.
// The empty string selects DefaultLevel.
func ParseLevel(level string) (zerolog.Level, error) {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "" {
		level = DefaultLevel
	}
	if level == "warning" {
		level = "warn"
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.NoLevel, fmt.Errorf("invalid log level %q", level)
	}
	return lvl, nil
}

// New returns a Logger writing JSON records at or above level to w.
func New(w io.Writer, level string) (Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return FromZerolog(zerolog.New(w).Level(lvl).With().Timestamp().Logger()), nil
}

// NewConsole returns a Logger writing human-readable lines to stderr.
func NewConsole(level string) (Logger, error) {
	return New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}, level)
}

// FromZerolog wraps an existing zerolog logger.
func FromZerolog(l zerolog.Logger) Logger {
	return &zeroLogger{log: l}
}

// Nop returns a Logger that discards everything.
func Nop() Logger {
	return FromZerolog(zerolog.Nop())
}

type zeroLogger struct {
	log zerolog.Logger
}

func (l *zeroLogger) Debug(msg string, args ...interface{}) {
	l.log.Debug().Msgf(msg, args...)
}

func (l *zeroLogger) Info(msg string, args ...interface{}) {
	l.log.Info().Msgf(msg, args...)
}

func (l *zeroLogger) Warn(msg string, args ...interface{}) {
	l.log.Warn().Msgf(msg, args...)
}

func (l *zeroLogger) Error(msg string, args ...interface{}) {
	l.log.Error().Msgf(msg, args...)
}
