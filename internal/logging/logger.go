// Package logging builds the process-wide zerolog logger.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// New returns a logger writing to stderr in the given format.
// Unknown formats fall back to JSON.
func New(format string, debug bool) zerolog.Logger {
	return NewWithWriter(os.Stderr, format, debug)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(w io.Writer, format string, debug bool) zerolog.Logger {
	if strings.EqualFold(format, FormatConsole) {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}

	return zerolog.New(w).Level(level).With().Timestamp().Str("service", "linkshelf").Logger()
}
