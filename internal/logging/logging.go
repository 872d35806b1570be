// Package logging builds the zerolog loggers used by the Lambdas and the CLI.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

var levelAliases = map[string]zerolog.Level{
	"debug":   zerolog.DebugLevel,
	"info":    zerolog.InfoLevel,
	"warn":    zerolog.WarnLevel,
	"warning": zerolog.WarnLevel,
	"error":   zerolog.ErrorLevel,
}

// ParseLevel maps a level name to a zerolog level. Unknown names yield info.
func ParseLevel(raw string) zerolog.Level {
	level, ok := levelAliases[strings.ToLower(strings.TrimSpace(raw))]
	if !ok {
		return zerolog.InfoLevel
	}
	return level
}

// New returns a logger writing JSON lines to stdout, which CloudWatch
// ingests as-is. With console set it writes human-readable output to stderr.
func New(level string, console bool) zerolog.Logger {
	var w io.Writer = os.Stdout
	if console {
		w = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	}
	return NewWithWriter(w, level)
}

// NewWithWriter returns a JSON logger writing to w.
func NewWithWriter(w io.Writer, level string) zerolog.Logger {
	return zerolog.New(w).Level(ParseLevel(level)).With().Timestamp().Logger()
}
