// Package logging builds the zerolog loggers used by the commands.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ParseLevel maps debug|info|warn|error to a zerolog level. Unknown values
// are info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	}
	return zerolog.InfoLevel
}

// New returns a timestamped logger writing JSON lines to w, or human
// readable lines when console is set. A nil w means stderr.
func New(level string, w io.Writer, console bool) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	if console {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	return zerolog.New(w).Level(ParseLevel(level)).With().Timestamp().Logger()
}
