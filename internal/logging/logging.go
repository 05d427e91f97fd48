// Package logging configures the zerolog logger shared by commands and the server.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// Config holds logging configuration options.
type Config struct {
	// Level is the minimum level to output: debug, info, warn or error.
	Level string
	// JSON forces JSON output even on a terminal.
	JSON bool
	// Output defaults to os.Stderr.
	Output io.Writer
}

// ParseLevel maps a level name to zerolog, defaulting to warn so command
// output on stdout stays uncluttered.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "error":
		return zerolog.ErrorLevel
	case "off", "disabled":
		return zerolog.Disabled
	default:
		return zerolog.WarnLevel
	}
}

// New builds a logger. Terminals get the console writer; pipes and files get JSON.
func New(cfg Config) zerolog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if !cfg.JSON && isTerminal(out) {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	}
	return zerolog.New(out).Level(ParseLevel(cfg.Level)).With().Timestamp().Logger()
}

// Nop returns a logger that discards everything, for tests and library defaults.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}
