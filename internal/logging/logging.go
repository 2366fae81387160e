// Package logging configures the zerolog loggers used by every subsystem.
package logging

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// switchWriter lets Setup redirect loggers that were created before it ran.
type switchWriter struct {
	mu sync.RWMutex
	w  io.Writer
}

func (s *switchWriter) Write(p []byte) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.w.Write(p)
}

func (s *switchWriter) set(w io.Writer) {
	s.mu.Lock()
	s.w = w
	s.mu.Unlock()
}

var (
	out  = &switchWriter{w: os.Stderr}
	root = zerolog.New(out).With().Timestamp().Logger()
)

// Setup sets the global level and output format. An unknown level falls back
// to info.
func Setup(level string, console bool) {
	zerolog.SetGlobalLevel(ParseLevel(level))
	if console {
		out.set(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
	} else {
		out.set(os.Stderr)
	}
}

// SetOutput redirects all loggers, mostly for tests.
func SetOutput(w io.Writer) {
	out.set(w)
}

func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(s) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// Subsystem returns a child logger tagged with the subsystem name.
func Subsystem(name string) *zerolog.Logger {
	l := root.With().Str("subsystem", name).Logger()
	return &l
}
