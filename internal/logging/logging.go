// Package logging provides a small leveled wrapper around the standard
// library's log package, in the style the rest of this codebase already
// prints startup and migration lines with (log.Printf/log.Println,
// emoji-prefixed severity markers) rather than pulling in a structured
// logging library.
package logging

import (
	"log"
	"os"
	"strings"
)

// Level orders logging verbosity from most to least chatty.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel maps a config string (case-insensitive) to a Level, defaulting
// to LevelInfo for anything unrecognized.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Logger prints leveled, prefixed lines to a standard library *log.Logger.
type Logger struct {
	min   Level
	inner *log.Logger
}

// New returns a Logger gated at min, writing to stderr with the same
// timestamp flags the teacher's daemon startup logging uses.
func New(min Level) *Logger {
	return &Logger{min: min, inner: log.New(os.Stderr, "", log.LstdFlags)}
}

func (l *Logger) log(level Level, prefix, format string, args ...any) {
	if level < l.min {
		return
	}
	l.inner.Printf(prefix+" "+format, args...)
}

func (l *Logger) Debugf(format string, args ...any) { l.log(LevelDebug, "🔍", format, args...) }
func (l *Logger) Infof(format string, args ...any)  { l.log(LevelInfo, "✅", format, args...) }
func (l *Logger) Warnf(format string, args ...any)  { l.log(LevelWarn, "⚠️", format, args...) }
func (l *Logger) Errorf(format string, args ...any) { l.log(LevelError, "❌", format, args...) }
