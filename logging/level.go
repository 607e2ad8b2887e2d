// Package logging defines the logging hooks threaded through the driver.
//
// Components never call a global logger: they accept a Func value, the same
// shape the teacher's connector and client code use, so callers can route
// messages to whatever framework they already have wired up.
package logging

import (
	"fmt"
	"os"
)

// Level identifies the severity of a log message.
type Level int

// Severity levels, from least to most severe.
const (
	Debug Level = iota
	Info
	Warn
	Error
)

// String implements the Stringer interface.
func (l Level) String() string {
	switch l {
	case Debug:
		return "DEBUG"
	case Info:
		return "INFO"
	case Warn:
		return "WARN"
	case Error:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Func is the logging hook accepted by the client handle and its
// collaborators.
type Func func(level Level, format string, args ...any)

// DefaultLogFunc writes to stderr, prefixed with the level name.
func DefaultLogFunc(level Level, format string, args ...any) {
	fmt.Fprintf(os.Stderr, "%s: %s\n", level, fmt.Sprintf(format, args...))
}

// Discard ignores every message. Useful as a default when the caller hasn't
// configured a log function and doesn't want DefaultLogFunc's stderr output.
func Discard(level Level, format string, args ...any) {}
