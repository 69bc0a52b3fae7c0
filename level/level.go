// Package level defines the severity scale used throughout the capture
// pipeline. Lower values are more severe: Error orders before Warn, which
// orders before Info, and so on. Off sits below Error and permits nothing.
package level

import (
	"fmt"
	"strings"
)

// Level is a severity threshold or the severity of a single event.
type Level int8

const (
	Off Level = iota
	Error
	Warn
	Info
	Debug
	Trace
)

// All lists the event severities from most to least severe. Off is a
// threshold only; no event carries it.
var All = []Level{Error, Warn, Info, Debug, Trace}

// String returns the canonical upper-case name of the level.
func (l Level) String() string {
	switch l {
	case Off:
		return "OFF"
	case Error:
		return "ERROR"
	case Warn:
		return "WARN"
	case Info:
		return "INFO"
	case Debug:
		return "DEBUG"
	case Trace:
		return "TRACE"
	default:
		return fmt.Sprintf("LEVEL(%d)", int8(l))
	}
}

// Abbrev returns the single-letter form used by compact displays.
func (l Level) Abbrev() string {
	switch l {
	case Error:
		return "E"
	case Warn:
		return "W"
	case Info:
		return "I"
	case Debug:
		return "D"
	case Trace:
		return "T"
	default:
		return "?"
	}
}

// Padded returns the name padded to five characters for aligned output.
func (l Level) Padded() string {
	switch l {
	case Warn:
		return "WARN "
	case Info:
		return "INFO "
	default:
		return l.String()
	}
}

// Enables reports whether an event of severity ev passes threshold l.
// An Off threshold passes nothing.
func (l Level) Enables(ev Level) bool {
	return ev <= l && l != Off
}

// MoreVerbose returns the next level toward Trace. ok is false when l is
// already Trace.
func (l Level) MoreVerbose() (Level, bool) {
	if l >= Trace {
		return l, false
	}
	return l + 1, true
}

// LessVerbose returns the next level toward Off. ok is false when l is
// already Off.
func (l Level) LessVerbose() (Level, bool) {
	if l <= Off {
		return l, false
	}
	return l - 1, true
}

// Valid reports whether l is one of the defined levels.
func (l Level) Valid() bool {
	return l >= Off && l <= Trace
}

// Parse converts a level name to a Level. Matching is case-insensitive and
// accepts common aliases ("warning", "err") and the single-letter forms.
func Parse(s string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "OFF", "NONE":
		return Off, nil
	case "ERROR", "ERR", "E":
		return Error, nil
	case "WARN", "WARNING", "W":
		return Warn, nil
	case "INFO", "I":
		return Info, nil
	case "DEBUG", "D":
		return Debug, nil
	case "TRACE", "T":
		return Trace, nil
	}
	return Off, fmt.Errorf("unknown level %q", s)
}
