// Package capture implements the log capture pipeline: a small hot buffer
// absorbing bursts on the logging path, a drain scheduler moving batches
// into the larger main buffer, and snapshot queries for consumers.
package capture

import (
	"fmt"
	"time"

	"github.com/logdeck/logdeck/level"
)

// LostTarget is the target carried by synthetic buffer-overrun markers.
const LostTarget = "logdeck"

// Event is one captured log record. It is immutable once created; Index is
// assigned when the event enters the main buffer and identifies it for the
// rest of its lifetime, across buffer wraps.
type Event struct {
	Index   uint64
	Time    time.Time
	Level   level.Level
	Target  string
	Message string
	File    string
	Line    int

	// Lost is non-zero on synthetic markers reporting hot-buffer
	// overwrites. It holds the number of events lost in that drain cycle.
	Lost uint64
}

// Synthetic reports whether ev is a buffer-overrun marker rather than a
// captured application event.
func (ev Event) Synthetic() bool { return ev.Lost > 0 }

// lostEvent builds the marker inserted ahead of a drained batch when the
// hot buffer overwrote events before they could be moved.
func lostEvent(ts time.Time, lost, kept int, offered uint64) Event {
	return Event{
		Time:   ts,
		Level:  level.Warn,
		Target: LostTarget,
		Lost:   uint64(lost),
		Message: fmt.Sprintf("%d events lost, %d recorded out of %d",
			lost, kept, offered),
	}
}

// Filter selects events for snapshot queries. A nil Filter matches all.
type Filter func(Event) bool

// Sink receives every accepted event once, after the capture-level filter
// and independent of any display filtering. Write errors are counted by the
// engine and never interrupt the pipeline.
type Sink interface {
	Write(Event) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(Event) error

// Write calls fn.
func (fn SinkFunc) Write(ev Event) error { return fn(ev) }
