// Package widget renders capture pipeline state for terminal UIs built on
// bubbletea. The widgets consume view state and emit strings; they never
// reach into the buffers directly and never mutate view state themselves.
package widget

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/logdeck/logdeck/capture"
	"github.com/logdeck/logdeck/level"
)

// Formatter turns one event into display lines no wider than width.
type Formatter interface {
	Format(width int, ev capture.Event) []string
}

// TextFormatter is the standard line layout: timestamp, level, target,
// optional location, then the message, wrapped with a hanging indent.
type TextFormatter struct {
	// Separator between header fields. Zero uses ':'.
	Separator rune
	// TimestampFormat is a time layout; empty uses "15:04:05".
	TimestampFormat string
	AbbrevLevel     bool
	HideTimestamp   bool
	HideLevel       bool
	HideTarget      bool
	ShowFile        bool
	ShowLine        bool
	// Indent for wrapped continuation lines. Zero uses two spaces.
	Indent int
}

// Format renders ev into one or more lines of at most width cells. A width
// below one yields no lines; content never panics on narrow viewports, it
// truncates.
func (f TextFormatter) Format(width int, ev capture.Event) []string {
	if width < 1 {
		return nil
	}
	sep := f.Separator
	if sep == 0 {
		sep = ':'
	}
	var head strings.Builder
	if !f.HideTimestamp {
		layout := f.TimestampFormat
		if layout == "" {
			layout = "15:04:05"
		}
		head.WriteString(ev.Time.Format(layout))
		head.WriteRune(sep)
	}
	if !f.HideLevel {
		if f.AbbrevLevel {
			head.WriteString(ev.Level.Abbrev())
		} else {
			head.WriteString(ev.Level.Padded())
		}
		head.WriteRune(sep)
	}
	if !f.HideTarget && ev.Target != "" {
		head.WriteString(ev.Target)
		head.WriteRune(sep)
	}
	if f.ShowFile && ev.File != "" {
		head.WriteString(ev.File)
		head.WriteRune(sep)
	}
	if f.ShowLine && ev.Line > 0 {
		fmt.Fprintf(&head, "%d", ev.Line)
		head.WriteRune(sep)
	}
	head.WriteString(ev.Message)

	indent := f.Indent
	if indent == 0 {
		indent = 2
	}
	if indent >= width {
		indent = 0
	}
	return wrap(head.String(), width, indent)
}

// wrap splits s into lines of at most width display cells, measured with
// runewidth so wide and combining characters never straddle a boundary.
// Continuation lines are indented.
func wrap(s string, width, indent int) []string {
	var lines []string
	pad := strings.Repeat(" ", indent)
	var b strings.Builder
	limit := width
	used := 0
	for _, r := range s {
		if r == '\n' {
			lines = append(lines, b.String())
			b.Reset()
			b.WriteString(pad)
			used = indent
			limit = width
			continue
		}
		w := runewidth.RuneWidth(r)
		if used+w > limit && used > 0 {
			lines = append(lines, b.String())
			b.Reset()
			b.WriteString(pad)
			used = indent
		}
		b.WriteRune(r)
		used += w
	}
	lines = append(lines, b.String())
	return lines
}

// Truncate shortens s to at most width display cells, appending no
// ellipsis; it is the safe building block for one-line panes.
func Truncate(s string, width int) string {
	if width < 1 {
		return ""
	}
	return runewidth.Truncate(s, width, "")
}

// levelStyleKey normalizes a level for style lookup; synthetic markers use
// the Warn style.
func levelStyleKey(ev capture.Event) level.Level {
	if ev.Synthetic() {
		return level.Warn
	}
	return ev.Level
}
