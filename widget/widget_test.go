package widget

import (
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/logdeck/logdeck/capture"
	"github.com/logdeck/logdeck/level"
	"github.com/logdeck/logdeck/view"
)

func newState(t *testing.T) (*capture.Engine, *view.State) {
	t.Helper()
	e := capture.New(capture.Options{HotDepth: 64, Depth: 256})
	e.Registry().SetDefaultLevel(level.Trace)
	return e, view.New(e)
}

func emit(e *capture.Engine, target string, lv level.Level, msg string) {
	e.Capture(capture.Event{Level: lv, Target: target, Message: msg})
	e.Drain()
}

// plainLogStyles renders without escape sequences so assertions can match
// raw strings.
func plainLogStyles() LogStyles {
	s := lipgloss.NewStyle()
	return LogStyles{Error: s, Warn: s, Info: s, Debug: s, Trace: s}
}

func TestTextFormatterHeader(t *testing.T) {
	f := TextFormatter{AbbrevLevel: true}
	ev := capture.Event{
		Time:    time.Date(2026, 8, 31, 9, 30, 5, 0, time.UTC),
		Level:   level.Warn,
		Target:  "db",
		Message: "slow query",
	}
	lines := f.Format(80, ev)
	require.Len(t, lines, 1)
	assert.Equal(t, "09:30:05:W:db:slow query", lines[0])
}

func TestTextFormatterHiddenFields(t *testing.T) {
	f := TextFormatter{HideTimestamp: true, HideLevel: true, HideTarget: true}
	lines := f.Format(80, capture.Event{Message: "bare"})
	require.Len(t, lines, 1)
	assert.Equal(t, "bare", lines[0])
}

func TestTextFormatterLocation(t *testing.T) {
	f := TextFormatter{
		HideTimestamp: true,
		HideLevel:     true,
		HideTarget:    true,
		ShowFile:      true,
		ShowLine:      true,
	}
	ev := capture.Event{Message: "boom", File: "worker.go", Line: 42}
	lines := f.Format(80, ev)
	require.Len(t, lines, 1)
	assert.Equal(t, "worker.go:42:boom", lines[0])
}

func TestTextFormatterWrapIndent(t *testing.T) {
	f := TextFormatter{HideTimestamp: true, HideLevel: true, HideTarget: true}
	lines := f.Format(10, capture.Event{Message: "abcdefghijklmnop"})
	require.Len(t, lines, 2)
	assert.Equal(t, "abcdefghij", lines[0])
	assert.Equal(t, "  klmnop", lines[1])
}

func TestTextFormatterZeroWidth(t *testing.T) {
	f := TextFormatter{}
	assert.Nil(t, f.Format(0, capture.Event{Message: "x"}))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abcdef", 3))
	assert.Equal(t, "", Truncate("abcdef", 0))
	// Wide runes never straddle the boundary.
	assert.Equal(t, "日", Truncate("日本", 3))
}

func TestLogViewBottomAligned(t *testing.T) {
	e, s := newState(t)
	for i := 0; i < 5; i++ {
		emit(e, "app", level.Info, fmt.Sprintf("m%d", i))
	}

	v := NewLogView()
	v.Styles = plainLogStyles()
	v.Formatter = TextFormatter{HideTimestamp: true, HideLevel: true, HideTarget: true}
	v.SetSize(40, 3)

	out := v.Render(s)
	assert.Equal(t, "m2\nm3\nm4", out)
}

func TestLogViewWrappedKeepsNewest(t *testing.T) {
	e, s := newState(t)
	emit(e, "app", level.Info, "older event that wraps across lines")
	emit(e, "app", level.Info, "new")

	v := NewLogView()
	v.Styles = plainLogStyles()
	v.Formatter = TextFormatter{HideTimestamp: true, HideLevel: true, HideTarget: true}
	v.SetSize(10, 2)

	lines := strings.Split(v.Render(s), "\n")
	require.Len(t, lines, 2)
	// The newest event owns the last row; the wrapped older event keeps
	// only its tail line.
	assert.Equal(t, "new", lines[1])
}

func TestLogViewTinyViewport(t *testing.T) {
	e, s := newState(t)
	emit(e, "app", level.Info, "m")

	v := NewLogView()
	v.SetSize(0, 0)
	assert.Equal(t, "", v.Render(s))
	v.SetSize(1, 1)
	assert.NotPanics(t, func() { v.Render(s) })
}

// plainTargetStyles keeps output free of escape sequences and marks hidden
// cells by lowercasing so the capture/display split stays observable.
func plainTargetStyles() TargetStyles {
	plain := lipgloss.NewStyle()
	return TargetStyles{
		Shown:     plain,
		Hidden:    lipgloss.NewStyle().Transform(strings.ToLower),
		Off:       plain,
		Name:      plain,
		Highlight: plain,
	}
}

func TestTargetPanelIndicators(t *testing.T) {
	e, s := newState(t)
	emit(e, "alpha", level.Info, "m")
	e.Registry().SetCaptureLevel("alpha", level.Warn)

	p := NewTargetPanel()
	p.Styles = plainTargetStyles()
	p.SetSize(20, 5)

	// Captured through Warn, displayed through Warn: two shown cells,
	// three off cells.
	assert.Equal(t, "EW   :alpha", p.Render(s))

	// Lowering the display level keeps the cell captured but hidden.
	s.SetDisplayLevel("alpha", level.Error)
	assert.Equal(t, "Ew   :alpha", p.Render(s))
}

func TestTargetPanelFocusDims(t *testing.T) {
	e, s := newState(t)
	emit(e, "alpha", level.Error, "m")
	emit(e, "beta", level.Error, "m")
	e.Registry().SetCaptureLevel("alpha", level.Error)
	e.Registry().SetCaptureLevel("beta", level.Error)

	s.Transition(view.ToggleFocus)

	p := NewTargetPanel()
	p.Styles = plainTargetStyles()
	p.SetSize(20, 5)

	lines := strings.Split(p.Render(s), "\n")
	require.Len(t, lines, 2)
	// The selected target keeps its shown cells; the other is dimmed.
	assert.Equal(t, "E    :alpha", lines[0])
	assert.Equal(t, "e    :beta", lines[1])
}

func TestTargetPanelHidden(t *testing.T) {
	e, s := newState(t)
	emit(e, "alpha", level.Info, "m")

	s.Transition(view.ToggleHidden)

	p := NewTargetPanel()
	p.SetSize(20, 5)
	assert.Equal(t, "", p.Render(s))
}

func TestTargetPanelNarrow(t *testing.T) {
	e, s := newState(t)
	emit(e, "alpha", level.Info, "m")

	p := NewTargetPanel()
	p.SetSize(6, 5)
	assert.Equal(t, "", p.Render(s))
}

func TestScrollOffset(t *testing.T) {
	// Everything fits.
	assert.Equal(t, 0, scrollOffset(3, 1, 4, 5))
	// Selection above the window scrolls up to it.
	assert.Equal(t, 1, scrollOffset(4, 1, 10, 3))
	// Selection below the window scrolls down just enough.
	assert.Equal(t, 5, scrollOffset(0, 7, 10, 3))
	// In-window selection leaves the offset alone.
	assert.Equal(t, 2, scrollOffset(2, 3, 10, 3))
	// Offset past the end clamps back.
	assert.Equal(t, 7, scrollOffset(9, 8, 10, 3))
}

func TestKeyMapEvents(t *testing.T) {
	m := DefaultKeyMap()

	ev, ok := m.Event(tea.KeyMsg{Type: tea.KeyUp})
	require.True(t, ok)
	assert.Equal(t, view.SelectPrev, ev)

	ev, ok = m.Event(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'h'}})
	require.True(t, ok)
	assert.Equal(t, view.ToggleHidden, ev)

	ev, ok = m.Event(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'-'}})
	require.True(t, ok)
	assert.Equal(t, view.ReduceCaptured, ev)

	ev, ok = m.Event(tea.KeyMsg{Type: tea.KeyPgUp})
	require.True(t, ok)
	assert.Equal(t, view.PageUp, ev)

	_, ok = m.Event(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'z'}})
	assert.False(t, ok)
}
