package view

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/logdeck/logdeck/capture"
	"github.com/logdeck/logdeck/level"
)

func newEngine(t *testing.T) *capture.Engine {
	t.Helper()
	e := capture.New(capture.Options{HotDepth: 64, Depth: 256})
	e.Registry().SetDefaultLevel(level.Trace)
	return e
}

func emit(e *capture.Engine, target string, lv level.Level, msg string) {
	e.Capture(capture.Event{Level: lv, Target: target, Message: msg})
	e.Drain()
}

func rowMessages(rows []Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Message
	}
	return out
}

func TestVisibleTailFollow(t *testing.T) {
	e := newEngine(t)
	for i := 0; i < 6; i++ {
		emit(e, "app", level.Info, fmt.Sprintf("m%d", i))
	}

	s := New(e)
	rows := s.Visible(3)
	assert.Equal(t, []string{"m3", "m4", "m5"}, rowMessages(rows))

	// New events show up immediately in tail-follow mode.
	emit(e, "app", level.Info, "m6")
	rows = s.Visible(3)
	assert.Equal(t, []string{"m4", "m5", "m6"}, rowMessages(rows))
}

func TestDisplayLevelFilters(t *testing.T) {
	e := newEngine(t)
	emit(e, "app", level.Info, "visible")
	emit(e, "app", level.Debug, "hidden")

	s := New(e)
	s.SetDisplayLevel("app", level.Info)
	assert.Equal(t, []string{"visible"}, rowMessages(s.Visible(0)))

	// Hidden events remain captured: raising the display level brings
	// them back.
	s.SetDisplayLevel("app", level.Debug)
	assert.Equal(t, []string{"visible", "hidden"}, rowMessages(s.Visible(0)))
}

func TestFocusSelectedTarget(t *testing.T) {
	e := newEngine(t)
	emit(e, "alpha", level.Info, "a1")
	emit(e, "beta", level.Info, "b1")
	emit(e, "alpha", level.Info, "a2")

	s := New(e)
	// Cursor starts on the lexicographically first target, "alpha".
	s.Transition(ToggleFocus)
	assert.Equal(t, []string{"a1", "a2"}, rowMessages(s.Visible(0)))

	s.Transition(ToggleFocus)
	assert.Len(t, s.Visible(0), 3)
}

func TestSelectionCursor(t *testing.T) {
	e := newEngine(t)
	for _, tgt := range []string{"gamma", "alpha", "beta"} {
		emit(e, tgt, level.Info, "x")
	}

	s := New(e)
	rows := s.Targets()
	require.Len(t, rows, 3)
	assert.Equal(t, "alpha", rows[0].Target)
	assert.True(t, rows[0].Selected)

	s.Transition(SelectNext)
	tgt, ok := s.SelectedTarget()
	require.True(t, ok)
	assert.Equal(t, "beta", tgt)

	s.Transition(SelectNext)
	s.Transition(SelectNext) // clamped at the last target
	tgt, _ = s.SelectedTarget()
	assert.Equal(t, "gamma", tgt)

	s.Transition(SelectPrev)
	tgt, _ = s.SelectedTarget()
	assert.Equal(t, "beta", tgt)
}

func TestAdjustDisplayLevelClamped(t *testing.T) {
	e := newEngine(t)
	e.Registry().SetCaptureLevel("app", level.Info)
	emit(e, "app", level.Info, "x")

	s := New(e)
	s.Transition(ReduceShown)
	assert.Equal(t, level.Warn, s.DisplayLevel("app"))
	s.Transition(ReduceShown)
	s.Transition(ReduceShown)
	assert.Equal(t, level.Off, s.DisplayLevel("app"))
	s.Transition(ReduceShown) // clamped at Off
	assert.Equal(t, level.Off, s.DisplayLevel("app"))

	for i := 0; i < 10; i++ {
		s.Transition(IncreaseShown)
	}
	assert.Equal(t, level.Trace, s.DisplayLevel("app"))
}

func TestAdjustCaptureLevelWritesThrough(t *testing.T) {
	e := newEngine(t)
	e.Registry().SetCaptureLevel("app", level.Info)
	emit(e, "app", level.Info, "x")

	s := New(e)
	s.Transition(IncreaseCaptured)
	l, ok := e.Registry().CaptureLevel("app")
	require.True(t, ok)
	assert.Equal(t, level.Debug, l)

	s.Transition(ReduceCaptured)
	s.Transition(ReduceCaptured)
	l, _ = e.Registry().CaptureLevel("app")
	assert.Equal(t, level.Warn, l)
}

func TestPageModeAnchorsNewestVisible(t *testing.T) {
	e := newEngine(t)
	for i := 0; i < 10; i++ {
		emit(e, "app", level.Info, fmt.Sprintf("m%d", i))
	}

	s := New(e)
	s.SetViewport(4)
	s.Transition(EnterPageMode)
	anchor, paged := s.Anchor()
	require.True(t, paged)
	assert.Equal(t, uint64(9), anchor)

	// New events do not shift the window while paused.
	emit(e, "app", level.Info, "m10")
	rows := s.Visible(3)
	assert.Equal(t, []string{"m7", "m8", "m9"}, rowMessages(rows))

	s.Transition(ExitPageMode)
	rows = s.Visible(3)
	assert.Equal(t, []string{"m8", "m9", "m10"}, rowMessages(rows))
}

func TestPageUpMovesByVisibleEvents(t *testing.T) {
	e := newEngine(t)
	// Interleave two targets; only "shown" will be visible.
	for i := 0; i < 10; i++ {
		emit(e, "shown", level.Info, fmt.Sprintf("s%d", i))
		emit(e, "noisy", level.Info, fmt.Sprintf("n%d", i))
	}

	s := New(e)
	s.SetDisplayLevel("noisy", level.Off)
	s.SetPageSteps(3, 1)

	s.Transition(EnterPageMode)
	anchor, _ := s.Anchor()
	assert.Equal(t, uint64(18), anchor, "anchor on s9, the newest visible event")

	s.Transition(PageUp)
	anchor, _ = s.Anchor()
	// Three visible events back: s9 -> s8 -> s7 -> s6 at index 12.
	assert.Equal(t, uint64(12), anchor)
}

func TestAnchorPinnedAcrossFilterChange(t *testing.T) {
	e := newEngine(t)
	for i := 0; i < 8; i++ {
		lv := level.Info
		if i%2 == 1 {
			lv = level.Debug
		}
		emit(e, "app", lv, fmt.Sprintf("m%d", i))
	}

	s := New(e)
	s.SetDisplayLevel("app", level.Info)
	s.Transition(EnterPageMode)
	anchor, _ := s.Anchor()
	assert.Equal(t, uint64(6), anchor)

	rows := s.Visible(0)
	bottom := rows[len(rows)-1]

	// Changing the filter while paused must keep the same event at the
	// bottom of the window: the anchor is an absolute index, not a row.
	s.SetDisplayLevel("app", level.Debug)
	rows = s.Visible(0)
	assert.Equal(t, bottom.Index, rows[len(rows)-1].Index)
	assert.Greater(t, len(rows), 4, "more rows become visible above the anchor")
}

func TestPageDownReturnsToTail(t *testing.T) {
	e := newEngine(t)
	for i := 0; i < 10; i++ {
		emit(e, "app", level.Info, fmt.Sprintf("m%d", i))
	}

	s := New(e)
	s.SetPageSteps(4, 2)
	s.Transition(EnterPageMode)
	s.Transition(PageUp)
	anchor, _ := s.Anchor()
	assert.Equal(t, uint64(5), anchor)

	s.Transition(PageDown)
	anchor, paged := s.Anchor()
	require.True(t, paged)
	assert.Equal(t, uint64(7), anchor)

	// Reaching the newest visible event resumes tail-follow.
	s.Transition(PageDown)
	assert.False(t, s.Paged())
}

func TestPageUpFromTailEntersPageMode(t *testing.T) {
	e := newEngine(t)
	for i := 0; i < 6; i++ {
		emit(e, "app", level.Info, fmt.Sprintf("m%d", i))
	}

	s := New(e)
	s.SetPageSteps(2, 1)
	s.Transition(PageUp)
	anchor, paged := s.Anchor()
	require.True(t, paged)
	assert.Equal(t, uint64(3), anchor)
}

func TestAnchorClampedAfterEviction(t *testing.T) {
	e := capture.New(capture.Options{HotDepth: 64, Depth: 4})
	e.Registry().SetDefaultLevel(level.Trace)
	for i := 0; i < 5; i++ {
		emit(e, "app", level.Info, fmt.Sprintf("m%d", i))
	}

	s := New(e)
	s.SetPageSteps(1, 1)
	s.Transition(EnterPageMode)

	// Push the anchored event out of the retained window.
	for i := 5; i < 12; i++ {
		emit(e, "app", level.Info, fmt.Sprintf("m%d", i))
	}
	s.Transition(PageUp)
	anchor, paged := s.Anchor()
	require.True(t, paged)
	oldest, ok := e.OldestIndex()
	require.True(t, ok)
	assert.GreaterOrEqual(t, anchor, oldest)
}

func TestToggleHideOff(t *testing.T) {
	e := newEngine(t)
	emit(e, "loud", level.Info, "x")
	emit(e, "quiet", level.Info, "x")

	s := New(e)
	s.SetDisplayLevel("quiet", level.Off)
	require.Len(t, s.Targets(), 2)

	s.Transition(ToggleHideOff)
	rows := s.Targets()
	require.Len(t, rows, 1)
	assert.Equal(t, "loud", rows[0].Target)

	s.Transition(ToggleHideOff)
	assert.Len(t, s.Targets(), 2)
}

func TestToggleHiddenFreezesSelection(t *testing.T) {
	e := newEngine(t)
	emit(e, "a", level.Info, "x")
	emit(e, "b", level.Info, "x")

	s := New(e)
	s.Transition(ToggleHidden)
	assert.True(t, s.TargetsHidden())

	s.Transition(SelectNext)
	tgt, _ := s.SelectedTarget()
	assert.Equal(t, "a", tgt, "cursor does not move while the panel is hidden")
}

func TestSyntheticMarkersAlwaysVisible(t *testing.T) {
	e := capture.New(capture.Options{HotDepth: 2, Depth: 32})
	e.Registry().SetDefaultLevel(level.Trace)
	for i := 0; i < 3; i++ {
		e.Capture(capture.Event{Level: level.Info, Target: "app", Message: fmt.Sprintf("m%d", i)})
	}
	e.Drain()

	s := New(e)
	s.SetDisplayLevel("app", level.Off)
	rows := s.Visible(0)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Synthetic())
}
