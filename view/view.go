// Package view holds per-consumer display state over the capture engine: a
// display-level table mirroring the target registry, a selection cursor, and
// the scroll/page position. State mutates only through discrete transition
// events; raw key handling belongs to the embedding application.
package view

import (
	"sync"

	"github.com/logdeck/logdeck/capture"
	"github.com/logdeck/logdeck/level"
	"github.com/logdeck/logdeck/registry"
)

// Event is a discrete state transition.
type Event int

const (
	// ToggleHidden hides or shows the target selection panel.
	ToggleHidden Event = iota
	// ToggleFocus restricts the log window to the selected target.
	ToggleFocus
	// SelectPrev moves the target cursor up.
	SelectPrev
	// SelectNext moves the target cursor down.
	SelectNext
	// ReduceShown lowers the display level of the selected target.
	ReduceShown
	// IncreaseShown raises the display level of the selected target.
	IncreaseShown
	// ReduceCaptured lowers the capture level of the selected target.
	ReduceCaptured
	// IncreaseCaptured raises the capture level of the selected target.
	IncreaseCaptured
	// EnterPageMode pins the scroll anchor to the newest visible event.
	EnterPageMode
	// PageUp moves the anchor backward by the page-up step.
	PageUp
	// PageDown moves the anchor forward by the page-down step.
	PageDown
	// ExitPageMode returns to tail-follow mode.
	ExitPageMode
	// ToggleHideOff hides targets whose display level is Off from the panel.
	ToggleHideOff
)

// Row is one visible event plus whether it belongs to the selected target.
type Row struct {
	capture.Event
	Selected bool
}

// TargetRow describes one target panel entry.
type TargetRow struct {
	Target       string
	CaptureLevel level.Level
	DisplayLevel level.Level
	Selected     bool
}

// State is the per-consumer view state. All methods are safe for concurrent
// use, but a State is typically owned by a single consumer. Independent
// consumers construct independent States over the same engine; none of them
// owns registry data, they only look it up.
type State struct {
	mu      sync.Mutex
	e       *capture.Engine
	reg     *registry.Registry
	display *registry.LevelMap

	targets  []string
	selected int

	focus      bool
	hideTarget bool
	hideOff    bool

	paged  bool
	anchor uint64

	viewportH int
	stepUp    int // 0 derives from viewport height
	stepDown  int
}

// New returns a view over e with defaults mirroring the registry.
func New(e *capture.Engine) *State {
	return &State{
		e:       e,
		reg:     e.Registry(),
		display: registry.NewLevelMap(),
	}
}

// SetDefaultDisplayLevel caps the display level given to targets as they
// first appear in this view.
func (s *State) SetDefaultDisplayLevel(l level.Level) *State {
	s.mu.Lock()
	s.display.SetDefaultDisplayLevel(l)
	s.mu.Unlock()
	return s
}

// SetDisplayLevel overrides the display level for one target in this view.
func (s *State) SetDisplayLevel(target string, l level.Level) *State {
	s.mu.Lock()
	s.display.Set(target, l)
	s.mu.Unlock()
	return s
}

// SetViewport records the consumer's viewport height, from which the
// default page steps are derived: half a viewport up, a quarter down, each
// at least one event.
func (s *State) SetViewport(height int) {
	s.mu.Lock()
	s.viewportH = height
	s.mu.Unlock()
}

// SetPageSteps overrides the derived page steps. Zero keeps a step derived
// from the viewport height.
func (s *State) SetPageSteps(up, down int) {
	s.mu.Lock()
	s.stepUp, s.stepDown = up, down
	s.mu.Unlock()
}

// Paged reports whether the view is pinned to a scroll anchor rather than
// following the live tail.
func (s *State) Paged() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paged
}

// Anchor returns the absolute index the view is pinned to.
func (s *State) Anchor() (uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.anchor, s.paged
}

// Focused reports whether only the selected target is shown.
func (s *State) Focused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.focus
}

// TargetsHidden reports whether the target panel is hidden.
func (s *State) TargetsHidden() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hideTarget
}

// SelectedTarget returns the target under the selection cursor.
func (s *State) SelectedTarget() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectedLocked()
}

func (s *State) selectedLocked() (string, bool) {
	if s.selected < 0 || s.selected >= len(s.targets) {
		return "", false
	}
	return s.targets[s.selected], true
}

func (s *State) pageUpStep() int {
	if s.stepUp > 0 {
		return s.stepUp
	}
	if n := s.viewportH / 2; n > 0 {
		return n
	}
	return 1
}

func (s *State) pageDownStep() int {
	if s.stepDown > 0 {
		return s.stepDown
	}
	if n := s.viewportH / 4; n > 0 {
		return n
	}
	return 1
}
