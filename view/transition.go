package view

import (
	"github.com/logdeck/logdeck/capture"
	"github.com/logdeck/logdeck/level"
)

// Transition applies one state transition. It is the only mutation path for
// view state; anything mapping input devices to Events lives outside this
// package.
func (s *State) Transition(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch ev {
	case ToggleHidden:
		s.hideTarget = !s.hideTarget
	case ToggleFocus:
		s.focus = !s.focus
	case ToggleHideOff:
		s.hideOff = !s.hideOff
	case SelectPrev:
		s.refreshTargetsLocked()
		if !s.hideTarget && s.selected > 0 {
			s.selected--
		}
	case SelectNext:
		s.refreshTargetsLocked()
		if !s.hideTarget && s.selected+1 < len(s.targets) {
			s.selected++
		}
	case ReduceShown:
		s.adjustDisplayLocked(false)
	case IncreaseShown:
		s.adjustDisplayLocked(true)
	case ReduceCaptured:
		s.adjustCaptureLocked(false)
	case IncreaseCaptured:
		s.adjustCaptureLocked(true)
	case EnterPageMode:
		s.enterPageLocked()
	case PageUp:
		s.pageLocked(-s.pageUpStep())
	case PageDown:
		s.pageLocked(s.pageDownStep())
	case ExitPageMode:
		s.paged = false
	}
}

func (s *State) adjustDisplayLocked(more bool) {
	s.refreshTargetsLocked()
	target, ok := s.selectedLocked()
	if !ok {
		return
	}
	cur, ok := s.display.Get(target)
	if !ok {
		cur = s.reg.DefaultLevel()
	}
	next, ok := step(cur, more)
	if ok {
		s.display.Set(target, next)
	}
}

func (s *State) adjustCaptureLocked(more bool) {
	s.refreshTargetsLocked()
	target, ok := s.selectedLocked()
	if !ok {
		return
	}
	cur, ok := s.reg.CaptureLevel(target)
	if !ok {
		return
	}
	if next, ok := step(cur, more); ok {
		s.reg.SetCaptureLevel(target, next)
	}
}

func step(l level.Level, more bool) (level.Level, bool) {
	if more {
		return l.MoreVerbose()
	}
	return l.LessVerbose()
}

// enterPageLocked pins the anchor to the newest visible event. With nothing
// visible the view stays in tail-follow mode.
func (s *State) enterPageLocked() {
	if s.paged {
		return
	}
	tail := s.e.Tail(s.filterLocked(), 1)
	if len(tail) == 0 {
		return
	}
	s.anchor = tail[0].Index
	s.paged = true
}

// pageLocked moves the anchor by delta visible events. The anchor is pinned
// to an absolute event index, so filter changes while paused cannot move
// the anchored event to a different position. Paging forward to the live
// tail drops back into follow mode.
func (s *State) pageLocked(delta int) {
	if !s.paged {
		if delta > 0 {
			return
		}
		s.enterPageLocked()
		if !s.paged {
			return
		}
	}
	f := s.filterLocked()

	// The anchored event may have been evicted while paused.
	if oldest, ok := s.e.OldestIndex(); ok && s.anchor < oldest {
		s.anchor = oldest
	}

	if idx, moved := s.e.Seek(f, s.anchor, delta); moved {
		s.anchor = idx
	}
	if delta > 0 {
		if tail := s.e.Tail(f, 1); len(tail) == 0 || tail[0].Index <= s.anchor {
			s.paged = false
		}
	}
}

// filterLocked builds the visibility predicate from the current display
// levels and focus flag. The returned closure reads an immutable snapshot
// of the settings so the engine can evaluate it without touching s.mu.
func (s *State) filterLocked() capture.Filter {
	s.refreshTargetsLocked()
	levels := make(map[string]level.Level, s.display.Len())
	for _, t := range s.display.Targets() {
		l, _ := s.display.Get(t)
		levels[t] = l
	}
	var focus string
	focused := false
	if s.focus {
		focus, focused = s.selectedLocked()
	}
	return func(ev capture.Event) bool {
		if ev.Synthetic() {
			return true
		}
		if focused && ev.Target != focus {
			return false
		}
		l, ok := levels[ev.Target]
		if !ok {
			// Unseen by this view: shown, matching lazy registration.
			return true
		}
		return l.Enables(ev.Level)
	}
}

func (s *State) refreshTargetsLocked() {
	s.display.Merge(s.reg)
	targets := s.display.Targets()
	if s.hideOff {
		kept := targets[:0]
		for _, t := range targets {
			if l, ok := s.display.Get(t); ok && l == level.Off {
				continue
			}
			kept = append(kept, t)
		}
		targets = kept
	}
	s.targets = targets
	if s.selected >= len(s.targets) {
		s.selected = max(len(s.targets)-1, 0)
	}
}
