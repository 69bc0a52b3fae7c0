package view

import (
	"github.com/logdeck/logdeck/capture"
	"github.com/logdeck/logdeck/level"
)

// Visible returns the events the consumer should render, oldest first,
// ending at the live tail or, in page mode, at the anchored event. max
// bounds the row count; max <= 0 returns everything visible.
func (s *State) Visible(max int) []Row {
	s.mu.Lock()
	f := s.filterLocked()
	selected, _ := s.selectedLocked()
	paged, anchor := s.paged, s.anchor
	s.mu.Unlock()

	var events []capture.Event
	if paged {
		events = s.e.Window(f, 0, anchor)
		if max > 0 && len(events) > max {
			events = events[len(events)-max:]
		}
	} else {
		events = s.e.Tail(f, max)
	}

	rows := make([]Row, len(events))
	for i, ev := range events {
		rows[i] = Row{Event: ev, Selected: ev.Target == selected}
	}
	return rows
}

// Targets returns the target panel rows in selection order: each known
// target with its capture and display levels, respecting the hide-off
// filter.
func (s *State) Targets() []TargetRow {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.refreshTargetsLocked()
	rows := make([]TargetRow, len(s.targets))
	for i, t := range s.targets {
		capLevel, ok := s.reg.CaptureLevel(t)
		if !ok {
			capLevel = s.reg.DefaultLevel()
		}
		dispLevel, ok := s.display.Get(t)
		if !ok {
			dispLevel = capLevel
		}
		rows[i] = TargetRow{
			Target:       t,
			CaptureLevel: capLevel,
			DisplayLevel: dispLevel,
			Selected:     i == s.selected,
		}
	}
	return rows
}

// DisplayLevel returns the effective display level for target in this view.
func (s *State) DisplayLevel(target string) level.Level {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.display.Merge(s.reg)
	if l, ok := s.display.Get(target); ok {
		return l
	}
	return s.reg.DefaultLevel()
}
