package registry

import (
	"sort"

	"github.com/logdeck/logdeck/level"
)

// LevelMap is a target-to-level table used for display-side filtering. Each
// view owns one as a non-owning mirror of the registry: Merge copies newly
// seen targets in without taking ownership of registry state, and a
// generation counter lets repeated merges short-circuit when the registry
// has not changed.
type LevelMap struct {
	levels         map[string]level.Level
	generation     uint64
	originGen      uint64
	originGenValid bool
	defaultDisplay *level.Level
}

// NewLevelMap returns an empty table.
func NewLevelMap() *LevelMap {
	return &LevelMap{levels: make(map[string]level.Level)}
}

// Set binds target to l, bumping the generation on actual change.
func (m *LevelMap) Set(target string, l level.Level) {
	if cur, ok := m.levels[target]; ok && cur == l {
		return
	}
	m.levels[target] = l
	m.generation++
}

// Get returns the level bound to target.
func (m *LevelMap) Get(target string) (level.Level, bool) {
	l, ok := m.levels[target]
	return l, ok
}

// Generation returns a counter incremented on every change.
func (m *LevelMap) Generation() uint64 { return m.generation }

// SetDefaultDisplayLevel caps the level given to targets copied in by Merge.
// It does not affect targets already present.
func (m *LevelMap) SetDefaultDisplayLevel(l level.Level) {
	m.defaultDisplay = &l
}

// DefaultDisplayLevel returns the configured merge default, if any.
func (m *LevelMap) DefaultDisplayLevel() (level.Level, bool) {
	if m.defaultDisplay == nil {
		return level.Off, false
	}
	return *m.defaultDisplay, true
}

// Targets returns the known targets in lexicographic order.
func (m *LevelMap) Targets() []string {
	out := make([]string, 0, len(m.levels))
	for t := range m.levels {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of entries.
func (m *LevelMap) Len() int { return len(m.levels) }

// Merge pulls the registry's targets into the table. The registry's capture
// level is the ceiling: an existing display level above it is reduced, and
// unknown targets are copied at the merge default (capped by the capture
// level) or the capture level itself. Merging against an unchanged registry
// is a no-op.
func (m *LevelMap) Merge(r *Registry) {
	gen := r.Generation()
	if m.originGenValid && m.originGen == gen {
		return
	}
	r.Each(func(target string, capture level.Level) {
		if cur, ok := m.levels[target]; ok && cur <= capture {
			return
		}
		l := capture
		if m.defaultDisplay != nil && *m.defaultDisplay < capture {
			l = *m.defaultDisplay
		}
		m.Set(target, l)
	})
	m.originGen = gen
	m.originGenValid = true
}
