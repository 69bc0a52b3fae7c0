package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/logdeck/logdeck/level"
)

func TestLevelMapSetGet(t *testing.T) {
	m := NewLevelMap()
	_, ok := m.Get("app")
	assert.False(t, ok)

	m.Set("app", level.Debug)
	l, ok := m.Get("app")
	require.True(t, ok)
	assert.Equal(t, level.Debug, l)

	gen := m.Generation()
	m.Set("app", level.Debug)
	assert.Equal(t, gen, m.Generation(), "idempotent set should not bump generation")
}

func TestMergeCopiesNewTargets(t *testing.T) {
	r := New()
	r.SetCaptureLevel("a", level.Info)
	r.SetCaptureLevel("b", level.Trace)

	m := NewLevelMap()
	m.Merge(r)
	assert.Equal(t, []string{"a", "b"}, m.Targets())

	l, _ := m.Get("a")
	assert.Equal(t, level.Info, l)
	l, _ = m.Get("b")
	assert.Equal(t, level.Trace, l)
}

func TestMergeCapsDisplayAtCaptureLevel(t *testing.T) {
	r := New()
	r.SetCaptureLevel("a", level.Warn)

	m := NewLevelMap()
	m.Set("a", level.Trace) // more verbose than captured
	m.Merge(r)

	l, _ := m.Get("a")
	assert.Equal(t, level.Warn, l, "display level must not exceed capture level")
}

func TestMergeRespectsDefaultDisplayLevel(t *testing.T) {
	r := New()
	r.SetCaptureLevel("chatty", level.Trace)
	r.SetCaptureLevel("strict", level.Error)

	m := NewLevelMap()
	m.SetDefaultDisplayLevel(level.Info)
	m.Merge(r)

	l, _ := m.Get("chatty")
	assert.Equal(t, level.Info, l)
	// Capture level below the default display level wins.
	l, _ = m.Get("strict")
	assert.Equal(t, level.Error, l)
}

func TestMergeShortCircuitsOnGeneration(t *testing.T) {
	r := New()
	r.SetCaptureLevel("a", level.Info)

	m := NewLevelMap()
	m.Merge(r)

	// Local override survives a merge when the registry is unchanged.
	m.Set("a", level.Error)
	m.Merge(r)
	l, _ := m.Get("a")
	assert.Equal(t, level.Error, l)

	// After a registry change the merge runs again; the lower display
	// level is kept.
	r.SetCaptureLevel("b", level.Debug)
	m.Merge(r)
	l, _ = m.Get("a")
	assert.Equal(t, level.Error, l)
	l, _ = m.Get("b")
	assert.Equal(t, level.Debug, l)
}
