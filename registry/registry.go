// Package registry maps log targets to capture levels. The hot logging path
// asks it for a capture decision on every call, so lookups are keyed by a
// precomputed 64-bit hash and the per-target level is read atomically
// through a cached handle, never under a lock a slow consumer could hold.
package registry

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/logdeck/logdeck/level"
)

// DefaultLevel is the capture level assigned to targets first seen before
// any configuration.
const DefaultLevel = level.Info

// Hash computes the hash that keys the target table. It is the classic
// multiplicative string hash, seeded so the empty target is non-zero.
func Hash(s string) uint64 {
	h := uint64(0xdeadbeef)
	for i := 0; i < len(s); i++ {
		h = h*31 + uint64(s[i])
	}
	return h
}

// Handle is the cached per-target capture state handed to call sites. The
// capture decision reads one atomic; call sites are expected to look a
// handle up once and reuse it.
type Handle struct {
	name    string
	hash    uint64
	capture atomic.Int32
}

// Target returns the target string this handle was created for.
func (h *Handle) Target() string { return h.name }

// CaptureLevel returns the current capture threshold.
func (h *Handle) CaptureLevel() level.Level { return level.Level(h.capture.Load()) }

// Enabled reports whether an event of severity l should be captured.
// Lock-free; safe from any goroutine.
func (h *Handle) Enabled(l level.Level) bool {
	return h.CaptureLevel().Enables(l)
}

// Registry is a growth-only table of targets. Construct instances with New;
// the table is injectable so tests and embedding applications can run
// isolated copies instead of sharing process state.
type Registry struct {
	mu      sync.RWMutex
	targets map[uint64]*Handle
	// collisions holds targets whose hash is already owned by a different
	// name. Lookups only consult it after a hash hit with a name mismatch,
	// so the common path stays a single map access.
	collisions map[string]*Handle
	directives []Directive
	def        atomic.Int32
	gen        atomic.Uint64
}

// New returns an empty registry with the default capture level.
func New() *Registry {
	r := &Registry{
		targets:    make(map[uint64]*Handle, 64),
		collisions: make(map[string]*Handle),
	}
	r.def.Store(int32(DefaultLevel))
	return r
}

// DefaultLevel returns the level applied to targets with no directive.
func (r *Registry) DefaultLevel() level.Level { return level.Level(r.def.Load()) }

// SetDefaultLevel changes the level assigned to unseen targets. Existing
// targets keep their levels.
func (r *Registry) SetDefaultLevel(l level.Level) {
	r.def.Store(int32(l))
}

// Generation returns a counter incremented whenever a target is added or a
// level changes. Consumers use it to skip rescans when nothing changed.
func (r *Registry) Generation() uint64 { return r.gen.Load() }

// LookupOrCreate returns the handle for target, creating it at the default
// or directive-derived level on first sighting.
func (r *Registry) LookupOrCreate(target string) *Handle {
	key := Hash(target)
	r.mu.RLock()
	h, ok := r.lookupLocked(key, target)
	r.mu.RUnlock()
	if ok {
		return h
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if h, ok = r.lookupLocked(key, target); ok {
		return h
	}
	h = &Handle{name: target, hash: key}
	h.capture.Store(int32(r.initialLevel(target)))
	if owner, taken := r.targets[key]; taken && owner.name != target {
		r.collisions[target] = h
	} else {
		r.targets[key] = h
	}
	r.gen.Add(1)
	return h
}

// lookupLocked resolves target under either lock mode, falling back to the
// collision table when the hash slot belongs to a different name.
func (r *Registry) lookupLocked(key uint64, target string) (*Handle, bool) {
	h, ok := r.targets[key]
	if ok && h.name != target {
		h, ok = r.collisions[target]
	}
	return h, ok
}

// ShouldCapture reports whether an event against target at severity l should
// enter the pipeline. Unknown targets are created as a side effect so they
// appear in subsequent Targets calls.
func (r *Registry) ShouldCapture(target string, l level.Level) bool {
	return r.LookupOrCreate(target).Enabled(l)
}

// CaptureLevel returns the capture threshold for a known target.
func (r *Registry) CaptureLevel(target string) (level.Level, bool) {
	r.mu.RLock()
	h, ok := r.lookupLocked(Hash(target), target)
	r.mu.RUnlock()
	if !ok {
		return level.Off, false
	}
	return h.CaptureLevel(), true
}

// SetCaptureLevel sets the capture threshold for target, creating the entry
// if needed. Setting the same level twice is a no-op for the generation.
func (r *Registry) SetCaptureLevel(target string, l level.Level) {
	h := r.LookupOrCreate(target)
	if h.capture.Swap(int32(l)) != int32(l) {
		r.gen.Add(1)
	}
}

// Targets returns the known targets in lexicographic order.
func (r *Registry) Targets() []string {
	r.mu.RLock()
	out := make([]string, 0, len(r.targets)+len(r.collisions))
	for _, h := range r.targets {
		out = append(out, h.name)
	}
	for name := range r.collisions {
		out = append(out, name)
	}
	r.mu.RUnlock()
	sort.Strings(out)
	return out
}

// Len returns the number of known targets.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.targets) + len(r.collisions)
}

// Each calls fn for every known target with its current capture level.
// Iteration order is unspecified.
func (r *Registry) Each(fn func(target string, l level.Level)) {
	r.mu.RLock()
	handles := make([]*Handle, 0, len(r.targets)+len(r.collisions))
	for _, h := range r.targets {
		handles = append(handles, h)
	}
	for _, h := range r.collisions {
		handles = append(handles, h)
	}
	r.mu.RUnlock()
	for _, h := range handles {
		fn(h.name, h.CaptureLevel())
	}
}

// initialLevel resolves the starting level for a new target from the env
// filter directives, falling back to the default. Caller holds mu.
func (r *Registry) initialLevel(target string) level.Level {
	if l, ok := matchDirectives(r.directives, target); ok {
		return l
	}
	return r.DefaultLevel()
}
