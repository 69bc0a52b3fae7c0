package capture

// Snapshot queries copy matching events out under the main lock and release
// it before any downstream formatting, so consumers can take arbitrarily
// long without stalling the drain.

// Tail returns the most recent max events matching f, oldest first, ending
// at the live head. max <= 0 returns all matching events.
func (e *Engine) Tail(f Filter, max int) []Event {
	e.mainMu.Lock()
	var out []Event
	e.main.Descend(func(_ uint64, ev Event) bool {
		if f != nil && !f(ev) {
			return true
		}
		out = append(out, ev)
		return max <= 0 || len(out) < max
	})
	e.mainMu.Unlock()
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Window returns events matching f with absolute indices in [from, to],
// oldest first. Bounds outside the retained range are clamped.
func (e *Engine) Window(f Filter, from, to uint64) []Event {
	e.mainMu.Lock()
	var out []Event
	e.main.Ascend(func(i uint64, ev Event) bool {
		if i < from {
			return true
		}
		if i > to {
			return false
		}
		if f == nil || f(ev) {
			out = append(out, ev)
		}
		return true
	})
	e.mainMu.Unlock()
	return out
}

// Seek walks matching events relative to the absolute index from: delta
// steps forward when positive, backward when negative. The event at from
// itself is not counted. It returns the index reached; when the walk hits
// the edge of the retained history early it stops at the last matching
// index in that direction. moved is false when no matching event exists in
// that direction.
func (e *Engine) Seek(f Filter, from uint64, delta int) (idx uint64, moved bool) {
	if delta == 0 {
		return from, false
	}
	e.mainMu.Lock()
	defer e.mainMu.Unlock()

	steps := delta
	if steps < 0 {
		steps = -steps
	}
	walk := func(i uint64, ev Event) bool {
		if f != nil && !f(ev) {
			return true
		}
		idx, moved = i, true
		steps--
		return steps > 0
	}
	if delta > 0 {
		e.main.Ascend(func(i uint64, ev Event) bool {
			if i <= from {
				return true
			}
			return walk(i, ev)
		})
	} else {
		e.main.Descend(func(i uint64, ev Event) bool {
			if i >= from {
				return true
			}
			return walk(i, ev)
		})
	}
	return idx, moved
}

// At returns the retained event with absolute index i.
func (e *Engine) At(i uint64) (Event, bool) {
	e.mainMu.Lock()
	defer e.mainMu.Unlock()
	return e.main.At(i)
}

// OldestIndex returns the absolute index of the oldest retained event.
func (e *Engine) OldestIndex() (uint64, bool) {
	e.mainMu.Lock()
	defer e.mainMu.Unlock()
	return e.main.FirstIndex()
}

// NewestIndex returns the absolute index of the newest retained event.
func (e *Engine) NewestIndex() (uint64, bool) {
	e.mainMu.Lock()
	defer e.mainMu.Unlock()
	return e.main.LastIndex()
}

// Len returns the number of events retained in the main buffer.
func (e *Engine) Len() int {
	e.mainMu.Lock()
	defer e.mainMu.Unlock()
	return e.main.Len()
}

// TotalEvents returns how many events have entered the main buffer,
// including ones since evicted.
func (e *Engine) TotalEvents() uint64 {
	e.mainMu.Lock()
	defer e.mainMu.Unlock()
	return e.main.TotalPushed()
}
