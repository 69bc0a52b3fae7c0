// Package buffer provides a fixed-capacity circular buffer with absolute
// sequence numbers. Every element pushed is assigned a monotonically
// increasing index that stays meaningful after the buffer wraps, so external
// cursors can reference an element without tracking slot positions.
//
// Ring is not goroutine-safe. Callers own synchronization; the capture
// engine guards its hot and main rings with separate short-lived locks.
package buffer

// Ring is a circular buffer of T. When full, Push overwrites the oldest
// element. Slots are addressed by absolute index: element i lives at slot
// i modulo capacity for its whole lifetime.
type Ring[T any] struct {
	buf   []T
	count int
	next  uint64 // absolute index of the next push; also total pushed
}

// NewRing returns a ring holding at most capacity elements. A capacity
// below one is clamped to one so the ring can always hold an element.
func NewRing[T any](capacity int) *Ring[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring[T]{buf: make([]T, capacity)}
}

// Len returns the number of retained elements.
func (r *Ring[T]) Len() int { return r.count }

// Cap returns the capacity.
func (r *Ring[T]) Cap() int { return len(r.buf) }

// Empty reports whether no elements are retained.
func (r *Ring[T]) Empty() bool { return r.count == 0 }

// TotalPushed returns how many elements have ever been pushed, including
// elements already overwritten. It equals the absolute index the next push
// will receive.
func (r *Ring[T]) TotalPushed() uint64 { return r.next }

// Wrapped reports whether at least one element has been overwritten.
func (r *Ring[T]) Wrapped() bool { return r.next > uint64(len(r.buf)) }

// FirstIndex returns the absolute index of the oldest retained element.
func (r *Ring[T]) FirstIndex() (uint64, bool) {
	if r.count == 0 {
		return 0, false
	}
	return r.next - uint64(r.count), true
}

// LastIndex returns the absolute index of the newest retained element.
func (r *Ring[T]) LastIndex() (uint64, bool) {
	if r.count == 0 {
		return 0, false
	}
	return r.next - 1, true
}

// At returns the element with absolute index i, if still retained.
func (r *Ring[T]) At(i uint64) (T, bool) {
	var zero T
	if i >= r.next || i+uint64(r.count) < r.next {
		return zero, false
	}
	return r.buf[i%uint64(len(r.buf))], true
}

// Push appends v, overwriting the oldest element when full, and returns the
// absolute index assigned to v.
func (r *Ring[T]) Push(v T) uint64 {
	i := r.next
	r.buf[i%uint64(len(r.buf))] = v
	r.next++
	if r.count < len(r.buf) {
		r.count++
	}
	return i
}

// TakeAll removes and returns the retained elements in push order and
// resets the ring to its initial state, including the push counter. The
// difference between TotalPushed before the call and the returned length is
// the number of elements lost to overwrites since the previous TakeAll.
func (r *Ring[T]) TakeAll() []T {
	if r.count == 0 {
		r.next = 0
		return nil
	}
	out := make([]T, r.count)
	first := r.next - uint64(r.count)
	for k := range out {
		out[k] = r.buf[(first+uint64(k))%uint64(len(r.buf))]
	}
	clear(r.buf)
	r.count = 0
	r.next = 0
	return out
}

// Ascend calls fn for each retained element from oldest to newest, stopping
// early when fn returns false.
func (r *Ring[T]) Ascend(fn func(i uint64, v T) bool) {
	if r.count == 0 {
		return
	}
	first := r.next - uint64(r.count)
	for i := first; i < r.next; i++ {
		if !fn(i, r.buf[i%uint64(len(r.buf))]) {
			return
		}
	}
}

// Descend calls fn for each retained element from newest to oldest,
// stopping early when fn returns false.
func (r *Ring[T]) Descend(fn func(i uint64, v T) bool) {
	if r.count == 0 {
		return
	}
	first := r.next - uint64(r.count)
	for i := r.next; i > first; i-- {
		if !fn(i-1, r.buf[(i-1)%uint64(len(r.buf))]) {
			return
		}
	}
}

// Resize changes the capacity while preserving absolute indices. Shrinking
// discards the oldest elements immediately; growing never fabricates
// elements. The new capacity is clamped to at least one.
func (r *Ring[T]) Resize(capacity int) {
	if capacity < 1 {
		capacity = 1
	}
	if capacity == len(r.buf) {
		return
	}
	keep := r.count
	if keep > capacity {
		keep = capacity
	}
	fresh := make([]T, capacity)
	first := r.next - uint64(keep)
	for i := first; i < r.next; i++ {
		v, _ := r.At(i)
		fresh[i%uint64(capacity)] = v
	}
	r.buf = fresh
	r.count = keep
}
