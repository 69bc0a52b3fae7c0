// Package dispatch routes one-shot events through a chain of listeners.
// Applications build a chain per interaction (for example, key handlers for
// the currently focused pane); once any listener consumes an event the
// whole chain is cleared and must be rebuilt.
package dispatch

import (
	"sync"

	"github.com/google/uuid"
)

// Listener inspects an event and reports whether it consumed it.
type Listener[E any] func(E) bool

// Dispatcher fans an event out to listeners in registration order.
type Dispatcher[E any] struct {
	mu    sync.Mutex
	order []uuid.UUID
	chain map[uuid.UUID]Listener[E]
}

// New returns an empty dispatcher.
func New[E any]() *Dispatcher[E] {
	return &Dispatcher[E]{chain: make(map[uuid.UUID]Listener[E])}
}

// AddListener appends fn to the chain and returns a handle for Remove.
func (d *Dispatcher[E]) AddListener(fn Listener[E]) uuid.UUID {
	id := uuid.New()
	d.mu.Lock()
	d.order = append(d.order, id)
	d.chain[id] = fn
	d.mu.Unlock()
	return id
}

// Remove drops the listener registered under id, if still present.
func (d *Dispatcher[E]) Remove(id uuid.UUID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.chain[id]; !ok {
		return
	}
	delete(d.chain, id)
	for i, v := range d.order {
		if v == id {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
}

// Dispatch offers ev to the listeners in order. The first listener
// returning true consumes the event: the chain is cleared and Dispatch
// returns true. With no consumer the chain stays intact and Dispatch
// returns false.
func (d *Dispatcher[E]) Dispatch(ev E) bool {
	d.mu.Lock()
	fns := make([]Listener[E], 0, len(d.order))
	for _, id := range d.order {
		fns = append(fns, d.chain[id])
	}
	d.mu.Unlock()

	for _, fn := range fns {
		if fn(ev) {
			d.Clear()
			return true
		}
	}
	return false
}

// Clear empties the chain.
func (d *Dispatcher[E]) Clear() {
	d.mu.Lock()
	d.order = nil
	d.chain = make(map[uuid.UUID]Listener[E])
	d.mu.Unlock()
}

// Len returns the number of registered listeners.
func (d *Dispatcher[E]) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.order)
}
