package capture

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/logdeck/logdeck/buffer"
	"github.com/logdeck/logdeck/registry"
)

const (
	// DefaultHotDepth is the hot buffer capacity when none is configured.
	DefaultHotDepth = 1000
	// DefaultDepth is the main buffer capacity when none is configured.
	DefaultDepth = 10000
	// DefaultInterval is the drain scheduler tick.
	DefaultInterval = 10 * time.Millisecond
)

// Options configure a new Engine. The zero value is usable; unset fields
// take the package defaults.
type Options struct {
	Registry *registry.Registry
	HotDepth int
	Depth    int
	Interval time.Duration
}

// Engine owns the two-tier buffer pipeline. Producers append to the hot
// buffer under a short lock; a background drain moves batches into the main
// buffer on a timer or when the hot buffer reaches half capacity, whichever
// comes first. The hot and main locks are never held together, so producers
// and consumers cannot deadlock against the drain.
type Engine struct {
	reg *registry.Registry

	// drainMu serializes whole drain cycles so a batch claimed first is
	// always appended first. It never nests inside hotMu or mainMu.
	drainMu sync.Mutex

	hotMu sync.Mutex
	hot   *buffer.Ring[Event]

	mainMu sync.Mutex
	main   *buffer.Ring[Event]

	sinkMu sync.RWMutex
	sinks  []Sink

	interval time.Duration
	wake     chan struct{}
	done     chan struct{}
	stopped  chan struct{}

	startOnce sync.Once
	closeOnce sync.Once
	started   atomic.Bool

	lost     atomic.Uint64
	offered  atomic.Uint64
	sinkErrs atomic.Uint64
}

// New builds an engine. The drain scheduler does not run until Start is
// called; Drain can move events manually at any time, which keeps tests and
// single-threaded embeddings deterministic.
func New(opts Options) *Engine {
	reg := opts.Registry
	if reg == nil {
		reg = registry.New()
	}
	hot := opts.HotDepth
	if hot == 0 {
		hot = DefaultHotDepth
	}
	depth := opts.Depth
	if depth == 0 {
		depth = DefaultDepth
	}
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Engine{
		reg:      reg,
		hot:      buffer.NewRing[Event](hot),
		main:     buffer.NewRing[Event](depth),
		interval: interval,
		wake:     make(chan struct{}, 1),
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
}

// Registry returns the target registry consulted on every capture decision.
func (e *Engine) Registry() *registry.Registry { return e.reg }

// Capture runs ev through the capture-level filter and, when accepted,
// appends it to the hot buffer. It reports whether the event was accepted.
func (e *Engine) Capture(ev Event) bool {
	if !e.reg.LookupOrCreate(ev.Target).Enabled(ev.Level) {
		return false
	}
	e.Inject(ev)
	return true
}

// Inject appends ev to the hot buffer without consulting the capture
// filter. Adapters that performed their own level check use it directly.
func (e *Engine) Inject(ev Event) {
	if ev.Time.IsZero() {
		ev.Time = time.Now()
	}
	e.hotMu.Lock()
	e.hot.Push(ev)
	n, c := e.hot.Len(), e.hot.Cap()
	e.hotMu.Unlock()
	if 2*n >= c {
		select {
		case e.wake <- struct{}{}:
		default:
		}
	}
}

// AddSink registers s to receive every accepted event during the drain.
func (e *Engine) AddSink(s Sink) {
	e.sinkMu.Lock()
	e.sinks = append(e.sinks, s)
	e.sinkMu.Unlock()
}

// Start launches the drain scheduler goroutine. Calling Start more than
// once is a no-op.
func (e *Engine) Start() {
	e.startOnce.Do(func() {
		e.started.Store(true)
		go e.run()
	})
}

func (e *Engine) run() {
	defer close(e.stopped)
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()
	for {
		select {
		case <-e.done:
			// Final drain: nothing queued at shutdown may be lost.
			e.Drain()
			return
		case <-ticker.C:
			e.Drain()
		case <-e.wake:
			e.Drain()
		}
	}
}

// Close stops the drain scheduler after a final drain. It blocks until the
// scheduler has exited or ctx is done. Closing an engine that was never
// started still performs the final drain.
func (e *Engine) Close(ctx context.Context) error {
	e.closeOnce.Do(func() { close(e.done) })
	if !e.started.Load() {
		e.Drain()
		return nil
	}
	select {
	case <-e.stopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Drain claims everything currently queued in the hot buffer and appends it
// to the main buffer in capture order. Appends racing with the claim land
// in the emptied hot buffer and are picked up next cycle. When events were
// overwritten before the claim, a synthetic marker carrying the lost count
// is placed ahead of the batch, at the chronological position of the gap.
func (e *Engine) Drain() {
	// The scheduler and manual Drain callers may race; without this lock a
	// later claim could reach the main buffer first and reorder batches.
	e.drainMu.Lock()
	defer e.drainMu.Unlock()

	e.hotMu.Lock()
	offered := e.hot.TotalPushed()
	if offered == 0 {
		e.hotMu.Unlock()
		return
	}
	batch := e.hot.TakeAll()
	e.hotMu.Unlock()

	lost := offered - uint64(len(batch))
	e.offered.Add(offered)
	events := batch
	if lost > 0 {
		e.lost.Add(lost)
		events = make([]Event, 0, len(batch)+1)
		events = append(events, lostEvent(batch[0].Time, int(lost), len(batch), offered))
		events = append(events, batch...)
	}

	e.mainMu.Lock()
	for i := range events {
		events[i].Index = e.main.TotalPushed()
		e.main.Push(events[i])
	}
	e.mainMu.Unlock()

	e.sinkMu.RLock()
	sinks := e.sinks
	e.sinkMu.RUnlock()
	for _, s := range sinks {
		for i := range events {
			e.writeSink(s, events[i])
		}
	}
}

// writeSink isolates sink failures from the pipeline.
func (e *Engine) writeSink(s Sink, ev Event) {
	defer func() {
		if recover() != nil {
			e.sinkErrs.Add(1)
		}
	}()
	if err := s.Write(ev); err != nil {
		e.sinkErrs.Add(1)
	}
}

// SetHotDepth resizes the hot buffer. Depths below one are clamped.
func (e *Engine) SetHotDepth(n int) {
	e.hotMu.Lock()
	e.hot.Resize(n)
	e.hotMu.Unlock()
}

// SetDepth resizes the main buffer. Shrinking discards the oldest events
// immediately; absolute indices of retained events are unchanged.
func (e *Engine) SetDepth(n int) {
	e.mainMu.Lock()
	e.main.Resize(n)
	e.mainMu.Unlock()
}

// Lost returns the total number of events overwritten in the hot buffer
// before a drain could move them.
func (e *Engine) Lost() uint64 { return e.lost.Load() }

// Offered returns the total number of events that entered the hot buffer,
// including ones later lost.
func (e *Engine) Offered() uint64 { return e.offered.Load() }

// SinkErrors returns the number of sink writes that failed or panicked.
func (e *Engine) SinkErrors() uint64 { return e.sinkErrs.Load() }
