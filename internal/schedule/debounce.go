// Package schedule holds the periodic and deferred schedules: the render loop,
// next-frame throttling and quiet-period debouncing.
package schedule

import (
	"sync"
	"time"

	"github.com/jwulff/trippy-go/internal/clock"
)

// DefaultDebounce is the quiet period used for palette and color edits.
const DefaultDebounce = 500 * time.Millisecond

// Debouncer runs fn once, delay after the last call to Trigger.
type Debouncer struct {
	clock clock.Clock
	delay time.Duration
	fn    func()

	mu      sync.Mutex
	pending clock.Timer // nil while idle
	gen     uint64
}

// NewDebouncer creates an idle debouncer.
func NewDebouncer(c clock.Clock, delay time.Duration, fn func()) *Debouncer {
	return &Debouncer{clock: c, delay: delay, fn: fn}
}

// Trigger cancels any scheduled run and schedules a new one.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.pending != nil {
		d.pending.Stop()
	}
	d.gen++
	gen := d.gen
	d.pending = d.clock.AfterFunc(d.delay, func() { d.fire(gen) })
}

// Cancel drops a scheduled run, if any.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.pending != nil {
		d.pending.Stop()
		d.pending = nil
	}
	d.gen++
}

// Pending reports whether a run is scheduled.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != nil
}

func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen {
		// Superseded between the timer firing and Stop.
		d.mu.Unlock()
		return
	}
	d.pending = nil
	d.mu.Unlock()

	d.fn()
}
