// Package signal collapses high-frequency edit signals into a single
// settled trigger. Two independent Debouncer instances are used by the
// coordinator: one for typing, one for window move/scroll.
package signal

import (
	"sync"
	"time"
)

// Debouncer fires its callback once per quiet period, timed from the
// last Signal call. The underlying timer is reset in place rather than
// re-created per signal.
//
// State machine: Idle -> Pending -> (timeout fires callback) -> Idle,
// re-entering Pending on every Signal while already pending.
type Debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	timer   *time.Timer
	pending bool
	stopped bool
	onQuiet func()
}

// New creates a Debouncer that calls onQuiet after delay of silence.
// The callback runs on the timer goroutine; it should only enqueue.
func New(delay time.Duration, onQuiet func()) *Debouncer {
	return &Debouncer{delay: delay, onQuiet: onQuiet}
}

// Signal records activity and restarts the quiet-period countdown.
func (d *Debouncer) Signal() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	if d.timer == nil {
		d.timer = time.AfterFunc(d.delay, d.fire)
		d.pending = true
		return
	}

	// Stop before Reset so an in-flight fire that already dequeued is
	// the only race left, and fire itself re-checks pending.
	d.timer.Stop()
	d.timer.Reset(d.delay)
	d.pending = true
}

// fire runs on the timer goroutine.
func (d *Debouncer) fire() {
	d.mu.Lock()
	if d.stopped || !d.pending {
		d.mu.Unlock()
		return
	}
	d.pending = false
	fn := d.onQuiet
	d.mu.Unlock()

	fn()
}

// Flush fires immediately if a quiet period is pending, else no-op.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.stopped || !d.pending {
		d.mu.Unlock()
		return
	}
	d.timer.Stop()
	d.pending = false
	fn := d.onQuiet
	d.mu.Unlock()

	fn()
}

// Cancel clears any pending quiet period without firing.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.pending = false
}

// Pending reports whether a quiet period is counting down.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

// Stop cancels permanently. Signal calls after Stop are ignored, so a
// late platform callback cannot re-trigger analysis after teardown.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.pending = false
	d.stopped = true
}
