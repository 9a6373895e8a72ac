// Package debounce provides a single-slot cancellable delayed task.
//
// Only the most recent value survives: every Trigger replaces the pending
// value and restarts the delay. Intermediate values are never delivered.
package debounce

import (
	"sync"
	"time"
)

// Debouncer delivers the last triggered value once the input has been quiet
// for the configured delay.
type Debouncer[T any] struct {
	delay time.Duration
	fn    func(T)

	mu      sync.Mutex
	timer   *time.Timer
	value   T
	pending bool
	gen     uint64
	stopped bool
}

// New returns a debouncer calling fn with the newest value after delay.
// A non-positive delay delivers on the next timer tick.
func New[T any](delay time.Duration, fn func(T)) *Debouncer[T] {
	if delay < 0 {
		delay = 0
	}
	return &Debouncer[T]{delay: delay, fn: fn}
}

// Delay returns the configured quiet interval.
func (d *Debouncer[T]) Delay() time.Duration {
	return d.delay
}

// Trigger schedules v, replacing any pending value.
func (d *Debouncer[T]) Trigger(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	d.value = v
	d.pending = true
	gen := d.gen
	d.timer = time.AfterFunc(d.delay, func() { d.fire(gen) })
}

// fire delivers the pending value if no newer Trigger, Flush or Stop
// happened since the timer for gen was armed.
func (d *Debouncer[T]) fire(gen uint64) {
	d.mu.Lock()
	if d.stopped || !d.pending || gen != d.gen {
		d.mu.Unlock()
		return
	}
	v := d.take()
	d.mu.Unlock()
	d.fn(v)
}

// Flush delivers the pending value immediately on the calling goroutine.
// It reports whether a value was delivered.
func (d *Debouncer[T]) Flush() bool {
	d.mu.Lock()
	if d.stopped || !d.pending {
		d.mu.Unlock()
		return false
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	v := d.take()
	d.mu.Unlock()
	d.fn(v)
	return true
}

// Pending reports whether a value is waiting to be delivered.
func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

// Stop drops the pending value. Later calls to Trigger are ignored.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	d.stopped = true
	d.pending = false
	var zero T
	d.value = zero
}

// take must be called with mu held.
func (d *Debouncer[T]) take() T {
	v := d.value
	var zero T
	d.value = zero
	d.pending = false
	return v
}
