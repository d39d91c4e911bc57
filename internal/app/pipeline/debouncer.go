package pipeline

import (
	"sync"
	"time"
)

// Debouncer coalesces rapid triggers into a single callback after a quiet
// window; every trigger re-arms the window (last-write-wins)
type Debouncer interface {
	Trigger()
	Stop()
}

// debouncer implements the Debouncer interface
type debouncer struct {
	duration time.Duration
	callback func()
	clock    Clock
	timer    Timer
	mu       sync.Mutex
	stopped  bool
}

// NewDebouncer creates a new Debouncer with the specified quiet window
func NewDebouncer(clock Clock, duration time.Duration, callback func()) Debouncer {
	return &debouncer{
		duration: duration,
		callback: callback,
		clock:    clock,
	}
}

// Trigger re-arms the debounce timer, cancelling any pending callback
func (d *debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	if d.timer != nil {
		d.timer.Stop()
	}

	d.timer = d.clock.AfterFunc(d.duration, d.fire)
}

// Stop stops the debouncer and cancels any pending callback
func (d *debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// fire executes the callback once for the quiet window
func (d *debouncer) fire() {
	d.mu.Lock()

	if d.stopped {
		d.mu.Unlock()
		return
	}

	d.timer = nil

	d.mu.Unlock()

	d.callback()
}
