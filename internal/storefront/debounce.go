package storefront

import (
	"sync"
	"time"
)

// DefaultDebounceWindow matches how long keystrokes coalesce before the
// preview recomputes.
const DefaultDebounceWindow = 100 * time.Millisecond

// Debouncer coalesces bursts of triggers into a single callback run after the
// window elapses with no further triggers. Only the last callback wins.
type Debouncer struct {
	mu       sync.Mutex
	window   time.Duration
	timer    *time.Timer
	pending  func()
	schedule func(d time.Duration, fn func()) *time.Timer
}

// NewDebouncer builds a debouncer with the given window. A non-positive
// window falls back to the default. The schedule function is replaceable so
// tests can fire callbacks deterministically.
func NewDebouncer(window time.Duration, schedule func(d time.Duration, fn func()) *time.Timer) *Debouncer {
	if window <= 0 {
		window = DefaultDebounceWindow
	}
	if schedule == nil {
		schedule = time.AfterFunc
	}
	return &Debouncer{
		window:   window,
		schedule: schedule,
	}
}

// Trigger queues fn to run once the window elapses, replacing any previously
// queued callback and restarting the window.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.pending = fn
	d.timer = d.schedule(d.window, d.fire)
}

// Flush runs the queued callback immediately, if any.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	fn := d.pending
	d.pending = nil
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Stop cancels any queued callback without running it.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.pending = nil
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	fn := d.pending
	d.pending = nil
	d.timer = nil
	d.mu.Unlock()
	if fn != nil {
		fn()
	}
}
