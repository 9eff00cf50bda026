// Package timing provides debounce and throttle wrappers for event
// producers such as search inputs, scroll positions and window resizes.
//
// The wrapped function runs on a timer goroutine. Callers that touch shared
// state from it should hand the work to the event loop.
package timing

import (
	"sync"
	"time"
)

// Delays used by the storefront.
const (
	DefaultDebounce = 300 * time.Millisecond
	DefaultThrottle = 100 * time.Millisecond
	SearchDebounce  = 200 * time.Millisecond
	ResizeDebounce  = 150 * time.Millisecond
)

// Debouncer runs fn once the calls stop for the configured delay, with the
// argument of the last call.
type Debouncer[T any] struct {
	delay time.Duration
	fn    func(T)

	mu      sync.Mutex
	timer   *time.Timer
	gen     uint64
	pending T
}

// Debounce wraps fn. A delay of zero or less uses [DefaultDebounce].
func Debounce[T any](delay time.Duration, fn func(T)) *Debouncer[T] {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Debouncer[T]{delay: delay, fn: fn}
}

// Call restarts the delay with v as the pending argument.
func (d *Debouncer[T]) Call(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopLocked()
	d.pending = v
	gen := d.gen
	d.timer = time.AfterFunc(d.delay, func() { d.fire(gen) })
}

func (d *Debouncer[T]) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen || d.timer == nil {
		d.mu.Unlock()
		return
	}
	v := d.pending
	d.timer = nil
	d.gen++
	d.mu.Unlock()

	d.fn(v)
}

// Cancel discards the pending call, if any.
func (d *Debouncer[T]) Cancel() {
	d.mu.Lock()
	d.stopLocked()
	d.mu.Unlock()
}

// Flush runs the pending call now. It reports whether there was one.
func (d *Debouncer[T]) Flush() bool {
	d.mu.Lock()
	if d.timer == nil {
		d.mu.Unlock()
		return false
	}
	v := d.pending
	d.stopLocked()
	d.mu.Unlock()

	d.fn(v)
	return true
}

// Pending reports whether a call is waiting for its delay.
func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

// stopLocked invalidates the current timer even if it already fired and is
// waiting on the lock.
func (d *Debouncer[T]) stopLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
}

// Throttler runs fn at most once per interval. A call inside the interval
// replaces any scheduled trailing call, which runs when the interval ends
// with the latest argument.
type Throttler[T any] struct {
	interval time.Duration
	fn       func(T)
	now      func() time.Time

	mu       sync.Mutex
	lastCall time.Time
	timer    *time.Timer
	gen      uint64
}

// Throttle wraps fn. An interval of zero or less uses [DefaultThrottle].
func Throttle[T any](interval time.Duration, fn func(T)) *Throttler[T] {
	if interval <= 0 {
		interval = DefaultThrottle
	}
	return &Throttler[T]{interval: interval, fn: fn, now: time.Now}
}

// Call runs fn now if the interval has passed since the last run, otherwise
// schedules it for the end of the interval.
func (t *Throttler[T]) Call(v T) {
	t.mu.Lock()
	now := t.now()
	remaining := t.interval - now.Sub(t.lastCall)
	t.stopLocked()

	if remaining <= 0 {
		t.lastCall = now
		t.mu.Unlock()
		t.fn(v)
		return
	}

	gen := t.gen
	t.timer = time.AfterFunc(remaining, func() {
		t.mu.Lock()
		if gen != t.gen {
			t.mu.Unlock()
			return
		}
		t.lastCall = t.now()
		t.timer = nil
		t.mu.Unlock()
		t.fn(v)
	})
	t.mu.Unlock()
}

// Cancel discards the trailing call, if any.
func (t *Throttler[T]) Cancel() {
	t.mu.Lock()
	t.stopLocked()
	t.mu.Unlock()
}

func (t *Throttler[T]) stopLocked() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.gen++
}
