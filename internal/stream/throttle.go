package stream

import (
	"time"

	"coinwatch/internal/clock"
)

// Throttle applies at most one value per interval. Values submitted inside a
// window replace each other; the latest is applied when the window closes.
// It must only be used from the dispatcher's execution context.
type Throttle[T any] struct {
	clock    clock.Clock
	interval time.Duration
	post     func(func())
	apply    func(T)

	pending    T
	hasPending bool
	timer      clock.Timer
	gen        int
	stopped    bool
}

// NewThrottle creates a throttle whose window callbacks are routed through
// post.
func NewThrottle[T any](c clock.Clock, interval time.Duration, post func(func()), apply func(T)) *Throttle[T] {
	return &Throttle[T]{clock: c, interval: interval, post: post, apply: apply}
}

// Submit records v as the value to apply when the current window closes,
// opening a window if none is running.
func (t *Throttle[T]) Submit(v T) {
	if t.stopped {
		return
	}
	t.pending = v
	t.hasPending = true
	if t.timer != nil {
		return
	}

	t.gen++
	gen := t.gen
	t.timer = t.clock.AfterFunc(t.interval, func() {
		t.post(func() { t.flush(gen) })
	})
}

func (t *Throttle[T]) flush(gen int) {
	if t.stopped || gen != t.gen {
		return
	}
	t.timer = nil
	if !t.hasPending {
		return
	}
	v := t.pending
	var zero T
	t.pending, t.hasPending = zero, false
	t.apply(v)
}

// Stop cancels the open window and discards the pending value.
func (t *Throttle[T]) Stop() {
	t.stopped = true
	t.gen++
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	var zero T
	t.pending, t.hasPending = zero, false
}

// Debouncer runs fn once calls to Trigger have been quiet for delay.
type Debouncer struct {
	clock clock.Clock
	delay time.Duration
	post  func(func())
	fn    func()

	timer clock.Timer
	gen   int
}

func NewDebouncer(c clock.Clock, delay time.Duration, post func(func()), fn func()) *Debouncer {
	return &Debouncer{clock: c, delay: delay, post: post, fn: fn}
}

// Trigger restarts the quiet period.
func (d *Debouncer) Trigger() {
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = d.clock.AfterFunc(d.delay, func() {
		d.post(func() {
			if gen != d.gen {
				return
			}
			d.timer = nil
			d.fn()
		})
	})
}

// Stop cancels a pending run.
func (d *Debouncer) Stop() {
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
