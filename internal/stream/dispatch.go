package stream

import (
	"context"
	"sync"
)

// Dispatcher runs closures on the single execution context that owns all
// stream state.
type Dispatcher interface {
	Post(f func())
}

// Loop is a Dispatcher backed by one goroutine draining a queue.
type Loop struct {
	queue chan func()
	done  chan struct{}
	once  sync.Once
}

// NewLoop creates a loop with the given queue depth.
func NewLoop(depth int) *Loop {
	if depth <= 0 {
		depth = 256
	}
	return &Loop{
		queue: make(chan func(), depth),
		done:  make(chan struct{}),
	}
}

// Post enqueues f. It drops f once the loop has stopped.
func (l *Loop) Post(f func()) {
	select {
	case <-l.done:
		return
	default:
	}
	select {
	case l.queue <- f:
	case <-l.done:
	}
}

// Run executes posted closures in order until ctx is canceled.
func (l *Loop) Run(ctx context.Context) {
	defer l.once.Do(func() { close(l.done) })
	for {
		select {
		case <-ctx.Done():
			return
		case f := <-l.queue:
			f()
		}
	}
}

// Done is closed after Run returns.
func (l *Loop) Done() <-chan struct{} { return l.done }

// Inline runs closures immediately on the caller's goroutine.
type Inline struct{}

func (Inline) Post(f func()) { f() }

// Call posts f to d and waits for it to run. It returns ctx.Err() if the
// context ends first. Never call it from inside the loop.
func Call(ctx context.Context, d Dispatcher, f func()) error {
	if _, ok := d.(Inline); ok {
		f()
		return nil
	}
	ran := make(chan struct{})
	d.Post(func() {
		f()
		close(ran)
	})
	select {
	case <-ran:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
