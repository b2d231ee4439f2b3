package stream

import "time"

const (
	DefaultBackoffBase = time.Second
	DefaultMaxAttempts = 5
)

// Backoff yields exponential reconnect delays: Base * 2^attempt, for attempts
// below MaxAttempts. No jitter.
type Backoff struct {
	Base        time.Duration
	MaxAttempts int
}

// Next returns the delay before reconnect attempt n (n >= 0). ok is false
// once n reaches MaxAttempts; the stream then stays disconnected.
func (b Backoff) Next(n int) (delay time.Duration, ok bool) {
	if n < 0 {
		n = 0
	}
	if n >= b.MaxAttempts {
		return 0, false
	}
	return b.Base << uint(n), true
}
