package channels

import (
	"context"
	"sync"
	"time"
)

// Limiter wraps a [Sender] and enforces a minimum cooldown between
// successive sends. Each send reserves the next slot on a
// monotonically advancing floor and sleeps the residual time before
// forwarding, so concurrent senders queue behind one another rather
// than bursting.
type Limiter[T any] struct {
	sink      Sender[T]
	cooldown  time.Duration
	predicate func(T) bool

	mu       sync.Mutex
	prevSend time.Time // zero until the first limited send
}

// NewLimiter wraps sink with the given cooldown. A non-positive
// cooldown disables delays. The first send is always immediate.
func NewLimiter[T any](sink Sender[T], cooldown time.Duration, opts ...LimiterOption[T]) *Limiter[T] {
	var cfg limiterConfig[T]
	for _, opt := range opts {
		opt(&cfg)
	}
	if cooldown < 0 {
		cooldown = 0
	}
	return &Limiter[T]{
		sink:      sink,
		cooldown:  cooldown,
		predicate: cfg.predicate,
	}
}

// Cooldown returns the configured minimum delay between sends.
func (l *Limiter[T]) Cooldown() time.Duration {
	return l.cooldown
}

// Send waits out the residual cooldown, then forwards value to the
// wrapped sink. Cancelling ctx during the wait returns ctx.Err()
// without consuming the reserved slot's send.
func (l *Limiter[T]) Send(ctx context.Context, value T) error {
	if l.predicate == nil || l.predicate(value) {
		l.mu.Lock()
		now := time.Now()
		var delay time.Duration
		if !l.prevSend.IsZero() {
			delay = l.cooldown - now.Sub(l.prevSend)
			if delay < 0 {
				delay = 0
			}
		}
		l.prevSend = now.Add(delay)
		l.mu.Unlock()

		if delay > 0 {
			timer := time.NewTimer(delay)
			defer timer.Stop()
			select {
			case <-timer.C:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return l.sink.Send(ctx, value)
}

// Close closes the wrapped sink.
func (l *Limiter[T]) Close() bool {
	return l.sink.Close()
}

var _ Sender[int] = (*Limiter[int])(nil)
