package channels

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
)

// Token identifies one attachment in a [Registry].
type Token uuid.UUID

// Registry fans a value out to every attached sink. Sinks that report
// [ErrClosed] at the moment of broadcast are silently detached.
type Registry[T any] struct {
	mu    sync.RWMutex
	sinks map[Token]Sender[T]
}

// NewRegistry creates an empty Registry.
func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{sinks: make(map[Token]Sender[T])}
}

// Attach registers sink and returns its assigned token.
func (r *Registry[T]) Attach(sink Sender[T]) Token {
	token := Token(uuid.New())
	r.mu.Lock()
	r.sinks[token] = sink
	r.mu.Unlock()
	return token
}

// Detach removes the sink assigned to token, reporting whether one
// was found.
func (r *Registry[T]) Detach(token Token) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sinks[token]; !ok {
		return false
	}
	delete(r.sinks, token)
	return true
}

// Len returns the number of currently attached sinks.
func (r *Registry[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sinks)
}

// Broadcast sends value to every attached sink. Sinks reporting
// [ErrClosed] are detached; any other send failure, including ctx
// cancellation, aborts the broadcast and is returned.
//
// Sends run without holding the registry lock, so a slow sink applies
// backpressure to the broadcast rather than blocking Attach/Detach.
func (r *Registry[T]) Broadcast(ctx context.Context, value T) error {
	r.mu.RLock()
	snapshot := make(map[Token]Sender[T], len(r.sinks))
	for token, sink := range r.sinks {
		snapshot[token] = sink
	}
	r.mu.RUnlock()

	var closed []Token
	var failure error
	for token, sink := range snapshot {
		if err := sink.Send(ctx, value); err != nil {
			if errors.Is(err, ErrClosed) {
				closed = append(closed, token)
				continue
			}
			failure = err
			break
		}
	}
	for _, token := range closed {
		r.Detach(token)
	}
	return failure
}

// Clear discards the buffered values of every attached sink that
// supports clearing, such as [Channel]. Sinks stay attached.
func (r *Registry[T]) Clear() {
	r.mu.RLock()
	sinks := make([]Sender[T], 0, len(r.sinks))
	for _, sink := range r.sinks {
		sinks = append(sinks, sink)
	}
	r.mu.RUnlock()

	for _, sink := range sinks {
		if c, ok := sink.(interface{ Clear() }); ok {
			c.Clear()
		}
	}
}

// Close closes and detaches every attached sink.
func (r *Registry[T]) Close() {
	r.mu.Lock()
	sinks := r.sinks
	r.sinks = make(map[Token]Sender[T])
	r.mu.Unlock()

	for _, sink := range sinks {
		sink.Close()
	}
}
