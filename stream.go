package channels

import (
	"context"
	"io"
)

// Stream is a lazy, pull-based, single-pass sequence. The only
// operation that may block is [Stream.Next]; every operator composes
// around it without buffering. A stream returns io.EOF once exhausted
// and keeps returning it on further pulls.
//
// Note: streams are single-consumer. Next and the terminal methods
// must not be called concurrently on the same stream.
type Stream[T any] struct {
	next func(ctx context.Context) (T, error)
	stop func()
	done bool
}

// NewStream creates a stream from a pull function. The function must
// return io.EOF to signal exhaustion.
func NewStream[T any](next func(ctx context.Context) (T, error)) *Stream[T] {
	return &Stream[T]{next: next}
}

// FromSlice creates a stream over the items of a slice.
func FromSlice[T any](items []T) *Stream[T] {
	var idx int
	return NewStream(func(ctx context.Context) (T, error) {
		if err := ctx.Err(); err != nil {
			var zero T
			return zero, err
		}
		if idx >= len(items) {
			var zero T
			return zero, io.EOF
		}
		value := items[idx]
		idx++
		return value, nil
	})
}

// FromChan creates a stream that pulls from a Go channel until it is
// closed.
func FromChan[T any](ch <-chan T) *Stream[T] {
	return NewStream(func(ctx context.Context) (T, error) {
		select {
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		case v, ok := <-ch:
			if !ok {
				var zero T
				return zero, io.EOF
			}
			return v, nil
		}
	})
}

// Next returns the next value of the stream, blocking until one is
// available. It returns io.EOF when the stream is exhausted and
// ctx.Err() if ctx is cancelled while waiting. Once exhausted, Next
// keeps returning io.EOF.
func (s *Stream[T]) Next(ctx context.Context) (T, error) {
	if s.done {
		var zero T
		return zero, io.EOF
	}
	value, err := s.next(ctx)
	if err == io.EOF {
		s.done = true
		s.Stop()
	}
	return value, err
}

// Stop releases upstream resources held by the stream, such as
// in-flight pulls of a merge. It is safe to call on any stream and is
// invoked automatically on exhaustion.
func (s *Stream[T]) Stop() {
	if s.stop != nil {
		s.stop()
	}
}

// Collect accumulates all remaining values into a slice.
func (s *Stream[T]) Collect(ctx context.Context) ([]T, error) {
	var items []T
	for {
		value, err := s.Next(ctx)
		if err == io.EOF {
			return items, nil
		}
		if err != nil {
			return items, err
		}
		items = append(items, value)
	}
}

// ForEach applies fn to each remaining value.
func (s *Stream[T]) ForEach(ctx context.Context, fn func(T) error) error {
	for {
		value, err := s.Next(ctx)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(value); err != nil {
			return err
		}
	}
}

// Count consumes the stream and returns the number of values.
func (s *Stream[T]) Count(ctx context.Context) (int, error) {
	var count int
	err := s.ForEach(ctx, func(T) error {
		count++
		return nil
	})
	return count, err
}

// All reports whether pred holds for every value. It short-circuits
// on the first value for which pred is false, stopping the stream.
func (s *Stream[T]) All(ctx context.Context, pred func(T) bool) (bool, error) {
	for {
		value, err := s.Next(ctx)
		if err == io.EOF {
			return true, nil
		}
		if err != nil {
			return false, err
		}
		if !pred(value) {
			s.Stop()
			return false, nil
		}
	}
}

// Any reports whether pred holds for at least one value. It
// short-circuits on the first match, stopping the stream.
func (s *Stream[T]) Any(ctx context.Context, pred func(T) bool) (bool, error) {
	for {
		value, err := s.Next(ctx)
		if err == io.EOF {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		if pred(value) {
			s.Stop()
			return true, nil
		}
	}
}

// NextOr returns the next value, or def if the stream is exhausted.
func (s *Stream[T]) NextOr(ctx context.Context, def T) (T, error) {
	value, err := s.Next(ctx)
	if err == io.EOF {
		return def, nil
	}
	return value, err
}

// Reduce left-folds the stream into a single value starting from
// initial.
func Reduce[T, R any](ctx context.Context, s *Stream[T], initial R, fn func(R, T) R) (R, error) {
	acc := initial
	err := s.ForEach(ctx, func(v T) error {
		acc = fn(acc, v)
		return nil
	})
	return acc, err
}
