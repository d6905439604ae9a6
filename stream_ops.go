package channels

import (
	"context"
	"errors"
	"io"
	"time"

	"golang.org/x/sync/errgroup"
)

// Pair holds two values pulled together by [Zip].
type Pair[A, B any] struct {
	First  A
	Second B
}

// Triple holds three values pulled together by [Zip3].
type Triple[A, B, C any] struct {
	First  A
	Second B
	Third  C
}

// Item pairs a value with its running index, produced by [Enumerate].
type Item[T any] struct {
	Index int
	Value T
}

// Filter returns a sub-stream of the values for which pred is true.
func (s *Stream[T]) Filter(pred func(T) bool) *Stream[T] {
	return &Stream[T]{
		next: func(ctx context.Context) (T, error) {
			for {
				value, err := s.Next(ctx)
				if err != nil {
					return value, err
				}
				if pred(value) {
					return value, nil
				}
			}
		},
		stop: s.Stop,
	}
}

// Limit returns a sub-stream of at most n values. A bound of zero or
// less yields an empty stream.
func (s *Stream[T]) Limit(n int) *Stream[T] {
	if n <= 0 {
		return &Stream[T]{
			next: func(ctx context.Context) (T, error) {
				var zero T
				return zero, io.EOF
			},
			stop: s.Stop,
		}
	}
	var taken int
	return &Stream[T]{
		next: func(ctx context.Context) (T, error) {
			if taken >= n {
				var zero T
				return zero, io.EOF
			}
			value, err := s.Next(ctx)
			if err != nil {
				return value, err
			}
			taken++
			return value, nil
		},
		stop: s.Stop,
	}
}

// Chain returns a stream that fully drains s, then each of the others
// in listed order.
func (s *Stream[T]) Chain(others ...*Stream[T]) *Stream[T] {
	sources := append([]*Stream[T]{s}, others...)
	var idx int
	return &Stream[T]{
		next: func(ctx context.Context) (T, error) {
			for idx < len(sources) {
				value, err := sources[idx].Next(ctx)
				if err == io.EOF {
					idx++
					continue
				}
				return value, err
			}
			var zero T
			return zero, io.EOF
		},
		stop: func() {
			for _, src := range sources {
				src.Stop()
			}
		},
	}
}

// GlobalUnique returns a sub-stream that suppresses any value whose
// key has been seen at any prior point. A nil key uses the value
// itself, which must then be comparable. Memory of seen keys is
// unbounded.
func (s *Stream[T]) GlobalUnique(key func(T) any) *Stream[T] {
	if key == nil {
		key = func(v T) any { return v }
	}
	seen := make(map[any]struct{})
	return s.Filter(func(v T) bool {
		k := key(v)
		if _, ok := seen[k]; ok {
			return false
		}
		seen[k] = struct{}{}
		return true
	})
}

// LocalUnique returns a sub-stream that suppresses a value only when
// its key equals the immediately preceding value's key. A nil key uses
// the value itself, which must then be comparable.
func (s *Stream[T]) LocalUnique(key func(T) any) *Stream[T] {
	if key == nil {
		key = func(v T) any { return v }
	}
	var prev any
	var havePrev bool
	return s.Filter(func(v T) bool {
		k := key(v)
		if havePrev && k == prev {
			return false
		}
		prev, havePrev = k, true
		return true
	})
}

// Timeout returns a sub-stream whose pulls race against d. Exceeding
// the deadline cancels the losing pull and ends the stream as
// ordinary exhaustion, never as an error. If first is false the first
// pull is not time restricted. A non-positive d applies no timeout.
func (s *Stream[T]) Timeout(d time.Duration, first bool) *Stream[T] {
	if d <= 0 {
		return s
	}
	var started bool
	return &Stream[T]{
		next: func(ctx context.Context) (T, error) {
			if !started && !first {
				started = true
				return s.Next(ctx)
			}
			started = true
			tctx, cancel := context.WithTimeout(ctx, d)
			defer cancel()
			value, err := s.Next(tctx)
			if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
				s.Stop()
				var zero T
				return zero, io.EOF
			}
			return value, err
		},
		stop: s.Stop,
	}
}

// Stagger returns a sub-stream that enforces a minimum delay between
// successive yields by sleeping the residual time to a monotonically
// advancing floor. If instantFirst is true the first value is yielded
// without the initial wait.
func (s *Stream[T]) Stagger(d time.Duration, instantFirst bool) *Stream[T] {
	var floor time.Time
	first := true
	return &Stream[T]{
		next: func(ctx context.Context) (T, error) {
			if first {
				first = false
				if !instantFirst {
					floor = time.Now().Add(d)
				}
			}
			if wait := time.Until(floor); wait > 0 {
				timer := time.NewTimer(wait)
				defer timer.Stop()
				select {
				case <-timer.C:
				case <-ctx.Done():
					var zero T
					return zero, ctx.Err()
				}
			}
			value, err := s.Next(ctx)
			if err == nil {
				floor = time.Now().Add(d)
			}
			return value, err
		},
		stop: s.Stop,
	}
}

// Map returns a stream of the results of applying fn to each value.
//
// Note: this is a function rather than a method because Go does not
// support additional type parameters on methods.
func Map[A, B any](s *Stream[A], fn func(context.Context, A) (B, error)) *Stream[B] {
	return &Stream[B]{
		next: func(ctx context.Context) (B, error) {
			value, err := s.Next(ctx)
			if err != nil {
				var zero B
				return zero, err
			}
			return fn(ctx, value)
		},
		stop: s.Stop,
	}
}

// Enumerate returns a stream pairing each value with a running index
// counted from start.
func Enumerate[T any](s *Stream[T], start int) *Stream[Item[T]] {
	idx := start
	return &Stream[Item[T]]{
		next: func(ctx context.Context) (Item[T], error) {
			value, err := s.Next(ctx)
			if err != nil {
				return Item[T]{}, err
			}
			item := Item[T]{Index: idx, Value: value}
			idx++
			return item, nil
		},
		stop: s.Stop,
	}
}

// Zip pairs values from two streams element by element, pulling one
// value from each source concurrently per combined pull. The stream
// ends as soon as either source is exhausted; the sibling pull is
// cancelled, not abandoned.
func Zip[A, B any](a *Stream[A], b *Stream[B]) *Stream[Pair[A, B]] {
	stop := func() {
		a.Stop()
		b.Stop()
	}
	return &Stream[Pair[A, B]]{
		next: func(ctx context.Context) (Pair[A, B], error) {
			var va A
			var vb B
			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				v, err := a.Next(gctx)
				va = v
				return err
			})
			g.Go(func() error {
				v, err := b.Next(gctx)
				vb = v
				return err
			})
			if err := g.Wait(); err != nil {
				var zero Pair[A, B]
				if err == io.EOF {
					stop()
					return zero, io.EOF
				}
				return zero, err
			}
			return Pair[A, B]{First: va, Second: vb}, nil
		},
		stop: stop,
	}
}

// Zip3 is [Zip] over three streams.
func Zip3[A, B, C any](a *Stream[A], b *Stream[B], c *Stream[C]) *Stream[Triple[A, B, C]] {
	stop := func() {
		a.Stop()
		b.Stop()
		c.Stop()
	}
	return &Stream[Triple[A, B, C]]{
		next: func(ctx context.Context) (Triple[A, B, C], error) {
			var va A
			var vb B
			var vc C
			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				v, err := a.Next(gctx)
				va = v
				return err
			})
			g.Go(func() error {
				v, err := b.Next(gctx)
				vb = v
				return err
			})
			g.Go(func() error {
				v, err := c.Next(gctx)
				vc = v
				return err
			})
			if err := g.Wait(); err != nil {
				var zero Triple[A, B, C]
				if err == io.EOF {
					stop()
					return zero, io.EOF
				}
				return zero, err
			}
			return Triple[A, B, C]{First: va, Second: vb, Third: vc}, nil
		},
		stop: stop,
	}
}
