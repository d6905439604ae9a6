package channels

import (
	"context"
	"errors"
	"io"
)

// Sender is the send-side capability of a channel-like type. Registry
// and Limiter are written against this interface, so any conforming
// type can be broadcast to or rate limited, independent of its
// concrete implementation.
type Sender[T any] interface {
	// Send delivers a value, blocking as needed. It returns
	// [ErrClosed] once the sink has been closed.
	Send(ctx context.Context, value T) error

	// Close transitions the sink to closed, reporting whether this
	// call performed the transition.
	Close() bool
}

// Receiver is the receive-side capability of a channel-like type.
type Receiver[T any] interface {
	// Recv returns the next value, blocking as needed. It returns
	// [ErrClosed] once the source is closed and drained.
	Recv(ctx context.Context) (T, error)
}

// SendReceiver combines both capabilities.
type SendReceiver[T any] interface {
	Sender[T]
	Receiver[T]
}

// StreamOf adapts a Receiver into a single-pass [Stream] that ends
// when the receiver reports [ErrClosed]. Closure is an expected
// termination signal and is translated into ordinary exhaustion.
func StreamOf[T any](r Receiver[T]) *Stream[T] {
	return NewStream(func(ctx context.Context) (T, error) {
		value, err := r.Recv(ctx)
		if errors.Is(err, ErrClosed) {
			var zero T
			return zero, io.EOF
		}
		return value, err
	})
}

// SendAll forwards every value of src to s, stopping at stream
// exhaustion or sink closure. [ErrClosed] from the sink is treated as
// normal completion; any other failure is returned.
func SendAll[T any](ctx context.Context, s Sender[T], src *Stream[T]) error {
	for {
		value, err := src.Next(ctx)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := s.Send(ctx, value); err != nil {
			if errors.Is(err, ErrClosed) {
				return nil
			}
			return err
		}
	}
}
