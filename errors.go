package channels

import (
	"errors"
	"fmt"
)

// ErrClosed is returned by [Channel.Send] and [Channel.Recv] when the
// channel has been closed. It is an expected shutdown signal, not a
// defect: iteration helpers translate it into ordinary end-of-stream.
var ErrClosed = errors.New("channels: operation on closed channel")

// ErrFull is returned by [Channel.TrySend] when the buffer is at
// capacity and the value was not accepted.
var ErrFull = errors.New("channels: channel buffer is full")

// ErrEmpty is returned by [Channel.TryRecv] when no value is buffered
// on an open channel.
var ErrEmpty = errors.New("channels: channel buffer is empty")

// ErrConcurrentRecv reports two overlapping Recv calls on one channel.
// The check only runs in builds with the chandebug tag; release builds
// queue receivers permissively in FIFO order.
var ErrConcurrentRecv = errors.New("channels: channel is already receiving")

// SourceError wraps an unexpected failure raised by a source stream
// during [Merger] iteration. In the default mode it aborts the whole
// merge after cancelling sibling pulls.
type SourceError struct {
	Err error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("channels: source stream failed: %v", e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// IsSourceError reports whether err (or any error in its chain) is a
// [*SourceError].
func IsSourceError(err error) bool {
	if err == nil {
		return false
	}
	var se *SourceError
	return errors.As(err, &se)
}
