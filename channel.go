package channels

import (
	"context"
	"sync"
)

// Channel is a bounded or unbounded point-to-point exchange with
// blocking send/receive and a one-way close. Blocked callers of the
// same kind are served in strict FIFO order: waking a blocked call
// reserves the freed slot (for senders) or the buffered value (for
// receivers) so a newcomer arriving before the woken caller resumes
// cannot claim it. Any blocked call can be cancelled through its
// context without stranding other waiters.
//
// The close policy is drain-then-fail: after [Channel.Close], Recv
// keeps returning buffered values and only fails with [ErrClosed] once
// the buffer is empty. Send fails immediately on a closed channel.
type Channel[T any] struct {
	mu        sync.Mutex
	capacity  int // 0 = unbounded
	buffer    []T
	senders   waitList
	receivers waitList

	// Grants pair each nil wake with the resource it reserved: a free
	// slot for a woken sender, the value at buffer[0:recvGrants] for a
	// woken receiver. Reserved resources are invisible to fresh calls.
	sendGrants int
	recvGrants int

	closed bool
}

// New creates a Channel with the given capacity. A capacity of zero or
// less means unbounded: Send never blocks on a full buffer.
func New[T any](capacity int) *Channel[T] {
	if capacity < 0 {
		capacity = 0
	}
	return &Channel[T]{capacity: capacity}
}

// full reports whether the buffer plus the slots reserved for woken
// senders exhaust the capacity. Callers hold mu.
func (c *Channel[T]) full() bool {
	return c.capacity > 0 && len(c.buffer)+c.sendGrants >= c.capacity
}

// grantSend wakes the oldest blocked sender, reserving one free slot
// for it. Callers hold mu and must have freed a slot.
func (c *Channel[T]) grantSend() {
	if c.senders.wakeOne(nil) {
		c.sendGrants++
	}
}

// grantRecv wakes the oldest blocked receiver, reserving the newest
// buffered value for it. Callers hold mu.
func (c *Channel[T]) grantRecv() {
	if c.receivers.wakeOne(nil) {
		c.recvGrants++
	}
}

// Send appends value to the channel, blocking while the buffer is at
// capacity. It returns [ErrClosed] if the channel is closed at call
// time or becomes closed while blocked, and ctx.Err() if ctx is
// cancelled while blocked.
func (c *Channel[T]) Send(ctx context.Context, value T) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.full() {
		w := c.senders.enqueue()
		c.mu.Unlock()
		select {
		case err := <-w.wake:
			if err != nil {
				return err
			}
			c.mu.Lock()
			c.sendGrants-- // the wake reserved the freed slot for this sender
			if c.closed {
				c.mu.Unlock()
				return ErrClosed
			}
		case <-ctx.Done():
			c.abandon(&c.senders, w, c.handOnSendGrant)
			return ctx.Err()
		}
	}
	c.buffer = append(c.buffer, value)
	c.grantRecv()
	c.mu.Unlock()
	return nil
}

// Recv removes and returns the oldest value, blocking while no
// unreserved value is buffered. On a closed channel it drains
// remaining buffered values and returns [ErrClosed] only once empty.
// It returns ctx.Err() if ctx is cancelled while blocked; a value sent
// afterwards is left in the buffer for the next receiver.
func (c *Channel[T]) Recv(ctx context.Context) (T, error) {
	var zero T
	c.mu.Lock()
	idx := c.recvGrants // oldest value not reserved for a woken receiver
	if len(c.buffer) == c.recvGrants {
		if c.closed {
			c.mu.Unlock()
			return zero, ErrClosed
		}
		if debugChecks && c.receivers.len() > 0 {
			c.mu.Unlock()
			return zero, ErrConcurrentRecv
		}
		w := c.receivers.enqueue()
		c.mu.Unlock()
		select {
		case err := <-w.wake:
			if err != nil {
				return zero, err
			}
			c.mu.Lock()
			c.recvGrants-- // the wake reserved the value at the buffer head
			idx = 0
		case <-ctx.Done():
			c.abandon(&c.receivers, w, c.handOnRecvGrant)
			return zero, ctx.Err()
		}
	}
	value := c.buffer[idx]
	c.buffer = append(c.buffer[:idx], c.buffer[idx+1:]...)
	c.grantSend()
	c.mu.Unlock()
	return value, nil
}

// abandon removes a cancelled waiter from its list. If the waiter was
// already dequeued by a wake, the pending wakeup is consumed and, when
// it carried a grant, handOn passes the reserved resource to the next
// queued waiter or releases it.
func (c *Channel[T]) abandon(l *waitList, w *waiter, handOn func()) {
	c.mu.Lock()
	if !l.remove(w) {
		if err := <-w.wake; err == nil {
			handOn()
		}
	}
	c.mu.Unlock()
}

// handOnSendGrant releases a slot reserved by a cancelled sender,
// re-granting it to the next blocked sender if any. Callers hold mu.
func (c *Channel[T]) handOnSendGrant() {
	c.sendGrants--
	c.grantSend()
}

// handOnRecvGrant releases a value reserved by a cancelled receiver,
// re-granting it to the next blocked receiver if any; with none
// queued, the value becomes visible to fresh calls again. Callers
// hold mu.
func (c *Channel[T]) handOnRecvGrant() {
	c.recvGrants--
	c.grantRecv()
}

// TrySend is the non-blocking variant of [Channel.Send]. It returns
// [ErrFull] instead of blocking when the buffer is at capacity or the
// free slot is reserved for a blocked sender.
func (c *Channel[T]) TrySend(value T) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if c.full() {
		return ErrFull
	}
	c.buffer = append(c.buffer, value)
	c.grantRecv()
	return nil
}

// TryRecv is the non-blocking variant of [Channel.Recv]. It returns
// [ErrEmpty] instead of blocking when no unreserved value is buffered.
func (c *Channel[T]) TryRecv() (T, error) {
	var zero T
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.buffer) == c.recvGrants {
		if c.closed {
			return zero, ErrClosed
		}
		return zero, ErrEmpty
	}
	idx := c.recvGrants
	value := c.buffer[idx]
	c.buffer = append(c.buffer[:idx], c.buffer[idx+1:]...)
	c.grantSend()
	return value, nil
}

// Close transitions the channel to closed, waking every currently
// blocked Send and Recv with [ErrClosed] exactly once. It reports
// whether this call performed the transition; closing an already
// closed channel returns false.
func (c *Channel[T]) Close() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	c.closed = true
	c.senders.wakeAll(ErrClosed)
	c.receivers.wakeAll(ErrClosed)
	return true
}

// IsClosed reports whether the channel has been closed.
func (c *Channel[T]) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Len returns the number of currently buffered values, including any
// already reserved for woken receivers.
func (c *Channel[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.buffer)
}

// Cap returns the channel's capacity; zero means unbounded.
func (c *Channel[T]) Cap() int {
	return c.capacity
}

// Clear discards all buffered values except those already reserved for
// woken receivers. Senders blocked on a full buffer are woken to fill
// the freed capacity.
func (c *Channel[T]) Clear() {
	c.mu.Lock()
	c.buffer = append([]T(nil), c.buffer[:c.recvGrants]...)
	for c.capacity > 0 && len(c.buffer)+c.sendGrants < c.capacity {
		if !c.senders.wakeOne(nil) {
			break
		}
		c.sendGrants++
	}
	c.mu.Unlock()
}

// Stream returns a single-pass stream of the channel's values that
// ends when the channel is closed and drained. Closure is translated
// into ordinary exhaustion, never an error.
func (c *Channel[T]) Stream() *Stream[T] {
	return StreamOf[T](c)
}

var _ SendReceiver[int] = (*Channel[int])(nil)
