package channels

// waiter is a suspension token for one blocked Send or Recv call. The
// wake channel has capacity 1 so wakers never block; each waiter is
// woken at most once. A nil wake is a grant: the resource that caused
// it stays reserved for this waiter until consumed or handed on.
type waiter struct {
	wake chan error
}

// waitList is a strict-FIFO queue of blocked waiters. All methods must
// be called with the owning channel's mutex held.
type waitList struct {
	ws []*waiter
}

func (l *waitList) len() int {
	return len(l.ws)
}

// enqueue appends a fresh waiter at the tail.
func (l *waitList) enqueue() *waiter {
	w := &waiter{wake: make(chan error, 1)}
	l.ws = append(l.ws, w)
	return w
}

// remove deletes w from the list, reporting whether it was still
// queued. A false return means w was already dequeued by a wake; the
// caller owns the pending wakeup and must hand it on if unused.
func (l *waitList) remove(w *waiter) bool {
	for i, q := range l.ws {
		if q == w {
			l.ws = append(l.ws[:i], l.ws[i+1:]...)
			return true
		}
	}
	return false
}

// wakeOne dequeues the oldest waiter and delivers err to it. It
// reports whether a waiter was present.
func (l *waitList) wakeOne(err error) bool {
	if len(l.ws) == 0 {
		return false
	}
	w := l.ws[0]
	l.ws = l.ws[1:]
	w.wake <- err
	return true
}

// wakeAll dequeues every waiter and delivers err to each exactly once.
func (l *waitList) wakeAll(err error) {
	for _, w := range l.ws {
		w.wake <- err
	}
	l.ws = nil
}
