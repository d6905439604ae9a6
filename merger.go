package channels

import (
	"context"
	"io"
	"sync"

	"github.com/sourcegraph/conc/panics"
)

// completion records the outcome of one in-flight pull.
type completion[T any] struct {
	src   *Stream[T]
	value T
	err   error
}

// Merger merges an open, mutable set of streams into one
// completion-ordered stream. Sources can be added before or during
// iteration, including from within the consumer's own per-value
// processing, and the merge ends only once every source is exhausted.
//
// Each active source has exactly one in-flight pull at a time. Pulls
// are dispatched before values are yielded, so sources keep producing
// concurrently with consumption; completed values queue in a FIFO
// result buffer until the consumer asks for them.
//
// By default an unexpected source failure cancels every sibling pull
// and surfaces as a [*SourceError]. With [WithSuppressedFailures] the
// failure is logged and the failing source dropped, leaving the rest
// of the merge intact. A panic inside a source is captured and treated
// as a source failure.
type Merger[T any] struct {
	mu      sync.Mutex
	pending []*Stream[T] // sources awaiting their next dispatch

	suppress bool
	log      Logger

	once   sync.Once
	stream *Stream[T]
}

// NewMerger creates an empty Merger.
func NewMerger[T any](opts ...MergerOption) *Merger[T] {
	cfg := defaultMergerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Merger[T]{suppress: cfg.suppress, log: cfg.log}
}

// Merge creates a Merger over the given streams with default options.
func Merge[T any](streams ...*Stream[T]) *Merger[T] {
	m := NewMerger[T]()
	for _, s := range streams {
		m.Add(s)
	}
	return m
}

// Add registers a new source. It is safe to call at any point,
// including between pulls of the merged stream; the source is picked
// up at the start of the next scheduling cycle.
func (m *Merger[T]) Add(s *Stream[T]) {
	m.mu.Lock()
	m.pending = append(m.pending, s)
	m.mu.Unlock()
}

// Stream returns the merged output stream. Every call returns the
// same single-pass stream.
func (m *Merger[T]) Stream() *Stream[T] {
	m.once.Do(func() {
		m.stream = m.run()
	})
	return m.stream
}

func (m *Merger[T]) run() *Stream[T] {
	// Pulls outlive individual Next calls, so they run under their own
	// context; cancelling it ends the whole merge.
	pullCtx, cancel := context.WithCancel(context.Background())

	completions := make(chan completion[T])
	var inflight int
	var results []T
	var failed error

	dispatch := func(src *Stream[T]) {
		inflight++
		go func() {
			var value T
			var err error
			var catcher panics.Catcher
			catcher.Try(func() {
				value, err = src.Next(pullCtx)
			})
			if r := catcher.Recovered(); r != nil {
				err = r.AsError()
			}
			select {
			case completions <- completion[T]{src: src, value: value, err: err}:
			case <-pullCtx.Done():
			}
		}()
	}

	handle := func(c completion[T]) {
		inflight--
		switch {
		case c.err == io.EOF:
			// Source exhausted; dropped permanently.
		case c.err == nil:
			results = append(results, c.value)
			m.Add(c.src) // re-dispatched next cycle, ahead of the yield
		default:
			if m.suppress {
				m.log.Error("channels: source failed during merge, dropping it", "error", c.err)
				return
			}
			cancel()
			failed = &SourceError{Err: c.err}
		}
	}

	return &Stream[T]{
		next: func(ctx context.Context) (T, error) {
			var zero T
			for {
				if failed != nil {
					return zero, failed
				}

				// 1. Dispatch one pull per source awaiting one.
				m.mu.Lock()
				pending := m.pending
				m.pending = nil
				m.mu.Unlock()
				for _, src := range pending {
					dispatch(src)
				}

				// 2. Drain ready results before waiting again, so a
				// source added by the consumer mid-drain is dispatched
				// on the next cycle without an extra wait.
				if len(results) > 0 {
					value := results[0]
					results = results[1:]
					return value, nil
				}

				// 3. No source active and no pull in flight: done.
				if inflight == 0 {
					m.mu.Lock()
					done := len(m.pending) == 0
					m.mu.Unlock()
					if done {
						cancel()
						return zero, io.EOF
					}
					continue
				}

				// 4. Wait for at least one in-flight pull to complete.
				select {
				case c := <-completions:
					handle(c)
				case <-ctx.Done():
					cancel()
					return zero, ctx.Err()
				}

				// 5. Fold in every other pull that completed in this
				// wake; their results are yielded in FIFO order.
			drain:
				for inflight > 0 && failed == nil {
					select {
					case c := <-completions:
						handle(c)
					default:
						break drain
					}
				}
			}
		},
		stop: cancel,
	}
}
