package channels

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testLogger counts Error calls; used for suppressed-failure mode.
type testLogger struct {
	mu    sync.Mutex
	calls int
}

func (l *testLogger) Error(msg string, args ...any) {
	l.mu.Lock()
	l.calls++
	l.mu.Unlock()
}

func (l *testLogger) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}

func TestMerger_Completeness(t *testing.T) {
	ctx := context.Background()
	m := Merge(FromSlice([]int{1, 2}), FromSlice([]int{10, 20, 30}))

	values, err := m.Stream().Collect(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{1, 2, 10, 20, 30}, values)
}

func TestMerger_Empty(t *testing.T) {
	ctx := context.Background()
	values, err := NewMerger[int]().Stream().Collect(ctx)
	require.NoError(t, err)
	assert.Empty(t, values)
}

func TestMerger_SingleSourcePreservesOrder(t *testing.T) {
	ctx := context.Background()
	values, err := Merge(FromSlice([]int{1, 2, 3})).Stream().Collect(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, values)
}

func TestMerger_MidIterationAdd(t *testing.T) {
	ctx := context.Background()
	m := Merge(FromSlice([]int{1, 2}))
	s := m.Stream()

	first, err := s.Next(ctx)
	require.NoError(t, err)

	// A source added after consumption has begun must still be
	// drained fully before the merge ends.
	m.Add(FromSlice([]int{10, 20, 30}))

	rest, err := s.Collect(ctx)
	require.NoError(t, err)

	all := append([]int{first}, rest...)
	assert.ElementsMatch(t, []int{1, 2, 10, 20, 30}, all)
}

func TestMerger_ChannelSources(t *testing.T) {
	ctx := context.Background()

	mkSource := func(base int) *Stream[int] {
		ch := New[int](2)
		go func() {
			for i := 0; i < 5; i++ {
				ch.Send(ctx, base+i)
				time.Sleep(time.Millisecond)
			}
			ch.Close()
		}()
		return ch.Stream()
	}

	m := Merge(mkSource(0), mkSource(100))
	values, err := m.Stream().Collect(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{0, 1, 2, 3, 4, 100, 101, 102, 103, 104}, values)
}

func TestMerger_SourceFailureAbortsByDefault(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")
	bad := Map(FromSlice([]int{1}), func(_ context.Context, _ int) (int, error) {
		return 0, boom
	})
	stalled := New[int](0) // in-flight pull that must be cancelled

	m := Merge(bad, stalled.Stream())
	_, err := m.Stream().Collect(ctx)

	require.Error(t, err)
	assert.True(t, IsSourceError(err))
	assert.ErrorIs(t, err, boom)
}

func TestMerger_FailureIsSticky(t *testing.T) {
	ctx := context.Background()
	bad := NewStream(func(ctx context.Context) (int, error) {
		return 0, errors.New("boom")
	})

	s := Merge(bad).Stream()
	_, err := s.Next(ctx)
	require.True(t, IsSourceError(err))

	_, err = s.Next(ctx)
	assert.True(t, IsSourceError(err))
}

func TestMerger_SuppressedFailures(t *testing.T) {
	ctx := context.Background()
	log := &testLogger{}

	bad := NewStream(func(ctx context.Context) (int, error) {
		return 0, errors.New("boom")
	})

	m := NewMerger[int](WithSuppressedFailures(), WithLogger(log))
	m.Add(bad)
	m.Add(FromSlice([]int{1, 2, 3}))

	values, err := m.Stream().Collect(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{1, 2, 3}, values)
	assert.Equal(t, 1, log.count(), "failing source is dropped, not retried")
}

func TestMerger_PanicInSourceBecomesSourceError(t *testing.T) {
	ctx := context.Background()
	bad := NewStream(func(ctx context.Context) (int, error) {
		panic("kaboom")
	})

	_, err := Merge(bad).Stream().Collect(ctx)
	require.Error(t, err)
	assert.True(t, IsSourceError(err))
	assert.Contains(t, err.Error(), "kaboom")
}

func TestMerger_AddFromConsumerStep(t *testing.T) {
	ctx := context.Background()
	m := Merge(FromSlice([]int{1, 2, 3}))
	s := m.Stream()

	added := false
	var values []int
	err := s.ForEach(ctx, func(v int) error {
		values = append(values, v)
		if !added {
			added = true
			m.Add(FromSlice([]int{100}))
		}
		return nil
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{1, 2, 3, 100}, values)
}

func TestMerger_ConsumerCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	stalled := New[int](0)

	s := Merge(stalled.Stream()).Stream()
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := s.Next(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMerger_StopCancelsPulls(t *testing.T) {
	ctx := context.Background()
	ch := New[int](0)
	require.NoError(t, ch.Send(ctx, 1))

	s := Merge(ch.Stream()).Stream()
	v, err := s.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	// Stop releases the re-dispatched pull blocked on the channel.
	s.Stop()
	time.Sleep(20 * time.Millisecond)

	// The channel remains usable by other receivers.
	require.NoError(t, ch.Send(ctx, 2))
	got, err := ch.Recv(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, got)
}
