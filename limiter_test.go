package channels

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiter_FirstSendIsImmediate(t *testing.T) {
	ctx := context.Background()
	l := NewLimiter[int](New[int](1), time.Minute)

	start := time.Now()
	require.NoError(t, l.Send(ctx, 1))
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestLimiter_EnforcesCooldown(t *testing.T) {
	ctx := context.Background()
	const cooldown = 60 * time.Millisecond
	l := NewLimiter[int](New[int](4), cooldown)

	start := time.Now()
	require.NoError(t, l.Send(ctx, 1))
	require.NoError(t, l.Send(ctx, 2))
	assert.GreaterOrEqual(t, time.Since(start), cooldown)
}

func TestLimiter_ZeroCooldownNeverDelays(t *testing.T) {
	ctx := context.Background()
	l := NewLimiter[int](New[int](8), 0)

	start := time.Now()
	for i := 0; i < 5; i++ {
		require.NoError(t, l.Send(ctx, i))
	}
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestLimiter_PredicateExemptsValues(t *testing.T) {
	ctx := context.Background()
	ch := New[int](8)
	limited := func(v int) bool { return v >= 0 }
	l := NewLimiter[int](ch, 200*time.Millisecond, WithPredicate(limited))

	require.NoError(t, l.Send(ctx, 1)) // first limited send, immediate

	// Exempt values skip the cooldown entirely and do not advance the
	// floor for limited ones.
	start := time.Now()
	require.NoError(t, l.Send(ctx, -1))
	require.NoError(t, l.Send(ctx, -2))
	assert.Less(t, time.Since(start), 100*time.Millisecond)
	assert.Equal(t, 3, ch.Len())
}

func TestLimiter_CancelDuringCooldown(t *testing.T) {
	ch := New[int](8)
	l := NewLimiter[int](ch, time.Minute)
	require.NoError(t, l.Send(context.Background(), 1))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := l.Send(ctx, 2)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, ch.Len(), "cancelled send must not reach the sink")
}

func TestLimiter_SendOnClosedSink(t *testing.T) {
	ch := New[int](1)
	l := NewLimiter[int](ch, 0)
	require.True(t, l.Close())

	assert.ErrorIs(t, l.Send(context.Background(), 1), ErrClosed)
	assert.True(t, ch.IsClosed())
}

func TestLimiter_NegativeCooldownIsZero(t *testing.T) {
	l := NewLimiter[int](New[int](1), -time.Second)
	assert.Equal(t, time.Duration(0), l.Cooldown())
}
