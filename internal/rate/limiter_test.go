package rate

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemoryLimiter_FixedWindow(t *testing.T) {
	l := NewMemoryLimiter(2, time.Minute)
	base := time.Date(2026, 1, 1, 10, 0, 5, 0, time.UTC)
	l.now = func() time.Time { return base }
	ctx := context.Background()

	r1, err := l.Allow(ctx, "1.2.3.4|/login")
	require.NoError(t, err)
	require.True(t, r1.Allowed)
	require.Equal(t, int64(1), r1.Remaining)

	r2, _ := l.Allow(ctx, "1.2.3.4|/login")
	require.True(t, r2.Allowed)
	require.Zero(t, r2.Remaining)

	r3, _ := l.Allow(ctx, "1.2.3.4|/login")
	require.False(t, r3.Allowed)
	require.Equal(t, 55*time.Second, r3.RetryAfter)

	// Other keys are independent.
	other, _ := l.Allow(ctx, "5.6.7.8|/login")
	require.True(t, other.Allowed)

	// Next window starts fresh.
	l.now = func() time.Time { return base.Add(time.Minute) }
	r4, _ := l.Allow(ctx, "1.2.3.4|/login")
	require.True(t, r4.Allowed)
	require.Equal(t, int64(1), r4.CurrentHits)
}

func TestWindowKey(t *testing.T) {
	now := time.Unix(125, 0)
	k, left := window("rl:", "a b", time.Minute, now)
	require.Equal(t, "rl:a_b:120", k)
	require.Equal(t, 55*time.Second, left)
}
