package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNilLimiterNeverBlocks(t *testing.T) {
	t.Parallel()

	var l *Limiter
	require.NoError(t, l.Wait(context.Background(), "http://example.com"))
}

func TestUnlimitedByDefault(t *testing.T) {
	t.Parallel()

	l := New(Config{})
	start := time.Now()
	for i := 0; i < 100; i++ {
		require.NoError(t, l.Wait(context.Background(), "http://example.com"))
	}
	require.Less(t, time.Since(start), time.Second)
}

func TestWaitPacesPerHost(t *testing.T) {
	t.Parallel()

	l := New(Config{DefaultRPS: 20, DefaultBurst: 1})
	start := time.Now()
	for i := 0; i < 4; i++ {
		require.NoError(t, l.Wait(context.Background(), "http://example.com"))
	}
	// Burst of 1 at 20 RPS means three waits of ~50ms each.
	require.GreaterOrEqual(t, time.Since(start), 100*time.Millisecond)

	// A different host has its own bucket and is not delayed.
	fresh := time.Now()
	require.NoError(t, l.Wait(context.Background(), "http://other.com"))
	require.Less(t, time.Since(fresh), 50*time.Millisecond)
}

func TestWaitHonorsContext(t *testing.T) {
	t.Parallel()

	l := New(Config{DefaultRPS: 0.001, DefaultBurst: 1})
	require.NoError(t, l.Wait(context.Background(), "http://example.com"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	require.Error(t, l.Wait(ctx, "http://example.com"))
}
