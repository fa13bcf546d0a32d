package llm

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiterDisabled(t *testing.T) {
	assert.Nil(t, newRateLimiter(0))
	assert.Nil(t, newRateLimiter(-3))

	var rl *rateLimiter
	assert.True(t, rl.allow())
	require.NoError(t, rl.wait(context.Background()))
}

func TestRateLimiterBurst(t *testing.T) {
	rl := newRateLimiter(60)

	for i := 0; i < 60; i++ {
		assert.True(t, rl.allow(), "token %d should be available", i)
	}
	assert.False(t, rl.allow())
}

func TestRateLimiterWaitHonorsContext(t *testing.T) {
	rl := newRateLimiter(1)
	require.True(t, rl.allow())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := rl.wait(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limiter canceled")
	assert.Less(t, time.Since(start), time.Second)
}

func TestRateLimiterWaitCanceled(t *testing.T) {
	rl := newRateLimiter(1)
	require.True(t, rl.allow())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := rl.wait(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRateLimiterConcurrentAllow(t *testing.T) {
	rl := newRateLimiter(50)

	var wg sync.WaitGroup
	var mu sync.Mutex
	granted := 0
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if rl.allow() {
				mu.Lock()
				granted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	// Refill during the test can add at most a token or two.
	assert.GreaterOrEqual(t, granted, 50)
	assert.LessOrEqual(t, granted, 52)
}
