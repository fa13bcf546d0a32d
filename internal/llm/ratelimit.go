package llm

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// rateLimiter spaces outbound calls to perMinute per minute, allowing a
// burst of the full minute's budget. A nil limiter never blocks.
type rateLimiter struct {
	limiter *rate.Limiter
}

func newRateLimiter(perMinute int) *rateLimiter {
	if perMinute <= 0 {
		return nil
	}
	every := rate.Every(time.Minute / time.Duration(perMinute))
	return &rateLimiter{limiter: rate.NewLimiter(every, perMinute)}
}

// allow takes a token if one is available right now.
func (rl *rateLimiter) allow() bool {
	if rl == nil {
		return true
	}
	return rl.limiter.Allow()
}

// wait blocks until a token is taken or ctx is done. It fails at once when
// the next token would arrive after ctx's deadline.
func (rl *rateLimiter) wait(ctx context.Context) error {
	if rl == nil {
		return nil
	}
	if err := rl.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter canceled: %w", err)
	}
	return nil
}
