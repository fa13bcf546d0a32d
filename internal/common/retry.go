package common

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// ErrMaxRetries indicates that all retry attempts have been exhausted.
var ErrMaxRetries = errors.New("max retries exceeded")

// RetryOptions configures WithRetry. Zero fields take defaults.
type RetryOptions struct {
	Logger       *slog.Logger
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// WithRetry runs operation until it succeeds, returns a permanent error,
// ctx ends, or the attempts run out. Delays grow exponentially with jitter.
func WithRetry(ctx context.Context, operation func() error, opts RetryOptions) error {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.InitialDelay <= 0 {
		opts.InitialDelay = 100 * time.Millisecond
	}
	if opts.MaxDelay <= 0 {
		opts.MaxDelay = 30 * time.Second
	}
	if opts.Multiplier <= 0 {
		opts.Multiplier = 2.0
	}
	logger := OrDefault(opts.Logger)

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = opts.InitialDelay
	exp.MaxInterval = opts.MaxDelay
	exp.Multiplier = opts.Multiplier
	exp.MaxElapsedTime = 0

	policy := backoff.WithContext(backoff.WithMaxRetries(exp, uint64(opts.MaxAttempts-1)), ctx)

	attempt := 0
	permanent := false
	err := backoff.RetryNotify(func() error {
		attempt++
		opErr := operation()
		var perm *backoff.PermanentError
		permanent = errors.As(opErr, &perm)
		return opErr
	}, policy, func(err error, delay time.Duration) {
		logger.Warn("Operation failed, retrying",
			"attempt", attempt,
			"max_attempts", opts.MaxAttempts,
			"delay", delay,
			"error", err)
	})

	switch {
	case err == nil:
		return nil
	case ctx.Err() != nil, permanent:
		return err
	default:
		return fmt.Errorf("%w after %d attempts: %w", ErrMaxRetries, attempt, err)
	}
}
