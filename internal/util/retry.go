package util

import (
	"context"
	"math/rand/v2"
	"time"
)

// Backoff controls how Retry spaces and filters attempts.
type Backoff struct {
	Attempts  int           // total calls, including the first; <1 means one call
	BaseDelay time.Duration // delay before the second call, doubled after each retry
	Jitter    bool          // scale each delay by a random factor in [0.5, 1.5)

	// Retryable reports whether err is worth another attempt. Nil retries
	// every error.
	Retryable func(err error) bool

	// OnRetry runs before each wait.
	OnRetry func(attempt int, delay time.Duration, err error)
}

// Retry calls fn until it succeeds, returns a non-retryable error, or the
// attempts run out. It returns the last error from fn, or ctx.Err() if the
// context ends during a wait.
func Retry(ctx context.Context, b Backoff, fn func() error) error {
	attempts := max(b.Attempts, 1)
	delay := b.BaseDelay

	var err error
	for attempt := 1; ; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if attempt >= attempts || ctx.Err() != nil {
			return err
		}
		if b.Retryable != nil && !b.Retryable(err) {
			return err
		}

		wait := delay
		if b.Jitter && delay > 0 {
			wait = delay/2 + time.Duration(rand.Int64N(int64(delay)))
		}
		if b.OnRetry != nil {
			b.OnRetry(attempt, wait, err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		delay *= 2
	}
}
