package util

import (
	"context"
	"math/rand"
	"time"
)

// maxRetryDelay caps the exponential backoff so long retry chains keep
// polling instead of sleeping for minutes.
const maxRetryDelay = 30 * time.Second

// Retry calls fn up to maxAttempts times with exponential backoff starting
// at baseDelay, capped at maxRetryDelay and spread with up to 25% jitter.
// It returns nil on the first successful call, or the last error if all
// attempts fail. Context cancellation is respected between attempts.
func Retry(ctx context.Context, maxAttempts int, baseDelay time.Duration, fn func() error) error {
	var err error

	for attempt := 0; attempt < maxAttempts; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}

		// No sleep after the final failed attempt.
		if attempt < maxAttempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(jitter(backoffDelay(attempt, baseDelay))):
			}
		}
	}

	return err
}

// backoffDelay doubles baseDelay per attempt up to maxRetryDelay.
func backoffDelay(attempt int, baseDelay time.Duration) time.Duration {
	d := baseDelay
	for i := 0; i < attempt; i++ {
		d *= 2
		if d >= maxRetryDelay {
			return maxRetryDelay
		}
	}
	return d
}

func jitter(d time.Duration) time.Duration {
	if d <= 0 {
		return d
	}
	return d + time.Duration(rand.Int63n(int64(d)/4+1))
}
