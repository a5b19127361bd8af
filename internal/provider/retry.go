package provider

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"ragchat/internal/ragerr"
)

// backoff returns exponential backoff with jitter. Base delay doubles each
// attempt, capped at 30 seconds, with random jitter of up to ±25%.
func backoff(baseDelay time.Duration, attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	if attempt > 30 {
		attempt = 30
	}
	d := baseDelay * time.Duration(1<<uint(attempt))
	if d > 30*time.Second {
		d = 30 * time.Second
	}
	if d <= 0 {
		return 0
	}
	jitter := time.Duration(rand.Int64N(int64(d)/2)) - d/4
	return d + jitter
}

// withRetry runs fn up to maxAttempts times, sleeping between attempts.
// Only transient failures (provider unavailable, rate limited) are retried;
// auth and caller errors surface immediately.
func withRetry[T any](ctx context.Context, maxAttempts int, baseDelay time.Duration, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(backoff(baseDelay, attempt)):
			case <-ctx.Done():
				return zero, errors.Join(ragerr.ErrProviderUnavailable, ctx.Err())
			}
		}
		out, err := fn(ctx)
		if err == nil {
			return out, nil
		}
		if !ragerr.IsRetryable(err) {
			return zero, err
		}
		lastErr = err
	}
	return zero, lastErr
}
