package app

import (
	"context"
	"errors"
	"time"

	"ratescope/internal/domain"
)

// retryable reports whether an external-search failure is worth another
// attempt. Credential problems are fatal; everything else (network, 5xx,
// rate limits) is transient.
func retryable(err error) bool {
	if errors.Is(err, domain.ErrUnauthorized) || errors.Is(err, domain.ErrMissingCredential) {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return true
}

// withRetry runs op up to attempts times, sleeping base*attempt between
// tries. Returns the last error on exhaustion.
func withRetry(ctx context.Context, attempts int, base time.Duration, op func() error) error {
	var last error
	for attempt := 1; attempt <= attempts; attempt++ {
		last = op()
		if last == nil {
			return nil
		}
		if !retryable(last) || attempt == attempts {
			return last
		}
		if !sleepCtx(ctx, time.Duration(attempt)*base) {
			return ctx.Err()
		}
	}
	return last
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
