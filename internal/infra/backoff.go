package infra

import (
	"context"
	"log/slog"
	"time"
)

const (
	// DefaultRetryAttempts bounds a single Retry call. Callers decide whether
	// exhaustion is terminal or retried at a higher level.
	DefaultRetryAttempts = 3

	// DefaultRetryBase is the delay before the second attempt; it doubles
	// after each failure.
	DefaultRetryBase = 1 * time.Second

	maxBackoffDelay = 60 * time.Second
)

// CalculateBackoff returns the reconnect delay for the given retry count:
// base, 2*base, 4*base, ... capped at maxBackoffDelay.
func CalculateBackoff(retry int) time.Duration {
	if retry < 0 {
		retry = 0
	}
	delay := DefaultRetryBase << uint(retry)
	if delay <= 0 || delay > maxBackoffDelay {
		return maxBackoffDelay
	}
	return delay
}

// Retry runs fn up to attempts times with exponentially growing delays
// between attempts (base, 2*base, 4*base, ...). It returns the last error
// when all attempts fail instead of propagating mid-flight; the delay sleeps
// are context-aware so shutdown is never blocked on backoff.
func Retry(ctx context.Context, name string, attempts int, base time.Duration, fn func(ctx context.Context) error) error {
	if attempts <= 0 {
		attempts = DefaultRetryAttempts
	}
	if base <= 0 {
		base = DefaultRetryBase
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			delay := base << uint(i-1)
			slog.Debug("Retrying operation",
				slog.String("op", name), slog.Int("attempt", i+1), slog.Duration("delay", delay))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		if lastErr = fn(ctx); lastErr == nil {
			return nil
		}
		slog.Warn("Operation attempt failed",
			slog.String("op", name), slog.Int("attempt", i+1), slog.Any("error", lastErr))
	}
	return lastErr
}
