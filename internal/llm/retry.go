package llm

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

type RetryPolicy struct {
	Attempts  int           // total attempts, including the first
	BaseDelay time.Duration // delay after attempt n is BaseDelay * 2^(n-1)
}

var DefaultRetryPolicy = RetryPolicy{Attempts: 3, BaseDelay: 500 * time.Millisecond}

// sleep is swapped in tests.
var sleep = func(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// CallWithRetry invokes fn until it succeeds, returns a permanent error, or
// the attempts run out. The last error is returned unchanged.
func CallWithRetry[T any](ctx context.Context, p RetryPolicy, logger *slog.Logger, fn func(ctx context.Context, attempt int) (T, error)) (T, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if p.Attempts <= 0 {
		p.Attempts = DefaultRetryPolicy.Attempts
	}
	if p.BaseDelay < 0 {
		p.BaseDelay = 0
	}

	var zero T
	var lastErr error
	for attempt := 1; attempt <= p.Attempts; attempt++ {
		out, err := fn(ctx, attempt)
		if err == nil {
			return out, nil
		}
		lastErr = err
		if attempt == p.Attempts || ctx.Err() != nil || !retryable(err) {
			break
		}
		delay := p.BaseDelay * time.Duration(1<<(attempt-1))
		logger.Warn("llm.retry", "attempt", attempt, "of", p.Attempts, "delay_ms", delay.Milliseconds(), "error", err)
		if err := sleep(ctx, delay); err != nil {
			return zero, errors.Join(lastErr, err)
		}
	}
	return zero, lastErr
}

// retryable reports false for client errors that will not change on a second try.
func retryable(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Temporary()
	}
	return true
}
