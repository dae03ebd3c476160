package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recordSleeps(t *testing.T) *[]time.Duration {
	t.Helper()
	var delays []time.Duration
	orig := sleep
	sleep = func(ctx context.Context, d time.Duration) error {
		delays = append(delays, d)
		return ctx.Err()
	}
	t.Cleanup(func() { sleep = orig })
	return &delays
}

func TestCallWithRetrySucceedsOnThirdAttempt(t *testing.T) {
	delays := recordSleeps(t)
	calls := 0
	got, err := CallWithRetry(context.Background(), DefaultRetryPolicy, nil, func(context.Context, int) (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("transient")
		}
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{500 * time.Millisecond, time.Second}, *delays)
}

func TestCallWithRetryReturnsLastError(t *testing.T) {
	recordSleeps(t)
	calls := 0
	_, err := CallWithRetry(context.Background(), DefaultRetryPolicy, nil, func(context.Context, int) (int, error) {
		calls++
		return 0, errors.New("failure " + string(rune('0'+calls)))
	})
	assert.EqualError(t, err, "failure 3")
	assert.Equal(t, 3, calls)
}

func TestCallWithRetryStopsOnClientError(t *testing.T) {
	recordSleeps(t)
	calls := 0
	_, err := CallWithRetry(context.Background(), DefaultRetryPolicy, nil, func(context.Context, int) (int, error) {
		calls++
		return 0, &StatusError{Code: 400, Body: "bad schema"}
	})
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 1, calls)
}

func TestCallWithRetryRetriesRateLimit(t *testing.T) {
	recordSleeps(t)
	calls := 0
	_, err := CallWithRetry(context.Background(), RetryPolicy{Attempts: 2}, nil, func(context.Context, int) (int, error) {
		calls++
		return 0, &StatusError{Code: 429}
	})
	require.Error(t, err)
	assert.Equal(t, 2, calls)
}

func TestCallWithRetryHonoursCancellation(t *testing.T) {
	recordSleeps(t)
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	_, err := CallWithRetry(ctx, DefaultRetryPolicy, nil, func(context.Context, int) (int, error) {
		calls++
		cancel()
		return 0, errors.New("boom")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}
