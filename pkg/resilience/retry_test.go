package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetry(attempts int) RetryConfig {
	return RetryConfig{
		MaxAttempts:       attempts,
		InitialBackoff:    time.Millisecond,
		MaxBackoff:        2 * time.Millisecond,
		BackoffMultiplier: 2,
	}
}

func TestRetrySucceedsAfterTransientFailure(t *testing.T) {
	calls := 0
	result, err := Retry(context.Background(), fastRetry(3), "test.transient", func(context.Context) (interface{}, error) {
		calls++
		if calls < 2 {
			return nil, errors.New("transient")
		}
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 2, calls)
}

func TestRetryStopsAtMaxAttempts(t *testing.T) {
	calls := 0
	_, err := Retry(context.Background(), fastRetry(3), "test.exhausted", func(context.Context) (interface{}, error) {
		calls++
		return nil, errors.New("still failing")
	})

	require.Error(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryHonoursChecker(t *testing.T) {
	cfg := fastRetry(5)
	permanent := errors.New("permanent")
	cfg.RetryableChecker = func(err error) bool { return !errors.Is(err, permanent) }

	calls := 0
	_, err := Retry(context.Background(), cfg, "test.permanent", func(context.Context) (interface{}, error) {
		calls++
		return nil, permanent
	})

	assert.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, calls)
}

func TestRetryDoesNotRetryCircuitOpen(t *testing.T) {
	calls := 0
	_, err := Retry(context.Background(), fastRetry(3), "test.open", func(context.Context) (interface{}, error) {
		calls++
		return nil, ErrCircuitOpen
	})

	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, 1, calls)
}

func TestRetryCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Retry(ctx, fastRetry(3), "test.cancelled", func(context.Context) (interface{}, error) {
		t.Fatal("operation should not run")
		return nil, nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIsRetryableHTTPStatus(t *testing.T) {
	assert.True(t, IsRetryableHTTPStatus(503))
	assert.True(t, IsRetryableHTTPStatus(429))
	assert.False(t, IsRetryableHTTPStatus(401))
	assert.False(t, IsRetryableHTTPStatus(404))
}
