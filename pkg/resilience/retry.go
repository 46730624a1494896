package resilience

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"

	"github.com/richxcame/neighborly/pkg/logger"
	"go.uber.org/zap"
)

// RetryConfig defines the configuration for retry behavior
type RetryConfig struct {
	// MaxAttempts includes the initial attempt
	MaxAttempts       int
	InitialBackoff    time.Duration
	MaxBackoff        time.Duration
	BackoffMultiplier float64
	// EnableJitter spreads retries from concurrent callers
	EnableJitter bool
	// RetryableChecker decides whether an error is worth another attempt.
	// When nil every error except cancellation and ErrCircuitOpen is retried.
	RetryableChecker func(error) bool
}

// DefaultRetryConfig returns a sensible default retry configuration
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:       3,
		InitialBackoff:    time.Second,
		MaxBackoff:        30 * time.Second,
		BackoffMultiplier: 2.0,
		EnableJitter:      true,
	}
}

// QuickRetryConfig is for read paths that sit inside a user request: one
// extra attempt after a short pause.
func QuickRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:       2,
		InitialBackoff:    50 * time.Millisecond,
		MaxBackoff:        200 * time.Millisecond,
		BackoffMultiplier: 2.0,
		EnableJitter:      true,
	}
}

// Retry executes the operation with exponential backoff, recording metrics
// under operationName.
func Retry(ctx context.Context, config RetryConfig, operationName string, operation Operation) (interface{}, error) {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 1
	}

	start := time.Now()
	var lastErr error

	for attempt := 1; attempt <= config.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			RecordRetryOperation(operationName, time.Since(start).Seconds(), false)
			return nil, err
		}

		result, err := operation(ctx)
		RecordRetryAttempt(operationName, err == nil)
		if err == nil {
			RecordRetryOperation(operationName, time.Since(start).Seconds(), true)
			if attempt > 1 {
				logger.Get().Info("operation succeeded after retry",
					zap.Int("attempt", attempt),
					zap.String("operation", operationName),
				)
			}
			return result, nil
		}
		lastErr = err

		if !shouldRetry(err, config) || attempt == config.MaxAttempts {
			break
		}

		backoff := calculateBackoff(attempt, config)
		logger.Get().Debug("retrying operation after backoff",
			zap.Int("attempt", attempt),
			zap.Duration("backoff", backoff),
			zap.String("operation", operationName),
			zap.Error(err),
		)

		select {
		case <-ctx.Done():
			RecordRetryOperation(operationName, time.Since(start).Seconds(), false)
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}

	RecordRetryOperation(operationName, time.Since(start).Seconds(), false)
	return nil, lastErr
}

func calculateBackoff(attempt int, config RetryConfig) time.Duration {
	backoff := float64(config.InitialBackoff) * math.Pow(config.BackoffMultiplier, float64(attempt-1))
	if backoff > float64(config.MaxBackoff) {
		backoff = float64(config.MaxBackoff)
	}

	duration := time.Duration(backoff)
	if config.EnableJitter && duration > 0 {
		// full jitter
		duration = time.Duration(rand.Int63n(int64(duration)))
	}
	return duration
}

func shouldRetry(err error, config RetryConfig) bool {
	if err == nil {
		return false
	}
	if config.RetryableChecker != nil {
		return config.RetryableChecker(err)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return !errors.Is(err, ErrCircuitOpen)
}

// IsRetryableHTTPStatus reports whether an HTTP status code signals a transient failure
func IsRetryableHTTPStatus(statusCode int) bool {
	switch statusCode {
	case 408, 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}
