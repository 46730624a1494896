package resilience

import (
	"context"

	"github.com/richxcame/neighborly/pkg/logger"
	"go.uber.org/zap"
)

// FallbackFunc is executed when the breaker is open or overloaded.
type FallbackFunc func(ctx context.Context, err error) (interface{}, error)

// GracefulDegradation logs that an upstream is being skipped and reports
// ErrCircuitOpen so the caller can fall back to its degraded path.
func GracefulDegradation(upstream string) FallbackFunc {
	return func(ctx context.Context, err error) (interface{}, error) {
		logger.WarnContext(ctx, "upstream skipped while circuit breaker is open",
			zap.String("upstream", upstream),
			zap.Error(err),
		)
		return nil, ErrCircuitOpen
	}
}
