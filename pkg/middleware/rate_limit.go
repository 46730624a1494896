package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/richxcame/neighborly/pkg/common"
	"github.com/richxcame/neighborly/pkg/logger"
	"github.com/richxcame/neighborly/pkg/ratelimit"
	"go.uber.org/zap"
)

// RateLimiter decides whether a caller may proceed.
type RateLimiter interface {
	Enabled() bool
	RuleFor(endpoint string) ratelimit.Rule
	Allow(ctx context.Context, endpoint, identity string, rule ratelimit.Rule) (ratelimit.Result, error)
}

var _ RateLimiter = (*ratelimit.Limiter)(nil)

// RateLimit enforces per-caller quotas. Authenticated callers are keyed by
// user ID, everyone else by client IP. Limiter failures let the request through.
func RateLimit(limiter RateLimiter) gin.HandlerFunc {
	if limiter == nil || !limiter.Enabled() {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		endpointPath := c.FullPath()
		if endpointPath == "" {
			endpointPath = c.Request.URL.Path
		}
		endpointKey := fmt.Sprintf("%s:%s", c.Request.Method, endpointPath)

		identity := "ip:" + c.ClientIP()
		if userID, err := GetUserID(c); err == nil && userID != uuid.Nil {
			identity = "user:" + userID.String()
		}

		rule := limiter.RuleFor(endpointKey)
		if rule.Limit <= 0 {
			c.Next()
			return
		}

		result, err := limiter.Allow(c.Request.Context(), endpointKey, identity, rule)
		if err != nil {
			logger.WarnContext(c.Request.Context(), "rate limit evaluation failed",
				zap.String("endpoint", endpointKey),
				zap.Error(err),
			)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(max(result.Remaining, 0)))
		c.Header("X-RateLimit-Reset", strconv.Itoa(seconds(result.ResetAfter)))

		if result.Allowed {
			c.Next()
			return
		}

		retry := max(seconds(result.RetryAfter), 1)
		c.Header("Retry-After", strconv.Itoa(retry))
		logger.WarnContext(c.Request.Context(), "rate limit exceeded",
			zap.String("endpoint", endpointKey),
			zap.String("identity", identity),
			zap.Int("retry_after_seconds", retry),
		)
		common.ErrorResponse(c, http.StatusTooManyRequests, "rate limit exceeded")
		c.Abort()
	}
}

func seconds(d time.Duration) int {
	return max(int(d.Round(time.Second)/time.Second), 0)
}
