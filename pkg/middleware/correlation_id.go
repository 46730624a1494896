package middleware

import (
	"strings"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/richxcame/neighborly/pkg/logger"
)

const (
	// CorrelationIDHeader carries the request id in and out of the service
	// and onto calls to the weather provider.
	CorrelationIDHeader = "X-Request-ID"
	// AltCorrelationIDHeader is read when CorrelationIDHeader is absent.
	AltCorrelationIDHeader = "X-Correlation-ID"
	// CorrelationIDKey is the gin and log field key.
	CorrelationIDKey = "correlation_id"
)

// CorrelationID adopts the caller's request id when it is a UUID and mints
// one otherwise. The id is echoed back, stored on the request context for
// logging and outbound calls, and tagged on the request's Sentry scope.
func CorrelationID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := incomingCorrelationID(c)

		c.Set(CorrelationIDKey, id)
		c.Request = c.Request.WithContext(logger.ContextWithCorrelationID(c.Request.Context(), id))
		c.Writer.Header().Set(CorrelationIDHeader, id)

		if hub := sentrygin.GetHubFromContext(c); hub != nil {
			hub.Scope().SetTag(CorrelationIDKey, id)
		}

		c.Next()
	}
}

func incomingCorrelationID(c *gin.Context) string {
	for _, header := range []string{CorrelationIDHeader, AltCorrelationIDHeader} {
		raw := strings.TrimSpace(c.GetHeader(header))
		if raw == "" {
			continue
		}
		if parsed, err := uuid.Parse(raw); err == nil {
			return parsed.String()
		}
	}
	return uuid.NewString()
}

// GetCorrelationID returns the request id set by CorrelationID.
func GetCorrelationID(c *gin.Context) string {
	if id := c.GetString(CorrelationIDKey); id != "" {
		return id
	}
	return logger.CorrelationIDFromContext(c.Request.Context())
}
