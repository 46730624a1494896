package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/richxcame/neighborly/pkg/common"
	"github.com/richxcame/neighborly/pkg/errors"
)

// SentryMiddleware attaches a Sentry hub to each request and reports panics.
// It re-panics so gin's recovery still produces the 500 response.
func SentryMiddleware() gin.HandlerFunc {
	return sentrygin.New(sentrygin.Options{
		Repanic:         true,
		WaitForDelivery: false,
		Timeout:         2 * time.Second,
	})
}

// ErrorHandler reports unexpected handler errors and bare 5xx responses.
// It should be placed after other middleware in the chain.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()

		errors.AddBreadcrumbForRequest(c.Request.Method, c.Request.URL.Path, statusCode, duration)

		for _, err := range c.Errors {
			if errors.ShouldReportError(err.Err, statusCode) {
				errors.CaptureErrorWithContext(c.Request.Context(), err.Err, map[string]interface{}{
					"status_code": statusCode,
					"route":       c.FullPath(),
					"duration_ms": duration.Milliseconds(),
				})
			}
		}

		if statusCode >= 500 && len(c.Errors) == 0 {
			captureHTTPError(c, statusCode)
		}
	}
}

// Recovery turns a panic into a 500 in the standard envelope.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		if hub := sentrygin.GetHubFromContext(c); hub != nil {
			hub.Scope().SetTag("correlation_id", GetCorrelationID(c))
		}
		_ = c.Error(fmt.Errorf("panic: %v", recovered))
		common.ErrorResponse(c, http.StatusInternalServerError, "internal server error")
		c.Abort()
	})
}

func captureHTTPError(c *gin.Context, statusCode int) {
	hub := sentrygin.GetHubFromContext(c)
	if hub == nil {
		hub = sentry.CurrentHub().Clone()
	}

	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetRequest(c.Request)
		scope.SetLevel(sentry.LevelError)
		scope.SetTag("http.status_code", fmt.Sprintf("%d", statusCode))
		scope.SetTag("correlation_id", GetCorrelationID(c))
		hub.CaptureMessage(fmt.Sprintf("HTTP %d: %s %s", statusCode, c.Request.Method, c.Request.URL.Path))
	})
}
