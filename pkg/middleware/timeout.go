package middleware

import (
	"net/http"
	"time"

	"github.com/gin-contrib/timeout"
	"github.com/gin-gonic/gin"
	"github.com/richxcame/neighborly/pkg/common"
	"github.com/richxcame/neighborly/pkg/logger"
	"go.uber.org/zap"
)

// RequestTimeout bounds each request; handlers that overrun get a 504 in the
// standard response envelope.
func RequestTimeout(d time.Duration) gin.HandlerFunc {
	return timeout.New(
		timeout.WithTimeout(d),
		timeout.WithResponse(func(c *gin.Context) {
			logger.WithContext(c.Request.Context()).Warn("Request timeout",
				zap.String("path", c.Request.URL.Path),
				zap.String("method", c.Request.Method),
				zap.Duration("timeout", d),
			)
			common.ErrorResponse(c, http.StatusGatewayTimeout, "request timeout")
		}),
	)
}
