package middleware

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS handles Cross-Origin Resource Sharing for a comma-separated origin
// list. An empty list falls back to http://localhost:3000; "*" allows any.
func CORS(originsCSV string) gin.HandlerFunc {
	if strings.TrimSpace(originsCSV) == "" {
		originsCSV = "http://localhost:3000"
	}

	cfg := cors.Config{
		AllowMethods:     []string{"GET", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", CorrelationIDHeader},
		ExposeHeaders:    []string{CorrelationIDHeader, "X-Trace-ID"},
		AllowCredentials: true,
		MaxAge:           24 * time.Hour,
	}

	for _, origin := range strings.Split(originsCSV, ",") {
		origin = strings.TrimSpace(origin)
		if origin == "*" {
			cfg.AllowOriginFunc = func(string) bool { return true }
			cfg.AllowOrigins = nil
			break
		}
		if origin != "" {
			cfg.AllowOrigins = append(cfg.AllowOrigins, origin)
		}
	}

	return cors.New(cfg)
}
