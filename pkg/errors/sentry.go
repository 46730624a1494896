package errors

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/richxcame/neighborly/pkg/logger"
)

// SentryConfig holds configuration for Sentry integration
type SentryConfig struct {
	DSN              string
	Environment      string
	Release          string
	SampleRate       float64
	TracesSampleRate float64
	ServerName       string
}

// DefaultSentryConfig returns a Sentry configuration for the given DSN and
// environment; the sample rates fall back to per-environment defaults.
func DefaultSentryConfig(dsn, environment, serviceName string) *SentryConfig {
	traces := 1.0
	if environment == "production" {
		traces = 0.1
	}
	return &SentryConfig{
		DSN:              dsn,
		Environment:      environment,
		Release:          os.Getenv("SENTRY_RELEASE"),
		SampleRate:       1.0,
		TracesSampleRate: traces,
		ServerName:       serviceName,
	}
}

// InitSentry initializes the Sentry SDK. It fails when no DSN is configured
// so callers can log and continue without error tracking.
func InitSentry(config *SentryConfig) error {
	if config == nil || config.DSN == "" {
		return fmt.Errorf("sentry DSN is not configured")
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              config.DSN,
		Environment:      config.Environment,
		Release:          config.Release,
		SampleRate:       config.SampleRate,
		TracesSampleRate: config.TracesSampleRate,
		ServerName:       config.ServerName,
		AttachStacktrace: true,
		BeforeSend: func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
			if event.Level == sentry.LevelInfo || event.Level == sentry.LevelDebug {
				return nil
			}
			if event.Request != nil {
				delete(event.Request.Headers, "Authorization")
				delete(event.Request.Headers, "Cookie")
			}
			return event
		},
	})
	if err != nil {
		return fmt.Errorf("failed to initialize sentry: %w", err)
	}
	return nil
}

// Flush flushes the Sentry buffer
func Flush(timeout time.Duration) bool {
	return sentry.Flush(timeout)
}

// CaptureErrorWithContext reports err tagged with the request's correlation ID.
func CaptureErrorWithContext(ctx context.Context, err error, extras map[string]interface{}) *sentry.EventID {
	if err == nil {
		return nil
	}

	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub().Clone()
	}

	var eventID *sentry.EventID
	hub.WithScope(func(scope *sentry.Scope) {
		for key, value := range extras {
			scope.SetExtra(key, value)
		}
		if correlationID := logger.CorrelationIDFromContext(ctx); correlationID != "" {
			scope.SetTag("correlation_id", correlationID)
		}
		if userID := logger.UserIDFromContext(ctx); userID != "" {
			scope.SetUser(sentry.User{ID: userID})
		}
		eventID = hub.CaptureException(err)
	})
	return eventID
}

// AddBreadcrumbForRequest adds a breadcrumb for HTTP request
func AddBreadcrumbForRequest(method, url string, statusCode int, duration time.Duration) {
	sentry.AddBreadcrumb(&sentry.Breadcrumb{
		Type:      "http",
		Category:  "http.request",
		Level:     sentry.LevelInfo,
		Message:   fmt.Sprintf("%s %s", method, url),
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"method":      method,
			"url":         url,
			"status_code": statusCode,
			"duration_ms": duration.Milliseconds(),
		},
	})
}

var businessErrors = []string{
	"validation failed",
	"invalid input",
	"invalid coordinates",
	"unauthorized",
	"forbidden",
	"not found",
	"bad request",
}

// IsBusinessError checks if an error is an expected client-side failure
func IsBusinessError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, businessErr := range businessErrors {
		if strings.Contains(msg, businessErr) {
			return true
		}
	}
	return false
}

// ShouldReportError determines if an error should be reported to Sentry
func ShouldReportError(err error, statusCode int) bool {
	if err == nil || IsBusinessError(err) {
		return false
	}
	// 4xx other than 429 are the caller's problem
	if statusCode >= 400 && statusCode < 500 && statusCode != 429 {
		return false
	}
	return true
}
