package common

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthResponse represents health check response
type HealthResponse struct {
	Status    string                 `json:"status"`
	Service   string                 `json:"service"`
	Version   string                 `json:"version"`
	Timestamp string                 `json:"timestamp"`
	Uptime    string                 `json:"uptime,omitempty"`
	Checks    map[string]CheckStatus `json:"checks,omitempty"`
}

// CheckStatus represents the status of a single health check
type CheckStatus struct {
	Status   string `json:"status"`
	Message  string `json:"message,omitempty"`
	Duration string `json:"duration,omitempty"`
}

// Check probes one dependency.
type Check func(ctx context.Context) error

var startTime = time.Now()

// checkTimeout bounds every dependency probe.
const checkTimeout = 2 * time.Second

// LivenessProbe reports that the process is up.
func LivenessProbe(serviceName, version string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, HealthResponse{
			Status:    "alive",
			Service:   serviceName,
			Version:   version,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Uptime:    time.Since(startTime).String(),
		})
	}
}

// ReadinessProbe runs the named checks in parallel and answers 503 if any fails.
// Optional dependencies should be left out of checks: the service can serve
// degraded results without them.
func ReadinessProbe(serviceName, version string, checks map[string]Check) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), checkTimeout)
		defer cancel()

		results := RunChecks(ctx, checks)

		status, code := "ready", http.StatusOK
		for _, r := range results {
			if r.Status != "healthy" {
				status, code = "not ready", http.StatusServiceUnavailable
				break
			}
		}

		c.JSON(code, HealthResponse{
			Status:    status,
			Service:   serviceName,
			Version:   version,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Uptime:    time.Since(startTime).String(),
			Checks:    results,
		})
	}
}

// RunChecks executes checks concurrently and collects their outcomes.
func RunChecks(ctx context.Context, checks map[string]Check) map[string]CheckStatus {
	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results = make(map[string]CheckStatus, len(checks))
	)

	for name, check := range checks {
		wg.Add(1)
		go func(name string, check Check) {
			defer wg.Done()
			start := time.Now()
			err := check(ctx)

			status := CheckStatus{Status: "healthy", Duration: time.Since(start).String()}
			if err != nil {
				status.Status = "unhealthy"
				status.Message = err.Error()
			}

			mu.Lock()
			results[name] = status
			mu.Unlock()
		}(name, check)
	}
	wg.Wait()
	return results
}
