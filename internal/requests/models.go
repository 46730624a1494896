// Package requests reads outstanding help requests and finds the ones near a
// coordinate. It never writes: requests are owned by another service.
package requests

import (
	"time"

	"github.com/google/uuid"
	"github.com/richxcame/neighborly/pkg/geo"
)

// Request statuses
const (
	StatusOpen       = "open"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

// Urgency tiers
const (
	UrgencyEmergency = "emergency"
	UrgencyHigh      = "high"
	UrgencyNormal    = "normal"
	UrgencyLow       = "low"
)

// CandidateRequest is a read-only snapshot of a help request.
type CandidateRequest struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Category    string     `json:"category"`
	Description string     `json:"description"`
	Urgency     string     `json:"urgency"`
	TimeWindow  string     `json:"time_window"`
	Latitude    *float64   `json:"latitude,omitempty"`
	Longitude   *float64   `json:"longitude,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UserID      uuid.UUID  `json:"user_id"`
	Status      string     `json:"status"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Coordinate returns the request location, or false when it has none.
func (r *CandidateRequest) Coordinate() (geo.Coordinate, bool) {
	if r.Latitude == nil || r.Longitude == nil {
		return geo.Coordinate{}, false
	}
	return geo.Coordinate{Latitude: *r.Latitude, Longitude: *r.Longitude}, true
}

// Expired reports whether the request's expiry is at or before now.
func (r *CandidateRequest) Expired(now time.Time) bool {
	return r.ExpiresAt != nil && !r.ExpiresAt.After(now)
}

// Completed reports whether the request carries a completion time.
func (r *CandidateRequest) Completed() bool {
	return r.CompletedAt != nil
}

// NearbyRequest is a candidate annotated with its distance from the search
// origin, rounded to two decimals.
type NearbyRequest struct {
	CandidateRequest
	DistanceKm float64 `json:"distance_km"`
}

// NearbyQuery describes a proximity search.
type NearbyQuery struct {
	Origin   geo.Coordinate
	RadiusKm float64
	// Status defaults to StatusOpen.
	Status string
	// ExcludeUserID drops the requester's own requests; uuid.Nil excludes nobody.
	ExcludeUserID uuid.UUID
	// Limit caps the result; zero means no cap.
	Limit            int
	IncludeExpired   bool
	IncludeCompleted bool
}

// ListFilter is what a Store needs to fetch candidate rows.
type ListFilter struct {
	Status           string
	ExcludeUserID    uuid.UUID
	Box              geo.BoundingBox
	Now              time.Time
	IncludeExpired   bool
	IncludeCompleted bool
}

// CategoryCount is the number of requests in a category.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}
