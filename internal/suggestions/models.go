package suggestions

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/richxcame/neighborly/internal/demand"
	"github.com/richxcame/neighborly/internal/requests"
	"github.com/richxcame/neighborly/internal/weather"
	"github.com/richxcame/neighborly/pkg/geo"
	"github.com/richxcame/neighborly/pkg/validation"
)

// ErrInvalidCoordinates is returned by SuggestionQuery.Validate for an
// out-of-range or NaN origin.
var ErrInvalidCoordinates = errors.New("invalid coordinates")

// Query defaults and bounds
const (
	DefaultMaxSuggestions = 5
	MaxSuggestionsLimit   = 10

	DefaultTrendingHours = 24
	DefaultTrendingLimit = 5
	MaxTrendingHours     = 24 * 30
	MaxTrendingLimit     = 20
)

// SuggestionQuery asks for ranked help requests around a coordinate.
type SuggestionQuery struct {
	// UserID is the requester; their own requests are never suggested.
	// uuid.Nil disables the exclusion.
	UserID             uuid.UUID
	Latitude           float64
	Longitude          float64
	MaxSuggestions     int
	IncludeExplanation bool
	// RadiusKm of zero uses the configured default.
	RadiusKm float64
}

// Validate checks the query origin and radius.
func (q SuggestionQuery) Validate() error {
	if err := validateOrigin(q.Latitude, q.Longitude); err != nil {
		return err
	}
	if math.IsNaN(q.RadiusKm) || q.RadiusKm < 0 {
		return requests.ErrInvalidRadius
	}
	return nil
}

// validateOrigin wraps the per-field coordinate errors in ErrInvalidCoordinates.
func validateOrigin(lat, lng float64) error {
	if err := validation.ValidateCoordinates(lat, lng); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCoordinates, err)
	}
	return nil
}

func (q SuggestionQuery) origin() geo.Coordinate {
	return geo.Coordinate{Latitude: q.Latitude, Longitude: q.Longitude}
}

// Suggestion is a ranked help request.
type Suggestion struct {
	ID             uuid.UUID       `json:"id"`
	Title          string          `json:"title"`
	Category       string          `json:"category"`
	Description    string          `json:"description"`
	Urgency        string          `json:"urgency"`
	TimeWindow     string          `json:"time_window,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	DistanceKm     float64         `json:"distance_km"`
	RelevanceScore float64         `json:"relevance_score"`
	Explanation    string          `json:"explanation,omitempty"`
	Breakdown      *ScoreBreakdown `json:"score_breakdown,omitempty"`
}

// Degradation names a step that fell back to a neutral value.
type Degradation string

const (
	DegradationWeatherUnconfigured Degradation = "weather_unconfigured"
	DegradationWeatherUnavailable  Degradation = "weather_unavailable"
	DegradationStoreUnavailable    Degradation = "store_unavailable"
	DegradationTrendingUnavailable Degradation = "trending_unavailable"
	DegradationInvalidQuery        Degradation = "invalid_query"
)

// SuggestionResult is what GetSuggestions returns. It is always non-nil.
type SuggestionResult struct {
	Suggestions   []Suggestion      `json:"suggestions"`
	Weather       *weather.Snapshot `json:"weather,omitempty"`
	WeatherStatus weather.Status    `json:"weather_status"`
	TimeBucket    demand.Bucket     `json:"time_bucket"`
	RadiusKm      float64           `json:"radius_km"`
	Degradations  []Degradation     `json:"degradations,omitempty"`
	GeneratedAt   time.Time         `json:"generated_at"`
}

// Degraded reports whether any step fell back.
func (r *SuggestionResult) Degraded() bool {
	return len(r.Degradations) > 0
}

// HasDegradation reports whether d was recorded.
func (r *SuggestionResult) HasDegradation(d Degradation) bool {
	for _, got := range r.Degradations {
		if got == d {
			return true
		}
	}
	return false
}

// DegradationNames returns the recorded degradations as strings.
func (r *SuggestionResult) DegradationNames() []string {
	return degradationNames(r.Degradations)
}

func degradationNames(list []Degradation) []string {
	names := make([]string, len(list))
	for i, d := range list {
		names[i] = string(d)
	}
	return names
}

func (r *SuggestionResult) degrade(d Degradation) {
	r.Degradations = appendDegradation(r.Degradations, d)
}

func appendDegradation(list []Degradation, d Degradation) []Degradation {
	for _, got := range list {
		if got == d {
			return list
		}
	}
	return append(list, d)
}

// weatherDegradation maps a lookup status to the degradation it implies.
func weatherDegradation(status weather.Status) (Degradation, bool) {
	switch status {
	case weather.StatusUnconfigured:
		return DegradationWeatherUnconfigured, true
	case weather.StatusFailed, weather.StatusDemoFallback:
		return DegradationWeatherUnavailable, true
	default:
		return "", false
	}
}

// TrendingCategory is a category and how many open requests it received in
// the trailing window.
type TrendingCategory struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}
