package weather

import "strings"

// Snapshot sources.
const (
	SourceOpenWeatherMap   = "openweathermap"
	SourceDemo             = "demo"
	SourceDemoUnauthorized = "demo-unauthorized"
	SourceDemoFallback     = "demo-fallback"
	SourceCache            = "cache"
)

// Snapshot is the normalized current weather at a coordinate.
// Optional readings are nil when the provider omitted them.
type Snapshot struct {
	Condition        string   `json:"condition"`
	Description      string   `json:"description"`
	Temperature      *float64 `json:"temp,omitempty"`
	FeelsLike        *float64 `json:"feels_like,omitempty"`
	Humidity         *float64 `json:"humidity,omitempty"`
	WindSpeed        *float64 `json:"wind_speed,omitempty"`
	Visibility       *float64 `json:"visibility,omitempty"`
	RainfallLastHour float64  `json:"rainfall"`
	Source           string   `json:"source"`
}

// MentionsRain reports whether the condition or description mentions rain.
func (s *Snapshot) MentionsRain() bool {
	if s == nil {
		return false
	}
	return strings.Contains(strings.ToLower(s.Condition), "rain") ||
		strings.Contains(strings.ToLower(s.Description), "rain")
}

// Status tells callers how a Result came about.
type Status string

const (
	// StatusLive is a fresh provider response.
	StatusLive Status = "live"
	// StatusCached is a provider response served from the cell cache.
	StatusCached Status = "cached"
	// StatusDemo is a canned snapshot served because demo mode is on.
	StatusDemo Status = "demo"
	// StatusDemoFallback is a canned snapshot served after a provider failure in demo mode.
	StatusDemoFallback Status = "demo_fallback"
	// StatusUnconfigured means no API key is set and demo mode is off.
	StatusUnconfigured Status = "unconfigured"
	// StatusFailed means the provider call failed and demo mode is off.
	StatusFailed Status = "failed"
)

// Result is the outcome of a weather lookup. Snapshot is nil unless
// Available reports true; Err carries the underlying failure, if any.
type Result struct {
	Snapshot *Snapshot
	Status   Status
	Err      error
}

// Available reports whether the result carries a snapshot.
func (r Result) Available() bool {
	return r.Snapshot != nil
}

// Degraded reports whether the lookup fell short of real weather data.
func (r Result) Degraded() bool {
	switch r.Status {
	case StatusLive, StatusCached:
		return false
	default:
		return true
	}
}

func float(v float64) *float64 { return &v }

func demoSnapshot() *Snapshot {
	return &Snapshot{
		Condition:        "Rain",
		Description:      "light rain",
		Temperature:      float(29),
		FeelsLike:        float(31),
		Humidity:         float(75),
		WindSpeed:        float(3.2),
		Visibility:       float(8000),
		RainfallLastHour: 0.6,
		Source:           SourceDemo,
	}
}

func demoUnauthorizedSnapshot() *Snapshot {
	s := demoSnapshot()
	s.Description = "light rain (demo)"
	s.WindSpeed = float(3.0)
	s.Source = SourceDemoUnauthorized
	return s
}

func demoFallbackSnapshot() *Snapshot {
	return &Snapshot{
		Condition:   "Clouds",
		Description: "demo cloudy",
		Temperature: float(27),
		FeelsLike:   float(29),
		Humidity:    float(70),
		WindSpeed:   float(2.0),
		Visibility:  float(9000),
		Source:      SourceDemoFallback,
	}
}
