package suggestions

import (
	"testing"
	"time"

	"github.com/richxcame/neighborly/internal/demand"
	"github.com/richxcame/neighborly/internal/requests"
	"github.com/richxcame/neighborly/internal/weather"
	"github.com/stretchr/testify/assert"
)

var scoreNow = time.Date(2026, 3, 14, 18, 30, 0, 0, time.UTC)

func f64(v float64) *float64 { return &v }

func newTestScorer() *Scorer {
	return NewScorer(demand.NewAnalyzer(demand.DefaultTables()))
}

func rain() *weather.Snapshot {
	return &weather.Snapshot{Condition: "Rain", Description: "light rain", Temperature: f64(18)}
}

// ====== WORKED EXAMPLE ======

func TestScore_WorkedExample(t *testing.T) {
	c := &requests.CandidateRequest{
		Category:   "umbrella",
		Urgency:    requests.UrgencyHigh,
		TimeWindow: "evening",
		CreatedAt:  scoreNow.Add(-time.Hour),
	}

	b := newTestScorer().Score(c, rain(), demand.BucketEvening, 0.5, scoreNow)

	assert.Equal(t, 18.0, b.Distance)
	assert.Equal(t, 15.0, b.Urgency)
	assert.Equal(t, 25.0, b.Weather)
	assert.Equal(t, 12.0, b.Time)
	assert.InDelta(t, 9.96, b.Freshness, 0.01)
	assert.InDelta(t, 79.96, b.Total, 0.01)
	assert.Equal(t, 79.96, round2(b.Total))
}

// ====== SUB-SCORES ======

func TestDistanceScore(t *testing.T) {
	assert.Equal(t, 20.0, DistanceScore(0))
	assert.Equal(t, 12.0, DistanceScore(2))
	assert.Equal(t, 0.0, DistanceScore(5))
	assert.Equal(t, 0.0, DistanceScore(12))
}

func TestUrgencyScore(t *testing.T) {
	tests := map[string]float64{
		"emergency": 20,
		"HIGH":      15,
		"normal":    10,
		"low":       5,
		"":          10,
		"whenever":  10,
	}
	for urgency, want := range tests {
		assert.Equal(t, want, UrgencyScore(urgency), urgency)
	}
}

func TestTimeScore(t *testing.T) {
	assert.Equal(t, 15.0, TimeScore("Anytime this week", demand.BucketMorning))
	assert.Equal(t, 15.0, TimeScore("flexible", demand.BucketNight))
	assert.Equal(t, 12.0, TimeScore("This Evening", demand.BucketEvening))
	assert.Equal(t, 5.0, TimeScore("morning", demand.BucketEvening))
	assert.Equal(t, 5.0, TimeScore("", demand.BucketEvening))
}

func TestFreshnessScore(t *testing.T) {
	assert.Equal(t, 10.0, FreshnessScore(scoreNow, scoreNow))
	assert.InDelta(t, 9.0, FreshnessScore(scoreNow.Add(-24*time.Hour), scoreNow), 1e-9)
	assert.Equal(t, 0.0, FreshnessScore(scoreNow.Add(-20*24*time.Hour), scoreNow))
	assert.Equal(t, 10.0, FreshnessScore(scoreNow.Add(time.Hour), scoreNow))
	assert.Equal(t, 0.0, FreshnessScore(time.Time{}, scoreNow))
}

// ====== WEATHER RULES ======

func TestWeatherMatch_FirstRuleWins(t *testing.T) {
	s := newTestScorer()

	hotRain := &weather.Snapshot{Condition: "Rain", Temperature: f64(32)}
	// "ride_water" satisfies both rain and heat relief; rain is checked first.
	assert.Equal(t, WeatherMatchRain, s.WeatherMatch("ride_water", hotRain))
	assert.Equal(t, WeatherMatchHeat, s.WeatherMatch("water_delivery", &weather.Snapshot{Condition: "Clear", Temperature: f64(32)}))
	assert.Equal(t, WeatherMatchCold, s.WeatherMatch("blanket", &weather.Snapshot{Condition: "Clear", Temperature: f64(3)}))
	assert.Equal(t, WeatherMatchCold, s.WeatherMatch("warm_clothes", &weather.Snapshot{Condition: "Clear", Temperature: f64(0)}))
	assert.Equal(t, WeatherMatchNone, s.WeatherMatch("tutoring", hotRain))
	assert.Equal(t, WeatherMatchNone, s.WeatherMatch("water", &weather.Snapshot{Condition: "Clear", Temperature: f64(28)}))
}

func TestWeatherMatch_DescriptionMentionsRain(t *testing.T) {
	snap := &weather.Snapshot{Condition: "Thunderstorm", Description: "thunderstorm with heavy rain"}
	assert.Equal(t, WeatherMatchRain, newTestScorer().WeatherMatch("delivery", snap))
}

func TestScore_AbsentWeatherScoresZero(t *testing.T) {
	s := newTestScorer()
	for _, category := range []string{"umbrella", "water", "blanket", "groceries"} {
		c := &requests.CandidateRequest{Category: category, CreatedAt: scoreNow}
		b := s.Score(c, nil, demand.BucketEvening, 1, scoreNow)
		assert.Zero(t, b.Weather, category)
	}
}

func TestScore_CeilingIsNinety(t *testing.T) {
	c := &requests.CandidateRequest{
		Category:   "umbrella",
		Urgency:    requests.UrgencyEmergency,
		TimeWindow: "anytime",
		CreatedAt:  scoreNow,
	}
	b := newTestScorer().Score(c, rain(), demand.BucketNight, 0, scoreNow)
	assert.Equal(t, 90.0, b.Total)
}

func TestScore_AlwaysInRange(t *testing.T) {
	s := newTestScorer()
	snaps := []*weather.Snapshot{nil, rain(), {Condition: "Clear", Temperature: f64(40)}, {Condition: "Snow", Temperature: f64(-5)}}
	for _, snap := range snaps {
		for _, d := range []float64{0, 0.3, 2.7, 5, 50} {
			for _, age := range []time.Duration{0, time.Hour, 48 * time.Hour, 400 * 24 * time.Hour} {
				c := &requests.CandidateRequest{
					Category:   "umbrella water blanket",
					Urgency:    requests.UrgencyEmergency,
					TimeWindow: "flexible",
					CreatedAt:  scoreNow.Add(-age),
				}
				total := s.Score(c, snap, demand.BucketMorning, d, scoreNow).Total
				assert.GreaterOrEqual(t, total, 0.0)
				assert.LessOrEqual(t, total, 90.0)
			}
		}
	}
}

func TestScore_UsesInjectedTables(t *testing.T) {
	tables := demand.DefaultTables()
	tables.RainRelief = []string{"sandbags"}
	s := NewScorer(demand.NewAnalyzer(tables))

	assert.Equal(t, WeatherMatchNone, s.WeatherMatch("umbrella", rain()))
	assert.Equal(t, WeatherMatchRain, s.WeatherMatch("sandbags", rain()))
}
