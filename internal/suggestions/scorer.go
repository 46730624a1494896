package suggestions

import (
	"math"
	"strings"
	"time"

	"github.com/richxcame/neighborly/internal/demand"
	"github.com/richxcame/neighborly/internal/requests"
	"github.com/richxcame/neighborly/internal/weather"
)

// Sub-score weights. Their sum (90) is the practical score ceiling; the
// clamp to MaxScore only binds if these are raised.
const (
	MaxDistanceScore  = 20.0
	DistancePenaltyKm = 4.0

	RainReliefScore = 25.0
	HeatReliefScore = 20.0
	ColdReliefScore = 20.0

	FlexibleTimeScore = 15.0
	MatchingTimeScore = 12.0
	OtherTimeScore    = 5.0

	MaxFreshnessScore = 10.0

	MaxScore = 100.0
)

var urgencyScores = map[string]float64{
	requests.UrgencyEmergency: 20,
	requests.UrgencyHigh:      15,
	requests.UrgencyNormal:    10,
	requests.UrgencyLow:       5,
}

const defaultUrgencyScore = 10.0

// WeatherMatch is the weather rule a candidate satisfied, if any.
type WeatherMatch int

const (
	WeatherMatchNone WeatherMatch = iota
	WeatherMatchRain
	WeatherMatchHeat
	WeatherMatchCold
)

// ScoreBreakdown holds each sub-score and their clamped total.
type ScoreBreakdown struct {
	Distance  float64 `json:"distance"`
	Urgency   float64 `json:"urgency"`
	Weather   float64 `json:"weather"`
	Time      float64 `json:"time"`
	Freshness float64 `json:"freshness"`
	Total     float64 `json:"total"`
}

// Scorer computes relevance scores against injected demand tables.
type Scorer struct {
	analyzer *demand.Analyzer
}

// NewScorer creates a scorer.
func NewScorer(analyzer *demand.Analyzer) *Scorer {
	return &Scorer{analyzer: analyzer}
}

// Score rates a candidate in [0, 100]. snapshot may be nil, in which case
// the weather sub-score is 0.
func (s *Scorer) Score(candidate *requests.CandidateRequest, snapshot *weather.Snapshot, bucket demand.Bucket, distanceKm float64, now time.Time) ScoreBreakdown {
	b := ScoreBreakdown{
		Distance:  DistanceScore(distanceKm),
		Urgency:   UrgencyScore(candidate.Urgency),
		Weather:   weatherScore(s.WeatherMatch(candidate.Category, snapshot)),
		Time:      TimeScore(candidate.TimeWindow, bucket),
		Freshness: FreshnessScore(candidate.CreatedAt, now),
	}
	b.Total = clamp(b.Distance+b.Urgency+b.Weather+b.Time+b.Freshness, 0, MaxScore)
	return b
}

// WeatherMatch returns the first weather rule category satisfies: rain
// relief while it rains, then heat relief above 28°C, then cold relief
// below 10°C.
func (s *Scorer) WeatherMatch(category string, snapshot *weather.Snapshot) WeatherMatch {
	if snapshot == nil {
		return WeatherMatchNone
	}
	switch {
	case snapshot.MentionsRain() && s.analyzer.IsRainRelief(category):
		return WeatherMatchRain
	case demand.IsHot(snapshot.Temperature) && s.analyzer.IsHeatRelief(category):
		return WeatherMatchHeat
	case demand.IsCold(snapshot.Temperature) && s.analyzer.IsColdRelief(category):
		return WeatherMatchCold
	}
	return WeatherMatchNone
}

func weatherScore(m WeatherMatch) float64 {
	switch m {
	case WeatherMatchRain:
		return RainReliefScore
	case WeatherMatchHeat:
		return HeatReliefScore
	case WeatherMatchCold:
		return ColdReliefScore
	}
	return 0
}

// DistanceScore loses DistancePenaltyKm points per kilometre from MaxDistanceScore.
func DistanceScore(distanceKm float64) float64 {
	return math.Max(0, MaxDistanceScore-distanceKm*DistancePenaltyKm)
}

// UrgencyScore maps an urgency tier to points; unknown tiers score as normal.
func UrgencyScore(urgency string) float64 {
	if v, ok := urgencyScores[strings.ToLower(strings.TrimSpace(urgency))]; ok {
		return v
	}
	return defaultUrgencyScore
}

// TimeScore rewards flexible windows, then windows naming the current bucket.
func TimeScore(timeWindow string, bucket demand.Bucket) float64 {
	switch timeAlignment(timeWindow, bucket) {
	case alignFlexible:
		return FlexibleTimeScore
	case alignBucket:
		return MatchingTimeScore
	}
	return OtherTimeScore
}

// FreshnessScore loses one point per day of age. Requests dated in the
// future count as brand new.
func FreshnessScore(createdAt, now time.Time) float64 {
	if createdAt.IsZero() {
		return 0
	}
	ageHours := math.Max(0, now.Sub(createdAt).Hours())
	return math.Max(0, MaxFreshnessScore-ageHours/24)
}

type alignment int

const (
	alignNone alignment = iota
	alignFlexible
	alignBucket
)

func timeAlignment(timeWindow string, bucket demand.Bucket) alignment {
	window := strings.ToLower(timeWindow)
	switch {
	case strings.Contains(window, "anytime") || strings.Contains(window, "flexible"):
		return alignFlexible
	case bucket != "" && strings.Contains(window, string(bucket)):
		return alignBucket
	}
	return alignNone
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
