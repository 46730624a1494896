package suggestions

import (
	"testing"
	"time"

	"github.com/richxcame/neighborly/internal/demand"
	"github.com/richxcame/neighborly/internal/requests"
	"github.com/richxcame/neighborly/internal/weather"
	"github.com/stretchr/testify/assert"
)

func newTestExplainer() *Explainer {
	analyzer := demand.NewAnalyzer(demand.DefaultTables())
	return NewExplainer(NewScorer(analyzer), analyzer)
}

func nearby(km float64, c requests.CandidateRequest) requests.NearbyRequest {
	return requests.NearbyRequest{CandidateRequest: c, DistanceKm: km}
}

func TestExplain_FixedPhraseOrder(t *testing.T) {
	expires := scoreNow.Add(2 * time.Hour)
	in := ExplanationInput{
		Candidate: nearby(0.5, requests.CandidateRequest{
			Category:   "Umbrella",
			Urgency:    requests.UrgencyEmergency,
			TimeWindow: "this evening",
			ExpiresAt:  &expires,
		}),
		Weather:  rain(),
		Bucket:   demand.BucketEvening,
		Trending: map[string]int{"umbrella": 3},
		Now:      scoreNow,
	}

	got := newTestExplainer().Explain(in)
	assert.Equal(t,
		"Great for rainy weather. Very close to you (0.5 km). Emergency request. Needed this evening. Expiring soon. Popular request (3 similar).",
		got)
}

func TestExplain_Fallback(t *testing.T) {
	in := ExplanationInput{
		Candidate: nearby(4.2, requests.CandidateRequest{Category: "tutoring", Urgency: requests.UrgencyLow, TimeWindow: "weekend"}),
		Bucket:    demand.BucketMorning,
		Now:       scoreNow,
	}
	assert.Equal(t, "Good match nearby.", newTestExplainer().Explain(in))
}

func TestExplain_Phrases(t *testing.T) {
	e := newTestExplainer()

	tests := []struct {
		name string
		in   ExplanationInput
		want string
	}{
		{
			name: "nearby high priority",
			in: ExplanationInput{
				Candidate: nearby(2.14, requests.CandidateRequest{Category: "tutoring", Urgency: requests.UrgencyHigh}),
				Bucket:    demand.BucketMorning,
			},
			want: "Nearby (2.14 km). High priority.",
		},
		{
			name: "heat relief",
			in: ExplanationInput{
				Candidate: nearby(5, requests.CandidateRequest{Category: "ice_cream"}),
				Weather:   &weather.Snapshot{Condition: "Clear", Temperature: f64(33)},
				Bucket:    demand.BucketMorning,
			},
			want: "Helpful in hot weather.",
		},
		{
			name: "cold relief",
			in: ExplanationInput{
				Candidate: nearby(5, requests.CandidateRequest{Category: "heater"}),
				Weather:   &weather.Snapshot{Condition: "Snow", Temperature: f64(-2)},
				Bucket:    demand.BucketMorning,
			},
			want: "Helpful in cold weather.",
		},
		{
			name: "weather table match",
			in: ExplanationInput{
				Candidate: nearby(5, requests.CandidateRequest{Category: "gardening"}),
				Weather:   &weather.Snapshot{Condition: "Clear", Temperature: f64(20)},
				Bucket:    demand.BucketMorning,
			},
			want: "Matches current clear weather.",
		},
		{
			name: "flexible timing",
			in: ExplanationInput{
				Candidate: nearby(5, requests.CandidateRequest{Category: "tutoring", TimeWindow: "Flexible"}),
				Bucket:    demand.BucketNight,
			},
			want: "Flexible timing.",
		},
		{
			name: "time table match",
			in: ExplanationInput{
				Candidate: nearby(5, requests.CandidateRequest{Category: "medicine"}),
				Bucket:    demand.BucketNight,
			},
			want: "Often needed in the night.",
		},
		{
			name: "single trending request",
			in: ExplanationInput{
				Candidate: nearby(5, requests.CandidateRequest{Category: "Repair"}),
				Bucket:    demand.BucketMorning,
				Trending:  map[string]int{"repair": 1},
			},
			want: "Trending need.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.in.Now = scoreNow
			assert.Equal(t, tt.want, e.Explain(tt.in))
		})
	}
}

func TestExplain_ExpiryWindow(t *testing.T) {
	e := newTestExplainer()
	for offset, want := range map[time.Duration]bool{
		-time.Minute:                 false,
		time.Hour:                    true,
		5*time.Hour + 59*time.Minute: true,
		7 * time.Hour:                false,
	} {
		expires := scoreNow.Add(offset)
		in := ExplanationInput{
			Candidate: nearby(5, requests.CandidateRequest{Category: "tutoring", ExpiresAt: &expires}),
			Bucket:    demand.BucketMorning,
			Now:       scoreNow,
		}
		assert.Equal(t, want, e.Explain(in) == "Expiring soon.", offset.String())
	}
}
