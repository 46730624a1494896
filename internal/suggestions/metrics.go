package suggestions

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	suggestionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "neighborly",
		Subsystem: "suggestions",
		Name:      "duration_seconds",
		Help:      "Time spent building a suggestion list",
		Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
	})

	suggestionsReturned = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "neighborly",
		Subsystem: "suggestions",
		Name:      "returned",
		Help:      "Number of suggestions returned per call",
		Buckets:   []float64{0, 1, 2, 3, 5, 10, 20, 50},
	})

	degradationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "neighborly",
		Subsystem: "suggestions",
		Name:      "degradations_total",
		Help:      "Suggestion calls that fell back, by reason",
	}, []string{"reason"})

	trendingCacheTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "neighborly",
		Subsystem: "suggestions",
		Name:      "trending_cache_total",
		Help:      "Trending category cache lookups by result",
	}, []string{"result"})
)

func recordResult(result *SuggestionResult, seconds float64) {
	suggestionDuration.Observe(seconds)
	suggestionsReturned.Observe(float64(len(result.Suggestions)))
	for _, d := range result.Degradations {
		degradationsTotal.WithLabelValues(string(d)).Inc()
	}
}
