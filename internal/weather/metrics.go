package weather

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var lookupsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "neighborly",
		Subsystem: "weather",
		Name:      "lookups_total",
		Help:      "Weather lookups by outcome status",
	},
	[]string{"status"},
)

func recordOutcome(status Status) {
	lookupsTotal.WithLabelValues(string(status)).Inc()
}
