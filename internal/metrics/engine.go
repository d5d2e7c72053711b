package metrics

import "github.com/prometheus/client_golang/prometheus"

// Engine Prometheus metrics.
var (
	ResolutionDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "resolvex",
			Name:      "resolution_decisions_total",
			Help:      "Resolution outcomes by decision",
		},
		[]string{"decision"}, // "single" / "multiple" / "none"
	)

	FilterMethodsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "resolvex",
			Name:      "passage_filter_methods_total",
			Help:      "Passage filter outcomes by matching method",
		},
		[]string{"method"}, // "brand_model" / "model_only" / "none"
	)

	VocabCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "resolvex",
			Name:      "vocab_cache_total",
			Help:      "Vocabulary cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	TelemetryDroppedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "resolvex",
			Name:      "telemetry_dropped_total",
			Help:      "Telemetry events dropped because the buffer was full",
		},
	)

	LookupDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "resolvex",
			Name:      "lookup_duration_seconds",
			Help:      "Candidate lookup duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"provider"}, // "alias" / "fts"
	)
)

var engineMetricsRegistered bool

// RegisterEngineMetrics registers engine metrics. Must be called once from main.
func RegisterEngineMetrics() {
	if engineMetricsRegistered {
		return
	}
	prometheus.MustRegister(ResolutionDecisionsTotal)
	prometheus.MustRegister(FilterMethodsTotal)
	prometheus.MustRegister(VocabCacheTotal)
	prometheus.MustRegister(TelemetryDroppedTotal)
	prometheus.MustRegister(LookupDuration)
	engineMetricsRegistered = true
}
