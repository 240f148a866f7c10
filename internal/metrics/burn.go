package metrics

import "github.com/prometheus/client_golang/prometheus"

// Burn and chat Prometheus metrics.
var (
	BurnsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "burner",
			Name:      "burns_total",
			Help:      "Total number of burn attempts by trigger and outcome",
		},
		[]string{"trigger", "outcome"},
	)

	BurnDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "burner",
			Name:      "burn_duration_seconds",
			Help:      "Duration of burn attempts that reached the provider",
			Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"outcome"},
	)

	SessionBurns = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "burner",
			Name:      "session_burns",
			Help:      "Successful burns since process start",
		},
	)

	AllTimeBurns = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "burner",
			Name:      "all_time_burns",
			Help:      "Successful burns across all process lifetimes",
		},
	)

	Enabled = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "burner",
			Name:      "enabled",
			Help:      "1 when the recurring burn timer is active",
		},
	)

	ChatRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "burner",
			Name:      "chat_requests_total",
			Help:      "Total number of chat completion requests",
		},
		[]string{"model", "status"},
	)

	ChatRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "burner",
			Name:      "chat_request_duration_seconds",
			Help:      "Chat completion duration including stream consumption",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"model"},
	)

	ChatChunksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "burner",
			Name:      "chat_stream_chunks_total",
			Help:      "Total streamed text chunks received",
		},
		[]string{"model"},
	)
)

var burnMetricsRegistered bool

// RegisterBurnMetrics registers burn and chat metrics. Must be called once from main.
func RegisterBurnMetrics() {
	if burnMetricsRegistered {
		return
	}
	prometheus.MustRegister(BurnsTotal)
	prometheus.MustRegister(BurnDuration)
	prometheus.MustRegister(SessionBurns)
	prometheus.MustRegister(AllTimeBurns)
	prometheus.MustRegister(Enabled)
	prometheus.MustRegister(ChatRequestsTotal)
	prometheus.MustRegister(ChatRequestDuration)
	prometheus.MustRegister(ChatChunksTotal)
	burnMetricsRegistered = true
}

// ObserveState mirrors engine counters into gauges.
func ObserveState(enabled bool, session, allTime int64) {
	v := 0.0
	if enabled {
		v = 1
	}
	Enabled.Set(v)
	SessionBurns.Set(float64(session))
	AllTimeBurns.Set(float64(allTime))
}
