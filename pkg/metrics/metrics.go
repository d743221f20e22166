package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	RelayMessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_messages_total",
			Help: "Messages seen by the channel poller, by outcome (count)",
		},
		[]string{"status"}, // relayed, duplicate, automated, self
	)

	TranslationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "translation_duration_ms",
			Help:    "Translation gateway call duration in milliseconds",
			Buckets: []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000, 15000},
		},
		[]string{"target", "status"},
	)

	TranslationFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "translation_failures_total",
			Help: "Translation gateway failures by error code (count)",
		},
		[]string{"code"},
	)

	PublishTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "publish_total",
			Help: "Records handed to the message publisher, by origin (count)",
		},
		[]string{"origin"}, // channel, local, test
	)

	PollCyclesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "poll_cycles_total",
			Help: "Poll cycles by result (count)",
		},
		[]string{"status"}, // ok, fetch_failed
	)

	CursorHighWaterMark = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "cursor_high_water_mark_seconds",
			Help: "Timestamp below which channel messages are considered processed (unix seconds)",
		},
	)

	HubSubscribers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "hub_subscribers",
			Help: "Currently connected live-delivery subscribers (count)",
		},
	)

	IdentityLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "identity_lookups_total",
			Help: "Identity resolver lookups by result (count)",
		},
		[]string{"result"}, // hit, negative_hit, resolved, failed
	)

	FallbackUsageTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fallback_usage_total",
			Help: "Degraded-mode fallbacks taken, by component and action (count)",
		},
		[]string{"component", "action"},
	)

	CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open) (state code)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker (count)",
		},
		[]string{"name", "state"},
	)

	CircuitBreakerFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_failures_total",
			Help: "Total number of failed requests through circuit breaker (count)",
		},
		[]string{"name"},
	)

	RateLimitRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limit_requests_total",
			Help: "Requests evaluated by the rate limiter (count)",
		},
		[]string{"status"}, // allowed, limited
	)
)

func RegisterRelayMetrics() {
	prometheus.MustRegister(
		RelayMessagesTotal,
		TranslationDuration,
		TranslationFailuresTotal,
		PublishTotal,
		PollCyclesTotal,
		CursorHighWaterMark,
		HubSubscribers,
		IdentityLookupsTotal,
		FallbackUsageTotal,
	)
}

func RegisterCircuitBreakerMetrics() {
	prometheus.MustRegister(
		CircuitBreakerState,
		CircuitBreakerRequests,
		CircuitBreakerFailures,
	)
}

func RegisterRateLimitMetrics() {
	prometheus.MustRegister(RateLimitRequestsTotal)
}

func ObserveTranslationDuration(d time.Duration, target, status string) {
	TranslationDuration.WithLabelValues(target, status).Observe(float64(d.Milliseconds()))
}

func SetCursorHighWaterMark(ts float64) {
	CursorHighWaterMark.Set(ts)
}

func SetHubSubscribers(n int) {
	HubSubscribers.Set(float64(n))
}
