package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "intake_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	// Conversation metrics
	TurnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_turns_total",
			Help: "Total user turns by kind and route",
		},
		[]string{"kind", "route"}, // kind: text|voice, route: intake|chat
	)

	ProfilesCompleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "intake_profiles_completed_total",
			Help: "Total patient profiles completed",
		},
	)

	StaleResultsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_stale_results_dropped_total",
			Help: "Remote results discarded because the session restarted meanwhile",
		},
		[]string{"operation"},
	)

	// Remote collaborator metrics
	RemoteCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_remote_calls_total",
			Help: "Total remote collaborator calls",
		},
		[]string{"collaborator", "outcome"}, // outcome: ok|error
	)

	RemoteLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "intake_remote_latency_seconds",
			Help:    "Remote collaborator latency",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"collaborator"},
	)

	// Rate limit metrics
	RateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_rate_limit_hits_total",
			Help: "Total rate limit hits",
		},
		[]string{"endpoint"},
	)

	// Infrastructure metrics
	StoreLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "intake_store_latency_seconds",
			Help:    "Preference store operation latency",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1},
		},
		[]string{"backend", "operation"},
	)
)

// Outcome maps an error to the outcome label used by RemoteCalls.
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
