package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce             sync.Once
	engagementRequestsTotal  *prometheus.CounterVec
	engagementLatencySeconds *prometheus.HistogramVec
	engagementErrorsTotal    *prometheus.CounterVec
	likeTogglesTotal         *prometheus.CounterVec
	feedCacheTotal           *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the
// engagement API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		engagementRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "engagement_requests_total",
			Help: "Total number of engagement API requests served.",
		}, []string{"method", "route", "status"})

		engagementLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "engagement_latency_seconds",
			Help:    "Latency distribution for engagement API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		engagementErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "engagement_errors_total",
			Help: "Total number of error responses returned by engagement endpoints.",
		}, []string{"method", "route", "status"})

		likeTogglesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "engagement_like_toggles_total",
			Help: "Total number of like toggles, by target kind and resulting state.",
		}, []string{"target", "state"})

		feedCacheTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "engagement_feed_cache_total",
			Help: "Comment feed cache lookups by outcome.",
		}, []string{"result"})

		prometheus.MustRegister(
			engagementRequestsTotal,
			engagementLatencySeconds,
			engagementErrorsTotal,
			likeTogglesTotal,
			feedCacheTotal,
		)
	})
}

// EngagementRequests exposes the counter for engagement requests.
func EngagementRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return engagementRequestsTotal
}

// EngagementLatency exposes the latency histogram for engagement requests.
func EngagementLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return engagementLatencySeconds
}

// EngagementErrors exposes the counter for engagement error responses.
func EngagementErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return engagementErrorsTotal
}

// LikeToggles exposes the counter for like toggle outcomes.
func LikeToggles() *prometheus.CounterVec {
	RegisterMetrics()
	return likeTogglesTotal
}

// FeedCache exposes the counter for comment feed cache outcomes.
func FeedCache() *prometheus.CounterVec {
	RegisterMetrics()
	return feedCacheTotal
}
