// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Fan-out results
const (
	ResultDelivered  = "delivered"
	ResultSuppressed = "suppressed"
	ResultFailed     = "failed"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	// SocialActionsTotal counts toggle outcomes; state is "on" or "off".
	SocialActionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "social_actions_total",
		Help: "Toggle actions by relation and resulting state",
	}, []string{"action", "state"})

	NotificationsFanoutTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notifications_fanout_total",
		Help: "Notification intents by type and delivery result",
	}, []string{"type", "result"})

	FeedAssemblyDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "feed_assembly_duration_seconds",
		Help:    "Time to query, rank and hydrate a feed page",
		Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
	}, []string{"variant"})

	MediaUploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "media_uploads_total",
		Help: "Media uploads by kind and result",
	}, []string{"kind", "result"})

	StreamEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stream_events_total",
		Help: "Redis stream events published or consumed",
	}, []string{"stream", "result"})
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ToggleState maps a toggle outcome to its label value.
func ToggleState(active bool) string {
	if active {
		return "on"
	}
	return "off"
}
