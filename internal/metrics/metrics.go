package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "videotube_http_requests_total",
		Help: "HTTP requests by route, method and status",
	}, []string{"route", "method", "status"})

	RequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "videotube_http_request_duration_seconds",
		Help:    "HTTP request latency by route and method",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})

	Toggles = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "videotube_toggles_total",
		Help: "Like and subscription toggles by resource and resulting state",
	}, []string{"resource", "state"})

	MediaFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "videotube_media_failures_total",
		Help: "Failed media host operations",
	}, []string{"op"})
)

var once sync.Once

// Init registers the collectors with the default registry. Safe to call
// more than once.
func Init() {
	once.Do(func() {
		prometheus.MustRegister(RequestsTotal, RequestDuration, Toggles, MediaFailures)
	})
}

// Handler returns an http.Handler for Prometheus scraping
func Handler() http.Handler {
	return promhttp.Handler()
}

func ToggleState(active bool) string {
	if active {
		return "on"
	}
	return "off"
}
