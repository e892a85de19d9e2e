package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// APIRequests counts calls to the external API by operation and status.
	APIRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "propmedia_api_requests_total",
		Help: "Total number of requests sent to the content API",
	}, []string{"operation", "status"})

	// APIRequestDuration records content API latency by operation.
	APIRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "propmedia_api_request_duration_seconds",
		Help:    "Content API request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	// PostEvents counts post change notifications by kind and where they came from.
	PostEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "propmedia_post_events_total",
		Help: "Total post change notifications",
	}, []string{"kind", "source"})

	// LiveStreams is the number of open live list streams.
	LiveStreams = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "propmedia_live_streams",
		Help: "Number of open live post list streams",
	})
)

// ObserveAPICall records one content API round trip. status 0 means the
// request never got a response.
func ObserveAPICall(operation string, status int, start time.Time) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	APIRequests.WithLabelValues(operation, label).Inc()
	APIRequestDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

func RecordPostEvent(kind, source string) {
	PostEvents.WithLabelValues(kind, source).Inc()
}
