// Package metrics holds the Prometheus collectors exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RecordsGenerated = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "emotune", Name: "records_generated_total", Help: "Number of emotion records created."},
	)
	RecordsDeleted = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "emotune", Name: "records_deleted_total", Help: "Number of emotion record delete requests."},
	)
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "emotune", Name: "http_requests_total", Help: "Number of HTTP requests by method, route and status."},
		[]string{"method", "path", "status"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RecordsGenerated)
	reg.MustRegister(RecordsDeleted)
	reg.MustRegister(HTTPRequests)
}
