package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(httpRequestsTotal, httpLatencyMs)
}

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by route, method and status class.",
		},
		[]string{"route", "method", "status"},
	)

	httpLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_latency_ms",
			Help:    "HTTP request latency distribution in milliseconds.",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		},
		[]string{"route", "method"},
	)
)

func ObserveHTTPRequest(route, method, status string, latencyMs float64) {
	httpRequestsTotal.WithLabelValues(route, norm(method), status).Inc()
	httpLatencyMs.WithLabelValues(route, norm(method)).Observe(latencyMs)
}
