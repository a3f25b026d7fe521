package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		redemptionsTotal,
		redemptionLatencyMs,
		qrTokensIssued,
	)
}

var (
	redemptionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "redemptions_total",
			Help: "Redemption attempts by outcome (success/invalid_qr/expired/replayed/insufficient_credits/unauthorized_clinic/error).",
		},
		[]string{"outcome"},
	)

	redemptionLatencyMs = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "redemption_latency_ms",
			Help:    "Redemption end-to-end latency distribution in milliseconds.",
			Buckets: []float64{5, 10, 25, 50, 100, 200, 400, 800, 1600, 3000},
		},
	)

	qrTokensIssued = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "qr_tokens_issued_total",
			Help: "Total QR tokens minted.",
		},
	)
)

func IncRedemption(outcome string) {
	redemptionsTotal.WithLabelValues(norm(outcome)).Inc()
}

func ObserveRedemptionLatency(ms float64) {
	redemptionLatencyMs.Observe(ms)
}

func IncQRIssued() {
	qrTokensIssued.Inc()
}
