package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		creditsDebitedTotal,
		creditsRefundedTotal,
		plansExpiredTotal,
	)
}

var (
	creditsDebitedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "credits_debited_total",
			Help: "Credits debited from patient plans, labeled by clinic.",
		},
		[]string{"clinic"},
	)

	creditsRefundedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "credits_refunded_total",
			Help: "Credits restored by administrative cancellations.",
		},
	)

	plansExpiredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "plans_expired_total",
			Help: "User plans closed by the expiry sweep.",
		},
	)
)

func AddCreditsDebited(clinic string, n int64) {
	creditsDebitedTotal.WithLabelValues(norm(clinic)).Add(float64(n))
}

func AddCreditsRefunded(n int64) {
	creditsRefundedTotal.Add(float64(n))
}

func AddPlansExpired(n int64) {
	plansExpiredTotal.Add(float64(n))
}
