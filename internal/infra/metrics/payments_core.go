package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		paymentsTotal,
		paymentsRevenueTotal,
		paymentsStalePending,
	)
}

var (
	paymentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payments_total",
			Help: "Ledger updates applied from webhooks, by resulting status.",
		},
		[]string{"status"},
	)

	paymentsRevenueTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payments_revenue_total",
			Help: "Minor-unit value of completed payments, labeled by currency.",
		},
		[]string{"currency"},
	)

	paymentsStalePending = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "payments_stale_pending",
			Help: "Payments still pending after the configured staleness window.",
		},
	)
)

func IncPayment(status string) {
	paymentsTotal.WithLabelValues(norm(status)).Inc()
}

// AddPaymentRevenue ignores non-positive amounts; counters cannot decrease.
func AddPaymentRevenue(currency string, amount int64) {
	if amount <= 0 {
		return
	}
	paymentsRevenueTotal.WithLabelValues(norm(currency)).Add(float64(amount))
}

func SetStalePending(n int) {
	paymentsStalePending.Set(float64(n))
}
