package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		webhookRequestsTotal,
		webhookDuration,
		webhookReconcileTotal,
		webhookNotificationsTotal,
	)
}

var (
	// result: processed|rejected|failed
	// reason: ok|missing_signature|bad_signature|bad_payload|too_large|internal|replay
	webhookRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_requests_total",
			Help: "Inbound webhook deliveries by outcome and bounded reason.",
		},
		[]string{"source", "result", "reason"},
	)

	webhookDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "webhook_duration_seconds",
			Help:    "Time spent handling one webhook delivery.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"result"},
	)

	// branch: ledger|subscription|transaction|booking
	webhookReconcileTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_reconcile_total",
			Help: "Per-record write attempts made while reconciling an event.",
		},
		[]string{"branch", "result"},
	)

	// channel: store|push ; status: ok|error|skipped
	webhookNotificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_notifications_total",
			Help: "Notification writes and realtime pushes by status.",
		},
		[]string{"channel", "status"},
	)
)

func ObserveWebhook(source, result, reason string, elapsed time.Duration) {
	webhookRequestsTotal.WithLabelValues(norm(source), norm(result), norm(reason)).Inc()
	webhookDuration.WithLabelValues(norm(result)).Observe(elapsed.Seconds())
}

func IncReconcile(branch string, err error) {
	webhookReconcileTotal.WithLabelValues(branch, resultOf(err)).Inc()
}

func IncNotification(channel, status string) {
	webhookNotificationsTotal.WithLabelValues(channel, status).Inc()
}

func resultOf(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
