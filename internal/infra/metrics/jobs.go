package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(jobRunsTotal) }

var jobRunsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "scheduled_job_runs_total",
		Help: "Scheduled job executions, labeled by job and status.",
	},
	[]string{"job", "status"}, // status: 'ok', 'error'
)

func IncJobRun(job string, err error) {
	jobRunsTotal.WithLabelValues(norm(job), resultOf(err)).Inc()
}
