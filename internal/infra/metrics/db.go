package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(dbPoolConns, dbPoolAcquires) }

var (
	dbPoolConns = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "db_pool_connections",
			Help: "Postgres pool connections by state.",
		},
		[]string{"state"}, // total|idle|acquired|max
	)
	// Cumulative pgxpool counters, mirrored as gauges on each snapshot.
	dbPoolAcquires = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "db_pool_acquires",
			Help: "Cumulative pool acquire attempts by outcome since start.",
		},
		[]string{"outcome"}, // all|waited|canceled
	)
)

// DBPoolSnapshot is one reading of the pool counters.
type DBPoolSnapshot struct {
	Total, Idle, Acquired, Max int32
	Acquires, EmptyAcquires    int64
	CanceledAcquires           int64
}

func SetDBPoolStats(s DBPoolSnapshot) {
	dbPoolConns.WithLabelValues("total").Set(float64(s.Total))
	dbPoolConns.WithLabelValues("idle").Set(float64(s.Idle))
	dbPoolConns.WithLabelValues("acquired").Set(float64(s.Acquired))
	dbPoolConns.WithLabelValues("max").Set(float64(s.Max))
	dbPoolAcquires.WithLabelValues("all").Set(float64(s.Acquires))
	dbPoolAcquires.WithLabelValues("waited").Set(float64(s.EmptyAcquires))
	dbPoolAcquires.WithLabelValues("canceled").Set(float64(s.CanceledAcquires))
}
