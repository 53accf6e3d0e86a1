package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"wathaci-webhooks/internal/infra/metrics"
)

// Connect opens a pool and pings it once. maxConns <= 0 keeps the pgx default.
func Connect(ctx context.Context, dsn string, maxConns int32) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}
	cfg.HealthCheckPeriod = 30 * time.Second

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	pool, err := pgxpool.ConnectConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("pgxpool connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// PoolStatsJob exports pool gauges each time it runs.
func PoolStatsJob(pool *pgxpool.Pool) func(context.Context) error {
	return func(context.Context) error {
		st := pool.Stat()
		metrics.SetDBPoolStats(metrics.DBPoolSnapshot{
			Total:            st.TotalConns(),
			Idle:             st.IdleConns(),
			Acquired:         st.AcquiredConns(),
			Max:              st.MaxConns(),
			Acquires:         st.AcquireCount(),
			EmptyAcquires:    st.EmptyAcquireCount(),
			CanceledAcquires: st.CanceledAcquireCount(),
		})
		return nil
	}
}
