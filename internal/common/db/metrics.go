package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/AlibekovAA/usersapp/internal/common/constants"
	"github.com/AlibekovAA/usersapp/internal/observability/metrics"
)

// StartPoolMetrics publishes pool statistics every interval until ctx is done.
func StartPoolMetrics(ctx context.Context, pool *pgxpool.Pool, interval time.Duration) {
	if interval <= 0 {
		interval = constants.DBPoolMetricsInterval
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			publishPoolStats(pool.Stat())

			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
}

func publishPoolStats(stats *pgxpool.Stat) {
	metrics.DBPoolAcquiredConnections.Set(float64(stats.AcquiredConns()))
	metrics.DBPoolIdleConnections.Set(float64(stats.IdleConns()))
	metrics.DBPoolMaxConnections.Set(float64(stats.MaxConns()))
	metrics.DBPoolTotalConnections.Set(float64(stats.TotalConns()))
	metrics.DBPoolAcquireCount.Set(float64(stats.AcquireCount()))
	metrics.DBPoolEmptyAcquireCount.Set(float64(stats.EmptyAcquireCount()))
	metrics.DBPoolAcquireDurationSeconds.Set(stats.AcquireDuration().Seconds())
}
