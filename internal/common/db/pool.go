package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/AlibekovAA/usersapp/internal/common/constants"
	"github.com/AlibekovAA/usersapp/internal/common/logger"
)

type PoolConfig struct {
	DatabaseURL    string
	MaxConns       int32
	MinConns       int32
	ConnectRetries int
	RetryDelay     time.Duration
}

func DefaultPoolConfig(databaseURL string) PoolConfig {
	return PoolConfig{
		DatabaseURL:    databaseURL,
		MaxConns:       constants.DBPoolMaxConns,
		MinConns:       constants.DBPoolMinConns,
		ConnectRetries: constants.DBPoolMaxAttempts,
		RetryDelay:     constants.DBPoolRetryDelay,
	}
}

// NewPool connects a bounded pgx pool. Connecting is attempted up to
// ConnectRetries times so the service can start alongside its database;
// queries issued through the pool are never retried.
func NewPool(ctx context.Context, log *logger.Logger, pc PoolConfig) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(pc.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database url: %w", err)
	}

	if pc.MaxConns > 0 {
		cfg.MaxConns = pc.MaxConns
	}
	if pc.MinConns > 0 && pc.MinConns <= cfg.MaxConns {
		cfg.MinConns = pc.MinConns
	}
	cfg.MaxConnLifetime = constants.DBPoolConnMaxLifetime
	cfg.MaxConnIdleTime = constants.DBPoolConnMaxIdleTime
	cfg.HealthCheckPeriod = constants.DBPoolHealthCheck
	cfg.ConnConfig.ConnectTimeout = constants.DBPoolConnectTimeout
	if cfg.ConnConfig.RuntimeParams == nil {
		cfg.ConnConfig.RuntimeParams = map[string]string{}
	}
	cfg.ConnConfig.RuntimeParams["application_name"] = constants.ServiceName

	attempts := pc.ConnectRetries
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		pool, err := pgxpool.ConnectConfig(ctx, cfg)
		if err == nil {
			if err = pool.Ping(ctx); err == nil {
				log.Infof("database connection pool initialized: max=%d, min=%d", cfg.MaxConns, cfg.MinConns)
				return pool, nil
			}
			pool.Close()
		}

		if attempt == attempts {
			return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", attempts, err)
		}

		log.Warnf("failed to connect to database (attempt %d/%d): %v", attempt, attempts, err)

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("database connect cancelled: %w", ctx.Err())
		case <-time.After(pc.RetryDelay):
		}
	}

	return nil, fmt.Errorf("failed to connect to database")
}
