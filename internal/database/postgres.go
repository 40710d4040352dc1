package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/evpower/recruit-backend/internal/config"
)

const (
	pgConnLifetime  = 30 * time.Minute
	pgIdleTime      = 5 * time.Minute
	pgHealthPeriod  = time.Minute
	pgMinConns      = 2
	connectAttempts = 5
	connectBackoff  = time.Second
)

// NewPostgresPool opens the applicant database pool. The first ping is retried
// a few times so the server can start alongside a database still booting.
func NewPostgresPool(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolCfg.MaxConns = cfg.MaxDBConns
	poolCfg.MinConns = min(pgMinConns, cfg.MaxDBConns)
	poolCfg.MaxConnLifetime = pgConnLifetime
	poolCfg.MaxConnIdleTime = pgIdleTime
	poolCfg.HealthCheckPeriod = pgHealthPeriod

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := retryPing(ctx, log, "postgres", pool.Ping); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	log.Info().
		Str("host", poolCfg.ConnConfig.Host).
		Str("database", poolCfg.ConnConfig.Database).
		Int32("max_conns", poolCfg.MaxConns).
		Msg("PostgreSQL connected")

	return pool, nil
}

// retryPing calls ping up to connectAttempts times with a linear backoff.
func retryPing(ctx context.Context, log zerolog.Logger, target string, ping func(context.Context) error) error {
	var err error
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		if err = ping(ctx); err == nil {
			return nil
		}
		if attempt == connectAttempts {
			break
		}
		log.Warn().Err(err).Str("target", target).Int("attempt", attempt).Msg("Connection not ready, retrying")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * connectBackoff):
		}
	}
	return err
}
