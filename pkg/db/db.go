// Package db provides the target-store (PostgreSQL) connection utilities for
// the migration engine. Each procedure acquires one pool per run and releases
// it unconditionally on completion or failure.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zoea-platform/zmig/config"
	zmerrors "github.com/zoea-platform/zmig/pkg/errors"
)

// Pool settings for one-shot batch runs. The engine is single-threaded, so a
// small pool is plenty; MinConns stays low to keep startup fast.
const (
	defaultMaxConns       = 8
	defaultMinConns       = 1
	defaultConnLifetime   = time.Hour
	defaultConnIdle       = 30 * time.Minute
	defaultConnectTimeout = 10 * time.Second
)

// Connect creates a connection pool for the target store. The caller is
// responsible for calling pool.Close() when done. An unreachable store is
// reported as ErrConnection so the run aborts before any write.
func Connect(ctx context.Context, target config.TargetStore) (*pgxpool.Pool, error) {
	if err := target.Validate(); err != nil {
		return nil, fmt.Errorf("invalid target store config: %w", err)
	}

	poolConfig, err := pgxpool.ParseConfig(target.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parsing target connection string: %w", err)
	}

	poolConfig.MaxConns = defaultMaxConns
	poolConfig.MinConns = defaultMinConns
	poolConfig.MaxConnLifetime = defaultConnLifetime
	poolConfig.MaxConnIdleTime = defaultConnIdle
	poolConfig.ConnConfig.ConnectTimeout = defaultConnectTimeout

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("creating target store pool: %w", zmerrors.ErrConnection)
	}

	// Verify the connection works before any procedure starts.
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging target store: %w", zmerrors.ErrConnection)
	}

	return pool, nil
}

// ConnectWithRetry creates a connection pool with retry logic. Used when the
// engine runs under a scheduler that may start it before the store is up.
func ConnectWithRetry(ctx context.Context, target config.TargetStore, maxAttempts int, retryDelay time.Duration) (*pgxpool.Pool, error) {
	if maxAttempts <= 0 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		pool, err := Connect(ctx, target)
		if err == nil {
			return pool, nil
		}
		lastErr = err

		if attempt < maxAttempts {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(retryDelay):
			}
		}
	}

	return nil, fmt.Errorf("failed to connect after %d attempts: %w", maxAttempts, lastErr)
}

// Close gracefully closes a connection pool if it is not nil.
func Close(pool *pgxpool.Pool) {
	if pool != nil {
		pool.Close()
	}
}
