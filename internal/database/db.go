// Package database owns the Postgres pool and the schema the repositories expect.
package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// PoolOptions tunes the connection pool. Zero values keep pgx defaults.
type PoolOptions struct {
	MaxConns    int32
	PingTimeout time.Duration
}

// PoolOptionsFor sizes the pool so a full bulk batch can persist leads without
// starving the request handlers.
func PoolOptionsFor(bulkConcurrency int) PoolOptions {
	opts := PoolOptions{PingTimeout: 10 * time.Second}
	if bulkConcurrency > 0 {
		opts.MaxConns = int32(bulkConcurrency + 4)
	}
	return opts
}

func (o PoolOptions) apply(cfg *pgxpool.Config) {
	cfg.MaxConnLifetime = time.Hour
	cfg.MaxConnIdleTime = 15 * time.Minute
	cfg.HealthCheckPeriod = 30 * time.Second
	if o.MaxConns > 0 {
		cfg.MaxConns = o.MaxConns
	}
}

// Connect parses dsn, opens a pgx pool and pings it before handing it back.
func Connect(ctx context.Context, dsn string, opts PoolOptions, logger *zap.Logger) (*pgxpool.Pool, error) {
	if dsn == "" {
		return nil, errors.New("database DSN must not be empty")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pgx config: %w", err)
	}
	opts.apply(cfg)

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}

	timeout := opts.PingTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	logger.Info("database connected",
		zap.String("host", cfg.ConnConfig.Host),
		zap.String("database", cfg.ConnConfig.Database),
		zap.Int32("max_conns", cfg.MaxConns),
	)
	return pool, nil
}
