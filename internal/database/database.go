package database

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"storefront/internal/config"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

//go:embed schema.sql
var schema string

// Schema returns the DDL applied by Migrate.
func Schema() string {
	return schema
}

// NewPool creates a new PostgreSQL connection pool.
func NewPool(ctx context.Context, cfg config.DatabaseConfig, logger zerolog.Logger) (*pgxpool.Pool, error) {
	return NewPoolFromURL(ctx, cfg.ConnectionString(), cfg, logger)
}

// NewPoolFromURL creates a pool for an explicit connection string, applying
// the sizing limits from cfg. The pool is pinged before it is returned.
func NewPoolFromURL(ctx context.Context, connStr string, cfg config.DatabaseConfig, logger zerolog.Logger) (*pgxpool.Pool, error) {
	pc, err := poolConfig(connStr, cfg)
	if err != nil {
		return nil, err
	}

	conn := pc.ConnConfig
	logger.Info().
		Str("host", conn.Host).
		Uint16("port", conn.Port).
		Str("database", conn.Database).
		Int32("max_conns", pc.MaxConns).
		Int32("min_conns", pc.MinConns).
		Msg("opening database pool")

	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info().Msg("database pool ready")
	return pool, nil
}

const pingTimeout = 10 * time.Second

func poolConfig(connStr string, cfg config.DatabaseConfig) (*pgxpool.Config, error) {
	pc, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	if cfg.MaxConnections > 0 {
		pc.MaxConns = int32(cfg.MaxConnections)
	}
	if cfg.MinConnections > 0 {
		pc.MinConns = int32(cfg.MinConnections)
	}
	if cfg.MaxConnLifetime > 0 {
		pc.MaxConnLifetime = time.Duration(cfg.MaxConnLifetime) * time.Second
	}
	pc.MaxConnIdleTime = 30 * time.Minute
	pc.HealthCheckPeriod = time.Minute
	return pc, nil
}

// Migrate applies the embedded schema. Every statement is idempotent.
func Migrate(ctx context.Context, pool *pgxpool.Pool, logger zerolog.Logger) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		logger.Error().Err(err).Msg("failed to apply schema")
		return fmt.Errorf("failed to apply schema: %w", err)
	}

	logger.Info().Msg("database schema applied")
	return nil
}
