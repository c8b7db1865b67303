// Package postgres provides PostgreSQL persistence for campaigns and
// black-market searches using pgx v5.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/commlink/rollbot/internal/config"
)

// connectTimeout bounds the readiness check at startup so a wrong DSN fails
// fast instead of hanging the binary.
const connectTimeout = 10 * time.Second

// Pool owns the pgx connection pool shared by the repositories.
type Pool struct {
	pool *pgxpool.Pool
}

// NewPool opens a connection pool sized per the configuration and verifies
// the database answers before returning.
func NewPool(ctx context.Context, cfg config.DatabaseConfig) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &Pool{pool: pool}, nil
}

// DB exposes the underlying pool for the repositories.
func (p *Pool) DB() *pgxpool.Pool { return p.pool }

// Close releases every connection. The pool is unusable afterwards.
func (p *Pool) Close() { p.pool.Close() }
