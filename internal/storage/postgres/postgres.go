// Package postgres keeps party slots in PostgreSQL through a pgx v5 pool.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/faiths/internal/config"
)

const (
	// applicationName identifies engine sessions in pg_stat_activity.
	applicationName = "faiths"
	connectTimeout  = 10 * time.Second
)

// Pool is the connection pool shared by the party slot repository.
type Pool struct {
	pool *pgxpool.Pool
}

// NewPool opens a pool for cfg and proves the server is reachable before
// any slot is loaded.
//
// Precondition: cfg.Driver is "postgres" and cfg passed config validation.
// Postcondition: Returns a connected Pool, or an error with nothing left open.
func NewPool(ctx context.Context, cfg config.DatabaseConfig) (*Pool, error) {
	pc, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}
	pc.MaxConns, pc.MinConns = cfg.MaxConns, cfg.MinConns
	pc.MaxConnLifetime = cfg.MaxConnLifetime
	if _, set := pc.ConnConfig.RuntimeParams["application_name"]; !set {
		pc.ConnConfig.RuntimeParams["application_name"] = applicationName
	}

	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging %s:%d/%s: %w", cfg.Host, cfg.Port, cfg.Name, err)
	}
	return &Pool{pool: pool}, nil
}

// Close releases every pooled connection.
func (p *Pool) Close() { p.pool.Close() }

// DB exposes the pgx pool for queries.
func (p *Pool) DB() *pgxpool.Pool { return p.pool }
