// Package postgres keeps sequence baselines in a PostgreSQL table.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Pool is the connection pool behind the baseline store.
// The store issues one single-row statement per confirmed document, so it stays small.
type Pool struct {
	*pgxpool.Pool
}

const (
	maxConns        = 4
	maxConnIdleTime = 30 * time.Minute
	applicationName = "inventra"
)

// NewPool connects to dsn and pings once before returning.
func NewPool(ctx context.Context, dsn string) (*Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.MaxConns = maxConns
	cfg.MaxConnIdleTime = maxConnIdleTime
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		_, err := conn.Exec(ctx, "SET application_name = '"+applicationName+"'")
		return err
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Pool{Pool: pool}, nil
}

// Close releases every connection. Safe on a zero Pool.
func (p *Pool) Close() {
	if p.Pool != nil {
		p.Pool.Close()
	}
}

// Ping reports whether the database answers, and fails when every
// connection is checked out so readiness reflects a saturated store.
func (p *Pool) Ping(ctx context.Context) error {
	if p.Pool == nil {
		return fmt.Errorf("baseline pool is closed")
	}
	if st := p.Stat(); st.MaxConns() > 0 && st.AcquiredConns() >= st.MaxConns() {
		return fmt.Errorf("baseline pool saturated: %d/%d connections in use", st.AcquiredConns(), st.MaxConns())
	}
	return p.Pool.Ping(ctx)
}
