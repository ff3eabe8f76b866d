package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dtroode/contractchecker-server/database"
	"github.com/dtroode/contractchecker-server/internal/model"
)

var _ model.Pinger = (*Connection)(nil)

// querier is the subset of *pgxpool.Pool used by repositories, so tests
// can substitute a fake without a running database.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PoolOptions tunes the connection pool. Zero values keep pgxpool defaults.
type PoolOptions struct {
	MaxConns        int32
	MinConns        int32
	MaxConnIdleTime time.Duration
}

func (o PoolOptions) apply(conf *pgxpool.Config) {
	if o.MaxConns > 0 {
		conf.MaxConns = o.MaxConns
	}
	if o.MinConns > 0 {
		conf.MinConns = o.MinConns
	}
	if o.MaxConnIdleTime > 0 {
		conf.MaxConnIdleTime = o.MaxConnIdleTime
	}
}

// Connection owns the pool shared by repositories and the waitlist
// listener. The listener holds one pooled connection for its lifetime.
type Connection struct {
	*pgxpool.Pool
}

// NewConnection opens the pool and brings the schema up to date.
func NewConnection(ctx context.Context, dsn string, opts PoolOptions) (*Connection, error) {
	conf, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres dsn: %w", err)
	}
	opts.apply(conf)

	pool, err := pgxpool.NewWithConfig(ctx, conf)
	if err != nil {
		return nil, fmt.Errorf("failed to open connection pool: %w", err)
	}

	if err := database.Migrate(ctx, dsn); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return &Connection{
		Pool: pool,
	}, nil
}

func (s *Connection) Close() error {
	if s.Pool != nil {
		s.Pool.Close()
	}
	return nil
}

// Ping backs the readiness probe.
func (s *Connection) Ping(ctx context.Context) error {
	if s.Pool == nil {
		return fmt.Errorf("connection pool is nil")
	}
	return s.Pool.Ping(ctx)
}
