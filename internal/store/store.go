package store

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PgxPool is the subset of pgxpool.Pool the store needs. Tests supply a
// lightweight mock implementation.
type PgxPool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

// Store aggregates repositories backed by PostgreSQL.
type Store struct {
	pool PgxPool

	Events EventRepository
}

// New wires concrete repository implementations with a shared connection pool.
func New(pool PgxPool) *Store {
	return &Store{
		pool:   pool,
		Events: &eventRepo{pool: pool},
	}
}

// HealthCheck verifies that the underlying database is reachable.
func (s *Store) HealthCheck(ctx context.Context) error {
	defer observeDB(ctx, "db.healthcheck")()
	var one int
	return s.pool.QueryRow(ctx, "SELECT 1").Scan(&one)
}
