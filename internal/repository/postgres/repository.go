// Package postgres implements datagateway.LedgerStore by hand-writing SQL
// over pgx.v5, mirroring the method surface the teacher's sqlc-generated
// gen.Queries exposes (no code generation tooling is available here).
package postgres

import (
	"context"

	"github.com/brc20indexer/core/internal/datagateway"
	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx, letting the
// query methods below run unmodified whether or not they're inside a
// transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository implements datagateway.LedgerStore. The zero value is not
// usable; construct with New.
type Repository struct {
	pool *pgxpool.Pool
	db   querier
	tx   pgx.Tx
}

// New constructs a Repository backed by pool.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool, db: pool}
}

var _ datagateway.LedgerStore = (*Repository)(nil)

// BeginLedgerTx starts a new repeatable-read (snapshot) database
// transaction and returns a Repository bound to it. Writes through the
// returned value are invisible to other sessions until Commit.
func (r *Repository) BeginLedgerTx(ctx context.Context) (datagateway.LedgerStoreTx, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return nil, errors.Wrap(err, "begin transaction")
	}
	return &Repository{pool: r.pool, db: tx, tx: tx}, nil
}

// Commit commits the bound transaction. It is a no-op if this Repository
// was not obtained through BeginLedgerTx.
func (r *Repository) Commit(ctx context.Context) error {
	if r.tx == nil {
		return nil
	}
	return errors.Wrap(r.tx.Commit(ctx), "commit")
}

// Rollback rolls back the bound transaction. It is a no-op if this
// Repository was not obtained through BeginLedgerTx, so a deferred
// Rollback is always safe after Commit.
func (r *Repository) Rollback(ctx context.Context) error {
	if r.tx == nil {
		return nil
	}
	err := r.tx.Rollback(ctx)
	if errors.Is(err, pgx.ErrTxClosed) {
		return nil
	}
	return errors.Wrap(err, "rollback")
}
