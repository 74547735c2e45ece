package tx

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Runner executes a function inside a unit of work. The pgx runner opens a
// database transaction and threads it through context; stores pick it up via
// From. The nop runner just calls the function, which is the right semantics
// for memory stores where each call is already atomic.
type Runner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type pgxRunner struct {
	pool *pgxpool.Pool
}

// NewPgxRunner returns a Runner backed by database transactions.
func NewPgxRunner(pool *pgxpool.Pool) Runner {
	return &pgxRunner{pool: pool}
}

func (r *pgxRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(WithTx(ctx, tx))
	})
}

type nopRunner struct{}

// NopRunner returns a Runner that provides no transactional boundary.
func NopRunner() Runner {
	return nopRunner{}
}

func (nopRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
