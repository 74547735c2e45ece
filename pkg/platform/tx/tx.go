// Package tx threads a pgx transaction through context so stores that take
// part in a service-level unit of work share one transaction without their
// interfaces leaking pgx types.
package tx

import (
	"context"

	"github.com/jackc/pgx/v5"
)

type ctxKey struct{}

var txKey = ctxKey{}

// WithTx stores a transaction in context for downstream store usage.
func WithTx(ctx context.Context, tx pgx.Tx) context.Context {
	if tx == nil {
		return ctx
	}
	return context.WithValue(ctx, txKey, tx)
}

// From extracts a transaction from context if present.
func From(ctx context.Context) (pgx.Tx, bool) {
	tx, ok := ctx.Value(txKey).(pgx.Tx)
	return tx, ok
}
