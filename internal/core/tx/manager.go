// Package tx defines transaction boundaries independent of the database
// driver. The PostgreSQL implementation lives in infrastructure/storage/postgres.
package tx

import (
	"context"
)

// Manager runs fn inside a transaction: committed if fn returns nil, rolled
// back otherwise. Nested calls reuse the transaction found in ctx.
type Manager interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ReadOnlyManager adds read-only transactions.
type ReadOnlyManager interface {
	Manager
	ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}
