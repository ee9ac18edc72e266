package repository

import "context"

// TxManager runs fn inside a database transaction. Repositories called with
// the context passed to fn join that transaction.
type TxManager interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
