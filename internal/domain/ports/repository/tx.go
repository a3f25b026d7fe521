package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

type Tx interface{}

var NoTX interface{}

// TransactionManager executes a function within a database transaction,
// passing the underlying handle via `tx`.
//
// Repositories accept a Tx so they can run tx-bound Exec/Query and
// SELECT ... FOR UPDATE when a transaction is active, and MUST accept
// NoTX for the non-transactional path. The concrete type of `tx` is
// infra-defined (pgx.Tx for Postgres).
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}
