package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// execSQL resolves the executor for tx and runs a statement. Errors
// from the driver are returned raw so callers can inspect PgError
// codes before classifying.
func execSQL(ctx context.Context, pool *pgxpool.Pool, tx interface{}, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	ex, err := getExecutor(pool, tx)
	if err != nil {
		return nil, err
	}
	return ex.Exec(ctx, sql, args...)
}

// pickRow resolves the executor for tx and returns a single row.
func pickRow(ctx context.Context, pool *pgxpool.Pool, tx interface{}, sql string, args ...interface{}) (pgx.Row, error) {
	ex, err := getExecutor(pool, tx)
	if err != nil {
		return nil, err
	}
	return ex.QueryRow(ctx, sql, args...), nil
}

// queryRows resolves the executor for tx and runs a multi-row query.
func queryRows(ctx context.Context, pool *pgxpool.Pool, tx interface{}, sql string, args ...interface{}) (pgx.Rows, error) {
	ex, err := getExecutor(pool, tx)
	if err != nil {
		return nil, err
	}
	return ex.Query(ctx, sql, args...)
}

// isUniqueViolation reports whether err is a Postgres duplicate-key
// error (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
