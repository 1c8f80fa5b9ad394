// Package postgres implements the repository interfaces over database/sql
// with the pgx driver.
//
// Every write path for a type's reference namespace starts its transaction
// with an UPDATE on that type's reference_sequences row. The row lock
// serializes writers per type, so the check-then-act sequences behind it
// cannot interleave; the documents primary key and the partial unique index
// on active reservations remain as backstops within each table.
package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const pgUniqueViolation = "23505"

// isUniqueViolation reports whether err is a Postgres duplicate-key error.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// withTx runs fn inside a transaction, committing on nil error and rolling
// back otherwise.
func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
