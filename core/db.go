package core

import (
	"context"
	"database/sql"
)

type (
	// DBExecutor runs queries. Both a live connection and an open
	// transaction satisfy it; repository methods accept an optional
	// override so service-level transactions can compose repo calls.
	DBExecutor interface {
		ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
		QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
		QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	}

	// DBTransactor is an open transaction.
	DBTransactor interface {
		DBExecutor
		Commit() error
		Rollback() error
	}

	// DB is the app's handle on its database.
	DB interface {
		DBExecutor
		BeginTx(ctx context.Context, opts *sql.TxOptions) (DBTransactor, error)
		Close() error
	}
)

// Atomic runs fn within tx, committing on success and rolling back on error.
func Atomic(ctx context.Context, db DB, fn func(tx DBTransactor) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err = fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
