package inmemrepos

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/trezcool/juku/core"
)

var errNoSQL = errors.New("inmem: raw SQL is not supported")

type (
	// DB satisfies core.DB so services can open transactions against the
	// in-memory store. The transactor is a no-op: repo writes apply
	// immediately and Rollback does not undo them, so a failure mid-way
	// through a multi-write operation leaves the partial writes in place.
	// Tests asserting rollback behavior must fail during validation, which
	// runs before any write; only the sqlx path is transactional.
	DB struct{}

	tx struct{}
)

var (
	_ core.DB           = (*DB)(nil)
	_ core.DBTransactor = (*tx)(nil)
)

func NewDB() *DB { return &DB{} }

func (db *DB) ExecContext(context.Context, string, ...interface{}) (sql.Result, error) {
	return nil, errNoSQL
}
func (db *DB) QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error) {
	return nil, errNoSQL
}
func (db *DB) QueryRowContext(context.Context, string, ...interface{}) *sql.Row { return nil }
func (db *DB) BeginTx(context.Context, *sql.TxOptions) (core.DBTransactor, error) {
	return &tx{}, nil
}
func (db *DB) Close() error { return nil }

func (t *tx) ExecContext(context.Context, string, ...interface{}) (sql.Result, error) {
	return nil, errNoSQL
}
func (t *tx) QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error) {
	return nil, errNoSQL
}
func (t *tx) QueryRowContext(context.Context, string, ...interface{}) *sql.Row { return nil }
func (t *tx) Commit() error                                                    { return nil }
func (t *tx) Rollback() error                                                  { return nil }
