// Package sqlxrepos provides the PostgreSQL-backed repositories.
package sqlxrepos

import (
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/juku/core"
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

// ext resolves the executor a repo method should run against: the optional
// caller-owned transaction when given, the repo's own connection otherwise.
func ext(db *sqlx.DB, exec []core.DBExecutor) sqlx.ExtContext {
	if len(exec) > 0 && exec[0] != nil {
		if e, ok := exec[0].(sqlx.ExtContext); ok {
			return e
		}
	}
	return db
}

// wrapWriteErr classifies constraint violations raised by a write as
// conflicts so callers can retry with fresh state.
func wrapWriteErr(err error, msg string) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case pqUniqueViolation, pqForeignKeyViolation:
			return core.NewConflictError(core.NewFieldError(
				"constraint_violation", "", pqErr.Detail,
			))
		}
	}
	return errors.Wrap(err, msg)
}

func now() time.Time { return time.Now().UTC() }
