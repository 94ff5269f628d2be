package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/juku/core/catalog"
)

type catalogRepository struct {
	db *sqlx.DB
}

var _ catalog.Repository = (*catalogRepository)(nil)

func NewCatalogRepository(db *sqlx.DB) *catalogRepository {
	return &catalogRepository{db: db}
}

func (repo *catalogRepository) QueryAllSubjects(ctx context.Context) ([]catalog.Subject, error) {
	var subjects []catalog.Subject
	err := sqlx.SelectContext(ctx, repo.db, &subjects,
		`SELECT id, name FROM class_subjects ORDER BY name`)
	return subjects, errors.Wrap(err, "querying class subjects")
}

func (repo *catalogRepository) QueryAllDays(ctx context.Context) ([]catalog.Day, error) {
	var days []catalog.Day
	err := sqlx.SelectContext(ctx, repo.db, &days,
		`SELECT id, name, "index" FROM available_days ORDER BY "index"`)
	return days, errors.Wrap(err, "querying available days")
}

func (repo *catalogRepository) FilterSubjectIDs(ctx context.Context, ids []string) ([]string, error) {
	return repo.filterIDs(ctx, "class_subjects", ids)
}

func (repo *catalogRepository) FilterDayIDs(ctx context.Context, ids []string) ([]string, error) {
	return repo.filterIDs(ctx, "available_days", ids)
}

func (repo *catalogRepository) filterIDs(ctx context.Context, table string, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT id FROM `+table+` WHERE id IN (?)`, ids)
	if err != nil {
		return nil, errors.Wrapf(err, "filtering %s ids", table)
	}
	var found []string
	err = sqlx.SelectContext(ctx, repo.db, &found, repo.db.Rebind(query), args...)
	return found, errors.Wrapf(err, "filtering %s ids", table)
}
