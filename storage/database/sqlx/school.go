package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/juku/core"
	"github.com/trezcool/juku/core/school"
)

type schoolRepository struct {
	db *sqlx.DB
}

var _ school.Repository = (*schoolRepository)(nil)

func NewSchoolRepository(db *sqlx.DB) *schoolRepository {
	return &schoolRepository{db: db}
}

func (repo *schoolRepository) QueryAllSchools(ctx context.Context) ([]school.School, error) {
	var schools []school.School
	err := sqlx.SelectContext(ctx, repo.db, &schools,
		`SELECT id, name, created_at, updated_at FROM schools ORDER BY name`)
	return schools, errors.Wrap(err, "querying schools")
}

func (repo *schoolRepository) GetSchool(ctx context.Context, id string, exec ...core.DBExecutor) (school.School, error) {
	var sch school.School
	err := sqlx.GetContext(ctx, ext(repo.db, exec), &sch,
		`SELECT id, name, created_at, updated_at FROM schools WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return school.School{}, school.ErrNotFound
		}
		return school.School{}, errors.Wrap(err, "getting school")
	}
	return sch, nil
}

func (repo *schoolRepository) CreateSchool(ctx context.Context, sch school.School, exec ...core.DBExecutor) (school.School, error) {
	sch.ID = uuid.New().String()
	sch.CreatedAt = now()
	sch.UpdatedAt = sch.CreatedAt
	_, err := ext(repo.db, exec).ExecContext(ctx,
		`INSERT INTO schools (id, name, created_at, updated_at) VALUES ($1, $2, $3, $4)`,
		sch.ID, sch.Name, sch.CreatedAt, sch.UpdatedAt,
	)
	if err != nil {
		return school.School{}, wrapWriteErr(err, "creating school")
	}
	return sch, nil
}

func (repo *schoolRepository) UpdateSchool(ctx context.Context, sch school.School, exec ...core.DBExecutor) (school.School, error) {
	sch.UpdatedAt = now()
	res, err := ext(repo.db, exec).ExecContext(ctx,
		`UPDATE schools SET name = $1, updated_at = $2 WHERE id = $3`,
		sch.Name, sch.UpdatedAt, sch.ID,
	)
	if err != nil {
		return school.School{}, wrapWriteErr(err, "updating school")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return school.School{}, school.ErrNotFound
	}
	return sch, nil
}
