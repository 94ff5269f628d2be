package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/juku/core"
	"github.com/trezcool/juku/core/user"
)

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(db *sqlx.DB) *userRepository {
	return &userRepository{db: db}
}

const selectUser = `SELECT id, name, email, role, is_active, last_login, created_at, updated_at, password_hash FROM users`

func (repo *userRepository) QueryAllUsers(ctx context.Context) ([]user.User, error) {
	var users []user.User
	if err := sqlx.SelectContext(ctx, repo.db, &users, selectUser+` ORDER BY name`); err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	for i := range users {
		if err := repo.loadLinks(ctx, &users[i], repo.db); err != nil {
			return nil, err
		}
	}
	return users, nil
}

func (repo *userRepository) GetUserByID(ctx context.Context, id string, exec ...core.DBExecutor) (user.User, error) {
	e := ext(repo.db, exec)
	var usr user.User
	err := sqlx.GetContext(ctx, e, &usr, selectUser+` WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "getting user")
	}
	if err = repo.loadLinks(ctx, &usr, e); err != nil {
		return user.User{}, err
	}
	return usr, nil
}

func (repo *userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	var usr user.User
	err := sqlx.GetContext(ctx, repo.db, &usr, selectUser+` WHERE email = $1`, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "getting user by email")
	}
	if err = repo.loadLinks(ctx, &usr, repo.db); err != nil {
		return user.User{}, err
	}
	return usr, nil
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	e := ext(repo.db, exec)
	usr.ID = uuid.New().String()
	usr.CreatedAt = now()
	usr.UpdatedAt = usr.CreatedAt
	_, err := e.ExecContext(ctx,
		`INSERT INTO users (id, name, email, role, is_active, password_hash, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		usr.ID, usr.Name, usr.Email, usr.Role, usr.IsActive, usr.PasswordHash, usr.CreatedAt, usr.UpdatedAt,
	)
	if err != nil {
		return user.User{}, wrapWriteErr(err, "creating user")
	}
	return usr, nil
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	e := ext(repo.db, exec)
	usr.UpdatedAt = now()
	res, err := e.ExecContext(ctx,
		`UPDATE users SET name = $1, email = $2, role = $3, is_active = $4, password_hash = $5, updated_at = $6
		 WHERE id = $7`,
		usr.Name, usr.Email, usr.Role, usr.IsActive, usr.PasswordHash, usr.UpdatedAt, usr.ID,
	)
	if err != nil {
		return user.User{}, wrapWriteErr(err, "updating user")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return user.User{}, user.ErrNotFound
	}
	return usr, nil
}

func (repo *userRepository) DeleteUsersByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`DELETE FROM users WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "deleting users")
	}
	_, err = repo.db.ExecContext(ctx, repo.db.Rebind(query), args...)
	return wrapWriteErr(err, "deleting users")
}

func (repo *userRepository) SetLastLogin(ctx context.Context, usr user.User) error {
	_, err := repo.db.ExecContext(ctx,
		`UPDATE users SET last_login = $1 WHERE id = $2`, usr.LastLogin, usr.ID)
	return errors.Wrap(err, "setting last login")
}

func (repo *userRepository) CountActiveAdmins(ctx context.Context) (int, error) {
	var count int
	err := sqlx.GetContext(ctx, repo.db, &count,
		`SELECT COUNT(*) FROM users WHERE role = $1 AND is_active`, user.RoleAdmin)
	return count, errors.Wrap(err, "counting admins")
}

func (repo *userRepository) FilterTeacherIDs(ctx context.Context, ids []string, exec ...core.DBExecutor) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	e := ext(repo.db, exec)
	query, args, err := sqlx.In(
		`SELECT id FROM users WHERE is_active AND role IN (?) AND id IN (?)`,
		[]string{user.RoleTeacher, user.RoleAdmin}, ids,
	)
	if err != nil {
		return nil, errors.Wrap(err, "filtering teacher ids")
	}
	var found []string
	err = sqlx.SelectContext(ctx, e, &found, e.Rebind(query), args...)
	return found, errors.Wrap(err, "filtering teacher ids")
}

func (repo *userRepository) ReplaceSubjectLinks(ctx context.Context, userID string, subjectIDs []string, exec ...core.DBExecutor) error {
	return repo.replaceLinks(ctx, "user_class_subjects", "class_subject_id", userID, subjectIDs, exec)
}

func (repo *userRepository) ReplaceDayLinks(ctx context.Context, userID string, dayIDs []string, exec ...core.DBExecutor) error {
	return repo.replaceLinks(ctx, "user_available_days", "available_day_id", userID, dayIDs, exec)
}

func (repo *userRepository) replaceLinks(ctx context.Context, table, refCol, userID string, refIDs []string, exec []core.DBExecutor) error {
	e := ext(repo.db, exec)
	if _, err := e.ExecContext(ctx, `DELETE FROM `+table+` WHERE user_id = $1`, userID); err != nil {
		return wrapWriteErr(err, "clearing "+table)
	}
	ts := now()
	for _, refID := range refIDs {
		_, err := e.ExecContext(ctx,
			`INSERT INTO `+table+` (id, user_id, `+refCol+`, created_at) VALUES ($1, $2, $3, $4)`,
			uuid.New().String(), userID, refID, ts,
		)
		if err != nil {
			return wrapWriteErr(err, "inserting into "+table)
		}
	}
	return nil
}

func (repo *userRepository) loadLinks(ctx context.Context, usr *user.User, e sqlx.ExtContext) error {
	if err := sqlx.SelectContext(ctx, e, &usr.SubjectIDs,
		`SELECT class_subject_id FROM user_class_subjects WHERE user_id = $1`, usr.ID); err != nil {
		return errors.Wrap(err, "loading user subject links")
	}
	if err := sqlx.SelectContext(ctx, e, &usr.DayIDs,
		`SELECT available_day_id FROM user_available_days WHERE user_id = $1`, usr.ID); err != nil {
		return errors.Wrap(err, "loading user day links")
	}
	return nil
}
