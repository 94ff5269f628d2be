package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/juku/core"
	"github.com/trezcool/juku/core/student"
)

type studentRepository struct {
	db *sqlx.DB
}

var _ student.Repository = (*studentRepository)(nil)

func NewStudentRepository(db *sqlx.DB) *studentRepository {
	return &studentRepository{db: db}
}

const selectStudent = `SELECT id, school_id, name, status, school_stage, grade, joined_on, desired_school, created_at, updated_at FROM students`

func (repo *studentRepository) QueryAllStudents(ctx context.Context, schoolID string) ([]student.Student, error) {
	query := selectStudent + ` ORDER BY name`
	args := []interface{}(nil)
	if schoolID != "" {
		query = selectStudent + ` WHERE school_id = $1 ORDER BY name`
		args = []interface{}{schoolID}
	}
	var students []student.Student
	if err := sqlx.SelectContext(ctx, repo.db, &students, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	for i := range students {
		if err := repo.loadRelations(ctx, &students[i], repo.db); err != nil {
			return nil, err
		}
	}
	return students, nil
}

func (repo *studentRepository) GetStudent(ctx context.Context, id string, exec ...core.DBExecutor) (student.Student, error) {
	e := ext(repo.db, exec)
	var std student.Student
	err := sqlx.GetContext(ctx, e, &std, selectStudent+` WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return student.Student{}, student.ErrNotFound
		}
		return student.Student{}, errors.Wrap(err, "getting student")
	}
	if err = repo.loadRelations(ctx, &std, e); err != nil {
		return student.Student{}, err
	}
	return std, nil
}

func (repo *studentRepository) CreateStudent(ctx context.Context, std student.Student, exec ...core.DBExecutor) (student.Student, error) {
	std.ID = uuid.New().String()
	std.CreatedAt = now()
	std.UpdatedAt = std.CreatedAt
	_, err := ext(repo.db, exec).ExecContext(ctx,
		`INSERT INTO students (id, school_id, name, status, school_stage, grade, joined_on, desired_school, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		std.ID, std.SchoolID, std.Name, std.Status, std.SchoolStage, std.Grade, std.JoinedOn, std.DesiredSchool, std.CreatedAt, std.UpdatedAt,
	)
	if err != nil {
		return student.Student{}, wrapWriteErr(err, "creating student")
	}
	return std, nil
}

func (repo *studentRepository) UpdateStudent(ctx context.Context, std student.Student, exec ...core.DBExecutor) (student.Student, error) {
	std.UpdatedAt = now()
	res, err := ext(repo.db, exec).ExecContext(ctx,
		`UPDATE students SET name = $1, status = $2, school_stage = $3, grade = $4, joined_on = $5, desired_school = $6, updated_at = $7
		 WHERE id = $8`,
		std.Name, std.Status, std.SchoolStage, std.Grade, std.JoinedOn, std.DesiredSchool, std.UpdatedAt, std.ID,
	)
	if err != nil {
		return student.Student{}, wrapWriteErr(err, "updating student")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return student.Student{}, student.ErrNotFound
	}
	return std, nil
}

func (repo *studentRepository) DeleteStudentsByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`DELETE FROM students WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "deleting students")
	}
	_, err = repo.db.ExecContext(ctx, repo.db.Rebind(query), args...)
	return wrapWriteErr(err, "deleting students")
}

// ReplaceSubjectLinks deletes the student's subject link rows and inserts a
// fresh set. Assignments hanging off the deleted links cascade away at the
// database level.
func (repo *studentRepository) ReplaceSubjectLinks(ctx context.Context, studentID string, subjectIDs []string, exec ...core.DBExecutor) (map[string]string, error) {
	e := ext(repo.db, exec)
	if _, err := e.ExecContext(ctx,
		`DELETE FROM student_class_subjects WHERE student_id = $1`, studentID); err != nil {
		return nil, wrapWriteErr(err, "clearing student subject links")
	}
	linkIDs := make(map[string]string, len(subjectIDs))
	ts := now()
	for _, subjectID := range subjectIDs {
		linkID := uuid.New().String()
		_, err := e.ExecContext(ctx,
			`INSERT INTO student_class_subjects (id, student_id, class_subject_id, created_at) VALUES ($1, $2, $3, $4)`,
			linkID, studentID, subjectID, ts,
		)
		if err != nil {
			return nil, wrapWriteErr(err, "inserting student subject link")
		}
		linkIDs[subjectID] = linkID
	}
	return linkIDs, nil
}

func (repo *studentRepository) ReplaceDayLinks(ctx context.Context, studentID string, dayIDs []string, exec ...core.DBExecutor) error {
	e := ext(repo.db, exec)
	if _, err := e.ExecContext(ctx,
		`DELETE FROM student_available_days WHERE student_id = $1`, studentID); err != nil {
		return wrapWriteErr(err, "clearing student day links")
	}
	ts := now()
	for _, dayID := range dayIDs {
		_, err := e.ExecContext(ctx,
			`INSERT INTO student_available_days (id, student_id, available_day_id, created_at) VALUES ($1, $2, $3, $4)`,
			uuid.New().String(), studentID, dayID, ts,
		)
		if err != nil {
			return wrapWriteErr(err, "inserting student day link")
		}
	}
	return nil
}

func (repo *studentRepository) InsertAssignments(ctx context.Context, studentID string, asgs []student.Assignment, exec ...core.DBExecutor) error {
	e := ext(repo.db, exec)
	ts := now()
	for _, asg := range asgs {
		_, err := e.ExecContext(ctx,
			`INSERT INTO teaching_assignments (id, student_class_subject_id, teacher_id, available_day_id, created_at)
			 VALUES ($1, $2, $3, $4, $5)`,
			uuid.New().String(), asg.SubjectLinkID, asg.TeacherID, asg.DayID, ts,
		)
		if err != nil {
			return wrapWriteErr(err, "inserting teaching assignment")
		}
	}
	return nil
}

func (repo *studentRepository) loadRelations(ctx context.Context, std *student.Student, e sqlx.ExtContext) error {
	if err := sqlx.SelectContext(ctx, e, &std.Subjects,
		`SELECT cs.id, cs.name
		 FROM student_class_subjects scs
		 JOIN class_subjects cs ON cs.id = scs.class_subject_id
		 WHERE scs.student_id = $1
		 ORDER BY cs.id`, std.ID); err != nil {
		return errors.Wrap(err, "loading student subject links")
	}
	if err := sqlx.SelectContext(ctx, e, &std.Days,
		`SELECT ad.id, ad.name
		 FROM student_available_days sad
		 JOIN available_days ad ON ad.id = sad.available_day_id
		 WHERE sad.student_id = $1
		 ORDER BY ad.id`, std.ID); err != nil {
		return errors.Wrap(err, "loading student day links")
	}
	if err := sqlx.SelectContext(ctx, e, &std.Assignments,
		`SELECT ta.id, ta.teacher_id, scs.class_subject_id AS subject_id, ta.available_day_id AS day_id, ta.student_class_subject_id AS subject_link_id
		 FROM teaching_assignments ta
		 JOIN student_class_subjects scs ON scs.id = ta.student_class_subject_id
		 WHERE scs.student_id = $1`, std.ID); err != nil {
		return errors.Wrap(err, "loading teaching assignments")
	}
	if err := sqlx.SelectContext(ctx, e, &std.Teachers,
		`SELECT DISTINCT u.id, u.name, u.role
		 FROM users u
		 JOIN teaching_assignments ta ON ta.teacher_id = u.id
		 JOIN student_class_subjects scs ON scs.id = ta.student_class_subject_id
		 WHERE scs.student_id = $1
		 ORDER BY u.name`, std.ID); err != nil {
		return errors.Wrap(err, "loading student teachers")
	}
	return nil
}
