package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/juku/core/student"
)

type noteRepository struct {
	db *sqlx.DB
}

var _ student.NoteRepository = (*noteRepository)(nil)

func NewNoteRepository(db *sqlx.DB) *noteRepository {
	return &noteRepository{db: db}
}

func (repo *noteRepository) QueryTraits(ctx context.Context, studentID string) ([]student.Trait, error) {
	var traits []student.Trait
	err := sqlx.SelectContext(ctx, repo.db, &traits,
		`SELECT id, student_id, kind, description, created_by_name, created_at
		 FROM student_traits WHERE student_id = $1 ORDER BY created_at DESC`, studentID)
	return traits, errors.Wrap(err, "querying student traits")
}

func (repo *noteRepository) CreateTrait(ctx context.Context, t student.Trait) (student.Trait, error) {
	t.ID = uuid.New().String()
	t.CreatedAt = now()
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO student_traits (id, student_id, kind, description, created_by_name, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		t.ID, t.StudentID, t.Kind, t.Description, t.CreatedByName, t.CreatedAt,
	)
	if err != nil {
		return student.Trait{}, wrapWriteErr(err, "creating student trait")
	}
	return t, nil
}

func (repo *noteRepository) DeleteTrait(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM student_traits WHERE id = $1`, id)
	if err != nil {
		return wrapWriteErr(err, "deleting student trait")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return student.ErrTraitNotFound
	}
	return nil
}

func (repo *noteRepository) QueryLessonNotes(ctx context.Context, studentID string) ([]student.LessonNote, error) {
	var notes []student.LessonNote
	err := sqlx.SelectContext(ctx, repo.db, &notes,
		`SELECT id, student_id, title, description, created_by_name, created_at, updated_at
		 FROM lesson_notes WHERE student_id = $1 ORDER BY created_at DESC`, studentID)
	return notes, errors.Wrap(err, "querying lesson notes")
}

func (repo *noteRepository) GetLessonNote(ctx context.Context, id string) (student.LessonNote, error) {
	var note student.LessonNote
	err := sqlx.GetContext(ctx, repo.db, &note,
		`SELECT id, student_id, title, description, created_by_name, created_at, updated_at
		 FROM lesson_notes WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return student.LessonNote{}, student.ErrNoteNotFound
		}
		return student.LessonNote{}, errors.Wrap(err, "getting lesson note")
	}
	return note, nil
}

func (repo *noteRepository) CreateLessonNote(ctx context.Context, n student.LessonNote) (student.LessonNote, error) {
	n.ID = uuid.New().String()
	n.CreatedAt = now()
	n.UpdatedAt = n.CreatedAt
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO lesson_notes (id, student_id, title, description, created_by_name, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		n.ID, n.StudentID, n.Title, n.Description, n.CreatedByName, n.CreatedAt, n.UpdatedAt,
	)
	if err != nil {
		return student.LessonNote{}, wrapWriteErr(err, "creating lesson note")
	}
	return n, nil
}

func (repo *noteRepository) UpdateLessonNote(ctx context.Context, n student.LessonNote) (student.LessonNote, error) {
	n.UpdatedAt = now()
	res, err := repo.db.ExecContext(ctx,
		`UPDATE lesson_notes SET title = $1, description = $2, updated_at = $3 WHERE id = $4`,
		n.Title, n.Description, n.UpdatedAt, n.ID,
	)
	if err != nil {
		return student.LessonNote{}, wrapWriteErr(err, "updating lesson note")
	}
	if num, _ := res.RowsAffected(); num == 0 {
		return student.LessonNote{}, student.ErrNoteNotFound
	}
	return n, nil
}

func (repo *noteRepository) DeleteLessonNote(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM lesson_notes WHERE id = $1`, id)
	if err != nil {
		return wrapWriteErr(err, "deleting lesson note")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return student.ErrNoteNotFound
	}
	return nil
}
