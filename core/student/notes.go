package student

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/juku/core"
)

var (
	ErrTraitNotFound = errors.New("student trait not found")
	ErrNoteNotFound  = errors.New("lesson note not found")
)

// Trait kinds.
const (
	TraitGood    = "good"
	TraitConcern = "concern"
)

var TraitKinds = []string{TraitGood, TraitConcern}

type (
	// Trait is a free-form observation about a student. CreatedByName is a
	// snapshot of the author's name at write time; it survives the author's
	// account being renamed or removed.
	Trait struct {
		ID            string    `db:"id" json:"id"`
		StudentID     string    `db:"student_id" json:"student_id"`
		Kind          string    `db:"kind" json:"kind"`
		Description   string    `db:"description" json:"description"`
		CreatedByName string    `db:"created_by_name" json:"created_by_name"`
		CreatedAt     time.Time `db:"created_at" json:"created_at"`
	}

	// LessonNote records what happened in a lesson. CreatedByName is a
	// snapshot, same as on Trait.
	LessonNote struct {
		ID            string    `db:"id" json:"id"`
		StudentID     string    `db:"student_id" json:"student_id"`
		Title         string    `db:"title" json:"title"`
		Description   string    `db:"description" json:"description"`
		CreatedByName string    `db:"created_by_name" json:"created_by_name"`
		CreatedAt     time.Time `db:"created_at" json:"created_at"`
		UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
	}

	NewTrait struct {
		Kind        string `json:"kind" validate:"required,oneof=good concern"`
		Description string `json:"description" validate:"required"`
	}

	NewLessonNote struct {
		Title       string `json:"title" validate:"required,max=100"`
		Description string `json:"description" validate:"required"`
	}

	// NoteRepository persists traits and lesson notes.
	NoteRepository interface {
		QueryTraits(ctx context.Context, studentID string) ([]Trait, error)
		CreateTrait(ctx context.Context, t Trait) (Trait, error)
		DeleteTrait(ctx context.Context, id string) error

		QueryLessonNotes(ctx context.Context, studentID string) ([]LessonNote, error)
		GetLessonNote(ctx context.Context, id string) (LessonNote, error)
		CreateLessonNote(ctx context.Context, n LessonNote) (LessonNote, error)
		UpdateLessonNote(ctx context.Context, n LessonNote) (LessonNote, error)
		DeleteLessonNote(ctx context.Context, id string) error
	}

	NoteService struct {
		repo    NoteRepository
		stdRepo Repository
	}
)

func (nt *NewTrait) Validate() error {
	nt.Description = core.CleanString(nt.Description)
	return core.TranslateValidatorErrors(core.Validate.Struct(nt))
}

func (nn *NewLessonNote) Validate() error {
	nn.Title = core.CleanString(nn.Title)
	nn.Description = core.CleanString(nn.Description)
	return core.TranslateValidatorErrors(core.Validate.Struct(nn))
}

func NewNoteService(repo NoteRepository, stdRepo Repository) *NoteService {
	return &NoteService{repo: repo, stdRepo: stdRepo}
}

func (svc *NoteService) QueryTraits(ctx context.Context, studentID string) ([]Trait, error) {
	if _, err := svc.stdRepo.GetStudent(ctx, studentID); err != nil {
		return nil, err
	}
	return svc.repo.QueryTraits(ctx, studentID)
}

func (svc *NoteService) AddTrait(ctx context.Context, studentID, authorName string, nt NewTrait) (Trait, error) {
	if err := nt.Validate(); err != nil {
		return Trait{}, err
	}
	if _, err := svc.stdRepo.GetStudent(ctx, studentID); err != nil {
		return Trait{}, err
	}
	return svc.repo.CreateTrait(ctx, Trait{
		StudentID:     studentID,
		Kind:          nt.Kind,
		Description:   nt.Description,
		CreatedByName: authorName,
	})
}

func (svc *NoteService) DeleteTrait(ctx context.Context, id string) error {
	return svc.repo.DeleteTrait(ctx, id)
}

func (svc *NoteService) QueryLessonNotes(ctx context.Context, studentID string) ([]LessonNote, error) {
	if _, err := svc.stdRepo.GetStudent(ctx, studentID); err != nil {
		return nil, err
	}
	return svc.repo.QueryLessonNotes(ctx, studentID)
}

func (svc *NoteService) AddLessonNote(ctx context.Context, studentID, authorName string, nn NewLessonNote) (LessonNote, error) {
	if err := nn.Validate(); err != nil {
		return LessonNote{}, err
	}
	if _, err := svc.stdRepo.GetStudent(ctx, studentID); err != nil {
		return LessonNote{}, err
	}
	return svc.repo.CreateLessonNote(ctx, LessonNote{
		StudentID:     studentID,
		Title:         nn.Title,
		Description:   nn.Description,
		CreatedByName: authorName,
	})
}

func (svc *NoteService) UpdateLessonNote(ctx context.Context, id string, nn NewLessonNote) (LessonNote, error) {
	if err := nn.Validate(); err != nil {
		return LessonNote{}, err
	}
	note, err := svc.repo.GetLessonNote(ctx, id)
	if err != nil {
		return LessonNote{}, err
	}
	note.Title = nn.Title
	note.Description = nn.Description
	return svc.repo.UpdateLessonNote(ctx, note)
}

func (svc *NoteService) DeleteLessonNote(ctx context.Context, id string) error {
	return svc.repo.DeleteLessonNote(ctx, id)
}
