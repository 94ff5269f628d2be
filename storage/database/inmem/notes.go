package inmemrepos

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/juku/core/student"
)

type noteRepository struct {
	store *Store
}

var _ student.NoteRepository = (*noteRepository)(nil)

func NewNoteRepository(store *Store) *noteRepository {
	return &noteRepository{store: store}
}

func (repo *noteRepository) QueryTraits(ctx context.Context, studentID string) ([]student.Trait, error) {
	repo.store.mu.RLock()
	defer repo.store.mu.RUnlock()
	var traits []student.Trait
	for _, t := range repo.store.traits {
		if t.StudentID == studentID {
			traits = append(traits, t)
		}
	}
	sort.Slice(traits, func(i, j int) bool { return traits[i].CreatedAt.After(traits[j].CreatedAt) })
	return traits, nil
}

func (repo *noteRepository) CreateTrait(ctx context.Context, t student.Trait) (student.Trait, error) {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()
	t.ID = uuid.New().String()
	t.CreatedAt = time.Now().UTC()
	repo.store.traits[t.ID] = t
	return t, nil
}

func (repo *noteRepository) DeleteTrait(ctx context.Context, id string) error {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()
	if _, ok := repo.store.traits[id]; !ok {
		return student.ErrTraitNotFound
	}
	delete(repo.store.traits, id)
	return nil
}

func (repo *noteRepository) QueryLessonNotes(ctx context.Context, studentID string) ([]student.LessonNote, error) {
	repo.store.mu.RLock()
	defer repo.store.mu.RUnlock()
	var notes []student.LessonNote
	for _, n := range repo.store.notes {
		if n.StudentID == studentID {
			notes = append(notes, n)
		}
	}
	sort.Slice(notes, func(i, j int) bool { return notes[i].CreatedAt.After(notes[j].CreatedAt) })
	return notes, nil
}

func (repo *noteRepository) GetLessonNote(ctx context.Context, id string) (student.LessonNote, error) {
	repo.store.mu.RLock()
	defer repo.store.mu.RUnlock()
	n, ok := repo.store.notes[id]
	if !ok {
		return student.LessonNote{}, student.ErrNoteNotFound
	}
	return n, nil
}

func (repo *noteRepository) CreateLessonNote(ctx context.Context, n student.LessonNote) (student.LessonNote, error) {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()
	n.ID = uuid.New().String()
	n.CreatedAt = time.Now().UTC()
	n.UpdatedAt = n.CreatedAt
	repo.store.notes[n.ID] = n
	return n, nil
}

func (repo *noteRepository) UpdateLessonNote(ctx context.Context, n student.LessonNote) (student.LessonNote, error) {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()
	if _, ok := repo.store.notes[n.ID]; !ok {
		return student.LessonNote{}, student.ErrNoteNotFound
	}
	n.UpdatedAt = time.Now().UTC()
	repo.store.notes[n.ID] = n
	return n, nil
}

func (repo *noteRepository) DeleteLessonNote(ctx context.Context, id string) error {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()
	if _, ok := repo.store.notes[id]; !ok {
		return student.ErrNoteNotFound
	}
	delete(repo.store.notes, id)
	return nil
}
