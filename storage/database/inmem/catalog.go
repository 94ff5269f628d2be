package inmemrepos

import (
	"context"
	"sort"

	"github.com/trezcool/juku/core/catalog"
)

type catalogRepository struct {
	store *Store
}

var _ catalog.Repository = (*catalogRepository)(nil)

func NewCatalogRepository(store *Store) *catalogRepository {
	return &catalogRepository{store: store}
}

func (repo *catalogRepository) QueryAllSubjects(ctx context.Context) ([]catalog.Subject, error) {
	repo.store.mu.RLock()
	defer repo.store.mu.RUnlock()
	subjects := make([]catalog.Subject, 0, len(repo.store.subjects))
	for _, subj := range repo.store.subjects {
		subjects = append(subjects, subj)
	}
	sort.Slice(subjects, func(i, j int) bool { return subjects[i].Name < subjects[j].Name })
	return subjects, nil
}

func (repo *catalogRepository) QueryAllDays(ctx context.Context) ([]catalog.Day, error) {
	repo.store.mu.RLock()
	defer repo.store.mu.RUnlock()
	days := make([]catalog.Day, 0, len(repo.store.days))
	for _, day := range repo.store.days {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Index < days[j].Index })
	return days, nil
}

func (repo *catalogRepository) FilterSubjectIDs(ctx context.Context, ids []string) ([]string, error) {
	repo.store.mu.RLock()
	defer repo.store.mu.RUnlock()
	var found []string
	for _, id := range ids {
		if _, ok := repo.store.subjects[id]; ok {
			found = append(found, id)
		}
	}
	return found, nil
}

func (repo *catalogRepository) FilterDayIDs(ctx context.Context, ids []string) ([]string, error) {
	repo.store.mu.RLock()
	defer repo.store.mu.RUnlock()
	var found []string
	for _, id := range ids {
		if _, ok := repo.store.days[id]; ok {
			found = append(found, id)
		}
	}
	return found, nil
}
