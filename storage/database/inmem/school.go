package inmemrepos

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/juku/core"
	"github.com/trezcool/juku/core/school"
)

type schoolRepository struct {
	store *Store
}

var _ school.Repository = (*schoolRepository)(nil)

func NewSchoolRepository(store *Store) *schoolRepository {
	return &schoolRepository{store: store}
}

func (repo *schoolRepository) QueryAllSchools(ctx context.Context) ([]school.School, error) {
	repo.store.mu.RLock()
	defer repo.store.mu.RUnlock()
	schools := make([]school.School, 0, len(repo.store.schools))
	for _, sch := range repo.store.schools {
		schools = append(schools, sch)
	}
	sort.Slice(schools, func(i, j int) bool { return schools[i].Name < schools[j].Name })
	return schools, nil
}

func (repo *schoolRepository) GetSchool(ctx context.Context, id string, exec ...core.DBExecutor) (school.School, error) {
	repo.store.mu.RLock()
	defer repo.store.mu.RUnlock()
	sch, ok := repo.store.schools[id]
	if !ok {
		return school.School{}, school.ErrNotFound
	}
	return sch, nil
}

func (repo *schoolRepository) CreateSchool(ctx context.Context, sch school.School, exec ...core.DBExecutor) (school.School, error) {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()
	sch.ID = uuid.New().String()
	sch.CreatedAt = time.Now().UTC()
	sch.UpdatedAt = sch.CreatedAt
	repo.store.schools[sch.ID] = sch
	return sch, nil
}

func (repo *schoolRepository) UpdateSchool(ctx context.Context, sch school.School, exec ...core.DBExecutor) (school.School, error) {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()
	if _, ok := repo.store.schools[sch.ID]; !ok {
		return school.School{}, school.ErrNotFound
	}
	sch.UpdatedAt = time.Now().UTC()
	repo.store.schools[sch.ID] = sch
	return sch, nil
}
