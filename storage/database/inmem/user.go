package inmemrepos

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/juku/core"
	"github.com/trezcool/juku/core/user"
)

type userRepository struct {
	store *Store
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(store *Store) *userRepository {
	return &userRepository{store: store}
}

func (repo *userRepository) QueryAllUsers(ctx context.Context) ([]user.User, error) {
	repo.store.mu.RLock()
	defer repo.store.mu.RUnlock()
	users := make([]user.User, 0, len(repo.store.users))
	for id := range repo.store.users {
		users = append(users, repo.loadUser(id))
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Name < users[j].Name })
	return users, nil
}

func (repo *userRepository) GetUserByID(ctx context.Context, id string, exec ...core.DBExecutor) (user.User, error) {
	repo.store.mu.RLock()
	defer repo.store.mu.RUnlock()
	if _, ok := repo.store.users[id]; !ok {
		return user.User{}, user.ErrNotFound
	}
	return repo.loadUser(id), nil
}

func (repo *userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	repo.store.mu.RLock()
	defer repo.store.mu.RUnlock()
	for id, usr := range repo.store.users {
		if usr.Email == email {
			return repo.loadUser(id), nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()
	for _, existing := range repo.store.users {
		if existing.Email == usr.Email {
			return user.User{}, core.NewConflictError(core.NewFieldError(
				"constraint_violation", "email", "email already taken",
			))
		}
	}
	usr.ID = uuid.New().String()
	usr.CreatedAt = time.Now().UTC()
	usr.UpdatedAt = usr.CreatedAt
	repo.store.users[usr.ID] = usr
	return usr, nil
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()
	if _, ok := repo.store.users[usr.ID]; !ok {
		return user.User{}, user.ErrNotFound
	}
	usr.UpdatedAt = time.Now().UTC()
	repo.store.users[usr.ID] = usr
	return usr, nil
}

func (repo *userRepository) DeleteUsersByID(ctx context.Context, ids ...string) error {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()
	for _, id := range ids {
		delete(repo.store.users, id)
		delete(repo.store.userSubjectLinks, id)
		delete(repo.store.userDayLinks, id)
	}
	return nil
}

func (repo *userRepository) SetLastLogin(ctx context.Context, usr user.User) error {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()
	stored, ok := repo.store.users[usr.ID]
	if !ok {
		return user.ErrNotFound
	}
	stored.LastLogin = usr.LastLogin
	repo.store.users[usr.ID] = stored
	return nil
}

func (repo *userRepository) CountActiveAdmins(ctx context.Context) (int, error) {
	repo.store.mu.RLock()
	defer repo.store.mu.RUnlock()
	var count int
	for _, usr := range repo.store.users {
		if usr.IsAdmin() && usr.IsActive {
			count++
		}
	}
	return count, nil
}

func (repo *userRepository) FilterTeacherIDs(ctx context.Context, ids []string, exec ...core.DBExecutor) ([]string, error) {
	repo.store.mu.RLock()
	defer repo.store.mu.RUnlock()
	var found []string
	for _, id := range ids {
		if usr, ok := repo.store.users[id]; ok && usr.CanTeach() {
			found = append(found, id)
		}
	}
	return found, nil
}

func (repo *userRepository) ReplaceSubjectLinks(ctx context.Context, userID string, subjectIDs []string, exec ...core.DBExecutor) error {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()
	repo.store.userSubjectLinks[userID] = append([]string(nil), subjectIDs...)
	return nil
}

func (repo *userRepository) ReplaceDayLinks(ctx context.Context, userID string, dayIDs []string, exec ...core.DBExecutor) error {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()
	repo.store.userDayLinks[userID] = append([]string(nil), dayIDs...)
	return nil
}

// loadUser returns the user with its link sets populated; callers hold the
// store lock.
func (repo *userRepository) loadUser(id string) user.User {
	usr := repo.store.users[id]
	usr.SubjectIDs = append([]string(nil), repo.store.userSubjectLinks[id]...)
	usr.DayIDs = append([]string(nil), repo.store.userDayLinks[id]...)
	return usr
}
