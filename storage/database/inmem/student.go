package inmemrepos

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/juku/core"
	"github.com/trezcool/juku/core/student"
)

type studentRepository struct {
	store *Store
}

var _ student.Repository = (*studentRepository)(nil)

func NewStudentRepository(store *Store) *studentRepository {
	return &studentRepository{store: store}
}

func (repo *studentRepository) QueryAllStudents(ctx context.Context, schoolID string) ([]student.Student, error) {
	repo.store.mu.RLock()
	defer repo.store.mu.RUnlock()
	var students []student.Student
	for id, std := range repo.store.students {
		if schoolID != "" && std.SchoolID != schoolID {
			continue
		}
		students = append(students, repo.loadStudent(id))
	}
	sort.Slice(students, func(i, j int) bool { return students[i].Name < students[j].Name })
	return students, nil
}

func (repo *studentRepository) GetStudent(ctx context.Context, id string, exec ...core.DBExecutor) (student.Student, error) {
	repo.store.mu.RLock()
	defer repo.store.mu.RUnlock()
	if _, ok := repo.store.students[id]; !ok {
		return student.Student{}, student.ErrNotFound
	}
	return repo.loadStudent(id), nil
}

func (repo *studentRepository) CreateStudent(ctx context.Context, std student.Student, exec ...core.DBExecutor) (student.Student, error) {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()
	std.ID = uuid.New().String()
	std.CreatedAt = time.Now().UTC()
	std.UpdatedAt = std.CreatedAt
	repo.store.students[std.ID] = std
	return std, nil
}

func (repo *studentRepository) UpdateStudent(ctx context.Context, std student.Student, exec ...core.DBExecutor) (student.Student, error) {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()
	if _, ok := repo.store.students[std.ID]; !ok {
		return student.Student{}, student.ErrNotFound
	}
	std.UpdatedAt = time.Now().UTC()
	repo.store.students[std.ID] = std
	return std, nil
}

func (repo *studentRepository) DeleteStudentsByID(ctx context.Context, ids ...string) error {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()
	for _, id := range ids {
		delete(repo.store.students, id)
		repo.deleteSubjectLinks(id)
		for linkID, link := range repo.store.studentDayLinks {
			if link.studentID == id {
				delete(repo.store.studentDayLinks, linkID)
			}
		}
	}
	return nil
}

func (repo *studentRepository) ReplaceSubjectLinks(ctx context.Context, studentID string, subjectIDs []string, exec ...core.DBExecutor) (map[string]string, error) {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()
	repo.deleteSubjectLinks(studentID)
	linkIDs := make(map[string]string, len(subjectIDs))
	for _, subjectID := range subjectIDs {
		id := uuid.New().String()
		repo.store.studentSubjectLinks[id] = subjectLink{id: id, studentID: studentID, subjectID: subjectID}
		linkIDs[subjectID] = id
	}
	return linkIDs, nil
}

func (repo *studentRepository) ReplaceDayLinks(ctx context.Context, studentID string, dayIDs []string, exec ...core.DBExecutor) error {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()
	for linkID, link := range repo.store.studentDayLinks {
		if link.studentID == studentID {
			delete(repo.store.studentDayLinks, linkID)
		}
	}
	for _, dayID := range dayIDs {
		id := uuid.New().String()
		repo.store.studentDayLinks[id] = dayLink{id: id, studentID: studentID, dayID: dayID}
	}
	return nil
}

func (repo *studentRepository) InsertAssignments(ctx context.Context, studentID string, asgs []student.Assignment, exec ...core.DBExecutor) error {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()
	for _, asg := range asgs {
		if _, ok := repo.store.studentSubjectLinks[asg.SubjectLinkID]; !ok {
			return core.NewConflictError(core.NewFieldError(
				"constraint_violation", "", "teaching assignment references a missing subject link",
			))
		}
		for _, existing := range repo.store.assignments {
			if existing.teacherID == asg.TeacherID &&
				existing.subjectLinkID == asg.SubjectLinkID &&
				existing.dayID == asg.DayID {
				return core.NewConflictError(core.NewFieldError(
					"constraint_violation", "", "duplicate teaching assignment",
				))
			}
		}
		id := uuid.New().String()
		repo.store.assignments[id] = assignmentRow{
			id:            id,
			subjectLinkID: asg.SubjectLinkID,
			teacherID:     asg.TeacherID,
			dayID:         asg.DayID,
		}
	}
	return nil
}

// deleteSubjectLinks removes a student's subject links and cascades to the
// assignments hanging off them; callers hold the store lock.
func (repo *studentRepository) deleteSubjectLinks(studentID string) {
	for linkID, link := range repo.store.studentSubjectLinks {
		if link.studentID != studentID {
			continue
		}
		delete(repo.store.studentSubjectLinks, linkID)
		for asgID, asg := range repo.store.assignments {
			if asg.subjectLinkID == linkID {
				delete(repo.store.assignments, asgID)
			}
		}
	}
}

// loadStudent returns the student with their relationship graph populated;
// callers hold the store lock.
func (repo *studentRepository) loadStudent(id string) student.Student {
	std := repo.store.students[id]

	linksByID := make(map[string]subjectLink)
	for linkID, link := range repo.store.studentSubjectLinks {
		if link.studentID == id {
			linksByID[linkID] = link
			std.Subjects = append(std.Subjects, student.CatalogInfo{
				ID:   link.subjectID,
				Name: repo.store.subjects[link.subjectID].Name,
			})
		}
	}
	sort.Slice(std.Subjects, func(i, j int) bool { return std.Subjects[i].ID < std.Subjects[j].ID })

	for _, link := range repo.store.studentDayLinks {
		if link.studentID == id {
			std.Days = append(std.Days, student.CatalogInfo{
				ID:   link.dayID,
				Name: repo.store.days[link.dayID].Name,
			})
		}
	}
	sort.Slice(std.Days, func(i, j int) bool { return std.Days[i].ID < std.Days[j].ID })

	teacherSeen := make(map[string]struct{})
	for _, asg := range repo.store.assignments {
		link, ok := linksByID[asg.subjectLinkID]
		if !ok {
			continue
		}
		std.Assignments = append(std.Assignments, student.Assignment{
			ID:            asg.id,
			TeacherID:     asg.teacherID,
			SubjectID:     link.subjectID,
			DayID:         asg.dayID,
			SubjectLinkID: asg.subjectLinkID,
		})
		if _, seen := teacherSeen[asg.teacherID]; !seen {
			teacherSeen[asg.teacherID] = struct{}{}
			if usr, ok := repo.store.users[asg.teacherID]; ok {
				std.Teachers = append(std.Teachers, student.TeacherInfo{ID: usr.ID, Name: usr.Name, Role: usr.Role})
			}
		}
	}
	sort.Slice(std.Assignments, func(i, j int) bool { return std.Assignments[i].ID < std.Assignments[j].ID })
	sort.Slice(std.Teachers, func(i, j int) bool { return std.Teachers[i].Name < std.Teachers[j].Name })
	return std
}
