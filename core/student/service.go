package student

import (
	"context"

	"github.com/trezcool/juku/core"
	"github.com/trezcool/juku/core/catalog"
)

type (
	// Repository is the student persistence contract. Methods take an
	// optional DBExecutor override so they can run inside a caller-owned
	// transaction.
	Repository interface {
		QueryAllStudents(ctx context.Context, schoolID string) ([]Student, error)
		// GetStudent loads the student with its subject, day, teacher and
		// assignment associations populated.
		GetStudent(ctx context.Context, id string, exec ...core.DBExecutor) (Student, error)
		CreateStudent(ctx context.Context, std Student, exec ...core.DBExecutor) (Student, error)
		UpdateStudent(ctx context.Context, std Student, exec ...core.DBExecutor) (Student, error)
		DeleteStudentsByID(ctx context.Context, ids ...string) error

		// ReplaceSubjectLinks deletes the student's subject link rows
		// (cascading to their assignments) and inserts a fresh set. It
		// returns the subject ID to link row ID mapping of the new set.
		ReplaceSubjectLinks(ctx context.Context, studentID string, subjectIDs []string, exec ...core.DBExecutor) (map[string]string, error)
		// ReplaceDayLinks deletes the student's day link rows and inserts
		// a fresh set.
		ReplaceDayLinks(ctx context.Context, studentID string, dayIDs []string, exec ...core.DBExecutor) error
		// InsertAssignments inserts the assignment rows; each must carry a
		// resolved SubjectLinkID.
		InsertAssignments(ctx context.Context, studentID string, asgs []Assignment, exec ...core.DBExecutor) error
	}

	// TeacherDirectory is the slice of the user store the engine needs.
	TeacherDirectory interface {
		FilterTeacherIDs(ctx context.Context, ids []string, exec ...core.DBExecutor) ([]string, error)
	}

	Service struct {
		db       core.DB
		repo     Repository
		catRepo  catalog.Repository
		teachers TeacherDirectory
		logger   core.Logger
	}
)

func NewService(db core.DB, repo Repository, catRepo catalog.Repository, teachers TeacherDirectory, logger core.Logger) *Service {
	return &Service{
		db:       db,
		repo:     repo,
		catRepo:  catRepo,
		teachers: teachers,
		logger:   logger,
	}
}

func (svc *Service) QueryAll(ctx context.Context, schoolID string) ([]Student, error) {
	return svc.repo.QueryAllStudents(ctx, schoolID)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Student, error) {
	return svc.repo.GetStudent(ctx, id)
}

// Create persists a new student and their relationship graph in one
// transaction, then reloads the student with all associations populated.
func (svc *Service) Create(ctx context.Context, ns NewStudent) (Student, error) {
	if err := ns.Validate(); err != nil {
		return Student{}, err
	}
	rels, err := svc.checkRelations(ctx, ns.RelationSet)
	if err != nil {
		return Student{}, err
	}

	std := Student{
		SchoolID:      ns.SchoolID,
		Name:          ns.Name,
		Status:        ns.Status,
		SchoolStage:   ns.SchoolStage,
		Grade:         ns.Grade,
		JoinedOn:      ns.JoinedOn,
		DesiredSchool: ns.DesiredSchool,
	}
	err = core.Atomic(ctx, svc.db, func(tx core.DBTransactor) error {
		if std, err = svc.repo.CreateStudent(ctx, std, tx); err != nil {
			return err
		}
		return svc.applyRelations(ctx, std.ID, rels, tx)
	})
	if err != nil {
		return Student{}, err
	}
	return svc.repo.GetStudent(ctx, std.ID)
}

// Update persists the student's scalar attributes and replaces their
// relationship graph in one transaction, then reloads the student.
func (svc *Service) Update(ctx context.Context, id string, us UpdateStudent) (Student, error) {
	if err := us.Validate(); err != nil {
		return Student{}, err
	}
	std, err := svc.repo.GetStudent(ctx, id)
	if err != nil {
		return Student{}, err
	}
	rels, err := svc.checkRelations(ctx, us.RelationSet)
	if err != nil {
		return Student{}, err
	}

	std.Name = us.Name
	std.Status = us.Status
	std.SchoolStage = us.SchoolStage
	std.Grade = us.Grade
	std.JoinedOn = us.JoinedOn
	std.DesiredSchool = us.DesiredSchool
	err = core.Atomic(ctx, svc.db, func(tx core.DBTransactor) error {
		if std, err = svc.repo.UpdateStudent(ctx, std, tx); err != nil {
			return err
		}
		return svc.applyRelations(ctx, std.ID, rels, tx)
	})
	if err != nil {
		return Student{}, err
	}
	return svc.repo.GetStudent(ctx, std.ID)
}

// SetRelations validates and atomically replaces the student's relationship
// graph without touching their scalar attributes.
func (svc *Service) SetRelations(ctx context.Context, studentID string, rels RelationSet) error {
	if _, err := svc.repo.GetStudent(ctx, studentID); err != nil {
		return err
	}
	normalized, err := svc.checkRelations(ctx, rels)
	if err != nil {
		return err
	}
	return core.Atomic(ctx, svc.db, func(tx core.DBTransactor) error {
		return svc.applyRelations(ctx, studentID, normalized, tx)
	})
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteStudentsByID(ctx, ids...)
}
