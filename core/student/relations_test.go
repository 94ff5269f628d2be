package student_test

import (
	"context"
	"reflect"
	"sort"
	"testing"

	"github.com/trezcool/juku/core"
	"github.com/trezcool/juku/core/catalog"
	"github.com/trezcool/juku/core/student"
	"github.com/trezcool/juku/core/user"
	inmemrepos "github.com/trezcool/juku/storage/database/inmem"
	testutil "github.com/trezcool/juku/tests"
)

type fixture struct {
	store   *inmemrepos.Store
	stdRepo student.Repository
	svc     *student.Service

	schoolID string
	student  student.Student
	teacher1 user.User
	teacher2 user.User
	inactive user.User

	english string
	math    string
	science string
	sunday  string
	monday  string
	tuesday string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := inmemrepos.NewStore()
	stdRepo := inmemrepos.NewStudentRepository(store)
	usrRepo := inmemrepos.NewUserRepository(store)
	svc := student.NewService(
		inmemrepos.NewDB(),
		stdRepo,
		inmemrepos.NewCatalogRepository(store),
		usrRepo,
		testutil.NewLogger(t),
	)

	sch := testutil.CreateSchool(t, inmemrepos.NewSchoolRepository(store), "Sakura Juku")
	std := testutil.CreateStudent(t, stdRepo, student.Student{
		SchoolID:    sch.ID,
		Name:        "Hanako",
		Status:      student.StatusActive,
		SchoolStage: student.StageJuniorHigh,
		Grade:       2,
		JoinedOn:    student.NewDate(2025, 4, 1),
	})

	return &fixture{
		store:    store,
		stdRepo:  stdRepo,
		svc:      svc,
		schoolID: sch.ID,
		student:  std,
		teacher1: testutil.CreateUser(t, usrRepo, "Tanaka", "tanaka@juku.jp", "", user.RoleTeacher, true),
		teacher2: testutil.CreateUser(t, usrRepo, "Suzuki", "suzuki@juku.jp", "", user.RoleAdmin, true),
		inactive: testutil.CreateUser(t, usrRepo, "Gone", "gone@juku.jp", "", user.RoleTeacher, false),
		english:  store.SubjectIDByName(catalog.SubjectEnglish),
		math:     store.SubjectIDByName(catalog.SubjectMathematics),
		science:  store.SubjectIDByName(catalog.SubjectScience),
		sunday:   store.DayIDByName(catalog.DaySunday),
		monday:   store.DayIDByName(catalog.DayMonday),
		tuesday:  store.DayIDByName(catalog.DayTuesday),
	}
}

// reload fetches the student fresh from the store.
func (f *fixture) reload(t *testing.T) student.Student {
	t.Helper()
	std, err := f.stdRepo.GetStudent(context.Background(), f.student.ID)
	if err != nil {
		t.Fatalf("GetStudent() failed: %v", err)
	}
	return std
}

func sortedIDs(ids ...string) []string {
	out := append([]string(nil), ids...)
	sort.Strings(out)
	return out
}

func linkIDs(infos []student.CatalogInfo) []string {
	ids := make([]string, 0, len(infos))
	for _, info := range infos {
		ids = append(ids, info.ID)
	}
	return ids
}

type asgKey struct{ teacherID, subjectID, dayID string }

func assignmentKeys(asgs []student.Assignment) []asgKey {
	keys := make([]asgKey, 0, len(asgs))
	for _, a := range asgs {
		keys = append(keys, asgKey{a.TeacherID, a.SubjectID, a.DayID})
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].teacherID != keys[j].teacherID {
			return keys[i].teacherID < keys[j].teacherID
		}
		if keys[i].subjectID != keys[j].subjectID {
			return keys[i].subjectID < keys[j].subjectID
		}
		return keys[i].dayID < keys[j].dayID
	})
	return keys
}

// firstFieldError pulls the leading FieldError out of the engine error
// types; the bool reports whether err carried one.
func firstFieldError(err error) (core.FieldError, bool) {
	switch {
	case err == nil:
		return core.FieldError{}, false
	default:
		if v, ok := core.IsInvalidInputError(err); ok && len(v.Errors) > 0 {
			return v.Errors[0], true
		}
		if v, ok := core.IsNotFoundError(err); ok && len(v.Errors) > 0 {
			return v.Errors[0], true
		}
		if v, ok := core.IsConflictError(err); ok && len(v.Errors) > 0 {
			return v.Errors[0], true
		}
		return core.FieldError{}, false
	}
}

func TestService_SetRelations(t *testing.T) {
	ctx := context.Background()

	type errKind int
	const (
		kindNone errKind = iota
		kindInvalidInput
		kindNotFound
	)

	tests := []struct {
		name     string
		rels     func(f *fixture) student.RelationSet
		wantKind errKind
		wantCode string
	}{
		{
			name: "full graph",
			rels: func(f *fixture) student.RelationSet {
				return student.RelationSet{
					SubjectIDs: []string{f.english, f.math},
					DayIDs:     []string{f.sunday, f.monday},
					Assignments: []student.AssignmentRequest{
						{TeacherID: f.teacher1.ID, SubjectID: f.english, DayID: f.sunday},
						{TeacherID: f.teacher2.ID, SubjectID: f.math, DayID: f.monday},
					},
				}
			},
		},
		{
			name: "admin may teach",
			rels: func(f *fixture) student.RelationSet {
				return student.RelationSet{
					SubjectIDs: []string{f.english},
					DayIDs:     []string{f.sunday},
					Assignments: []student.AssignmentRequest{
						{TeacherID: f.teacher2.ID, SubjectID: f.english, DayID: f.sunday},
					},
				}
			},
		},
		{
			name: "duplicate ids collapse",
			rels: func(f *fixture) student.RelationSet {
				return student.RelationSet{
					SubjectIDs: []string{f.english, f.english, f.math},
					DayIDs:     []string{f.sunday, f.sunday},
					Assignments: []student.AssignmentRequest{
						{TeacherID: f.teacher1.ID, SubjectID: f.english, DayID: f.sunday},
						{TeacherID: f.teacher1.ID, SubjectID: f.english, DayID: f.sunday},
					},
				}
			},
		},
		{
			name: "no subjects",
			rels: func(f *fixture) student.RelationSet {
				return student.RelationSet{
					DayIDs: []string{f.sunday},
					Assignments: []student.AssignmentRequest{
						{TeacherID: f.teacher1.ID, SubjectID: f.english, DayID: f.sunday},
					},
				}
			},
			wantKind: kindInvalidInput,
			wantCode: "subject_ids_empty",
		},
		{
			name: "no subjects and no days reports subjects first",
			rels: func(f *fixture) student.RelationSet {
				return student.RelationSet{}
			},
			wantKind: kindInvalidInput,
			wantCode: "subject_ids_empty",
		},
		{
			name: "no days",
			rels: func(f *fixture) student.RelationSet {
				return student.RelationSet{
					SubjectIDs: []string{f.english},
					Assignments: []student.AssignmentRequest{
						{TeacherID: f.teacher1.ID, SubjectID: f.english, DayID: f.sunday},
					},
				}
			},
			wantKind: kindInvalidInput,
			wantCode: "available_day_ids_empty",
		},
		{
			name: "unknown subject rejects the whole set",
			rels: func(f *fixture) student.RelationSet {
				return student.RelationSet{
					SubjectIDs: []string{f.english, "9f9f9f9f-0000-4000-8000-000000000000"},
					DayIDs:     []string{f.sunday},
					Assignments: []student.AssignmentRequest{
						{TeacherID: f.teacher1.ID, SubjectID: f.english, DayID: f.sunday},
					},
				}
			},
			wantKind: kindNotFound,
			wantCode: "missing_subject_ids",
		},
		{
			name: "unknown day rejects the whole set",
			rels: func(f *fixture) student.RelationSet {
				return student.RelationSet{
					SubjectIDs: []string{f.english},
					DayIDs:     []string{f.sunday, "9f9f9f9f-0000-4000-8000-000000000000"},
					Assignments: []student.AssignmentRequest{
						{TeacherID: f.teacher1.ID, SubjectID: f.english, DayID: f.sunday},
					},
				}
			},
			wantKind: kindNotFound,
			wantCode: "missing_available_day_ids",
		},
		{
			name: "no assignments",
			rels: func(f *fixture) student.RelationSet {
				return student.RelationSet{
					SubjectIDs: []string{f.english},
					DayIDs:     []string{f.sunday},
				}
			},
			wantKind: kindInvalidInput,
			wantCode: "assignments_empty",
		},
		{
			name: "assignment subject outside the subject set",
			rels: func(f *fixture) student.RelationSet {
				return student.RelationSet{
					SubjectIDs: []string{f.english},
					DayIDs:     []string{f.sunday},
					Assignments: []student.AssignmentRequest{
						{TeacherID: f.teacher1.ID, SubjectID: f.math, DayID: f.sunday},
					},
				}
			},
			wantKind: kindInvalidInput,
			wantCode: "assignment_subject_not_linked",
		},
		{
			name: "unknown teacher",
			rels: func(f *fixture) student.RelationSet {
				return student.RelationSet{
					SubjectIDs: []string{f.english},
					DayIDs:     []string{f.sunday},
					Assignments: []student.AssignmentRequest{
						{TeacherID: "9f9f9f9f-0000-4000-8000-000000000000", SubjectID: f.english, DayID: f.sunday},
					},
				}
			},
			wantKind: kindNotFound,
			wantCode: "missing_teacher",
		},
		{
			name: "inactive teacher does not qualify",
			rels: func(f *fixture) student.RelationSet {
				return student.RelationSet{
					SubjectIDs: []string{f.english},
					DayIDs:     []string{f.sunday},
					Assignments: []student.AssignmentRequest{
						{TeacherID: f.inactive.ID, SubjectID: f.english, DayID: f.sunday},
					},
				}
			},
			wantKind: kindNotFound,
			wantCode: "missing_teacher",
		},
		{
			name: "assignment day outside the day set",
			rels: func(f *fixture) student.RelationSet {
				return student.RelationSet{
					SubjectIDs: []string{f.english},
					DayIDs:     []string{f.sunday},
					Assignments: []student.AssignmentRequest{
						{TeacherID: f.teacher1.ID, SubjectID: f.english, DayID: f.monday},
					},
				}
			},
			wantKind: kindNotFound,
			wantCode: "missing_day",
		},
		{
			name: "subject check precedes teacher check",
			rels: func(f *fixture) student.RelationSet {
				return student.RelationSet{
					SubjectIDs: []string{f.english},
					DayIDs:     []string{f.sunday},
					Assignments: []student.AssignmentRequest{
						{TeacherID: "9f9f9f9f-0000-4000-8000-000000000000", SubjectID: f.math, DayID: f.monday},
					},
				}
			},
			wantKind: kindInvalidInput,
			wantCode: "assignment_subject_not_linked",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			rels := tt.rels(f)

			err := f.svc.SetRelations(ctx, f.student.ID, rels)

			switch tt.wantKind {
			case kindNone:
				if err != nil {
					t.Fatalf("SetRelations() unexpected error: %v", err)
				}
				std := f.reload(t)
				wantSubjects := sortedIDs(dedupe(rels.SubjectIDs)...)
				if got := linkIDs(std.Subjects); !reflect.DeepEqual(got, wantSubjects) {
					t.Errorf("subject links = %v, want %v", got, wantSubjects)
				}
				wantDays := sortedIDs(dedupe(rels.DayIDs)...)
				if got := linkIDs(std.Days); !reflect.DeepEqual(got, wantDays) {
					t.Errorf("day links = %v, want %v", got, wantDays)
				}
				wantAsgs := make(map[asgKey]struct{})
				for _, a := range rels.Assignments {
					wantAsgs[asgKey{a.TeacherID, a.SubjectID, a.DayID}] = struct{}{}
				}
				gotAsgs := assignmentKeys(std.Assignments)
				if len(gotAsgs) != len(wantAsgs) {
					t.Fatalf("assignments = %d, want %d", len(gotAsgs), len(wantAsgs))
				}
				for _, key := range gotAsgs {
					if _, ok := wantAsgs[key]; !ok {
						t.Errorf("unexpected assignment %v", key)
					}
				}
			case kindInvalidInput:
				if _, ok := core.IsInvalidInputError(err); !ok {
					t.Fatalf("SetRelations() error = %v, want InvalidInputError", err)
				}
			case kindNotFound:
				if _, ok := core.IsNotFoundError(err); !ok {
					t.Fatalf("SetRelations() error = %v, want NotFoundError", err)
				}
			}
			if tt.wantCode != "" {
				fe, ok := firstFieldError(err)
				if !ok {
					t.Fatalf("SetRelations() error = %v, want field error %s", err, tt.wantCode)
				}
				if fe.Code != tt.wantCode {
					t.Errorf("error code = %s, want %s", fe.Code, tt.wantCode)
				}
			}
			if tt.wantKind != kindNone {
				// a rejected graph must leave the store untouched
				std := f.reload(t)
				if len(std.Subjects) != 0 || len(std.Days) != 0 || len(std.Assignments) != 0 {
					t.Errorf("rejected graph touched the store: %+v", std)
				}
			}
		})
	}
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	var out []string
	for _, id := range ids {
		if _, ok := seen[id]; !ok && id != "" {
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}

func TestService_SetRelations_replacesPreviousGraph(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	first := student.RelationSet{
		SubjectIDs: []string{f.english, f.math},
		DayIDs:     []string{f.sunday, f.monday},
		Assignments: []student.AssignmentRequest{
			{TeacherID: f.teacher1.ID, SubjectID: f.english, DayID: f.sunday},
			{TeacherID: f.teacher2.ID, SubjectID: f.math, DayID: f.monday},
		},
	}
	if err := f.svc.SetRelations(ctx, f.student.ID, first); err != nil {
		t.Fatalf("SetRelations() failed: %v", err)
	}

	second := student.RelationSet{
		SubjectIDs: []string{f.math, f.science},
		DayIDs:     []string{f.tuesday},
		Assignments: []student.AssignmentRequest{
			{TeacherID: f.teacher1.ID, SubjectID: f.science, DayID: f.tuesday},
		},
	}
	if err := f.svc.SetRelations(ctx, f.student.ID, second); err != nil {
		t.Fatalf("SetRelations() failed: %v", err)
	}

	std := f.reload(t)
	if want := sortedIDs(f.math, f.science); !reflect.DeepEqual(linkIDs(std.Subjects), want) {
		t.Errorf("subject links = %v, want %v", linkIDs(std.Subjects), want)
	}
	if want := []string{f.tuesday}; !reflect.DeepEqual(linkIDs(std.Days), want) {
		t.Errorf("day links = %v, want %v", linkIDs(std.Days), want)
	}
	if len(std.Assignments) != 1 {
		t.Fatalf("assignments = %d, want 1", len(std.Assignments))
	}
	got := std.Assignments[0]
	if got.TeacherID != f.teacher1.ID || got.SubjectID != f.science || got.DayID != f.tuesday {
		t.Errorf("assignment = %+v, want science/tuesday by %s", got, f.teacher1.ID)
	}
	if len(std.Teachers) != 1 || std.Teachers[0].ID != f.teacher1.ID {
		t.Errorf("teachers = %+v, want only %s", std.Teachers, f.teacher1.ID)
	}
}

func TestService_SetRelations_idempotentReplay(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	rels := student.RelationSet{
		SubjectIDs: []string{f.english},
		DayIDs:     []string{f.sunday},
		Assignments: []student.AssignmentRequest{
			{TeacherID: f.teacher1.ID, SubjectID: f.english, DayID: f.sunday},
		},
	}
	if err := f.svc.SetRelations(ctx, f.student.ID, rels); err != nil {
		t.Fatalf("SetRelations() failed: %v", err)
	}
	if err := f.svc.SetRelations(ctx, f.student.ID, rels); err != nil {
		t.Fatalf("SetRelations() replay failed: %v", err)
	}

	std := f.reload(t)
	if len(std.Subjects) != 1 || len(std.Days) != 1 || len(std.Assignments) != 1 {
		t.Errorf("replay duplicated rows: %d subjects, %d days, %d assignments",
			len(std.Subjects), len(std.Days), len(std.Assignments))
	}
}

func TestService_SetRelations_unknownStudent(t *testing.T) {
	f := newFixture(t)

	err := f.svc.SetRelations(context.Background(), "9f9f9f9f-0000-4000-8000-000000000000", student.RelationSet{
		SubjectIDs: []string{f.english},
		DayIDs:     []string{f.sunday},
		Assignments: []student.AssignmentRequest{
			{TeacherID: f.teacher1.ID, SubjectID: f.english, DayID: f.sunday},
		},
	})
	if err != student.ErrNotFound {
		t.Errorf("SetRelations() error = %v, want %v", err, student.ErrNotFound)
	}
}
