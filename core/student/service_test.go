package student_test

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/juku/core"
	"github.com/trezcool/juku/core/student"
)

func TestService_Create(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	ns := student.NewStudent{
		Name:          "Taro",
		Status:        student.StatusActive,
		SchoolStage:   student.StageHighSchool,
		Grade:         1,
		JoinedOn:      student.NewDate(2025, 4, 1),
		DesiredSchool: null.StringFrom("Todai"),
		SchoolID:      f.schoolID,
		RelationSet: student.RelationSet{
			SubjectIDs: []string{f.english, f.math},
			DayIDs:     []string{f.sunday, f.monday},
			Assignments: []student.AssignmentRequest{
				{TeacherID: f.teacher1.ID, SubjectID: f.english, DayID: f.sunday},
				{TeacherID: f.teacher2.ID, SubjectID: f.math, DayID: f.monday},
			},
		},
	}
	std, err := f.svc.Create(ctx, ns)
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if std.ID == "" {
		t.Error("Create() returned no ID")
	}
	if std.Name != "Taro" || std.Grade != 1 || std.DesiredSchool.String != "Todai" {
		t.Errorf("Create() returned %+v", std)
	}
	if want := sortedIDs(f.english, f.math); !reflect.DeepEqual(linkIDs(std.Subjects), want) {
		t.Errorf("subject links = %v, want %v", linkIDs(std.Subjects), want)
	}
	if want := sortedIDs(f.sunday, f.monday); !reflect.DeepEqual(linkIDs(std.Days), want) {
		t.Errorf("day links = %v, want %v", linkIDs(std.Days), want)
	}
	if len(std.Assignments) != 2 {
		t.Errorf("assignments = %d, want 2", len(std.Assignments))
	}
	if len(std.Teachers) != 2 {
		t.Errorf("teachers = %d, want 2", len(std.Teachers))
	}
}

func TestService_Create_invalidGraphCreatesNothing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	ns := student.NewStudent{
		Name:        "Taro",
		Status:      student.StatusActive,
		SchoolStage: student.StageHighSchool,
		Grade:       1,
		JoinedOn:    student.NewDate(2025, 4, 1),
		SchoolID:    f.schoolID,
		RelationSet: student.RelationSet{
			SubjectIDs: []string{f.english},
			DayIDs:     []string{f.sunday},
			Assignments: []student.AssignmentRequest{
				{TeacherID: f.teacher1.ID, SubjectID: f.math, DayID: f.sunday},
			},
		},
	}
	if _, err := f.svc.Create(ctx, ns); err == nil {
		t.Fatal("Create() succeeded with an invalid graph")
	}

	students, err := f.svc.QueryAll(ctx, f.schoolID)
	if err != nil {
		t.Fatalf("QueryAll() failed: %v", err)
	}
	// only the fixture student remains
	if len(students) != 1 {
		t.Errorf("students = %d, want 1", len(students))
	}
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	if err := f.svc.SetRelations(ctx, f.student.ID, student.RelationSet{
		SubjectIDs: []string{f.english},
		DayIDs:     []string{f.sunday},
		Assignments: []student.AssignmentRequest{
			{TeacherID: f.teacher1.ID, SubjectID: f.english, DayID: f.sunday},
		},
	}); err != nil {
		t.Fatalf("SetRelations() failed: %v", err)
	}

	us := student.UpdateStudent{
		Name:        "Hanako Y.",
		Status:      student.StatusOnLeave,
		SchoolStage: student.StageJuniorHigh,
		Grade:       3,
		JoinedOn:    student.NewDate(2025, 4, 1),
		RelationSet: student.RelationSet{
			SubjectIDs: []string{f.science},
			DayIDs:     []string{f.tuesday},
			Assignments: []student.AssignmentRequest{
				{TeacherID: f.teacher2.ID, SubjectID: f.science, DayID: f.tuesday},
			},
		},
	}
	std, err := f.svc.Update(ctx, f.student.ID, us)
	if err != nil {
		t.Fatalf("Update() failed: %v", err)
	}
	if std.Name != "Hanako Y." || std.Status != student.StatusOnLeave || std.Grade != 3 {
		t.Errorf("Update() returned %+v", std)
	}
	if want := []string{f.science}; !reflect.DeepEqual(linkIDs(std.Subjects), want) {
		t.Errorf("subject links = %v, want %v", linkIDs(std.Subjects), want)
	}
	if want := []string{f.tuesday}; !reflect.DeepEqual(linkIDs(std.Days), want) {
		t.Errorf("day links = %v, want %v", linkIDs(std.Days), want)
	}
	if len(std.Assignments) != 1 || std.Assignments[0].TeacherID != f.teacher2.ID {
		t.Errorf("assignments = %+v", std.Assignments)
	}
}

func TestService_Update_unknownStudent(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Update(context.Background(), "9f9f9f9f-0000-4000-8000-000000000000", student.UpdateStudent{
		Name:        "Nobody",
		Status:      student.StatusActive,
		SchoolStage: student.StageElementary,
		Grade:       4,
		JoinedOn:    student.NewDate(2025, 4, 1),
		RelationSet: student.RelationSet{
			SubjectIDs: []string{f.english},
			DayIDs:     []string{f.sunday},
			Assignments: []student.AssignmentRequest{
				{TeacherID: f.teacher1.ID, SubjectID: f.english, DayID: f.sunday},
			},
		},
	})
	if err != student.ErrNotFound {
		t.Errorf("Update() error = %v, want %v", err, student.ErrNotFound)
	}
}

func TestService_Delete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	if err := f.svc.Delete(ctx, f.student.ID); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if _, err := f.svc.GetByID(ctx, f.student.ID); err != student.ErrNotFound {
		t.Errorf("GetByID() error = %v, want %v", err, student.ErrNotFound)
	}
}

func TestNewStudent_Validate(t *testing.T) {
	origNowFunc := student.NowFunc
	defer func() { student.NowFunc = origNowFunc }()
	student.NowFunc = func() time.Time { return time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC) }

	valid := func() student.NewStudent {
		return student.NewStudent{
			Name:        "Taro",
			Status:      student.StatusActive,
			SchoolStage: student.StageElementary,
			Grade:       5,
			JoinedOn:    student.NewDate(2025, 4, 1),
			SchoolID:    "b2a7e9be-72ef-4f0b-9a0e-43a7f5f5a000",
		}
	}

	tests := []struct {
		name     string
		mutate   func(ns *student.NewStudent)
		wantCode string
	}{
		{name: "valid", mutate: func(ns *student.NewStudent) {}},
		{
			name:     "name required",
			mutate:   func(ns *student.NewStudent) { ns.Name = " " },
			wantCode: "required",
		},
		{
			name:     "bad status",
			mutate:   func(ns *student.NewStudent) { ns.Status = "enrolled" },
			wantCode: "studentstatus",
		},
		{
			name:     "bad stage",
			mutate:   func(ns *student.NewStudent) { ns.SchoolStage = "university" },
			wantCode: "schoolstage",
		},
		{
			name:     "grade above stage range",
			mutate:   func(ns *student.NewStudent) { ns.Grade = 7 },
			wantCode: "grade_out_of_range",
		},
		{
			name: "grade above junior high range",
			mutate: func(ns *student.NewStudent) {
				ns.SchoolStage = student.StageJuniorHigh
				ns.Grade = 4
			},
			wantCode: "grade_out_of_range",
		},
		{
			name:     "join date in the future",
			mutate:   func(ns *student.NewStudent) { ns.JoinedOn = student.NewDate(2026, 1, 1) },
			wantCode: "joined_on_in_future",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ns := valid()
			tt.mutate(&ns)

			err := ns.Validate()
			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}
			vErr, ok := core.IsValidationError(err)
			if !ok {
				t.Fatalf("Validate() error = %v, want ValidationError", err)
			}
			for _, fe := range vErr.Errors {
				if fe.Code == tt.wantCode {
					return
				}
			}
			t.Errorf("Validate() errors = %v, want code %s", vErr.Errors, tt.wantCode)
		})
	}
}
