package student

import (
	"database/sql/driver"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/juku/core"
)

var ErrNotFound = errors.New("student not found")

// Statuses.
const (
	StatusActive    = "active"
	StatusInactive  = "inactive"
	StatusGraduated = "graduated"
	StatusOnLeave   = "on_leave"
)

// School stages.
const (
	StageElementary = "elementary"
	StageJuniorHigh = "junior_high"
	StageHighSchool = "high_school"
)

var (
	Statuses = []string{StatusActive, StatusInactive, StatusGraduated, StatusOnLeave}
	Stages   = []string{StageElementary, StageJuniorHigh, StageHighSchool}

	// gradeRanges maps each school stage to its valid grade bounds.
	gradeRanges = map[string][2]int{
		StageElementary: {1, 6},
		StageJuniorHigh: {1, 3},
		StageHighSchool: {1, 3},
	}
)

// GradeInRange reports whether grade is valid for the given stage.
func GradeInRange(stage string, grade int) bool {
	bounds, ok := gradeRanges[stage]
	if !ok {
		return false
	}
	return bounds[0] <= grade && grade <= bounds[1]
}

// Date is a calendar date marshalled as "2006-01-02".
type Date struct {
	time.Time
}

const dateLayout = "2006-01-02"

func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func Today() Date {
	y, m, d := NowFunc().Date()
	return NewDate(y, m, d)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" || s == `""` {
		*d = Date{}
		return nil
	}
	t, err := time.Parse(`"`+dateLayout+`"`, s)
	if err != nil {
		return errors.Wrap(err, "parsing date")
	}
	*d = Date{Time: t}
	return nil
}

func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.Time, nil
}

func (d *Date) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*d = Date{}
	case time.Time:
		*d = Date{Time: v}
	case string:
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			return err
		}
		*d = Date{Time: t}
	default:
		return errors.Errorf("cannot scan %T into Date", src)
	}
	return nil
}

type (
	// TeacherInfo is the slim teacher view embedded in a loaded student.
	TeacherInfo struct {
		ID   string `db:"id" json:"id"`
		Name string `db:"name" json:"name"`
		Role string `db:"role" json:"role"`
	}

	// CatalogInfo is a resolved catalog entry (class subject or available
	// day) embedded in a loaded student.
	CatalogInfo struct {
		ID   string `db:"id" json:"id"`
		Name string `db:"name" json:"name"`
	}

	// Assignment records that a teacher teaches this student a subject on
	// a day. SubjectLinkID is the student-subject junction row the
	// assignment hangs off; it cascades away with its link.
	Assignment struct {
		ID            string `db:"id" json:"id,omitempty"`
		TeacherID     string `db:"teacher_id" json:"teacher_id"`
		SubjectID     string `db:"subject_id" json:"subject_id"`
		DayID         string `db:"day_id" json:"day_id"`
		SubjectLinkID string `db:"subject_link_id" json:"-"`
	}

	// Student is a roster student with its relationship graph loaded.
	Student struct {
		ID            string      `db:"id" json:"id"`
		SchoolID      string      `db:"school_id" json:"school_id"`
		Name          string      `db:"name" json:"name"`
		Status        string      `db:"status" json:"status"`
		SchoolStage   string      `db:"school_stage" json:"school_stage"`
		Grade         int         `db:"grade" json:"grade"`
		JoinedOn      Date        `db:"joined_on" json:"joined_on"`
		DesiredSchool null.String `db:"desired_school" json:"desired_school"`
		CreatedAt     time.Time   `db:"created_at" json:"created_at"`
		UpdatedAt     time.Time   `db:"updated_at" json:"updated_at"`

		Subjects    []CatalogInfo `db:"-" json:"class_subjects"`
		Days        []CatalogInfo `db:"-" json:"available_days"`
		Teachers    []TeacherInfo `db:"-" json:"teachers"`
		Assignments []Assignment  `db:"-" json:"teaching_assignments"`
	}

	// AssignmentRequest is one desired teaching assignment.
	AssignmentRequest struct {
		TeacherID string `json:"teacher_id" validate:"required"`
		SubjectID string `json:"subject_id" validate:"required"`
		DayID     string `json:"day_id" validate:"required"`
	}

	// RelationSet is the desired relationship graph for a student. Applying
	// it replaces whatever was there before.
	RelationSet struct {
		SubjectIDs  []string            `json:"subject_ids"`
		DayIDs      []string            `json:"available_day_ids"`
		Assignments []AssignmentRequest `json:"assignments"`
	}

	// NewStudent is the creation payload: the scalar attributes plus the
	// initial relationship graph.
	NewStudent struct {
		Name          string      `json:"name" validate:"required,max=100"`
		Status        string      `json:"status" validate:"required,studentstatus"`
		SchoolStage   string      `json:"school_stage" validate:"required,schoolstage"`
		Grade         int         `json:"grade" validate:"required"`
		JoinedOn      Date        `json:"joined_on" validate:"required"`
		DesiredSchool null.String `json:"desired_school"`
		SchoolID      string      `json:"school_id" validate:"required"`

		RelationSet
	}

	// UpdateStudent is the update payload; same shape as NewStudent minus
	// the school reference, which never moves.
	UpdateStudent struct {
		Name          string      `json:"name" validate:"required,max=100"`
		Status        string      `json:"status" validate:"required,studentstatus"`
		SchoolStage   string      `json:"school_stage" validate:"required,schoolstage"`
		Grade         int         `json:"grade" validate:"required"`
		JoinedOn      Date        `json:"joined_on" validate:"required"`
		DesiredSchool null.String `json:"desired_school"`

		RelationSet
	}
)

func (ns *NewStudent) Validate() error {
	ns.Name = core.CleanString(ns.Name)
	if err := core.TranslateValidatorErrors(core.Validate.Struct(ns)); err != nil {
		return err
	}
	return validateScalars(ns.SchoolStage, ns.Grade, ns.JoinedOn)
}

func (us *UpdateStudent) Validate() error {
	us.Name = core.CleanString(us.Name)
	if err := core.TranslateValidatorErrors(core.Validate.Struct(us)); err != nil {
		return err
	}
	return validateScalars(us.SchoolStage, us.Grade, us.JoinedOn)
}
