package catalog

import "context"

// Canonical subject names. The class_subjects catalog is seeded with exactly
// this set.
const (
	SubjectEnglish       = "english"
	SubjectJapanese      = "japanese"
	SubjectMathematics   = "mathematics"
	SubjectScience       = "science"
	SubjectSocialStudies = "social_studies"
)

// Canonical day names, ordered Sunday first. The available_days catalog is
// seeded with exactly this set.
const (
	DaySunday    = "sunday"
	DayMonday    = "monday"
	DayTuesday   = "tuesday"
	DayWednesday = "wednesday"
	DayThursday  = "thursday"
	DayFriday    = "friday"
	DaySaturday  = "saturday"
)

var (
	SubjectNames = []string{
		SubjectEnglish, SubjectJapanese, SubjectMathematics,
		SubjectScience, SubjectSocialStudies,
	}
	DayNames = []string{
		DaySunday, DayMonday, DayTuesday, DayWednesday,
		DayThursday, DayFriday, DaySaturday,
	}
)

type (
	// Subject is a teachable class subject.
	Subject struct {
		ID   string `db:"id" json:"id"`
		Name string `db:"name" json:"name"`
	}

	// Day is a weekday the school operates on. Index orders the week,
	// Sunday being 0.
	Day struct {
		ID    string `db:"id" json:"id"`
		Name  string `db:"name" json:"name"`
		Index int    `db:"index" json:"index"`
	}

	// Repository is the catalog's persistence contract. The catalogs are
	// read-only at runtime; rows are created by migrations.
	Repository interface {
		QueryAllSubjects(ctx context.Context) ([]Subject, error)
		QueryAllDays(ctx context.Context) ([]Day, error)
		// FilterSubjectIDs returns the subset of ids that exist in the
		// class_subjects catalog.
		FilterSubjectIDs(ctx context.Context, ids []string) ([]string, error)
		// FilterDayIDs returns the subset of ids that exist in the
		// available_days catalog.
		FilterDayIDs(ctx context.Context, ids []string) ([]string, error)
	}
)
