// Package inmemrepos provides map-backed repositories for tests and local
// development without a database.
package inmemrepos

import (
	"sync"

	"github.com/google/uuid"

	"github.com/trezcool/juku/core/catalog"
	"github.com/trezcool/juku/core/school"
	"github.com/trezcool/juku/core/student"
	"github.com/trezcool/juku/core/user"
)

type (
	subjectLink struct {
		id        string
		studentID string
		subjectID string
	}

	dayLink struct {
		id        string
		studentID string
		dayID     string
	}

	assignmentRow struct {
		id            string
		subjectLinkID string
		teacherID     string
		dayID         string
	}

	// Store holds all tables behind one lock, mirroring the relational
	// layout so link and assignment rows cascade the same way.
	Store struct {
		mu sync.RWMutex

		subjects map[string]catalog.Subject
		days     map[string]catalog.Day

		users    map[string]user.User
		schools  map[string]school.School
		students map[string]student.Student

		userSubjectLinks map[string][]string
		userDayLinks     map[string][]string

		studentSubjectLinks map[string]subjectLink
		studentDayLinks     map[string]dayLink
		assignments         map[string]assignmentRow

		traits map[string]student.Trait
		notes  map[string]student.LessonNote
	}
)

// NewStore returns a Store with the subject and day catalogs seeded.
func NewStore() *Store {
	s := &Store{
		subjects:            make(map[string]catalog.Subject),
		days:                make(map[string]catalog.Day),
		users:               make(map[string]user.User),
		schools:             make(map[string]school.School),
		students:            make(map[string]student.Student),
		userSubjectLinks:    make(map[string][]string),
		userDayLinks:        make(map[string][]string),
		studentSubjectLinks: make(map[string]subjectLink),
		studentDayLinks:     make(map[string]dayLink),
		assignments:         make(map[string]assignmentRow),
		traits:              make(map[string]student.Trait),
		notes:               make(map[string]student.LessonNote),
	}
	for _, name := range catalog.SubjectNames {
		id := uuid.New().String()
		s.subjects[id] = catalog.Subject{ID: id, Name: name}
	}
	for i, name := range catalog.DayNames {
		id := uuid.New().String()
		s.days[id] = catalog.Day{ID: id, Name: name, Index: i}
	}
	return s
}

// SubjectIDByName resolves a seeded catalog subject; test helper.
func (s *Store) SubjectIDByName(name string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for id, subj := range s.subjects {
		if subj.Name == name {
			return id
		}
	}
	return ""
}

// DayIDByName resolves a seeded catalog day; test helper.
func (s *Store) DayIDByName(name string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for id, day := range s.days {
		if day.Name == name {
			return id
		}
	}
	return ""
}
