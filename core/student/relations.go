package student

import (
	"context"
	"fmt"

	"github.com/trezcool/juku/core"
)

// relationSet is a RelationSet after normalization: the ID lists are
// deduplicated and identical assignment triples collapsed. Duplicates are
// dropped rather than rejected so callers are never failed over an
// incidental repeat.
type relationSet struct {
	subjectIDs  []string
	dayIDs      []string
	assignments []AssignmentRequest

	subjectSet map[string]struct{}
	daySet     map[string]struct{}
}

func normalizeRelations(rels RelationSet) relationSet {
	norm := relationSet{
		subjectSet: make(map[string]struct{}, len(rels.SubjectIDs)),
		daySet:     make(map[string]struct{}, len(rels.DayIDs)),
	}
	for _, id := range rels.SubjectIDs {
		if _, seen := norm.subjectSet[id]; !seen && id != "" {
			norm.subjectSet[id] = struct{}{}
			norm.subjectIDs = append(norm.subjectIDs, id)
		}
	}
	for _, id := range rels.DayIDs {
		if _, seen := norm.daySet[id]; !seen && id != "" {
			norm.daySet[id] = struct{}{}
			norm.dayIDs = append(norm.dayIDs, id)
		}
	}
	seenTriples := make(map[AssignmentRequest]struct{}, len(rels.Assignments))
	for _, asg := range rels.Assignments {
		if _, seen := seenTriples[asg]; !seen {
			seenTriples[asg] = struct{}{}
			norm.assignments = append(norm.assignments, asg)
		}
	}
	return norm
}

// checkRelations normalizes and validates the desired relationship graph.
// All checks run before any transaction opens; the first violation wins:
//  1. the deduplicated subject and day sets must be non-empty;
//  2. every subject/day ID must exist in its catalog; the whole set is
//     rejected when any ID is unknown;
//  3. the assignment list must be non-empty;
//  4. each assignment's subject must be in the student's subject set, its
//     teacher must exist, and its day must be in the student's day set.
func (svc *Service) checkRelations(ctx context.Context, rels RelationSet) (relationSet, error) {
	norm := normalizeRelations(rels)

	if len(norm.subjectIDs) == 0 {
		return norm, core.NewInvalidInputError(core.NewFieldError(
			"subject_ids_empty", "subject_ids", "at least one class subject is required",
		))
	}
	if len(norm.dayIDs) == 0 {
		return norm, core.NewInvalidInputError(core.NewFieldError(
			"available_day_ids_empty", "available_day_ids", "at least one available day is required",
		))
	}

	foundSubjects, err := svc.catRepo.FilterSubjectIDs(ctx, norm.subjectIDs)
	if err != nil {
		return norm, err
	}
	if missing := missingIDs(norm.subjectIDs, foundSubjects); len(missing) > 0 {
		return norm, core.NewNotFoundError(core.NewFieldError(
			"missing_subject_ids", "subject_ids",
			fmt.Sprintf("unknown class subjects: %v", missing),
		))
	}
	foundDays, err := svc.catRepo.FilterDayIDs(ctx, norm.dayIDs)
	if err != nil {
		return norm, err
	}
	if missing := missingIDs(norm.dayIDs, foundDays); len(missing) > 0 {
		return norm, core.NewNotFoundError(core.NewFieldError(
			"missing_available_day_ids", "available_day_ids",
			fmt.Sprintf("unknown available days: %v", missing),
		))
	}

	if len(norm.assignments) == 0 {
		return norm, core.NewInvalidInputError(core.NewFieldError(
			"assignments_empty", "assignments", "at least one teaching assignment is required",
		))
	}

	teacherIDs := make([]string, 0, len(norm.assignments))
	seen := make(map[string]struct{}, len(norm.assignments))
	for _, asg := range norm.assignments {
		if _, ok := seen[asg.TeacherID]; !ok {
			seen[asg.TeacherID] = struct{}{}
			teacherIDs = append(teacherIDs, asg.TeacherID)
		}
	}
	foundTeachers, err := svc.teachers.FilterTeacherIDs(ctx, teacherIDs)
	if err != nil {
		return norm, err
	}
	teacherSet := make(map[string]struct{}, len(foundTeachers))
	for _, id := range foundTeachers {
		teacherSet[id] = struct{}{}
	}

	for _, asg := range norm.assignments {
		if _, ok := norm.subjectSet[asg.SubjectID]; !ok {
			return norm, core.NewInvalidInputError(core.NewFieldError(
				"assignment_subject_not_linked", "assignments",
				fmt.Sprintf("assignment subject %s is not in the student's subject set", asg.SubjectID),
			))
		}
		if _, ok := teacherSet[asg.TeacherID]; !ok {
			return norm, core.NewNotFoundError(core.NewFieldError(
				"missing_teacher", "assignments",
				fmt.Sprintf("unknown teacher: %s", asg.TeacherID),
			))
		}
		if _, ok := norm.daySet[asg.DayID]; !ok {
			return norm, core.NewNotFoundError(core.NewFieldError(
				"missing_day", "assignments",
				fmt.Sprintf("assignment day %s is not in the student's day set", asg.DayID),
			))
		}
	}
	return norm, nil
}

// applyRelations replaces the student's relationship graph inside tx.
// Existing link rows are deleted wholesale (assignments cascade with their
// subject links) and the validated sets inserted fresh, so the tables always
// reflect exactly the last submitted state.
func (svc *Service) applyRelations(ctx context.Context, studentID string, rels relationSet, tx core.DBTransactor) error {
	linkIDs, err := svc.repo.ReplaceSubjectLinks(ctx, studentID, rels.subjectIDs, tx)
	if err != nil {
		return err
	}
	if err = svc.repo.ReplaceDayLinks(ctx, studentID, rels.dayIDs, tx); err != nil {
		return err
	}

	asgs := make([]Assignment, 0, len(rels.assignments))
	for _, req := range rels.assignments {
		linkID, ok := linkIDs[req.SubjectID]
		if !ok {
			// validated above; a miss here means the store lost a write
			return core.NewShutdownError(fmt.Sprintf(
				"student %s: no subject link for validated subject %s", studentID, req.SubjectID,
			))
		}
		asgs = append(asgs, Assignment{
			TeacherID:     req.TeacherID,
			SubjectID:     req.SubjectID,
			DayID:         req.DayID,
			SubjectLinkID: linkID,
		})
	}
	return svc.repo.InsertAssignments(ctx, studentID, asgs, tx)
}

// missingIDs returns the elements of want absent from got, in want's order.
func missingIDs(want, got []string) []string {
	gotSet := make(map[string]struct{}, len(got))
	for _, id := range got {
		gotSet[id] = struct{}{}
	}
	var missing []string
	for _, id := range want {
		if _, ok := gotSet[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}
