package student

import (
	"fmt"
	"log"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/juku/core"
)

var NowFunc = time.Now // mockable

const (
	studentStatusTag = "studentstatus"
	schoolStageTag   = "schoolstage"
)

func init() {
	if err := core.Validate.RegisterValidation(studentStatusTag, func(fl validator.FieldLevel) bool {
		return contains(Statuses, fl.Field().String())
	}); err != nil {
		log.Fatalf("student.init(%s): %v", studentStatusTag, err)
	}
	core.RegisterCustomTranslation(studentStatusTag, "{0} must be one of: active, inactive, graduated, on_leave")

	if err := core.Validate.RegisterValidation(schoolStageTag, func(fl validator.FieldLevel) bool {
		return contains(Stages, fl.Field().String())
	}); err != nil {
		log.Fatalf("student.init(%s): %v", schoolStageTag, err)
	}
	core.RegisterCustomTranslation(schoolStageTag, "{0} must be one of: elementary, junior_high, high_school")
}

func contains(set []string, s string) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

// validateScalars covers the cross-field rules tags cannot express: the
// grade must fit the school stage and the join date cannot be in the future.
func validateScalars(stage string, grade int, joinedOn Date) error {
	var errs []core.FieldError
	if !GradeInRange(stage, grade) {
		bounds := gradeRanges[stage]
		errs = append(errs, core.NewFieldError(
			"grade_out_of_range", "grade",
			fmt.Sprintf("grade %d is out of range for %s (%d-%d)", grade, stage, bounds[0], bounds[1]),
		))
	}
	if !joinedOn.IsZero() && joinedOn.After(NowFunc()) {
		errs = append(errs, core.NewFieldError(
			"joined_on_in_future", "joined_on", "the join date cannot be in the future",
		))
	}
	if len(errs) > 0 {
		return core.NewValidationError(errs...)
	}
	return nil
}
