package core

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
)

// FieldError describes one faulty element of a request. Field may be empty
// for errors that do not map to a single input field.
type FieldError struct {
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (err FieldError) Error() string {
	if err.Field == "" {
		return fmt.Sprintf("%s: %s", err.Code, err.Message)
	}
	return fmt.Sprintf("%s (%s): %s", err.Code, err.Field, err.Message)
}

func NewFieldError(code, field, message string) FieldError {
	return FieldError{Code: code, Field: field, Message: message}
}

// InvalidInputError is returned when the request shape is acceptable but its
// content breaks an engine precondition; handled as a 400.
type InvalidInputError struct {
	Errors []FieldError
}

func (err InvalidInputError) Error() string {
	if len(err.Errors) == 0 {
		return "invalid input"
	}
	return err.Errors[0].Error()
}

func NewInvalidInputError(errs ...FieldError) InvalidInputError {
	return InvalidInputError{Errors: errs}
}

// NotFoundError is returned when a referenced entity does not exist;
// handled as a 404.
type NotFoundError struct {
	Errors []FieldError
}

func (err NotFoundError) Error() string {
	if len(err.Errors) == 0 {
		return "not found"
	}
	return err.Errors[0].Error()
}

func NewNotFoundError(errs ...FieldError) NotFoundError {
	return NotFoundError{Errors: errs}
}

// ConflictError is returned when a write collides with concurrent state,
// typically a constraint violation; handled as a 409.
type ConflictError struct {
	Errors []FieldError
}

func (err ConflictError) Error() string {
	if len(err.Errors) == 0 {
		return "conflict"
	}
	return err.Errors[0].Error()
}

func NewConflictError(errs ...FieldError) ConflictError {
	return ConflictError{Errors: errs}
}

// ValidationError is returned for per-attribute (in)validity of a payload;
// handled as a 422.
type ValidationError struct {
	Errors []FieldError
}

func (err ValidationError) Error() string {
	if len(err.Errors) == 0 {
		return "validation failed"
	}
	return err.Errors[0].Error()
}

func NewValidationError(errs ...FieldError) ValidationError {
	return ValidationError{Errors: errs}
}

// ForbiddenError is returned when the caller may not perform the operation;
// handled as a 403.
type ForbiddenError struct {
	Message string
}

func (err ForbiddenError) Error() string { return err.Message }

func NewForbiddenError(message string) ForbiddenError {
	return ForbiddenError{Message: message}
}

func IsInvalidInputError(err error) (InvalidInputError, bool) {
	v, ok := errors.Cause(err).(InvalidInputError)
	return v, ok
}

func IsNotFoundError(err error) (NotFoundError, bool) {
	v, ok := errors.Cause(err).(NotFoundError)
	return v, ok
}

func IsConflictError(err error) (ConflictError, bool) {
	v, ok := errors.Cause(err).(ConflictError)
	return v, ok
}

func IsValidationError(err error) (ValidationError, bool) {
	v, ok := errors.Cause(err).(ValidationError)
	return v, ok
}

func IsForbiddenError(err error) (ForbiddenError, bool) {
	v, ok := errors.Cause(err).(ForbiddenError)
	return v, ok
}

// Shutdown is used to gracefully bring the app down when an integrity issue
// is detected.
type Shutdown struct {
	Message string
}

func (err Shutdown) Error() string { return err.Message }

func NewShutdownError(message string) error {
	return Shutdown{Message: message}
}

func IsShutdownError(err error) bool {
	_, ok := errors.Cause(err).(Shutdown)
	return ok
}

// CheckErr prints err to stderr and exits. For CLI use only.
func CheckErr(err error) {
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
