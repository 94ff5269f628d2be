package user

import (
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/juku/core"
)

var (
	ErrNotFound        = errors.New("user not found")
	ErrEmailExists     = errors.New("a user with this email already exists")
	ErrLastAdminDelete = errors.New("the last active admin cannot be deleted")
)

// Roles. An admin manages the school; a teacher holds lessons. Admins may
// also teach.
const (
	RoleAdmin   = "admin"
	RoleTeacher = "teacher"
)

var Roles = []string{RoleAdmin, RoleTeacher}

type User struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	Role         string    `db:"role" json:"role"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	LastLogin    null.Time `db:"last_login" json:"last_login"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
	PasswordHash []byte    `db:"password_hash" json:"-"`

	// Teachable subjects and working days; loaded with the user.
	SubjectIDs []string `db:"-" json:"subject_ids"`
	DayIDs     []string `db:"-" json:"day_ids"`
}

func (u *User) IsAdmin() bool   { return u.Role == RoleAdmin }
func (u *User) IsTeacher() bool { return u.Role == RoleTeacher }

// CanTeach reports whether u may appear as the teacher of a teaching
// assignment. Admins qualify as well.
func (u *User) CanTeach() bool { return u.IsActive && (u.IsTeacher() || u.IsAdmin()) }

func (u *User) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return errors.Wrap(err, "hashing password")
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(password string) error {
	if len(u.PasswordHash) == 0 {
		return errors.New("password not set")
	}
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password))
}

type (
	// NewUser is the user creation payload.
	NewUser struct {
		Name            string `json:"name" validate:"required"`
		Email           string `json:"email" validate:"required,email"`
		Role            string `json:"role" validate:"required,oneof=admin teacher"`
		Password        string `json:"password" validate:"required"`
		PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
	}

	// UpdateTeacher is the teacher update payload. SubjectIDs and DayIDs
	// replace the teacher's link sets; an empty slice leaves the existing
	// set untouched.
	UpdateTeacher struct {
		Name       string   `json:"name" validate:"omitempty"`
		Email      string   `json:"email" validate:"omitempty,email"`
		Password   string   `json:"password" validate:"omitempty"`
		SubjectIDs []string `json:"subject_ids" validate:"omitempty,dive,uuid4"`
		DayIDs     []string `json:"day_ids" validate:"omitempty,dive,uuid4"`
	}
)

func (nu *NewUser) Validate() error {
	nu.Name = core.CleanString(nu.Name)
	nu.Email = core.CleanString(nu.Email, true)
	if err := core.TranslateValidatorErrors(core.Validate.Struct(nu)); err != nil {
		return err
	}
	return validatePassword(nu.Password, nu.Email, nu.Name)
}

func (ut *UpdateTeacher) Validate() error {
	ut.Name = core.CleanString(ut.Name)
	ut.Email = core.CleanString(ut.Email, true)
	if err := core.TranslateValidatorErrors(core.Validate.Struct(ut)); err != nil {
		return err
	}
	if ut.Password != "" {
		return validatePassword(ut.Password, ut.Email, ut.Name)
	}
	return nil
}
