package user

import (
	"context"
	"fmt"
	"net/mail"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/juku/core"
	"github.com/trezcool/juku/core/catalog"
)

type (
	// Repository is the user persistence contract. Methods take an optional
	// DBExecutor override so they can run inside a caller-owned transaction.
	Repository interface {
		QueryAllUsers(ctx context.Context) ([]User, error)
		GetUserByID(ctx context.Context, id string, exec ...core.DBExecutor) (User, error)
		GetUserByEmail(ctx context.Context, email string) (User, error)
		CreateUser(ctx context.Context, usr User, exec ...core.DBExecutor) (User, error)
		UpdateUser(ctx context.Context, usr User, exec ...core.DBExecutor) (User, error)
		DeleteUsersByID(ctx context.Context, ids ...string) error
		SetLastLogin(ctx context.Context, usr User) error
		CountActiveAdmins(ctx context.Context) (int, error)

		// FilterTeacherIDs returns the subset of ids belonging to active
		// users who may teach.
		FilterTeacherIDs(ctx context.Context, ids []string, exec ...core.DBExecutor) ([]string, error)

		// ReplaceSubjectLinks replaces the user's teachable subject set.
		ReplaceSubjectLinks(ctx context.Context, userID string, subjectIDs []string, exec ...core.DBExecutor) error
		// ReplaceDayLinks replaces the user's working day set.
		ReplaceDayLinks(ctx context.Context, userID string, dayIDs []string, exec ...core.DBExecutor) error
	}

	Service struct {
		db      core.DB
		repo    Repository
		catRepo catalog.Repository
		mailSvc core.EmailService
		logger  core.Logger
	}
)

func NewService(db core.DB, repo Repository, catRepo catalog.Repository, mailSvc core.EmailService, logger core.Logger) *Service {
	return &Service{
		db:      db,
		repo:    repo,
		catRepo: catRepo,
		mailSvc: mailSvc,
		logger:  logger,
	}
}

func (svc *Service) QueryAll(ctx context.Context) ([]User, error) {
	return svc.repo.QueryAllUsers(ctx)
}

func (svc *Service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUserByEmail(ctx, core.CleanString(email, true))
}

// Create registers a new user after checking email uniqueness.
func (svc *Service) Create(ctx context.Context, nu NewUser) (User, error) {
	if err := nu.Validate(); err != nil {
		return User{}, err
	}
	if _, err := svc.repo.GetUserByEmail(ctx, nu.Email); err == nil {
		return User{}, core.NewValidationError(
			core.NewFieldError("email_exists", "email", ErrEmailExists.Error()),
		)
	} else if errors.Cause(err) != ErrNotFound {
		return User{}, err
	}

	usr := User{
		Name:     nu.Name,
		Email:    nu.Email,
		Role:     nu.Role,
		IsActive: true,
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, err
	}
	return svc.repo.CreateUser(ctx, usr)
}

// Authenticate checks the credentials and records the login time.
func (svc *Service) Authenticate(ctx context.Context, email, password string) (User, error) {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return User{}, err
	}
	if !usr.IsActive {
		return User{}, ErrNotFound
	}
	if err = usr.CheckPassword(password); err != nil {
		return User{}, ErrNotFound
	}
	usr.LastLogin = null.TimeFrom(NowFunc())
	if err = svc.repo.SetLastLogin(ctx, usr); err != nil {
		svc.logger.Error("setting last login", err, "user", usr.ID)
	}
	return usr, nil
}

// UpdateTeacher updates a teacher's profile. Non-empty SubjectIDs/DayIDs
// replace the existing link sets atomically with the profile change; empty
// slices leave them untouched.
func (svc *Service) UpdateTeacher(ctx context.Context, id string, up UpdateTeacher) (User, error) {
	if err := up.Validate(); err != nil {
		return User{}, err
	}

	usr, err := svc.repo.GetUserByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	if !usr.IsTeacher() && !usr.IsAdmin() {
		return User{}, ErrNotFound
	}

	if up.Name != "" {
		usr.Name = up.Name
	}
	if up.Email != "" && up.Email != usr.Email {
		if _, err = svc.repo.GetUserByEmail(ctx, up.Email); err == nil {
			return User{}, core.NewValidationError(
				core.NewFieldError("email_exists", "email", ErrEmailExists.Error()),
			)
		} else if errors.Cause(err) != ErrNotFound {
			return User{}, err
		}
		usr.Email = up.Email
	}
	if up.Password != "" {
		if err = usr.SetPassword(up.Password); err != nil {
			return User{}, err
		}
	}

	// checked before the transaction opens
	if err = svc.checkCatalogIDs(ctx, up.SubjectIDs, up.DayIDs); err != nil {
		return User{}, err
	}

	err = core.Atomic(ctx, svc.db, func(tx core.DBTransactor) error {
		if usr, err = svc.repo.UpdateUser(ctx, usr, tx); err != nil {
			return err
		}
		if len(up.SubjectIDs) > 0 {
			if err = svc.repo.ReplaceSubjectLinks(ctx, usr.ID, up.SubjectIDs, tx); err != nil {
				return err
			}
		}
		if len(up.DayIDs) > 0 {
			if err = svc.repo.ReplaceDayLinks(ctx, usr.ID, up.DayIDs, tx); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return User{}, err
	}
	return svc.repo.GetUserByID(ctx, usr.ID)
}

func (svc *Service) checkCatalogIDs(ctx context.Context, subjectIDs, dayIDs []string) error {
	if len(subjectIDs) > 0 {
		found, err := svc.catRepo.FilterSubjectIDs(ctx, subjectIDs)
		if err != nil {
			return err
		}
		if missing := diffIDs(subjectIDs, found); len(missing) > 0 {
			return core.NewNotFoundError(core.NewFieldError(
				"missing_class_subject", "subject_ids",
				fmt.Sprintf("unknown class subjects: %v", missing),
			))
		}
	}
	if len(dayIDs) > 0 {
		found, err := svc.catRepo.FilterDayIDs(ctx, dayIDs)
		if err != nil {
			return err
		}
		if missing := diffIDs(dayIDs, found); len(missing) > 0 {
			return core.NewNotFoundError(core.NewFieldError(
				"missing_available_day", "day_ids",
				fmt.Sprintf("unknown available days: %v", missing),
			))
		}
	}
	return nil
}

// diffIDs returns the elements of want that are absent from got, in want's
// order.
func diffIDs(want, got []string) []string {
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

// Delete removes users, refusing to remove the last active admin.
func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	var admins int
	for _, id := range ids {
		usr, err := svc.repo.GetUserByID(ctx, id)
		if err != nil {
			return err
		}
		if usr.IsAdmin() && usr.IsActive {
			admins++
		}
	}
	if admins > 0 {
		total, err := svc.repo.CountActiveAdmins(ctx)
		if err != nil {
			return err
		}
		if total-admins < 1 {
			return core.NewForbiddenError(ErrLastAdminDelete.Error())
		}
	}
	return svc.repo.DeleteUsersByID(ctx, ids...)
}

// RequestPasswordReset emails a reset link to the user if they exist. Unknown
// emails are not revealed to the caller.
func (svc *Service) RequestPasswordReset(ctx context.Context, email string) error {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return nil
		}
		return err
	}
	token, err := MakeToken(usr)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/password-reset?uid=%s&token=%s", core.Conf.FrontendBaseURL, EncodeUID(usr), token)
	msg := &core.EmailMessage{
		To:           []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject:      fmt.Sprintf("%s password reset", core.Conf.AppName),
		TemplateName: "password-reset",
		TemplateData: struct {
			Name string
			URL  string
		}{Name: usr.Name, URL: url},
	}
	go func() {
		if err := svc.mailSvc.SendMessages(msg); err != nil {
			svc.logger.Error("sending password reset email", err, "user", usr.ID)
		}
	}()
	return nil
}

// ResetPassword sets a new password given a valid reset token.
func (svc *Service) ResetPassword(ctx context.Context, uid, token, password, passwordConfirm string) error {
	id, err := decodeUID(uid)
	if err != nil {
		return core.NewValidationError(core.NewFieldError("invalid_uid", "uid", errInvalidToken.Error()))
	}
	usr, err := svc.repo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return core.NewValidationError(core.NewFieldError("invalid_uid", "uid", errInvalidToken.Error()))
		}
		return err
	}
	if err = verifyToken(usr, token); err != nil {
		return core.NewValidationError(core.NewFieldError("invalid_token", "token", err.Error()))
	}
	if password != passwordConfirm {
		return core.NewValidationError(core.NewFieldError("password_mismatch", "password_confirm", "passwords do not match"))
	}
	if err = validatePassword(password, usr.Email, usr.Name); err != nil {
		return err
	}
	if err = usr.SetPassword(password); err != nil {
		return err
	}
	_, err = svc.repo.UpdateUser(ctx, usr)
	return err
}
