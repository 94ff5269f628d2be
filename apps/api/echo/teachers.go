package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/juku/core/user"
)

func (s *server) registerTeacherAPI(g *echo.Group, jwt echo.MiddlewareFunc) {
	tg := g.Group("/teachers", jwt)
	tg.GET("", s.listTeachers)
	tg.POST("", s.createTeacher, adminRequired)
	tg.GET("/:id", s.getTeacher)
	tg.PUT("/:id", s.updateTeacher)
	tg.DELETE("/:id", s.deleteTeacher, adminRequired)
}

func (s *server) listTeachers(ctx echo.Context) error {
	users, err := s.opts.UserSvc.QueryAll(ctx.Request().Context())
	if err != nil {
		return err
	}
	teachers := make([]user.User, 0, len(users))
	for _, usr := range users {
		if usr.IsTeacher() {
			teachers = append(teachers, usr)
		}
	}
	return ctx.JSON(http.StatusOK, teachers)
}

func (s *server) createTeacher(ctx echo.Context) error {
	var nu user.NewUser
	if err := ctx.Bind(&nu); err != nil {
		return err
	}
	nu.Role = user.RoleTeacher
	usr, err := s.opts.UserSvc.Create(ctx.Request().Context(), nu)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, usr)
}

func (s *server) getTeacher(ctx echo.Context) error {
	usr, err := s.opts.UserSvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	if !usr.IsTeacher() && !usr.IsAdmin() {
		return errHttpNotFound
	}
	return ctx.JSON(http.StatusOK, usr)
}

// updateTeacher updates a teacher's profile; teachers may only edit their
// own, admins anyone's.
func (s *server) updateTeacher(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	id := ctx.Param("id")
	if !claims.IsAdmin && claims.Subject != id {
		return errHttpForbidden
	}

	var up user.UpdateTeacher
	if err = ctx.Bind(&up); err != nil {
		return err
	}
	usr, err := s.opts.UserSvc.UpdateTeacher(ctx.Request().Context(), id, up)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (s *server) deleteTeacher(ctx echo.Context) error {
	if err := s.opts.UserSvc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}
