package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/juku/core/school"
	"github.com/trezcool/juku/core/student"
	"github.com/trezcool/juku/core/user"
)

func (s *server) registerSchoolAPI(g *echo.Group, jwt echo.MiddlewareFunc) {
	sg := g.Group("/schools", jwt)
	sg.GET("", s.listSchools)
	sg.POST("", s.createSchool, adminRequired)
	sg.GET("/:id", s.getSchool)
	sg.PUT("/:id", s.renameSchool, adminRequired)
	sg.GET("/:id/dashboard", s.schoolDashboard)
}

func (s *server) listSchools(ctx echo.Context) error {
	schools, err := s.opts.SchoolSvc.QueryAll(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, schools)
}

func (s *server) createSchool(ctx echo.Context) error {
	var ns school.NewSchool
	if err := ctx.Bind(&ns); err != nil {
		return err
	}
	sch, err := s.opts.SchoolSvc.Create(ctx.Request().Context(), ns)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, sch)
}

func (s *server) getSchool(ctx echo.Context) error {
	sch, err := s.opts.SchoolSvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sch)
}

func (s *server) renameSchool(ctx echo.Context) error {
	var ns school.NewSchool
	if err := ctx.Bind(&ns); err != nil {
		return err
	}
	sch, err := s.opts.SchoolSvc.Rename(ctx.Request().Context(), ctx.Param("id"), ns.Name)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sch)
}

type dashboardResponse struct {
	School   school.School     `json:"school"`
	Students []student.Student `json:"students"`
	Teachers []user.User       `json:"teachers"`
}

// schoolDashboard returns the school with its full roster: every student
// with their relationship graph preloaded, plus the teaching staff.
func (s *server) schoolDashboard(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	sch, err := s.opts.SchoolSvc.GetByID(reqCtx, ctx.Param("id"))
	if err != nil {
		return err
	}
	students, err := s.opts.StudentSvc.QueryAll(reqCtx, sch.ID)
	if err != nil {
		return err
	}
	users, err := s.opts.UserSvc.QueryAll(reqCtx)
	if err != nil {
		return err
	}
	teachers := make([]user.User, 0, len(users))
	for _, usr := range users {
		if usr.CanTeach() {
			teachers = append(teachers, usr)
		}
	}
	return ctx.JSON(http.StatusOK, dashboardResponse{
		School:   sch,
		Students: students,
		Teachers: teachers,
	})
}
