package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func (s *server) registerCatalogAPI(g *echo.Group, jwt echo.MiddlewareFunc) {
	cg := g.Group("/catalog", jwt)
	cg.GET("/subjects", s.listSubjects)
	cg.GET("/days", s.listDays)
}

func (s *server) listSubjects(ctx echo.Context) error {
	subjects, err := s.opts.CatalogRepo.QueryAllSubjects(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, subjects)
}

func (s *server) listDays(ctx echo.Context) error {
	days, err := s.opts.CatalogRepo.QueryAllDays(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, days)
}
