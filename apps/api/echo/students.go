package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/juku/core/student"
)

func (s *server) registerStudentAPI(g *echo.Group, jwt echo.MiddlewareFunc) {
	sg := g.Group("/students", jwt)
	sg.GET("", s.listStudents)
	sg.POST("", s.createStudent)
	sg.GET("/:id", s.getStudent)
	sg.PUT("/:id", s.updateStudent)
	sg.DELETE("/:id", s.deleteStudent, adminRequired)
	sg.PUT("/:id/relations", s.setStudentRelations)

	sg.GET("/:id/traits", s.listTraits)
	sg.POST("/:id/traits", s.addTrait)
	sg.DELETE("/:id/traits/:traitID", s.deleteTrait)

	sg.GET("/:id/lesson-notes", s.listLessonNotes)
	sg.POST("/:id/lesson-notes", s.addLessonNote)
	sg.PUT("/:id/lesson-notes/:noteID", s.updateLessonNote)
	sg.DELETE("/:id/lesson-notes/:noteID", s.deleteLessonNote)
}

func (s *server) listStudents(ctx echo.Context) error {
	students, err := s.opts.StudentSvc.QueryAll(ctx.Request().Context(), ctx.QueryParam("school_id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, students)
}

func (s *server) createStudent(ctx echo.Context) error {
	var ns student.NewStudent
	if err := ctx.Bind(&ns); err != nil {
		return err
	}
	std, err := s.opts.StudentSvc.Create(ctx.Request().Context(), ns)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, std)
}

func (s *server) getStudent(ctx echo.Context) error {
	std, err := s.opts.StudentSvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, std)
}

func (s *server) updateStudent(ctx echo.Context) error {
	var us student.UpdateStudent
	if err := ctx.Bind(&us); err != nil {
		return err
	}
	std, err := s.opts.StudentSvc.Update(ctx.Request().Context(), ctx.Param("id"), us)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, std)
}

func (s *server) deleteStudent(ctx echo.Context) error {
	if err := s.opts.StudentSvc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// setStudentRelations replaces the student's subject and day links and
// teaching assignments with the submitted set, then returns the student with
// the fresh graph loaded.
func (s *server) setStudentRelations(ctx echo.Context) error {
	var rels student.RelationSet
	if err := ctx.Bind(&rels); err != nil {
		return err
	}
	id := ctx.Param("id")
	if err := s.opts.StudentSvc.SetRelations(ctx.Request().Context(), id, rels); err != nil {
		return err
	}
	std, err := s.opts.StudentSvc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, std)
}

func (s *server) listTraits(ctx echo.Context) error {
	traits, err := s.opts.NoteSvc.QueryTraits(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, traits)
}

func (s *server) addTrait(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	var nt student.NewTrait
	if err = ctx.Bind(&nt); err != nil {
		return err
	}
	trait, err := s.opts.NoteSvc.AddTrait(ctx.Request().Context(), ctx.Param("id"), claims.Name, nt)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, trait)
}

func (s *server) deleteTrait(ctx echo.Context) error {
	if err := s.opts.NoteSvc.DeleteTrait(ctx.Request().Context(), ctx.Param("traitID")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (s *server) listLessonNotes(ctx echo.Context) error {
	notes, err := s.opts.NoteSvc.QueryLessonNotes(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, notes)
}

func (s *server) addLessonNote(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	var nn student.NewLessonNote
	if err = ctx.Bind(&nn); err != nil {
		return err
	}
	note, err := s.opts.NoteSvc.AddLessonNote(ctx.Request().Context(), ctx.Param("id"), claims.Name, nn)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, note)
}

func (s *server) updateLessonNote(ctx echo.Context) error {
	var nn student.NewLessonNote
	if err := ctx.Bind(&nn); err != nil {
		return err
	}
	note, err := s.opts.NoteSvc.UpdateLessonNote(ctx.Request().Context(), ctx.Param("noteID"), nn)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, note)
}

func (s *server) deleteLessonNote(ctx echo.Context) error {
	if err := s.opts.NoteSvc.DeleteLessonNote(ctx.Request().Context(), ctx.Param("noteID")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}
