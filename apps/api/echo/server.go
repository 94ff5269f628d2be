package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/trezcool/juku/core"
	"github.com/trezcool/juku/core/catalog"
	"github.com/trezcool/juku/core/school"
	"github.com/trezcool/juku/core/student"
	"github.com/trezcool/juku/core/user"
)

type (
	Options struct {
		Address        string
		DisableReqLogs bool

		Logger      core.Logger
		UserSvc     *user.Service
		StudentSvc  *student.Service
		NoteSvc     *student.NoteService
		SchoolSvc   *school.Service
		CatalogRepo catalog.Repository
	}

	Server interface {
		http.Handler
		Start()
		Stop(context.Context) error
	}

	server struct {
		opts     *Options
		app      *echo.Echo
		shutdown chan os.Signal
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	s := &server{
		opts:     opts,
		app:      echo.New(),
		shutdown: make(chan os.Signal, 1),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(core.Conf.Debug || core.Conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.signalShutdown)
	s.app.Debug = core.Conf.Debug

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(appJWTConfig)

	s.registerAuthAPI(v1)
	s.registerCatalogAPI(v1, jwt)
	s.registerSchoolAPI(v1, jwt)
	s.registerTeacherAPI(v1, jwt)
	s.registerStudentAPI(v1, jwt)
}

func (s *server) Start() {
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)

	errc := make(chan error, 1)
	go func() { errc <- s.app.Start(s.opts.Address) }()

	select {
	case err := <-errc:
		s.app.Logger.Fatal(err)
	case sig := <-s.shutdown:
		s.app.Logger.Infof("shutting down: %v", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.Stop(ctx); err != nil {
			s.app.Logger.Fatal(err)
		}
	}
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

// signalShutdown initiates a graceful shutdown; called when an integrity
// issue is detected.
func (s *server) signalShutdown() {
	s.shutdown <- syscall.SIGTERM
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to Juku API!")
}
