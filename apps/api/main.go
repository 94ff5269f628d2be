package main

import (
	"io/fs"
	"log"
	"os"

	echoapi "github.com/trezcool/juku/apps/api/echo"
	"github.com/trezcool/juku/core"
	"github.com/trezcool/juku/core/school"
	"github.com/trezcool/juku/core/student"
	"github.com/trezcool/juku/core/user"
	appfs "github.com/trezcool/juku/fs"
	emailsvc "github.com/trezcool/juku/services/email"
	logsvc "github.com/trezcool/juku/services/logger"
	"github.com/trezcool/juku/storage/database"
	sqlxrepos "github.com/trezcool/juku/storage/database/sqlx"
)

func main() {
	std := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(std, core.Conf)
	logger.Enable(!core.Conf.Debug)

	core.SetTemplatesFS(appfs.FS)
	assets, err := fs.Sub(appfs.FS, "assets")
	errAndDie(err, std)
	user.SetAssetsFS(assets)

	// set up DB
	db, err := database.Open(core.Conf)
	errAndDie(err, std)
	defer func() { _ = db.Close() }()

	// set up services
	var mailSvc core.EmailService
	if core.Conf.Debug {
		mailSvc = emailsvc.NewConsoleService()
	} else {
		mailSvc = emailsvc.NewSendgridService(core.Conf)
	}

	catRepo := sqlxrepos.NewCatalogRepository(db.DB)
	usrRepo := sqlxrepos.NewUserRepository(db.DB)
	stdRepo := sqlxrepos.NewStudentRepository(db.DB)

	usrSvc := user.NewService(db, usrRepo, catRepo, mailSvc, logger)
	stdSvc := student.NewService(db, stdRepo, catRepo, usrRepo, logger)
	noteSvc := student.NewNoteService(sqlxrepos.NewNoteRepository(db.DB), stdRepo)
	schSvc := school.NewService(sqlxrepos.NewSchoolRepository(db.DB))

	// start API server
	app := echoapi.NewServer(&echoapi.Options{
		Address:     core.Conf.Server.Address(),
		Logger:      logger,
		UserSvc:     usrSvc,
		StudentSvc:  stdSvc,
		NoteSvc:     noteSvc,
		SchoolSvc:   schSvc,
		CatalogRepo: catRepo,
	})
	app.Start()
}

func errAndDie(err error, std *log.Logger) {
	if err != nil {
		std.Fatal(err)
	}
}
