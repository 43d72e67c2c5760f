package main

import (
	"log"
	"os"

	"github.com/uniteach/monitoria/api"
	"github.com/uniteach/monitoria/api/handlers"
	"github.com/uniteach/monitoria/core"
	"github.com/uniteach/monitoria/core/allocation"
	"github.com/uniteach/monitoria/core/application"
	"github.com/uniteach/monitoria/core/period"
	"github.com/uniteach/monitoria/core/position"
	"github.com/uniteach/monitoria/core/student"
	emailsvc "github.com/uniteach/monitoria/services/email"
	logsvc "github.com/uniteach/monitoria/services/logger"
	notifysvc "github.com/uniteach/monitoria/services/notify"
	"github.com/uniteach/monitoria/storage/database"
	pgrepos "github.com/uniteach/monitoria/storage/database/postgres"
)

func main() {
	std := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf, err := core.NewConfig()
	errAndDie(std, err)

	var logger core.Logger
	if conf.Debug || conf.RollbarToken == "" {
		logger = logsvc.NewStdLogger(std)
	} else {
		logger = logsvc.NewRollbarLogger(std, conf)
	}

	// set up DB
	db, err := database.Open(conf)
	errAndDie(std, err)
	defer func() { _ = db.Close() }()
	errAndDie(std, db.Ping())
	errAndDie(std, database.Migrate(db, conf))

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}
	notifier := notifysvc.NewEmailNotifier(mailSvc, conf, logger)

	svcs := handlers.Services{
		Period:      period.NewService(pgrepos.NewPeriodRepository(db)),
		Student:     student.NewService(pgrepos.NewStudentRepository(db)),
		Application: application.NewService(pgrepos.NewApplicationRepository(db), logger),
		Allocation:  allocation.NewService(db, pgrepos.NewAllocationRepository(db), notifier, logger),
		Position:    position.NewIssuer(db, pgrepos.NewPositionRepository(db), notifier, logger),
		Logger:      logger,
	}

	// start API server
	app := api.NewServer(&api.Options{
		Address:  conf.Server.Address(),
		Debug:    conf.Debug,
		Services: svcs,
	})
	if err := app.Start(); err != nil {
		logger.Error("server stopped", err)
		os.Exit(1)
	}
}

func errAndDie(std *log.Logger, err error) {
	if err != nil {
		std.Fatal(err)
	}
}
