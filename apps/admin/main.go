package main

import (
	"log"
	"os"

	"github.com/uniteach/monitoria/core"
	"github.com/uniteach/monitoria/core/allocation"
	"github.com/uniteach/monitoria/core/period"
	logsvc "github.com/uniteach/monitoria/services/logger"
	"github.com/uniteach/monitoria/storage/database"
	pgrepos "github.com/uniteach/monitoria/storage/database/postgres"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf, err := core.NewConfig()
	errAndDie(err)

	// set up DB
	errAndDie(database.CreateIfNotExist(conf))
	db, err := database.Open(conf)
	errAndDie(err)
	defer func() { _ = db.Close() }()
	errAndDie(db.Ping())

	// start CLI
	cli := commandLine{
		db:        db,
		conf:      conf,
		periodSvc: period.NewService(pgrepos.NewPeriodRepository(db)),
		allocSvc: allocation.NewService(
			db, pgrepos.NewAllocationRepository(db), nil, logsvc.NewStdLogger(logger)),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
