package main

import (
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/uniteach/monitoria/core"
	"github.com/uniteach/monitoria/core/allocation"
	"github.com/uniteach/monitoria/core/period"
	"github.com/uniteach/monitoria/storage/database"
)

var errHelp = errors.New("help provided")

const dateLayout = "2006-01-02"

type commandLine struct {
	db        *database.DB
	conf      *core.Config
	periodSvc *period.Service
	allocSvc  *allocation.Service
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate up|down|status|version            - run database migrations")
	fmt.Println("  createperiod -year Y -half H1|H2 -start DATE -end DATE")
	fmt.Println("                                            - register an enrollment period")
	fmt.Println("  setceiling -year Y -half H1|H2 -ceiling N - set a period's scholarship ceiling")
	fmt.Println("  summary -year Y -half H1|H2               - print a period's allocation summary")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	createPeriodCmd := flag.NewFlagSet("createperiod", flag.ExitOnError)
	cpYear := createPeriodCmd.Int("year", 0, "The period's year.")
	cpHalf := createPeriodCmd.String("half", "", "The period's half (H1 or H2).")
	cpStart := createPeriodCmd.String("start", "", "Application window start date (YYYY-MM-DD).")
	cpEnd := createPeriodCmd.String("end", "", "Application window end date (YYYY-MM-DD).")

	setCeilingCmd := flag.NewFlagSet("setceiling", flag.ExitOnError)
	scYear := setCeilingCmd.Int("year", 0, "The period's year.")
	scHalf := setCeilingCmd.String("half", "", "The period's half (H1 or H2).")
	scCeiling := setCeilingCmd.Int("ceiling", -1, "Total scholarships granted for the period.")

	summaryCmd := flag.NewFlagSet("summary", flag.ExitOnError)
	smYear := summaryCmd.Int("year", 0, "The period's year.")
	smHalf := summaryCmd.String("half", "", "The period's half (H1 or H2).")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "createperiod":
		if err := createPeriodCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *cpYear == 0 || *cpHalf == "" || *cpStart == "" || *cpEnd == "" {
			createPeriodCmd.Usage()
			return errHelp
		}
		start, err := time.Parse(dateLayout, *cpStart)
		if err != nil {
			return err
		}
		end, err := time.Parse(dateLayout, *cpEnd)
		if err != nil {
			return err
		}
		return cli.createPeriod(*cpYear, period.Half(*cpHalf), start, end)
	case "setceiling":
		if err := setCeilingCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *scYear == 0 || *scHalf == "" || *scCeiling < 0 {
			setCeilingCmd.Usage()
			return errHelp
		}
		return cli.setCeiling(*scYear, period.Half(*scHalf), *scCeiling)
	case "summary":
		if err := summaryCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *smYear == 0 || *smHalf == "" {
			summaryCmd.Usage()
			return errHelp
		}
		return cli.summary(*smYear, period.Half(*smHalf))
	default:
		cli.printUsage()
		return errHelp
	}
}
