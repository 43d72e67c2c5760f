package main

import (
	"context"
	"fmt"
	"time"

	"github.com/uniteach/monitoria/core/period"
)

func (cli *commandLine) createPeriod(year int, half period.Half, start, end time.Time) error {
	np := period.NewPeriod{
		Year:      year,
		Half:      half,
		StartDate: start,
		EndDate:   end.Add(24*time.Hour - time.Second), // applications close at end of day
	}
	if err := np.Validate(); err != nil {
		return err
	}

	per, err := cli.periodSvc.Create(context.Background(), np)
	if err != nil {
		return err
	}
	fmt.Printf("enrollment period %d.%d created (id %d)\n", per.Year, per.Half.Ordinal(), per.ID)
	return nil
}

func (cli *commandLine) setCeiling(year int, half period.Half, ceiling int) error {
	if err := cli.allocSvc.SetCeiling(context.Background(), year, half, ceiling); err != nil {
		return err
	}
	fmt.Printf("scholarship ceiling of %d.%d set to %d\n", year, half.Ordinal(), ceiling)
	return nil
}
