package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/uniteach/monitoria/core/period"
)

func (cli *commandLine) summary(year int, half period.Half) error {
	summary, err := cli.allocSvc.Summary(context.Background(), year, half)
	if err != nil {
		return err
	}

	fmt.Printf("Allocation summary for %d.%d\n\n", year, half.Ordinal())
	fmt.Printf("Approved projects:      %d\n", summary.TotalProjects)
	fmt.Printf("Requested scholarships: %d\n", summary.TotalRequestedScholarships)
	fmt.Printf("Allocated scholarships: %d\n", summary.TotalAllocatedScholarships)
	fmt.Printf("Requested volunteers:   %d\n\n", summary.TotalRequestedVolunteers)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DEPARTMENT\tPROJECTS\tREQUESTED\tALLOCATED")
	for _, dep := range summary.Departments {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\n",
			dep.Department.Acronym, dep.Projects, dep.RequestedScholarships, dep.AllocatedScholarships)
	}
	return w.Flush()
}
