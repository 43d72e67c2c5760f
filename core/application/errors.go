package application

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound  = errors.New("application not found")
	ErrDuplicate = errors.New("an application for this student, project and period already exists")

	ErrPeriodClosed          = errors.New("the enrollment period is not open")
	ErrNoScholarshipOpenings = errors.New("no scholarship openings available for this project")
	ErrNoVolunteerOpenings   = errors.New("no volunteer openings available for this project")
)

// StateError signals an operation attempted against an application whose
// status does not allow it.
type StateError struct {
	Op     string // "grade", "select", "accept", "reject"
	Status Status
}

func (e *StateError) Error() string {
	return fmt.Sprintf("cannot %s application in status %s", e.Op, e.Status)
}
