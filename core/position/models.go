package position

import (
	"errors"
	"fmt"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/uniteach/monitoria/core/application"
)

var (
	ErrNotFound = errors.New("position not found")
	// ErrAlreadyAccepted is returned when a position already exists for an
	// application; the unique constraint on application_id backs it under
	// concurrent accepts.
	ErrAlreadyAccepted = errors.New("this application has already been accepted")
	// ErrScholarshipTaken is the storage-level signal that the student
	// already holds a scholarship in the period; the issuer turns it into a
	// ScholarshipHeldError naming the conflicting project.
	ErrScholarshipTaken = errors.New("student already holds a scholarship in this period")
	ErrNotOwner         = errors.New("only the owning student may decide on this application")
	ErrAlreadyFinalized = errors.New("position already finalized")
	ErrBankingDetails   = errors.New("banking details are required before accepting a scholarship")
)

// Type of a filled position.
type Type string

const (
	TypeScholarship Type = "SCHOLARSHIP"
	TypeVolunteer   Type = "VOLUNTEER"
)

func (t Type) Valid() bool { return t == TypeScholarship || t == TypeVolunteer }

// typeForStatus maps a selected application status to the position type it
// grants.
func typeForStatus(s application.Status) (Type, bool) {
	switch s {
	case application.StatusSelectedScholarship:
		return TypeScholarship, true
	case application.StatusSelectedVolunteer:
		return TypeVolunteer, true
	}
	return "", false
}

// acceptedStatus is the terminal application status matching a position type.
func acceptedStatus(t Type) application.Status {
	if t == TypeScholarship {
		return application.StatusAcceptedScholarship
	}
	return application.StatusAcceptedVolunteer
}

// Position is the immutable record of a student filling a vacancy. Only
// EndDate may change after creation, once, when the position is finalized.
type Position struct {
	ID            int       `json:"id"`
	StudentID     int       `json:"student_id"`
	ProjectID     int       `json:"project_id"`
	ApplicationID int       `json:"application_id"`
	PeriodID      int       `json:"period_id"`
	Type          Type      `json:"type"`
	StartDate     time.Time `json:"start_date"`
	EndDate       null.Time `json:"end_date"`
	CreatedAt     time.Time `json:"created_at"` // UTC
}

func (p Position) Active() bool { return !p.EndDate.Valid }

// HeldScholarship describes the scholarship blocking a second accept in the
// same period.
type HeldScholarship struct {
	PositionID   int
	ProjectID    int
	ProjectTitle string
}

// ScholarshipHeldError enforces the one-scholarship-per-student-per-period
// rule with an actionable message naming the conflicting project.
type ScholarshipHeldError struct {
	Held HeldScholarship
}

func (e *ScholarshipHeldError) Error() string {
	return fmt.Sprintf("the student already holds a scholarship in %q for this period; only one scholarship per period is allowed",
		e.Held.ProjectTitle)
}
