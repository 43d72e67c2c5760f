package application

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/uniteach/monitoria/core"
	"github.com/uniteach/monitoria/core/student"
)

// Kind is the vacancy kind a candidate applies for.
type Kind string

const (
	KindScholarship Kind = "SCHOLARSHIP"
	KindVolunteer   Kind = "VOLUNTEER"
	KindAny         Kind = "ANY"
)

func (k Kind) Valid() bool {
	switch k {
	case KindScholarship, KindVolunteer, KindAny:
		return true
	}
	return false
}

// Status is the closed set of application states. Transitions only move
// forward; the rejected and accepted states are terminal.
type Status string

const (
	StatusSubmitted           Status = "SUBMITTED"
	StatusSelectedScholarship Status = "SELECTED_SCHOLARSHIP"
	StatusSelectedVolunteer   Status = "SELECTED_VOLUNTEER"
	StatusAcceptedScholarship Status = "ACCEPTED_SCHOLARSHIP"
	StatusAcceptedVolunteer   Status = "ACCEPTED_VOLUNTEER"
	StatusRejectedByProfessor Status = "REJECTED_BY_PROFESSOR"
	StatusRejectedByStudent   Status = "REJECTED_BY_STUDENT"
)

func (s Status) Valid() bool {
	switch s {
	case StatusSubmitted,
		StatusSelectedScholarship, StatusSelectedVolunteer,
		StatusAcceptedScholarship, StatusAcceptedVolunteer,
		StatusRejectedByProfessor, StatusRejectedByStudent:
		return true
	}
	return false
}

func (s Status) Terminal() bool {
	switch s {
	case StatusAcceptedScholarship, StatusAcceptedVolunteer,
		StatusRejectedByProfessor, StatusRejectedByStudent:
		return true
	}
	return false
}

// Selected reports whether the application awaits the student's decision.
func (s Status) Selected() bool {
	return s == StatusSelectedScholarship || s == StatusSelectedVolunteer
}

// SelectedKind returns the vacancy kind granted by a Selected status.
func (s Status) SelectedKind() (Kind, bool) {
	switch s {
	case StatusSelectedScholarship:
		return KindScholarship, true
	case StatusSelectedVolunteer:
		return KindVolunteer, true
	}
	return "", false
}

// CanTransition reports whether moving from s to next is a legal forward
// transition of the application state machine.
func (s Status) CanTransition(next Status) bool {
	switch s {
	case StatusSubmitted:
		switch next {
		case StatusSelectedScholarship, StatusSelectedVolunteer, StatusRejectedByProfessor, StatusRejectedByStudent:
			return true
		}
	case StatusSelectedScholarship:
		return next == StatusAcceptedScholarship || next == StatusRejectedByStudent || next == StatusRejectedByProfessor
	case StatusSelectedVolunteer:
		return next == StatusAcceptedVolunteer || next == StatusRejectedByStudent || next == StatusRejectedByProfessor
	}
	return false
}

// Application is a student's request to fill a position in a project during
// an enrollment period. Unique per (student, project, period).
type Application struct {
	ID        int  `json:"id"`
	StudentID int  `json:"student_id"`
	ProjectID int  `json:"project_id"`
	PeriodID  int  `json:"period_id"`
	Kind      Kind `json:"kind"` // desired vacancy kind

	Status Status `json:"status"`

	// grades; CreditRatio is snapshotted from the student at submission
	DisciplineGrade null.Float64 `json:"discipline_grade"`
	SelectionGrade  null.Float64 `json:"selection_grade"`
	CreditRatio     null.Float64 `json:"credit_ratio"`
	FinalGrade      null.Float64 `json:"final_grade"`

	Feedback null.String `json:"feedback"`

	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

// Candidate is an application row as presented to the selecting professor.
type Candidate struct {
	ApplicationID   int             `json:"application_id"`
	Student         student.Student `json:"student"`
	Kind            Kind            `json:"kind"`
	Status          Status          `json:"status"`
	DisciplineGrade null.Float64    `json:"discipline_grade"`
	SelectionGrade  null.Float64    `json:"selection_grade"`
	CreditRatio     null.Float64    `json:"credit_ratio"`
	FinalGrade      null.Float64    `json:"final_grade"`
}

// NewApplication contains information needed to submit an Application.
type NewApplication struct {
	StudentID int  `json:"student_id" validate:"required"`
	ProjectID int  `json:"project_id" validate:"required"`
	Kind      Kind `json:"kind" validate:"required,oneof=SCHOLARSHIP VOLUNTEER ANY"`
}

func (na *NewApplication) Validate() error { return core.Validate.Struct(na) }

// GradeInput carries the professor's evaluation of a candidate.
// Grades are on the 0-10 scale used by the selection process.
type GradeInput struct {
	DisciplineGrade float64 `json:"discipline_grade" validate:"min=0,max=10"`
	SelectionGrade  float64 `json:"selection_grade" validate:"min=0,max=10"`
	Feedback        string  `json:"feedback"`
}

func (gi *GradeInput) Validate() error {
	gi.Feedback = core.CleanString(gi.Feedback)
	return core.Validate.Struct(gi)
}
