package project

import (
	"errors"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/uniteach/monitoria/core/period"
)

var ErrNotFound = errors.New("project not found")

// Status is the approval state of a monitoring project. Only approved
// projects take part in scholarship allocation.
type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusSubmitted Status = "SUBMITTED"
	StatusApproved  Status = "APPROVED"
	StatusRejected  Status = "REJECTED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusSubmitted, StatusApproved, StatusRejected:
		return true
	}
	return false
}

type Project struct {
	ID           int         `json:"id"`
	DepartmentID int         `json:"department_id"`
	Title        string      `json:"title"`
	Year         int         `json:"year"`
	Half         period.Half `json:"half"`
	Status       Status      `json:"status"`

	RequestedScholarships int      `json:"requested_scholarships"`
	RequestedVolunteers   int      `json:"requested_volunteers"`
	AllocatedScholarships null.Int `json:"allocated_scholarships"`

	DeletedAt null.Time `json:"-"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

// Allocatable reports whether the project counts towards the period's
// scholarship totals.
func (p Project) Allocatable() bool {
	return p.Status == StatusApproved && !p.DeletedAt.Valid
}

// Allocated returns the committed scholarship count, treating unset as 0.
func (p Project) Allocated() int {
	return p.AllocatedScholarships.Int
}

// Department is the administrative unit a project belongs to.
type Department struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Acronym string `json:"acronym"`
}
