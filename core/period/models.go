package period

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/uniteach/monitoria/core"
)

// Half identifies one of the two enrollment half-years.
type Half string

const (
	Half1 Half = "H1"
	Half2 Half = "H2"
)

func (h Half) Valid() bool { return h == Half1 || h == Half2 }

// Ordinal returns the half as an integer (1 or 2); it is used as one of the
// keys of the per-period advisory lock.
func (h Half) Ordinal() int {
	if h == Half2 {
		return 2
	}
	return 1
}

// Period is an administrative enrollment window. The scholarship ceiling is
// assigned externally by the funding authority; while it is unset no
// allocation may happen for the period.
type Period struct {
	ID                 int       `json:"id"`
	Year               int       `json:"year"`
	Half               Half      `json:"half"`
	StartDate          time.Time `json:"start_date"`
	EndDate            time.Time `json:"end_date"`
	ScholarshipCeiling null.Int  `json:"scholarship_ceiling"`
	CreatedAt          time.Time `json:"created_at"` // UTC
	UpdatedAt          time.Time `json:"updated_at"` // UTC
}

// Open reports whether applications may be submitted at the given time.
func (p Period) Open(at time.Time) bool {
	return !at.Before(p.StartDate) && !at.After(p.EndDate)
}

// NewPeriod contains information needed to register a new Period.
type NewPeriod struct {
	Year      int       `json:"year" validate:"required,min=2000"`
	Half      Half      `json:"half" validate:"required,half"`
	StartDate time.Time `json:"start_date" validate:"required"`
	EndDate   time.Time `json:"end_date" validate:"required,gtfield=StartDate"`
}

func (np *NewPeriod) Validate() error { return core.Validate.Struct(np) }
