package allocation

import (
	"errors"
	"fmt"

	"github.com/uniteach/monitoria/core/period"
)

var (
	ErrProjectsNotFound = errors.New("one or more of the given projects were not found")
	ErrMissingValue     = errors.New("no scholarship value given for one of the selected projects")
)

// MissingPeriodError signals that no enrollment period is registered for the
// (year, half) an adjustment targets; allocation is impossible until an
// administrator creates it.
type MissingPeriodError struct {
	Year int
	Half period.Half
}

func (e *MissingPeriodError) Error() string {
	return fmt.Sprintf("no enrollment period registered for %d.%d; create the period before allocating scholarships",
		e.Year, e.Half.Ordinal())
}

// MissingCeilingError signals that the period exists but its scholarship
// ceiling has not been set by the funding authority yet.
type MissingCeilingError struct {
	Year int
	Half period.Half
}

func (e *MissingCeilingError) Error() string {
	return fmt.Sprintf("no scholarship ceiling set for %d.%d; set the ceiling before allocating scholarships",
		e.Year, e.Half.Ordinal())
}

// QuotaError signals that a proposed allocation state would exceed the
// period's ceiling. Excess carries exactly how far over the proposal goes so
// callers can present an actionable message.
type QuotaError struct {
	Year          int
	Half          period.Half
	Limit         int
	ProposedTotal int
	Excess        int
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("the scholarship total (%d) for %d.%d exceeds the ceiling (%d) by %d",
		e.ProposedTotal, e.Year, e.Half.Ordinal(), e.Limit, e.Excess)
}
