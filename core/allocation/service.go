package allocation

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/uniteach/monitoria/core"
	"github.com/uniteach/monitoria/core/period"
	"github.com/uniteach/monitoria/core/project"
)

type (
	Repository interface {
		GetPeriod(ctx context.Context, year int, half period.Half, exec ...core.DBExecutor) (period.Period, error)
		UpdatePeriodCeiling(ctx context.Context, periodID, ceiling int, exec ...core.DBExecutor) error

		GetProjectByID(ctx context.Context, id int, exec ...core.DBExecutor) (project.Project, error)
		GetProjectsByIDs(ctx context.Context, ids []int, exec ...core.DBExecutor) ([]project.Project, error)
		// TotalAllocated sums allocated scholarships over the period's
		// approved, non-deleted projects.
		TotalAllocated(ctx context.Context, year int, half period.Half, exec ...core.DBExecutor) (int, error)
		UpdateAllocatedScholarships(ctx context.Context, projectID, value int, exec ...core.DBExecutor) error

		QueryApprovedProjects(ctx context.Context, year int, half period.Half, exec ...core.DBExecutor) ([]ApprovedProject, error)
		GetSummary(ctx context.Context, year int, half period.Half, exec ...core.DBExecutor) (Summary, error)
		QueryDepartmentSummaries(ctx context.Context, year int, half period.Half, exec ...core.DBExecutor) ([]DepartmentSummary, error)

		// LockAllocations serializes allocation edits of one period. It must
		// be called within a transaction; the lock is released on commit or
		// rollback.
		LockAllocations(ctx context.Context, year int, half period.Half, exec ...core.DBExecutor) error
	}

	Service struct {
		db       core.DB
		repo     Repository
		notifier core.Notifier
		log      core.Logger
	}
)

func NewService(db core.DB, repo Repository, notifier core.Notifier, log core.Logger) *Service {
	return &Service{db: db, repo: repo, notifier: notifier, log: log}
}

// validateLimits checks every adjustment group against its period's ceiling.
// It must run after LockAllocations and on the same transaction that later
// writes the values; two concurrent edits reading the same current total and
// jointly overflowing the ceiling is exactly the hazard the lock prevents.
func (svc *Service) validateLimits(ctx context.Context, tx core.DBTransactor, groups []group) error {
	for _, g := range groups {
		per, err := svc.repo.GetPeriod(ctx, g.year, g.half, tx)
		if err != nil {
			if err == period.ErrNotFound {
				return &MissingPeriodError{Year: g.year, Half: g.half}
			}
			return err
		}

		limit := per.ScholarshipCeiling.Int
		if !per.ScholarshipCeiling.Valid || limit <= 0 {
			return &MissingCeilingError{Year: g.year, Half: g.half}
		}

		current, err := svc.repo.TotalAllocated(ctx, g.year, g.half, tx)
		if err != nil {
			return err
		}
		proposed := current - g.removed() + g.added()
		if proposed > limit {
			return &QuotaError{
				Year:          g.year,
				Half:          g.half,
				Limit:         limit,
				ProposedTotal: proposed,
				Excess:        proposed - limit,
			}
		}
	}
	return nil
}

// apply locks, validates and writes a set of adjustments as one transaction.
// The caller's old values may be stale by the time the locks are held, so
// they are rebuilt from a read on the locked transaction before validation.
func (svc *Service) apply(ctx context.Context, adjustments []Adjustment) error {
	groups := groupAdjustments(adjustments)

	return core.Atomic(ctx, svc.db, func(tx core.DBTransactor) error {
		for _, g := range groups {
			if err := svc.repo.LockAllocations(ctx, g.year, g.half, tx); err != nil {
				return err
			}
		}

		adjustments, err := svc.refreshOldValues(ctx, tx, adjustments)
		if err != nil {
			return err
		}

		if err := svc.validateLimits(ctx, tx, groupAdjustments(adjustments)); err != nil {
			return err
		}
		for _, adj := range adjustments {
			if err := svc.repo.UpdateAllocatedScholarships(ctx, adj.ProjectID, adj.NewValue, tx); err != nil {
				return err
			}
		}
		return nil
	})
}

// refreshOldValues re-reads the adjusted projects on the locked transaction;
// a concurrent edit may have committed between the caller's read and the
// lock being granted.
func (svc *Service) refreshOldValues(ctx context.Context, tx core.DBTransactor, adjustments []Adjustment) ([]Adjustment, error) {
	ids := make([]int, 0, len(adjustments))
	for _, adj := range adjustments {
		ids = append(ids, adj.ProjectID)
	}
	projects, err := svc.repo.GetProjectsByIDs(ctx, ids, tx)
	if err != nil {
		return nil, err
	}
	if len(projects) != len(ids) {
		return nil, ErrProjectsNotFound
	}

	current := make(map[int]int, len(projects))
	for _, proj := range projects {
		current[proj.ID] = proj.Allocated()
	}
	refreshed := make([]Adjustment, len(adjustments))
	copy(refreshed, adjustments)
	for i := range refreshed {
		refreshed[i].OldValue = current[refreshed[i].ProjectID]
	}
	return refreshed, nil
}

func (svc *Service) notifyCompleted(ctx context.Context, adjustments []Adjustment) {
	if svc.notifier == nil {
		return
	}
	payload := make([]map[string]int, 0, len(adjustments))
	for _, adj := range adjustments {
		payload = append(payload, map[string]int{"project_id": adj.ProjectID, "value": adj.NewValue})
	}
	svc.notifier.Notify(ctx, core.Event{
		ID:         uuid.New().String(),
		Type:       core.EventAllocationCompleted,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	})
}

// UpdateSingle sets one project's allocated scholarships after validating the
// period's ceiling.
func (svc *Service) UpdateSingle(ctx context.Context, projectID, value int) error {
	proj, err := svc.repo.GetProjectByID(ctx, projectID)
	if err != nil {
		return err
	}

	adjustments := []Adjustment{{
		ProjectID: proj.ID,
		Year:      proj.Year,
		Half:      proj.Half,
		OldValue:  proj.Allocated(),
		NewValue:  value,
	}}
	if err := svc.apply(ctx, adjustments); err != nil {
		return err
	}

	svc.log.Info("allocated scholarships updated", "project", projectID, "value", value)
	svc.notifyCompleted(ctx, adjustments)
	return nil
}

// UpdateBulk applies a set of per-project allocations with all-or-nothing
// semantics: if any project is missing, any value absent, or any period's
// ceiling would be exceeded, nothing is written.
func (svc *Service) UpdateBulk(ctx context.Context, values []ProjectValue) error {
	if len(values) == 0 {
		return nil
	}

	ids := make([]int, 0, len(values))
	byProject := make(map[int]*int, len(values))
	for i := range values {
		ids = append(ids, values[i].ProjectID)
		byProject[values[i].ProjectID] = &values[i].Value
	}

	projects, err := svc.repo.GetProjectsByIDs(ctx, ids)
	if err != nil {
		return err
	}
	if len(projects) != len(ids) {
		return ErrProjectsNotFound
	}

	adjustments := make([]Adjustment, 0, len(projects))
	for _, proj := range projects {
		value, ok := byProject[proj.ID]
		if !ok || value == nil {
			return ErrMissingValue
		}
		adjustments = append(adjustments, Adjustment{
			ProjectID: proj.ID,
			Year:      proj.Year,
			Half:      proj.Half,
			OldValue:  proj.Allocated(),
			NewValue:  *value,
		})
	}

	if err := svc.apply(ctx, adjustments); err != nil {
		return err
	}

	svc.log.Info("bulk allocation updated", "count", len(adjustments))
	svc.notifyCompleted(ctx, adjustments)
	return nil
}

// SetCeiling records the funding authority's scholarship total for a period.
// Lowering it below the already committed total is rejected so the quota
// invariant keeps holding.
func (svc *Service) SetCeiling(ctx context.Context, year int, half period.Half, ceiling int) error {
	per, err := svc.repo.GetPeriod(ctx, year, half)
	if err != nil {
		return err
	}

	err = core.Atomic(ctx, svc.db, func(tx core.DBTransactor) error {
		if err := svc.repo.LockAllocations(ctx, year, half, tx); err != nil {
			return err
		}
		current, err := svc.repo.TotalAllocated(ctx, year, half, tx)
		if err != nil {
			return err
		}
		if ceiling < current {
			return &QuotaError{
				Year:          year,
				Half:          half,
				Limit:         ceiling,
				ProposedTotal: current,
				Excess:        current - ceiling,
			}
		}
		return svc.repo.UpdatePeriodCeiling(ctx, per.ID, ceiling, tx)
	})
	if err != nil {
		return err
	}

	svc.log.Info("scholarship ceiling updated", "year", year, "half", string(half), "ceiling", ceiling)
	return nil
}

// GetCeiling returns a period's ceiling, 0 when unset.
func (svc *Service) GetCeiling(ctx context.Context, year int, half period.Half) (int, error) {
	per, err := svc.repo.GetPeriod(ctx, year, half)
	if err != nil {
		return 0, err
	}
	return per.ScholarshipCeiling.Int, nil
}

// Summary aggregates the period's approved projects and department totals.
// Both queries run on one snapshot so the headline totals and the department
// rows cannot disagree under a concurrent edit.
func (svc *Service) Summary(ctx context.Context, year int, half period.Half) (Summary, error) {
	var summary Summary
	err := core.ReadSnapshot(ctx, svc.db, func(tx core.DBTransactor) error {
		var err error
		summary, err = svc.repo.GetSummary(ctx, year, half, tx)
		if err != nil {
			return err
		}
		summary.Departments, err = svc.repo.QueryDepartmentSummaries(ctx, year, half, tx)
		return err
	})
	if err != nil {
		return Summary{}, err
	}
	return summary, nil
}

// ApprovedProjects lists the period's projects eligible for allocation.
func (svc *Service) ApprovedProjects(ctx context.Context, year int, half period.Half) ([]ApprovedProject, error) {
	return svc.repo.QueryApprovedProjects(ctx, year, half)
}
