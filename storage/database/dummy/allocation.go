package dummydb

import (
	"context"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/uniteach/monitoria/core"
	"github.com/uniteach/monitoria/core/allocation"
	"github.com/uniteach/monitoria/core/period"
	"github.com/uniteach/monitoria/core/project"
)

type allocationRepository struct {
	db      *DB
	periods period.Repository
}

var _ allocation.Repository = (*allocationRepository)(nil) // interface compliance check

func NewAllocationRepository(db *DB) allocation.Repository {
	return &allocationRepository{db: db, periods: NewPeriodRepository(db)}
}

func (repo *allocationRepository) GetPeriod(ctx context.Context, year int, half period.Half, exec ...core.DBExecutor) (period.Period, error) {
	return repo.periods.GetPeriod(ctx, year, half)
}

func (repo *allocationRepository) UpdatePeriodCeiling(ctx context.Context, periodID, ceiling int, exec ...core.DBExecutor) error {
	return repo.periods.(*periodRepository).updateCeiling(periodID, ceiling)
}

func (repo *allocationRepository) GetProjectByID(ctx context.Context, id int, exec ...core.DBExecutor) (project.Project, error) {
	t := repo.db.projects
	t.RLock()
	defer t.RUnlock()

	if row, ok := t.rows[id]; ok {
		return *row, nil
	}
	return project.Project{}, project.ErrNotFound
}

func (repo *allocationRepository) GetProjectsByIDs(ctx context.Context, ids []int, exec ...core.DBExecutor) ([]project.Project, error) {
	t := repo.db.projects
	t.RLock()
	defer t.RUnlock()

	projects := make([]project.Project, 0, len(ids))
	for _, id := range ids {
		if row, ok := t.rows[id]; ok {
			projects = append(projects, *row)
		}
	}
	return projects, nil
}

func (repo *allocationRepository) TotalAllocated(ctx context.Context, year int, half period.Half, exec ...core.DBExecutor) (int, error) {
	t := repo.db.projects
	t.RLock()
	defer t.RUnlock()

	var total int
	for _, row := range t.rows {
		if row.Year == year && row.Half == half && row.Allocatable() {
			total += row.Allocated()
		}
	}
	return total, nil
}

func (repo *allocationRepository) UpdateAllocatedScholarships(ctx context.Context, projectID, value int, exec ...core.DBExecutor) error {
	t := repo.db.projects
	t.Lock()
	defer t.Unlock()

	row, ok := t.rows[projectID]
	if !ok {
		return project.ErrNotFound
	}
	row.AllocatedScholarships.SetValid(value)
	row.UpdatedAt = time.Now().UTC()
	return nil
}

func (repo *allocationRepository) QueryApprovedProjects(ctx context.Context, year int, half period.Half, exec ...core.DBExecutor) ([]allocation.ApprovedProject, error) {
	repo.db.projects.RLock()
	defer repo.db.projects.RUnlock()
	repo.db.departments.RLock()
	defer repo.db.departments.RUnlock()

	approved := make([]allocation.ApprovedProject, 0)
	for _, row := range repo.db.projects.rows {
		if row.Year != year || row.Half != half || !row.Allocatable() {
			continue
		}
		ap := allocation.ApprovedProject{Project: *row}
		if dep, ok := repo.db.departments.rows[row.DepartmentID]; ok {
			ap.Department = *dep
		}
		approved = append(approved, ap)
	}
	sort.Slice(approved, func(i, j int) bool { return approved[i].Project.Title < approved[j].Project.Title })
	return approved, nil
}

func (repo *allocationRepository) GetSummary(ctx context.Context, year int, half period.Half, exec ...core.DBExecutor) (allocation.Summary, error) {
	t := repo.db.projects
	t.RLock()
	defer t.RUnlock()

	var summary allocation.Summary
	for _, row := range t.rows {
		if row.Year != year || row.Half != half || !row.Allocatable() {
			continue
		}
		summary.TotalProjects++
		summary.TotalRequestedScholarships += row.RequestedScholarships
		summary.TotalAllocatedScholarships += row.Allocated()
		summary.TotalRequestedVolunteers += row.RequestedVolunteers
	}
	return summary, nil
}

func (repo *allocationRepository) QueryDepartmentSummaries(ctx context.Context, year int, half period.Half, exec ...core.DBExecutor) ([]allocation.DepartmentSummary, error) {
	repo.db.projects.RLock()
	defer repo.db.projects.RUnlock()
	repo.db.departments.RLock()
	defer repo.db.departments.RUnlock()

	byDept := make(map[int]*allocation.DepartmentSummary)
	for _, row := range repo.db.projects.rows {
		if row.Year != year || row.Half != half || !row.Allocatable() {
			continue
		}
		ds, ok := byDept[row.DepartmentID]
		if !ok {
			ds = &allocation.DepartmentSummary{}
			if dep, found := repo.db.departments.rows[row.DepartmentID]; found {
				ds.Department = *dep
			}
			byDept[row.DepartmentID] = ds
		}
		ds.Projects++
		ds.RequestedScholarships += row.RequestedScholarships
		ds.AllocatedScholarships += row.Allocated()
	}

	summaries := make([]allocation.DepartmentSummary, 0, len(byDept))
	for _, ds := range byDept {
		summaries = append(summaries, *ds)
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Department.Acronym < summaries[j].Department.Acronym
	})
	return summaries, nil
}

func (repo *allocationRepository) LockAllocations(ctx context.Context, year int, half period.Half, exec ...core.DBExecutor) error {
	if len(exec) > 0 {
		if tx, ok := exec[0].(*Tx); ok {
			tx.lockAllocations(year, half.Ordinal())
			return nil
		}
	}
	return errors.New("allocation lock requires a transaction")
}
