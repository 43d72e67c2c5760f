package pgrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/uniteach/monitoria/core"
	"github.com/uniteach/monitoria/core/allocation"
	"github.com/uniteach/monitoria/core/period"
	"github.com/uniteach/monitoria/core/project"
)

type allocationRepository struct {
	exec core.DBExecutor
}

var _ allocation.Repository = (*allocationRepository)(nil) // interface compliance check

func NewAllocationRepository(exec core.DBExecutor) *allocationRepository {
	return &allocationRepository{exec: exec}
}

func (repo allocationRepository) GetPeriod(ctx context.Context, year int, half period.Half, exec ...core.DBExecutor) (period.Period, error) {
	return NewPeriodRepository(getExec(repo.exec, exec)).GetPeriod(ctx, year, half)
}

func (repo allocationRepository) UpdatePeriodCeiling(ctx context.Context, periodID, ceiling int, exec ...core.DBExecutor) error {
	const query = `UPDATE enrollment_period SET scholarship_ceiling = $2, updated_at = now() WHERE id = $1`

	res, err := getExec(repo.exec, exec).ExecContext(ctx, query, periodID, ceiling)
	if err != nil {
		return errors.Wrap(err, "updating scholarship ceiling")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return period.ErrNotFound
	}
	return nil
}

func (repo allocationRepository) GetProjectByID(ctx context.Context, id int, exec ...core.DBExecutor) (project.Project, error) {
	return getProjectByID(ctx, getExec(repo.exec, exec), id)
}

func (repo allocationRepository) GetProjectsByIDs(ctx context.Context, ids []int, exec ...core.DBExecutor) ([]project.Project, error) {
	query, args, err := sqlx.In(`SELECT `+projectColumns+` FROM project WHERE id IN (?)`, ids)
	if err != nil {
		return nil, errors.Wrap(err, "building projects query")
	}
	query = sqlx.Rebind(sqlx.DOLLAR, query)

	var rows []projectRow
	if err := sqlx.SelectContext(ctx, getExec(repo.exec, exec), &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying projects")
	}
	projects := make([]project.Project, 0, len(rows))
	for _, row := range rows {
		projects = append(projects, row.unrow())
	}
	return projects, nil
}

func (repo allocationRepository) TotalAllocated(ctx context.Context, year int, half period.Half, exec ...core.DBExecutor) (int, error) {
	const query = `
SELECT COALESCE(SUM(allocated_scholarships), 0)
FROM project
WHERE year = $1 AND half = $2 AND status = $3 AND deleted_at IS NULL`

	var total int
	err := sqlx.GetContext(ctx, getExec(repo.exec, exec), &total, query, year, string(half), string(project.StatusApproved))
	if err != nil {
		return 0, errors.Wrap(err, "summing allocated scholarships")
	}
	return total, nil
}

func (repo allocationRepository) UpdateAllocatedScholarships(ctx context.Context, projectID, value int, exec ...core.DBExecutor) error {
	const query = `UPDATE project SET allocated_scholarships = $2, updated_at = now() WHERE id = $1`

	res, err := getExec(repo.exec, exec).ExecContext(ctx, query, projectID, value)
	if err != nil {
		return errors.Wrap(err, "updating allocated scholarships")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return project.ErrNotFound
	}
	return nil
}

type approvedProjectRow struct {
	projectRow
	DepartmentName    string `db:"department_name"`
	DepartmentAcronym string `db:"department_acronym"`
}

func (repo allocationRepository) QueryApprovedProjects(ctx context.Context, year int, half period.Half, exec ...core.DBExecutor) ([]allocation.ApprovedProject, error) {
	const query = `
SELECT p.id, p.department_id, p.title, p.year, p.half, p.status,
	p.requested_scholarships, p.requested_volunteers, p.allocated_scholarships,
	p.deleted_at, p.created_at, p.updated_at,
	d.name AS department_name, d.acronym AS department_acronym
FROM project p
JOIN department d ON d.id = p.department_id
WHERE p.year = $1 AND p.half = $2 AND p.status = $3 AND p.deleted_at IS NULL
ORDER BY p.title`

	var rows []approvedProjectRow
	err := sqlx.SelectContext(ctx, getExec(repo.exec, exec), &rows, query, year, string(half), string(project.StatusApproved))
	if err != nil {
		return nil, errors.Wrap(err, "querying approved projects")
	}
	approved := make([]allocation.ApprovedProject, 0, len(rows))
	for _, row := range rows {
		approved = append(approved, allocation.ApprovedProject{
			Project: row.projectRow.unrow(),
			Department: project.Department{
				ID:      row.DepartmentID,
				Name:    row.DepartmentName,
				Acronym: row.DepartmentAcronym,
			},
		})
	}
	return approved, nil
}

func (repo allocationRepository) GetSummary(ctx context.Context, year int, half period.Half, exec ...core.DBExecutor) (allocation.Summary, error) {
	const query = `
SELECT COUNT(*) AS total_projects,
	COALESCE(SUM(requested_scholarships), 0) AS total_requested_scholarships,
	COALESCE(SUM(allocated_scholarships), 0) AS total_allocated_scholarships,
	COALESCE(SUM(requested_volunteers), 0) AS total_requested_volunteers
FROM project
WHERE year = $1 AND half = $2 AND status = $3 AND deleted_at IS NULL`

	var row struct {
		TotalProjects              int `db:"total_projects"`
		TotalRequestedScholarships int `db:"total_requested_scholarships"`
		TotalAllocatedScholarships int `db:"total_allocated_scholarships"`
		TotalRequestedVolunteers   int `db:"total_requested_volunteers"`
	}
	err := sqlx.GetContext(ctx, getExec(repo.exec, exec), &row, query, year, string(half), string(project.StatusApproved))
	if err != nil {
		return allocation.Summary{}, errors.Wrap(err, "summarizing allocations")
	}
	return allocation.Summary{
		TotalProjects:              row.TotalProjects,
		TotalRequestedScholarships: row.TotalRequestedScholarships,
		TotalAllocatedScholarships: row.TotalAllocatedScholarships,
		TotalRequestedVolunteers:   row.TotalRequestedVolunteers,
	}, nil
}

func (repo allocationRepository) QueryDepartmentSummaries(ctx context.Context, year int, half period.Half, exec ...core.DBExecutor) ([]allocation.DepartmentSummary, error) {
	const query = `
SELECT d.id, d.name, d.acronym,
	COUNT(p.id) AS projects,
	COALESCE(SUM(p.requested_scholarships), 0) AS requested_scholarships,
	COALESCE(SUM(p.allocated_scholarships), 0) AS allocated_scholarships
FROM project p
JOIN department d ON d.id = p.department_id
WHERE p.year = $1 AND p.half = $2 AND p.status = $3 AND p.deleted_at IS NULL
GROUP BY d.id, d.name, d.acronym
ORDER BY d.acronym`

	var rows []struct {
		ID                    int    `db:"id"`
		Name                  string `db:"name"`
		Acronym               string `db:"acronym"`
		Projects              int    `db:"projects"`
		RequestedScholarships int    `db:"requested_scholarships"`
		AllocatedScholarships int    `db:"allocated_scholarships"`
	}
	err := sqlx.SelectContext(ctx, getExec(repo.exec, exec), &rows, query, year, string(half), string(project.StatusApproved))
	if err != nil {
		return nil, errors.Wrap(err, "summarizing departments")
	}
	summaries := make([]allocation.DepartmentSummary, 0, len(rows))
	for _, row := range rows {
		summaries = append(summaries, allocation.DepartmentSummary{
			Department:            project.Department{ID: row.ID, Name: row.Name, Acronym: row.Acronym},
			Projects:              row.Projects,
			RequestedScholarships: row.RequestedScholarships,
			AllocatedScholarships: row.AllocatedScholarships,
		})
	}
	return summaries, nil
}

// LockAllocations takes the period's transaction-scoped advisory lock. The
// lock is released when the surrounding transaction commits or rolls back.
func (repo allocationRepository) LockAllocations(ctx context.Context, year int, half period.Half, exec ...core.DBExecutor) error {
	if len(exec) == 0 {
		return errors.New("allocation lock requires a transaction")
	}
	if _, err := exec[0].ExecContext(ctx, `SELECT pg_advisory_xact_lock($1, $2)`, year, half.Ordinal()); err != nil {
		return errors.Wrap(err, "locking period allocations")
	}
	return nil
}
