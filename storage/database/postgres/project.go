package pgrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/uniteach/monitoria/core"
	"github.com/uniteach/monitoria/core/period"
	"github.com/uniteach/monitoria/core/project"
)

type projectRow struct {
	ID                    int       `db:"id"`
	DepartmentID          int       `db:"department_id"`
	Title                 string    `db:"title"`
	Year                  int       `db:"year"`
	Half                  string    `db:"half"`
	Status                string    `db:"status"`
	RequestedScholarships int       `db:"requested_scholarships"`
	RequestedVolunteers   int       `db:"requested_volunteers"`
	AllocatedScholarships null.Int  `db:"allocated_scholarships"`
	DeletedAt             null.Time `db:"deleted_at"`
	CreatedAt             time.Time `db:"created_at"`
	UpdatedAt             time.Time `db:"updated_at"`
}

func (r projectRow) unrow() project.Project {
	return project.Project{
		ID:                    r.ID,
		DepartmentID:          r.DepartmentID,
		Title:                 r.Title,
		Year:                  r.Year,
		Half:                  period.Half(r.Half),
		Status:                project.Status(r.Status),
		RequestedScholarships: r.RequestedScholarships,
		RequestedVolunteers:   r.RequestedVolunteers,
		AllocatedScholarships: r.AllocatedScholarships,
		DeletedAt:             r.DeletedAt,
		CreatedAt:             r.CreatedAt,
		UpdatedAt:             r.UpdatedAt,
	}
}

const projectColumns = `id, department_id, title, year, half, status,
	requested_scholarships, requested_volunteers, allocated_scholarships,
	deleted_at, created_at, updated_at`

// getProjectByID is shared by the repositories that cross into the project
// aggregate.
func getProjectByID(ctx context.Context, exec core.DBExecutor, id int) (project.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM project WHERE id = $1`

	var row projectRow
	if err := sqlx.GetContext(ctx, exec, &row, query, id); err != nil {
		if err == sql.ErrNoRows {
			return project.Project{}, project.ErrNotFound
		}
		return project.Project{}, errors.Wrap(err, "getting project")
	}
	return row.unrow(), nil
}
