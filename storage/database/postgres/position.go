package pgrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/uniteach/monitoria/core"
	"github.com/uniteach/monitoria/core/application"
	"github.com/uniteach/monitoria/core/position"
	"github.com/uniteach/monitoria/core/student"
)

type positionRow struct {
	ID            int       `db:"id"`
	StudentID     int       `db:"student_id"`
	ProjectID     int       `db:"project_id"`
	ApplicationID int       `db:"application_id"`
	PeriodID      int       `db:"period_id"`
	Type          string    `db:"type"`
	StartDate     time.Time `db:"start_date"`
	EndDate       null.Time `db:"end_date"`
	CreatedAt     time.Time `db:"created_at"`
}

func (r positionRow) unrow() position.Position {
	return position.Position{
		ID:            r.ID,
		StudentID:     r.StudentID,
		ProjectID:     r.ProjectID,
		ApplicationID: r.ApplicationID,
		PeriodID:      r.PeriodID,
		Type:          position.Type(r.Type),
		StartDate:     r.StartDate,
		EndDate:       r.EndDate,
		CreatedAt:     r.CreatedAt,
	}
}

const positionColumns = `id, student_id, project_id, application_id, period_id, type, start_date, end_date, created_at`

type positionRepository struct {
	exec core.DBExecutor
}

var _ position.Repository = (*positionRepository)(nil) // interface compliance check

func NewPositionRepository(exec core.DBExecutor) *positionRepository {
	return &positionRepository{exec: exec}
}

func (repo positionRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return position.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo positionRepository) CreatePosition(ctx context.Context, pos position.Position, exec ...core.DBExecutor) (position.Position, error) {
	const query = `
INSERT INTO monitoring_position (student_id, project_id, application_id, period_id, type, start_date, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id`

	err := getExec(repo.exec, exec).QueryRowxContext(ctx, query,
		pos.StudentID, pos.ProjectID, pos.ApplicationID, pos.PeriodID, string(pos.Type), pos.StartDate, pos.CreatedAt,
	).Scan(&pos.ID)
	if err != nil {
		if constraintViolated(err, "monitoring_position_application_id_key") {
			return position.Position{}, position.ErrAlreadyAccepted
		}
		if constraintViolated(err, "monitoring_position_one_scholarship_key") {
			return position.Position{}, position.ErrScholarshipTaken
		}
		return position.Position{}, errors.Wrap(err, "inserting position")
	}
	return pos, nil
}

func (repo positionRepository) GetPositionByID(ctx context.Context, id int, exec ...core.DBExecutor) (position.Position, error) {
	query := `SELECT ` + positionColumns + ` FROM monitoring_position WHERE id = $1`

	var row positionRow
	if err := sqlx.GetContext(ctx, getExec(repo.exec, exec), &row, query, id); err != nil {
		return position.Position{}, repo.trapNoRowsErr(err, "getting position")
	}
	return row.unrow(), nil
}

func (repo positionRepository) GetPositionByApplicationID(ctx context.Context, applicationID int, exec ...core.DBExecutor) (position.Position, error) {
	query := `SELECT ` + positionColumns + ` FROM monitoring_position WHERE application_id = $1`

	var row positionRow
	if err := sqlx.GetContext(ctx, getExec(repo.exec, exec), &row, query, applicationID); err != nil {
		return position.Position{}, repo.trapNoRowsErr(err, "getting position")
	}
	return row.unrow(), nil
}

func (repo positionRepository) FindHeldScholarship(ctx context.Context, studentID, periodID int, exec ...core.DBExecutor) (position.HeldScholarship, error) {
	const query = `
SELECT mp.id, mp.project_id, p.title
FROM monitoring_position mp
JOIN project p ON p.id = mp.project_id
WHERE mp.student_id = $1 AND mp.period_id = $2 AND mp.type = $3`

	var row struct {
		ID        int    `db:"id"`
		ProjectID int    `db:"project_id"`
		Title     string `db:"title"`
	}
	err := sqlx.GetContext(ctx, getExec(repo.exec, exec), &row, query, studentID, periodID, string(position.TypeScholarship))
	if err != nil {
		return position.HeldScholarship{}, repo.trapNoRowsErr(err, "finding held scholarship")
	}
	return position.HeldScholarship{PositionID: row.ID, ProjectID: row.ProjectID, ProjectTitle: row.Title}, nil
}

func (repo positionRepository) UpdatePositionEnd(ctx context.Context, id int, endDate time.Time, exec ...core.DBExecutor) (position.Position, error) {
	query := `
UPDATE monitoring_position
SET end_date = $2
WHERE id = $1
RETURNING ` + positionColumns

	var row positionRow
	if err := sqlx.GetContext(ctx, getExec(repo.exec, exec), &row, query, id, endDate); err != nil {
		return position.Position{}, repo.trapNoRowsErr(err, "finalizing position")
	}
	return row.unrow(), nil
}

func (repo positionRepository) QueryPositionsByStudent(ctx context.Context, studentID int, exec ...core.DBExecutor) ([]position.Position, error) {
	query := `SELECT ` + positionColumns + ` FROM monitoring_position WHERE student_id = $1 ORDER BY id`

	var rows []positionRow
	if err := sqlx.SelectContext(ctx, getExec(repo.exec, exec), &rows, query, studentID); err != nil {
		return nil, errors.Wrap(err, "querying positions")
	}
	positions := make([]position.Position, 0, len(rows))
	for _, row := range rows {
		positions = append(positions, row.unrow())
	}
	return positions, nil
}

func (repo positionRepository) GetApplicationByID(ctx context.Context, id int, exec ...core.DBExecutor) (application.Application, error) {
	return NewApplicationRepository(getExec(repo.exec, exec)).GetApplicationByID(ctx, id)
}

func (repo positionRepository) UpdateApplicationStatus(
	ctx context.Context, id int, status application.Status, feedback null.String, exec ...core.DBExecutor,
) (application.Application, error) {
	return NewApplicationRepository(getExec(repo.exec, exec)).UpdateApplicationStatus(ctx, id, status, feedback)
}

func (repo positionRepository) GetStudentByID(ctx context.Context, id int, exec ...core.DBExecutor) (student.Student, error) {
	return NewStudentRepository(getExec(repo.exec, exec)).GetStudentByID(ctx, id)
}
