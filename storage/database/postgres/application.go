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
	"github.com/uniteach/monitoria/core/period"
	"github.com/uniteach/monitoria/core/project"
	"github.com/uniteach/monitoria/core/student"
)

type applicationRow struct {
	ID              int          `db:"id"`
	StudentID       int          `db:"student_id"`
	ProjectID       int          `db:"project_id"`
	PeriodID        int          `db:"period_id"`
	Kind            string       `db:"kind"`
	Status          string       `db:"status"`
	DisciplineGrade null.Float64 `db:"discipline_grade"`
	SelectionGrade  null.Float64 `db:"selection_grade"`
	CreditRatio     null.Float64 `db:"credit_ratio"`
	FinalGrade      null.Float64 `db:"final_grade"`
	Feedback        null.String  `db:"feedback"`
	CreatedAt       time.Time    `db:"created_at"`
	UpdatedAt       time.Time    `db:"updated_at"`
}

func (r applicationRow) unrow() application.Application {
	return application.Application{
		ID:              r.ID,
		StudentID:       r.StudentID,
		ProjectID:       r.ProjectID,
		PeriodID:        r.PeriodID,
		Kind:            application.Kind(r.Kind),
		Status:          application.Status(r.Status),
		DisciplineGrade: r.DisciplineGrade,
		SelectionGrade:  r.SelectionGrade,
		CreditRatio:     r.CreditRatio,
		FinalGrade:      r.FinalGrade,
		Feedback:        r.Feedback,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

const applicationColumns = `id, student_id, project_id, period_id, kind, status,
	discipline_grade, selection_grade, credit_ratio, final_grade, feedback,
	created_at, updated_at`

type applicationRepository struct {
	exec core.DBExecutor
}

var _ application.Repository = (*applicationRepository)(nil) // interface compliance check

func NewApplicationRepository(exec core.DBExecutor) *applicationRepository {
	return &applicationRepository{exec: exec}
}

func (repo applicationRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return application.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo applicationRepository) CreateApplication(ctx context.Context, app application.Application, exec ...core.DBExecutor) (application.Application, error) {
	const query = `
INSERT INTO application (student_id, project_id, period_id, kind, status, credit_ratio, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id`

	err := getExec(repo.exec, exec).QueryRowxContext(ctx, query,
		app.StudentID, app.ProjectID, app.PeriodID, string(app.Kind), string(app.Status),
		app.CreditRatio, app.CreatedAt, app.UpdatedAt,
	).Scan(&app.ID)
	if err != nil {
		if constraintViolated(err, "application_student_project_period_key") {
			return application.Application{}, application.ErrDuplicate
		}
		return application.Application{}, errors.Wrap(err, "inserting application")
	}
	return app, nil
}

func (repo applicationRepository) GetApplicationByID(ctx context.Context, id int, exec ...core.DBExecutor) (application.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM application WHERE id = $1`

	var row applicationRow
	if err := sqlx.GetContext(ctx, getExec(repo.exec, exec), &row, query, id); err != nil {
		return application.Application{}, repo.trapNoRowsErr(err, "getting application")
	}
	return row.unrow(), nil
}

type candidateRow struct {
	applicationRow
	StudentName         string      `db:"student_name"`
	StudentEmail        string      `db:"student_email"`
	StudentRegistration string      `db:"student_registration"`
	StudentCreditRatio  float64     `db:"student_credit_ratio"`
	StudentBank         null.String `db:"student_bank"`
	StudentBankBranch   null.String `db:"student_bank_branch"`
	StudentBankAccount  null.String `db:"student_bank_account"`
}

func (r candidateRow) candidate() application.Candidate {
	return application.Candidate{
		ApplicationID: r.ID,
		Student: student.Student{
			ID:           r.StudentID,
			Name:         r.StudentName,
			Email:        r.StudentEmail,
			Registration: r.StudentRegistration,
			CreditRatio:  r.StudentCreditRatio,
			Bank:         r.StudentBank,
			BankBranch:   r.StudentBankBranch,
			BankAccount:  r.StudentBankAccount,
		},
		Kind:            application.Kind(r.Kind),
		Status:          application.Status(r.Status),
		DisciplineGrade: r.DisciplineGrade,
		SelectionGrade:  r.SelectionGrade,
		CreditRatio:     r.CreditRatio,
		FinalGrade:      r.FinalGrade,
	}
}

func (repo applicationRepository) QueryCandidates(ctx context.Context, projectID int, exec ...core.DBExecutor) ([]application.Candidate, error) {
	const query = `
SELECT a.id, a.student_id, a.project_id, a.period_id, a.kind, a.status,
	a.discipline_grade, a.selection_grade, a.credit_ratio, a.final_grade, a.feedback,
	a.created_at, a.updated_at,
	s.name AS student_name, s.email AS student_email, s.registration AS student_registration,
	s.credit_ratio AS student_credit_ratio, s.bank AS student_bank,
	s.bank_branch AS student_bank_branch, s.bank_account AS student_bank_account
FROM application a
JOIN student s ON s.id = a.student_id
WHERE a.project_id = $1
ORDER BY a.final_grade DESC NULLS LAST, a.id`

	var rows []candidateRow
	if err := sqlx.SelectContext(ctx, getExec(repo.exec, exec), &rows, query, projectID); err != nil {
		return nil, errors.Wrap(err, "querying candidates")
	}
	candidates := make([]application.Candidate, 0, len(rows))
	for _, row := range rows {
		candidates = append(candidates, row.candidate())
	}
	return candidates, nil
}

func (repo applicationRepository) QueryApplicationsByStudent(ctx context.Context, studentID int, exec ...core.DBExecutor) ([]application.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM application WHERE student_id = $1 ORDER BY id`

	var rows []applicationRow
	if err := sqlx.SelectContext(ctx, getExec(repo.exec, exec), &rows, query, studentID); err != nil {
		return nil, errors.Wrap(err, "querying applications")
	}
	apps := make([]application.Application, 0, len(rows))
	for _, row := range rows {
		apps = append(apps, row.unrow())
	}
	return apps, nil
}

func (repo applicationRepository) UpdateApplicationGrades(
	ctx context.Context, id int, discipline, selection, cr, final float64, feedback null.String, exec ...core.DBExecutor,
) (application.Application, error) {
	query := `
UPDATE application
SET discipline_grade = $2, selection_grade = $3, credit_ratio = $4, final_grade = $5, feedback = $6, updated_at = now()
WHERE id = $1
RETURNING ` + applicationColumns

	var row applicationRow
	err := sqlx.GetContext(ctx, getExec(repo.exec, exec), &row, query, id, discipline, selection, cr, final, feedback)
	if err != nil {
		return application.Application{}, repo.trapNoRowsErr(err, "updating application grades")
	}
	return row.unrow(), nil
}

func (repo applicationRepository) UpdateApplicationStatus(
	ctx context.Context, id int, status application.Status, feedback null.String, exec ...core.DBExecutor,
) (application.Application, error) {
	query := `
UPDATE application
SET status = $2, feedback = $3, updated_at = now()
WHERE id = $1
RETURNING ` + applicationColumns

	var row applicationRow
	err := sqlx.GetContext(ctx, getExec(repo.exec, exec), &row, query, id, string(status), feedback)
	if err != nil {
		return application.Application{}, repo.trapNoRowsErr(err, "updating application status")
	}
	return row.unrow(), nil
}

func (repo applicationRepository) GetProjectByID(ctx context.Context, id int, exec ...core.DBExecutor) (project.Project, error) {
	return getProjectByID(ctx, getExec(repo.exec, exec), id)
}

func (repo applicationRepository) GetPeriod(ctx context.Context, year int, half period.Half, exec ...core.DBExecutor) (period.Period, error) {
	return NewPeriodRepository(getExec(repo.exec, exec)).GetPeriod(ctx, year, half)
}

func (repo applicationRepository) GetStudentByID(ctx context.Context, id int, exec ...core.DBExecutor) (student.Student, error) {
	return NewStudentRepository(getExec(repo.exec, exec)).GetStudentByID(ctx, id)
}
