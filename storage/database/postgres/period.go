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
)

type periodRow struct {
	ID                 int       `db:"id"`
	Year               int       `db:"year"`
	Half               string    `db:"half"`
	StartDate          time.Time `db:"start_date"`
	EndDate            time.Time `db:"end_date"`
	ScholarshipCeiling null.Int  `db:"scholarship_ceiling"`
	CreatedAt          time.Time `db:"created_at"`
	UpdatedAt          time.Time `db:"updated_at"`
}

func (r periodRow) unrow() period.Period {
	return period.Period{
		ID:                 r.ID,
		Year:               r.Year,
		Half:               period.Half(r.Half),
		StartDate:          r.StartDate,
		EndDate:            r.EndDate,
		ScholarshipCeiling: r.ScholarshipCeiling,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
}

type periodRepository struct {
	exec core.DBExecutor
}

var _ period.Repository = (*periodRepository)(nil) // interface compliance check

func NewPeriodRepository(exec core.DBExecutor) *periodRepository {
	return &periodRepository{exec: exec}
}

func (repo periodRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return period.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo periodRepository) CreatePeriod(ctx context.Context, per period.Period, exec ...core.DBExecutor) (period.Period, error) {
	const query = `
INSERT INTO enrollment_period (year, half, start_date, end_date, scholarship_ceiling, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id`

	var row periodRow
	err := getExec(repo.exec, exec).QueryRowxContext(ctx, query,
		per.Year, string(per.Half), per.StartDate, per.EndDate, per.ScholarshipCeiling, per.CreatedAt, per.UpdatedAt,
	).Scan(&row.ID)
	if err != nil {
		if constraintViolated(err, "enrollment_period_year_half_key") {
			return period.Period{}, period.ErrExists
		}
		return period.Period{}, errors.Wrap(err, "inserting enrollment period")
	}
	per.ID = row.ID
	return per, nil
}

func (repo periodRepository) GetPeriod(ctx context.Context, year int, half period.Half, exec ...core.DBExecutor) (period.Period, error) {
	const query = `
SELECT id, year, half, start_date, end_date, scholarship_ceiling, created_at, updated_at
FROM enrollment_period
WHERE year = $1 AND half = $2`

	var row periodRow
	if err := sqlx.GetContext(ctx, getExec(repo.exec, exec), &row, query, year, string(half)); err != nil {
		return period.Period{}, repo.trapNoRowsErr(err, "getting enrollment period")
	}
	return row.unrow(), nil
}

func (repo periodRepository) GetPeriodByID(ctx context.Context, id int, exec ...core.DBExecutor) (period.Period, error) {
	const query = `
SELECT id, year, half, start_date, end_date, scholarship_ceiling, created_at, updated_at
FROM enrollment_period
WHERE id = $1`

	var row periodRow
	if err := sqlx.GetContext(ctx, getExec(repo.exec, exec), &row, query, id); err != nil {
		return period.Period{}, repo.trapNoRowsErr(err, "getting enrollment period")
	}
	return row.unrow(), nil
}

func (repo periodRepository) QueryPeriods(ctx context.Context, year int, exec ...core.DBExecutor) ([]period.Period, error) {
	query := `
SELECT id, year, half, start_date, end_date, scholarship_ceiling, created_at, updated_at
FROM enrollment_period`
	args := make([]interface{}, 0, 1)
	if year > 0 {
		query += ` WHERE year = $1`
		args = append(args, year)
	}
	query += ` ORDER BY year, half`

	var rows []periodRow
	if err := sqlx.SelectContext(ctx, getExec(repo.exec, exec), &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying enrollment periods")
	}
	periods := make([]period.Period, 0, len(rows))
	for _, row := range rows {
		periods = append(periods, row.unrow())
	}
	return periods, nil
}
