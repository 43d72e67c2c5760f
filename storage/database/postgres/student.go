package pgrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/uniteach/monitoria/core"
	"github.com/uniteach/monitoria/core/student"
)

type studentRow struct {
	ID           int         `db:"id"`
	Name         string      `db:"name"`
	Email        string      `db:"email"`
	Registration string      `db:"registration"`
	CreditRatio  float64     `db:"credit_ratio"`
	Bank         null.String `db:"bank"`
	BankBranch   null.String `db:"bank_branch"`
	BankAccount  null.String `db:"bank_account"`
	CreatedAt    time.Time   `db:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at"`
}

func (r studentRow) unrow() student.Student {
	return student.Student{
		ID:           r.ID,
		Name:         r.Name,
		Email:        r.Email,
		Registration: r.Registration,
		CreditRatio:  r.CreditRatio,
		Bank:         r.Bank,
		BankBranch:   r.BankBranch,
		BankAccount:  r.BankAccount,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

const studentColumns = `id, name, email, registration, credit_ratio, bank, bank_branch, bank_account, created_at, updated_at`

type studentRepository struct {
	exec core.DBExecutor
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(exec core.DBExecutor) *studentRepository {
	return &studentRepository{exec: exec}
}

func (repo studentRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return student.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo studentRepository) GetStudentByID(ctx context.Context, id int, exec ...core.DBExecutor) (student.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM student WHERE id = $1`

	var row studentRow
	if err := sqlx.GetContext(ctx, getExec(repo.exec, exec), &row, query, id); err != nil {
		return student.Student{}, repo.trapNoRowsErr(err, "getting student")
	}
	return row.unrow(), nil
}

func (repo studentRepository) UpdateBankingDetails(ctx context.Context, id int, details student.BankingDetails, exec ...core.DBExecutor) (student.Student, error) {
	query := `
UPDATE student
SET bank = $2, bank_branch = $3, bank_account = $4, updated_at = now()
WHERE id = $1
RETURNING ` + studentColumns

	var row studentRow
	err := sqlx.GetContext(ctx, getExec(repo.exec, exec), &row, query, id, details.Bank, details.BankBranch, details.BankAccount)
	if err != nil {
		return student.Student{}, repo.trapNoRowsErr(err, "updating banking details")
	}
	return row.unrow(), nil
}
