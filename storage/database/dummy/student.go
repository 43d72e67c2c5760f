package dummydb

import (
	"context"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/uniteach/monitoria/core"
	"github.com/uniteach/monitoria/core/student"
)

type studentRepository struct {
	db *DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) GetStudentByID(ctx context.Context, id int, exec ...core.DBExecutor) (student.Student, error) {
	t := repo.db.students
	t.RLock()
	defer t.RUnlock()

	if row, ok := t.rows[id]; ok {
		return *row, nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) UpdateBankingDetails(ctx context.Context, id int, details student.BankingDetails, exec ...core.DBExecutor) (student.Student, error) {
	t := repo.db.students
	t.Lock()
	defer t.Unlock()

	row, ok := t.rows[id]
	if !ok {
		return student.Student{}, student.ErrNotFound
	}
	row.Bank = null.StringFrom(details.Bank)
	row.BankBranch = null.StringFrom(details.BankBranch)
	row.BankAccount = null.StringFrom(details.BankAccount)
	row.UpdatedAt = time.Now().UTC()
	return *row, nil
}
