package student

import (
	"context"
	"errors"

	"github.com/uniteach/monitoria/core"
)

var ErrNotFound = errors.New("student not found")

type (
	Repository interface {
		GetStudentByID(ctx context.Context, id int, exec ...core.DBExecutor) (Student, error)
		UpdateBankingDetails(ctx context.Context, id int, details BankingDetails, exec ...core.DBExecutor) (Student, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) GetByID(ctx context.Context, id int) (Student, error) {
	return svc.repo.GetStudentByID(ctx, id)
}

func (svc *Service) UpdateBankingDetails(ctx context.Context, id int, details BankingDetails) (Student, error) {
	if _, err := svc.repo.GetStudentByID(ctx, id); err != nil {
		return Student{}, err
	}
	return svc.repo.UpdateBankingDetails(ctx, id, details)
}
