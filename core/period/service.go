package period

import (
	"context"
	"errors"
	"time"

	"github.com/uniteach/monitoria/core"
)

var (
	// errors
	ErrNotFound = errors.New("enrollment period not found")
	ErrExists   = errors.New("an enrollment period for this year and half already exists")
)

type (
	Repository interface {
		CreatePeriod(ctx context.Context, per Period, exec ...core.DBExecutor) (Period, error)
		GetPeriod(ctx context.Context, year int, half Half, exec ...core.DBExecutor) (Period, error)
		GetPeriodByID(ctx context.Context, id int, exec ...core.DBExecutor) (Period, error)
		QueryPeriods(ctx context.Context, year int, exec ...core.DBExecutor) ([]Period, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, np NewPeriod) (Period, error) {
	now := time.Now().UTC()
	per := Period{
		Year:      np.Year,
		Half:      np.Half,
		StartDate: np.StartDate,
		EndDate:   np.EndDate,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreatePeriod(ctx, per)
}

func (svc *Service) Get(ctx context.Context, year int, half Half) (Period, error) {
	return svc.repo.GetPeriod(ctx, year, half)
}

func (svc *Service) Query(ctx context.Context, year int) ([]Period, error) {
	return svc.repo.QueryPeriods(ctx, year)
}
