package dummydb

import (
	"context"
	"sort"
	"time"

	"github.com/uniteach/monitoria/core"
	"github.com/uniteach/monitoria/core/period"
)

type periodRepository struct {
	db *DB
}

var _ period.Repository = (*periodRepository)(nil) // interface compliance check

func NewPeriodRepository(db *DB) period.Repository {
	return &periodRepository{db: db}
}

func (repo *periodRepository) CreatePeriod(ctx context.Context, per period.Period, exec ...core.DBExecutor) (period.Period, error) {
	t := repo.db.periods
	t.Lock()
	defer t.Unlock()

	for _, row := range t.rows {
		if row.Year == per.Year && row.Half == per.Half {
			return period.Period{}, period.ErrExists
		}
	}
	t.seq++
	per.ID = t.seq
	t.rows[per.ID] = &per
	return per, nil
}

func (repo *periodRepository) GetPeriod(ctx context.Context, year int, half period.Half, exec ...core.DBExecutor) (period.Period, error) {
	t := repo.db.periods
	t.RLock()
	defer t.RUnlock()

	for _, row := range t.rows {
		if row.Year == year && row.Half == half {
			return *row, nil
		}
	}
	return period.Period{}, period.ErrNotFound
}

func (repo *periodRepository) GetPeriodByID(ctx context.Context, id int, exec ...core.DBExecutor) (period.Period, error) {
	t := repo.db.periods
	t.RLock()
	defer t.RUnlock()

	if row, ok := t.rows[id]; ok {
		return *row, nil
	}
	return period.Period{}, period.ErrNotFound
}

func (repo *periodRepository) QueryPeriods(ctx context.Context, year int, exec ...core.DBExecutor) ([]period.Period, error) {
	t := repo.db.periods
	t.RLock()
	defer t.RUnlock()

	periods := make([]period.Period, 0, len(t.rows))
	for _, row := range t.rows {
		if year == 0 || row.Year == year {
			periods = append(periods, *row)
		}
	}
	sort.Slice(periods, func(i, j int) bool {
		if periods[i].Year != periods[j].Year {
			return periods[i].Year < periods[j].Year
		}
		return periods[i].Half.Ordinal() < periods[j].Half.Ordinal()
	})
	return periods, nil
}

func (repo *periodRepository) updateCeiling(id, ceiling int) error {
	t := repo.db.periods
	t.Lock()
	defer t.Unlock()

	row, ok := t.rows[id]
	if !ok {
		return period.ErrNotFound
	}
	row.ScholarshipCeiling.SetValid(ceiling)
	row.UpdatedAt = time.Now().UTC()
	return nil
}
