package dummydb

import (
	"context"
	"sort"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/uniteach/monitoria/core"
	"github.com/uniteach/monitoria/core/application"
	"github.com/uniteach/monitoria/core/position"
	"github.com/uniteach/monitoria/core/student"
)

type positionRepository struct {
	db           *DB
	applications application.Repository
	students     student.Repository
}

var _ position.Repository = (*positionRepository)(nil) // interface compliance check

func NewPositionRepository(db *DB) position.Repository {
	return &positionRepository{
		db:           db,
		applications: NewApplicationRepository(db),
		students:     NewStudentRepository(db),
	}
}

// CreatePosition checks both unique constraints under the table lock so
// concurrent accepts resolve the same way they would against the database.
func (repo *positionRepository) CreatePosition(ctx context.Context, pos position.Position, exec ...core.DBExecutor) (position.Position, error) {
	t := repo.db.positions
	t.Lock()
	defer t.Unlock()

	for _, row := range t.rows {
		if row.ApplicationID == pos.ApplicationID {
			return position.Position{}, position.ErrAlreadyAccepted
		}
		if pos.Type == position.TypeScholarship &&
			row.Type == position.TypeScholarship &&
			row.StudentID == pos.StudentID && row.PeriodID == pos.PeriodID {
			return position.Position{}, position.ErrScholarshipTaken
		}
	}

	t.seq++
	pos.ID = t.seq
	t.rows[pos.ID] = &pos
	return pos, nil
}

func (repo *positionRepository) GetPositionByID(ctx context.Context, id int, exec ...core.DBExecutor) (position.Position, error) {
	t := repo.db.positions
	t.RLock()
	defer t.RUnlock()

	if row, ok := t.rows[id]; ok {
		return *row, nil
	}
	return position.Position{}, position.ErrNotFound
}

func (repo *positionRepository) GetPositionByApplicationID(ctx context.Context, applicationID int, exec ...core.DBExecutor) (position.Position, error) {
	t := repo.db.positions
	t.RLock()
	defer t.RUnlock()

	for _, row := range t.rows {
		if row.ApplicationID == applicationID {
			return *row, nil
		}
	}
	return position.Position{}, position.ErrNotFound
}

func (repo *positionRepository) FindHeldScholarship(ctx context.Context, studentID, periodID int, exec ...core.DBExecutor) (position.HeldScholarship, error) {
	repo.db.positions.RLock()
	defer repo.db.positions.RUnlock()
	repo.db.projects.RLock()
	defer repo.db.projects.RUnlock()

	for _, row := range repo.db.positions.rows {
		if row.Type != position.TypeScholarship || row.StudentID != studentID || row.PeriodID != periodID {
			continue
		}
		held := position.HeldScholarship{PositionID: row.ID, ProjectID: row.ProjectID}
		if proj, ok := repo.db.projects.rows[row.ProjectID]; ok {
			held.ProjectTitle = proj.Title
		}
		return held, nil
	}
	return position.HeldScholarship{}, position.ErrNotFound
}

func (repo *positionRepository) UpdatePositionEnd(ctx context.Context, id int, endDate time.Time, exec ...core.DBExecutor) (position.Position, error) {
	t := repo.db.positions
	t.Lock()
	defer t.Unlock()

	row, ok := t.rows[id]
	if !ok {
		return position.Position{}, position.ErrNotFound
	}
	row.EndDate = null.TimeFrom(endDate)
	return *row, nil
}

func (repo *positionRepository) QueryPositionsByStudent(ctx context.Context, studentID int, exec ...core.DBExecutor) ([]position.Position, error) {
	t := repo.db.positions
	t.RLock()
	defer t.RUnlock()

	positions := make([]position.Position, 0)
	for _, row := range t.rows {
		if row.StudentID == studentID {
			positions = append(positions, *row)
		}
	}
	sort.Slice(positions, func(i, j int) bool { return positions[i].ID < positions[j].ID })
	return positions, nil
}

func (repo *positionRepository) GetApplicationByID(ctx context.Context, id int, exec ...core.DBExecutor) (application.Application, error) {
	return repo.applications.GetApplicationByID(ctx, id)
}

func (repo *positionRepository) UpdateApplicationStatus(
	ctx context.Context, id int, status application.Status, feedback null.String, exec ...core.DBExecutor,
) (application.Application, error) {
	return repo.applications.UpdateApplicationStatus(ctx, id, status, feedback)
}

func (repo *positionRepository) GetStudentByID(ctx context.Context, id int, exec ...core.DBExecutor) (student.Student, error) {
	return repo.students.GetStudentByID(ctx, id)
}
