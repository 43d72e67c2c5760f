package dummydb

import (
	"context"
	"sort"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/uniteach/monitoria/core"
	"github.com/uniteach/monitoria/core/application"
	"github.com/uniteach/monitoria/core/period"
	"github.com/uniteach/monitoria/core/project"
	"github.com/uniteach/monitoria/core/student"
)

type applicationRepository struct {
	db       *DB
	periods  period.Repository
	students student.Repository
}

var _ application.Repository = (*applicationRepository)(nil) // interface compliance check

func NewApplicationRepository(db *DB) application.Repository {
	return &applicationRepository{
		db:       db,
		periods:  NewPeriodRepository(db),
		students: NewStudentRepository(db),
	}
}

func (repo *applicationRepository) CreateApplication(ctx context.Context, app application.Application, exec ...core.DBExecutor) (application.Application, error) {
	t := repo.db.applications
	t.Lock()
	defer t.Unlock()

	for _, row := range t.rows {
		if row.StudentID == app.StudentID && row.ProjectID == app.ProjectID && row.PeriodID == app.PeriodID {
			return application.Application{}, application.ErrDuplicate
		}
	}

	t.seq++
	app.ID = t.seq
	t.rows[app.ID] = &app
	return app, nil
}

func (repo *applicationRepository) GetApplicationByID(ctx context.Context, id int, exec ...core.DBExecutor) (application.Application, error) {
	t := repo.db.applications
	t.RLock()
	defer t.RUnlock()

	if row, ok := t.rows[id]; ok {
		return *row, nil
	}
	return application.Application{}, application.ErrNotFound
}

func (repo *applicationRepository) QueryCandidates(ctx context.Context, projectID int, exec ...core.DBExecutor) ([]application.Candidate, error) {
	repo.db.applications.RLock()
	defer repo.db.applications.RUnlock()
	repo.db.students.RLock()
	defer repo.db.students.RUnlock()

	candidates := make([]application.Candidate, 0)
	for _, row := range repo.db.applications.rows {
		if row.ProjectID != projectID {
			continue
		}
		c := application.Candidate{
			ApplicationID:   row.ID,
			Kind:            row.Kind,
			Status:          row.Status,
			DisciplineGrade: row.DisciplineGrade,
			SelectionGrade:  row.SelectionGrade,
			CreditRatio:     row.CreditRatio,
			FinalGrade:      row.FinalGrade,
		}
		if stu, ok := repo.db.students.rows[row.StudentID]; ok {
			c.Student = *stu
		}
		candidates = append(candidates, c)
	}
	sort.Slice(candidates, func(i, j int) bool {
		gi, gj := candidates[i].FinalGrade, candidates[j].FinalGrade
		if gi.Valid != gj.Valid {
			return gi.Valid // graded candidates first
		}
		if gi.Float64 != gj.Float64 {
			return gi.Float64 > gj.Float64
		}
		return candidates[i].ApplicationID < candidates[j].ApplicationID
	})
	return candidates, nil
}

func (repo *applicationRepository) QueryApplicationsByStudent(ctx context.Context, studentID int, exec ...core.DBExecutor) ([]application.Application, error) {
	t := repo.db.applications
	t.RLock()
	defer t.RUnlock()

	apps := make([]application.Application, 0)
	for _, row := range t.rows {
		if row.StudentID == studentID {
			apps = append(apps, *row)
		}
	}
	sort.Slice(apps, func(i, j int) bool { return apps[i].ID < apps[j].ID })
	return apps, nil
}

func (repo *applicationRepository) UpdateApplicationGrades(
	ctx context.Context, id int, discipline, selection, cr, final float64, feedback null.String, exec ...core.DBExecutor,
) (application.Application, error) {
	t := repo.db.applications
	t.Lock()
	defer t.Unlock()

	row, ok := t.rows[id]
	if !ok {
		return application.Application{}, application.ErrNotFound
	}
	row.DisciplineGrade = null.Float64From(discipline)
	row.SelectionGrade = null.Float64From(selection)
	row.CreditRatio = null.Float64From(cr)
	row.FinalGrade = null.Float64From(final)
	row.Feedback = feedback
	row.UpdatedAt = time.Now().UTC()
	return *row, nil
}

func (repo *applicationRepository) UpdateApplicationStatus(
	ctx context.Context, id int, status application.Status, feedback null.String, exec ...core.DBExecutor,
) (application.Application, error) {
	t := repo.db.applications
	t.Lock()
	defer t.Unlock()

	row, ok := t.rows[id]
	if !ok {
		return application.Application{}, application.ErrNotFound
	}
	row.Status = status
	row.Feedback = feedback
	row.UpdatedAt = time.Now().UTC()
	return *row, nil
}

func (repo *applicationRepository) GetProjectByID(ctx context.Context, id int, exec ...core.DBExecutor) (project.Project, error) {
	t := repo.db.projects
	t.RLock()
	defer t.RUnlock()

	if row, ok := t.rows[id]; ok {
		return *row, nil
	}
	return project.Project{}, project.ErrNotFound
}

func (repo *applicationRepository) GetPeriod(ctx context.Context, year int, half period.Half, exec ...core.DBExecutor) (period.Period, error) {
	return repo.periods.GetPeriod(ctx, year, half)
}

func (repo *applicationRepository) GetStudentByID(ctx context.Context, id int, exec ...core.DBExecutor) (student.Student, error) {
	return repo.students.GetStudentByID(ctx, id)
}
