package application

import (
	"context"
	"math"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/uniteach/monitoria/core"
	"github.com/uniteach/monitoria/core/period"
	"github.com/uniteach/monitoria/core/project"
	"github.com/uniteach/monitoria/core/student"
)

var nowFunc = time.Now // mockable

// Actor identifies who is rejecting an application.
type Actor string

const (
	ActorProfessor Actor = "PROFESSOR"
	ActorStudent   Actor = "STUDENT"
)

type (
	Repository interface {
		CreateApplication(ctx context.Context, app Application, exec ...core.DBExecutor) (Application, error)
		GetApplicationByID(ctx context.Context, id int, exec ...core.DBExecutor) (Application, error)
		QueryCandidates(ctx context.Context, projectID int, exec ...core.DBExecutor) ([]Candidate, error)
		QueryApplicationsByStudent(ctx context.Context, studentID int, exec ...core.DBExecutor) ([]Application, error)
		UpdateApplicationGrades(ctx context.Context, id int, discipline, selection, cr, final float64, feedback null.String, exec ...core.DBExecutor) (Application, error)
		UpdateApplicationStatus(ctx context.Context, id int, status Status, feedback null.String, exec ...core.DBExecutor) (Application, error)

		GetProjectByID(ctx context.Context, id int, exec ...core.DBExecutor) (project.Project, error)
		GetPeriod(ctx context.Context, year int, half period.Half, exec ...core.DBExecutor) (period.Period, error)
		GetStudentByID(ctx context.Context, id int, exec ...core.DBExecutor) (student.Student, error)
	}

	Service struct {
		repo Repository
		log  core.Logger
	}
)

func NewService(repo Repository, log core.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Apply submits a new application. The target project must be approved, its
// enrollment period open, and the desired vacancy kind must have openings.
func (svc *Service) Apply(ctx context.Context, na NewApplication) (Application, error) {
	stu, err := svc.repo.GetStudentByID(ctx, na.StudentID)
	if err != nil {
		return Application{}, err
	}

	proj, err := svc.repo.GetProjectByID(ctx, na.ProjectID)
	if err != nil {
		return Application{}, err
	}
	if !proj.Allocatable() {
		return Application{}, project.ErrNotFound
	}

	per, err := svc.repo.GetPeriod(ctx, proj.Year, proj.Half)
	if err != nil {
		if err == period.ErrNotFound {
			return Application{}, ErrPeriodClosed
		}
		return Application{}, err
	}
	if !per.Open(nowFunc()) {
		return Application{}, ErrPeriodClosed
	}

	switch na.Kind {
	case KindScholarship:
		if proj.Allocated() <= 0 {
			return Application{}, ErrNoScholarshipOpenings
		}
	case KindVolunteer:
		if proj.RequestedVolunteers <= 0 {
			return Application{}, ErrNoVolunteerOpenings
		}
	case KindAny:
		if proj.Allocated() <= 0 && proj.RequestedVolunteers <= 0 {
			return Application{}, ErrNoScholarshipOpenings
		}
	}

	now := nowFunc().UTC()
	app := Application{
		StudentID:   na.StudentID,
		ProjectID:   na.ProjectID,
		PeriodID:    per.ID,
		Kind:        na.Kind,
		Status:      StatusSubmitted,
		CreditRatio: null.Float64From(stu.CreditRatio),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	app, err = svc.repo.CreateApplication(ctx, app)
	if err != nil {
		return Application{}, err
	}

	svc.log.Info("application submitted", "application", app.ID, "project", proj.ID)
	return app, nil
}

// Grade records the professor's evaluation while the application is still
// submitted. The final grade is the unweighted average of the discipline
// grade, the selection grade and the student's credit ratio, rounded to two
// decimals.
func (svc *Service) Grade(ctx context.Context, id int, in GradeInput) (Application, error) {
	app, err := svc.repo.GetApplicationByID(ctx, id)
	if err != nil {
		return Application{}, err
	}
	if app.Status != StatusSubmitted {
		return Application{}, &StateError{Op: "grade", Status: app.Status}
	}

	stu, err := svc.repo.GetStudentByID(ctx, app.StudentID)
	if err != nil {
		return Application{}, err
	}

	final := FinalGrade(in.DisciplineGrade, in.SelectionGrade, stu.CreditRatio)

	feedback := app.Feedback
	if in.Feedback != "" {
		feedback = null.StringFrom(in.Feedback)
	}
	app, err = svc.repo.UpdateApplicationGrades(ctx, id, in.DisciplineGrade, in.SelectionGrade, stu.CreditRatio, final, feedback)
	if err != nil {
		return Application{}, err
	}

	svc.log.Info("candidate graded", "application", id, "final_grade", final)
	return app, nil
}

// FinalGrade computes round((discipline + selection + creditRatio) / 3, 2).
func FinalGrade(discipline, selection, creditRatio float64) float64 {
	return math.Round((discipline+selection+creditRatio)/3*100) / 100
}

// Select moves a submitted application to the corresponding selected state.
func (svc *Service) Select(ctx context.Context, id int, kind Kind) (Application, error) {
	if kind != KindScholarship && kind != KindVolunteer {
		return Application{}, core.NewValidationError(nil, core.FieldError{
			Field: "kind", Error: "must be SCHOLARSHIP or VOLUNTEER",
		})
	}

	app, err := svc.repo.GetApplicationByID(ctx, id)
	if err != nil {
		return Application{}, err
	}
	if app.Status != StatusSubmitted {
		return Application{}, &StateError{Op: "select", Status: app.Status}
	}

	next := StatusSelectedVolunteer
	if kind == KindScholarship {
		next = StatusSelectedScholarship
	}
	app, err = svc.repo.UpdateApplicationStatus(ctx, id, next, app.Feedback)
	if err != nil {
		return Application{}, err
	}

	svc.log.Info("candidate selected", "application", id, "kind", string(kind))
	return app, nil
}

// Reject terminates an application that has not been accepted yet.
func (svc *Service) Reject(ctx context.Context, id int, by Actor, reason string) (Application, error) {
	app, err := svc.repo.GetApplicationByID(ctx, id)
	if err != nil {
		return Application{}, err
	}

	next := StatusRejectedByProfessor
	if by == ActorStudent {
		next = StatusRejectedByStudent
	}
	if !app.Status.CanTransition(next) {
		return Application{}, &StateError{Op: "reject", Status: app.Status}
	}

	feedback := app.Feedback
	if reason = core.CleanString(reason); reason != "" {
		feedback = null.StringFrom(reason)
	}
	app, err = svc.repo.UpdateApplicationStatus(ctx, id, next, feedback)
	if err != nil {
		return Application{}, err
	}

	svc.log.Info("application rejected", "application", id, "by", string(by))
	return app, nil
}

// Candidates lists a project's submitted applications, best final grade first.
func (svc *Service) Candidates(ctx context.Context, projectID int) ([]Candidate, error) {
	if _, err := svc.repo.GetProjectByID(ctx, projectID); err != nil {
		return nil, err
	}
	return svc.repo.QueryCandidates(ctx, projectID)
}

func (svc *Service) ByStudent(ctx context.Context, studentID int) ([]Application, error) {
	return svc.repo.QueryApplicationsByStudent(ctx, studentID)
}
