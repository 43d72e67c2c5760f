package position

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"

	"github.com/uniteach/monitoria/core"
	"github.com/uniteach/monitoria/core/application"
	"github.com/uniteach/monitoria/core/student"
)

var nowFunc = time.Now // mockable

type (
	Repository interface {
		// CreatePosition returns ErrAlreadyAccepted when a position already
		// exists for the application, and ErrScholarshipTaken when the
		// student already holds a scholarship in the period. Both are backed
		// by unique constraints so concurrent accepts cannot slip through.
		CreatePosition(ctx context.Context, pos Position, exec ...core.DBExecutor) (Position, error)
		GetPositionByID(ctx context.Context, id int, exec ...core.DBExecutor) (Position, error)
		GetPositionByApplicationID(ctx context.Context, applicationID int, exec ...core.DBExecutor) (Position, error)
		// FindHeldScholarship returns the active scholarship position of the
		// student in the given period, or ErrNotFound.
		FindHeldScholarship(ctx context.Context, studentID, periodID int, exec ...core.DBExecutor) (HeldScholarship, error)
		UpdatePositionEnd(ctx context.Context, id int, endDate time.Time, exec ...core.DBExecutor) (Position, error)
		QueryPositionsByStudent(ctx context.Context, studentID int, exec ...core.DBExecutor) ([]Position, error)

		GetApplicationByID(ctx context.Context, id int, exec ...core.DBExecutor) (application.Application, error)
		UpdateApplicationStatus(ctx context.Context, id int, status application.Status, feedback null.String, exec ...core.DBExecutor) (application.Application, error)
		GetStudentByID(ctx context.Context, id int, exec ...core.DBExecutor) (student.Student, error)
	}

	// Issuer turns selected applications into positions.
	Issuer struct {
		db       core.DB
		repo     Repository
		notifier core.Notifier
		log      core.Logger
	}
)

func NewIssuer(db core.DB, repo Repository, notifier core.Notifier, log core.Logger) *Issuer {
	return &Issuer{db: db, repo: repo, notifier: notifier, log: log}
}

// Accept creates the position for a selected application and advances the
// application to the matching accepted status, atomically. Accepting a
// scholarship additionally requires the student's banking details and that no
// other scholarship is held in the same period.
func (svc *Issuer) Accept(ctx context.Context, applicationID, studentID int) (Position, error) {
	app, err := svc.repo.GetApplicationByID(ctx, applicationID)
	if err != nil {
		return Position{}, err
	}
	if app.StudentID != studentID {
		return Position{}, ErrNotOwner
	}

	ptype, ok := typeForStatus(app.Status)
	if !ok {
		switch app.Status {
		case application.StatusAcceptedScholarship, application.StatusAcceptedVolunteer:
			return Position{}, ErrAlreadyAccepted
		}
		return Position{}, &application.StateError{Op: "accept", Status: app.Status}
	}

	if _, err := svc.repo.GetPositionByApplicationID(ctx, applicationID); err == nil {
		return Position{}, ErrAlreadyAccepted
	} else if err != ErrNotFound {
		return Position{}, err
	}

	if ptype == TypeScholarship {
		stu, err := svc.repo.GetStudentByID(ctx, app.StudentID)
		if err != nil {
			return Position{}, err
		}
		if !stu.HasBankingDetails() {
			return Position{}, core.NewValidationError(ErrBankingDetails,
				core.FieldError{Field: "bank", Error: "banking details are incomplete"})
		}

		if held, err := svc.repo.FindHeldScholarship(ctx, app.StudentID, app.PeriodID); err == nil {
			return Position{}, &ScholarshipHeldError{Held: held}
		} else if err != ErrNotFound {
			return Position{}, err
		}
	}

	pos := Position{
		StudentID:     app.StudentID,
		ProjectID:     app.ProjectID,
		ApplicationID: app.ID,
		PeriodID:      app.PeriodID,
		Type:          ptype,
		StartDate:     nowFunc().UTC(),
		CreatedAt:     nowFunc().UTC(),
	}
	err = core.Atomic(ctx, svc.db, func(tx core.DBTransactor) error {
		var err error
		pos, err = svc.repo.CreatePosition(ctx, pos, tx)
		if err != nil {
			return err
		}
		_, err = svc.repo.UpdateApplicationStatus(ctx, app.ID, acceptedStatus(ptype), app.Feedback, tx)
		return err
	})
	if err != nil {
		if err == ErrScholarshipTaken {
			// lost the race; name the winning project
			if held, lerr := svc.repo.FindHeldScholarship(ctx, app.StudentID, app.PeriodID); lerr == nil {
				return Position{}, &ScholarshipHeldError{Held: held}
			}
		}
		return Position{}, err
	}

	svc.log.Info("position issued", "position", pos.ID, "application", app.ID, "type", string(ptype))
	svc.notify(ctx, core.EventApplicationAccepted, pos)
	return pos, nil
}

// Reject lets the owning student turn down a selected application. No
// position is created.
func (svc *Issuer) Reject(ctx context.Context, applicationID, studentID int, reason string) error {
	app, err := svc.repo.GetApplicationByID(ctx, applicationID)
	if err != nil {
		return err
	}
	if app.StudentID != studentID {
		return ErrNotOwner
	}
	if !app.Status.Selected() {
		return &application.StateError{Op: "reject", Status: app.Status}
	}

	feedback := app.Feedback
	if reason = core.CleanString(reason); reason != "" {
		feedback = null.StringFrom(reason)
	}
	if _, err := svc.repo.UpdateApplicationStatus(ctx, app.ID, application.StatusRejectedByStudent, feedback); err != nil {
		return err
	}

	svc.log.Info("position declined", "application", app.ID)
	svc.notify(ctx, core.EventApplicationRejected, map[string]interface{}{
		"application_id": app.ID,
		"student_id":     app.StudentID,
		"project_id":     app.ProjectID,
		"reason":         reason,
	})
	return nil
}

// Finalize closes a position when the period ends. It may happen once.
func (svc *Issuer) Finalize(ctx context.Context, positionID int, endDate time.Time) (Position, error) {
	pos, err := svc.repo.GetPositionByID(ctx, positionID)
	if err != nil {
		return Position{}, err
	}
	if pos.EndDate.Valid {
		return Position{}, ErrAlreadyFinalized
	}
	if endDate.Before(pos.StartDate) {
		return Position{}, core.NewValidationError(nil,
			core.FieldError{Field: "end_date", Error: "must not be before the position's start date"})
	}
	return svc.repo.UpdatePositionEnd(ctx, positionID, endDate)
}

func (svc *Issuer) ByStudent(ctx context.Context, studentID int) ([]Position, error) {
	return svc.repo.QueryPositionsByStudent(ctx, studentID)
}

func (svc *Issuer) notify(ctx context.Context, typ core.EventType, payload interface{}) {
	if svc.notifier == nil {
		return
	}
	svc.notifier.Notify(ctx, core.Event{
		ID:         uuid.New().String(),
		Type:       typ,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	})
}
