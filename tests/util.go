// Package testutil provides shared fixtures for service and handler tests.
package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/uniteach/monitoria/core"
	"github.com/uniteach/monitoria/core/period"
	"github.com/uniteach/monitoria/core/project"
	"github.com/uniteach/monitoria/core/student"
	dummydb "github.com/uniteach/monitoria/storage/database/dummy"
)

// NopLogger discards everything; services require a logger.
type NopLogger struct{}

var _ core.Logger = (*NopLogger)(nil)

func (NopLogger) Info(msg string, args ...interface{})             {}
func (NopLogger) Error(msg string, err error, args ...interface{}) {}
func (NopLogger) Enable(enabled bool)                              {}

// EventRecorder captures dispatched events so tests can assert on them.
type EventRecorder struct {
	mu     sync.Mutex
	Events []core.Event
}

var _ core.Notifier = (*EventRecorder)(nil)

func (r *EventRecorder) Notify(ctx context.Context, evt core.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, evt)
}

func (r *EventRecorder) Recorded() []core.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]core.Event(nil), r.Events...)
}

func OpenDB(t *testing.T) *dummydb.DB {
	t.Helper()
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("OpenDB() failed: %v", err)
	}
	return db
}

// CreatePeriod registers an enrollment period open around now, with an
// optional scholarship ceiling (0 leaves it unset).
func CreatePeriod(t *testing.T, db *dummydb.DB, year int, half period.Half, ceiling int) period.Period {
	t.Helper()
	now := time.Now().UTC()
	per := period.Period{
		Year:      year,
		Half:      half,
		StartDate: now.Add(-24 * time.Hour),
		EndDate:   now.Add(30 * 24 * time.Hour),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if ceiling > 0 {
		per.ScholarshipCeiling = null.IntFrom(ceiling)
	}
	per, err := dummydb.NewPeriodRepository(db).CreatePeriod(context.Background(), per)
	if err != nil {
		t.Fatalf("CreatePeriod() failed: %v", err)
	}
	return per
}

func CreateDepartment(t *testing.T, db *dummydb.DB, name, acronym string) project.Department {
	t.Helper()
	return db.AddDepartment(project.Department{Name: name, Acronym: acronym})
}

// CreateProject registers an approved project taking part in allocation.
func CreateProject(
	t *testing.T,
	db *dummydb.DB,
	dep project.Department,
	title string,
	year int,
	half period.Half,
	allocated int,
) project.Project {
	t.Helper()
	now := time.Now().UTC()
	proj := project.Project{
		DepartmentID:          dep.ID,
		Title:                 title,
		Year:                  year,
		Half:                  half,
		Status:                project.StatusApproved,
		RequestedScholarships: allocated,
		RequestedVolunteers:   2,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	if allocated > 0 {
		proj.AllocatedScholarships = null.IntFrom(allocated)
	}
	return db.AddProject(proj)
}

func CreateStudent(t *testing.T, db *dummydb.DB, name, email, registration string, cr float64) student.Student {
	t.Helper()
	now := time.Now().UTC()
	return db.AddStudent(student.Student{
		Name:         name,
		Email:        email,
		Registration: registration,
		CreditRatio:  cr,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}

// WithBankingDetails fills in the fields required to accept a scholarship.
func WithBankingDetails(t *testing.T, db *dummydb.DB, stu student.Student) student.Student {
	t.Helper()
	stu, err := dummydb.NewStudentRepository(db).UpdateBankingDetails(context.Background(), stu.ID, student.BankingDetails{
		Bank:        "001",
		BankBranch:  "1234",
		BankAccount: "56789-0",
	})
	if err != nil {
		t.Fatalf("WithBankingDetails() failed: %v", err)
	}
	return stu
}
