package application_test

import (
	"context"
	"testing"
	"time"

	"github.com/uniteach/monitoria/core/application"
	"github.com/uniteach/monitoria/core/period"
	"github.com/uniteach/monitoria/core/project"
	dummydb "github.com/uniteach/monitoria/storage/database/dummy"
	testutil "github.com/uniteach/monitoria/tests"
)

func setup(t *testing.T) (*dummydb.DB, *application.Service) {
	t.Helper()
	db := testutil.OpenDB(t)
	svc := application.NewService(dummydb.NewApplicationRepository(db), testutil.NopLogger{})
	return db, svc
}

func TestService_Apply(t *testing.T) {
	db, svc := setup(t)
	ctx := context.Background()

	testutil.CreatePeriod(t, db, 2026, period.Half1, 10)
	dep := testutil.CreateDepartment(t, db, "Computer Science", "DCC")
	proj := testutil.CreateProject(t, db, dep, "Algorithms I", 2026, period.Half1, 2)
	stu := testutil.CreateStudent(t, db, "Ana", "ana@uni.test", "2021001", 8.5)

	app, err := svc.Apply(ctx, application.NewApplication{
		StudentID: stu.ID,
		ProjectID: proj.ID,
		Kind:      application.KindScholarship,
	})
	if err != nil {
		t.Fatalf("Apply() failed: %v", err)
	}
	if app.Status != application.StatusSubmitted {
		t.Errorf("Apply() status = %s, want %s", app.Status, application.StatusSubmitted)
	}
	if !app.CreditRatio.Valid || app.CreditRatio.Float64 != 8.5 {
		t.Errorf("Apply() must snapshot the student's credit ratio, got %v", app.CreditRatio)
	}

	// same (student, project, period) twice
	_, err = svc.Apply(ctx, application.NewApplication{
		StudentID: stu.ID,
		ProjectID: proj.ID,
		Kind:      application.KindVolunteer,
	})
	if err != application.ErrDuplicate {
		t.Errorf("Apply() error = %v, wantErr %v", err, application.ErrDuplicate)
	}
}

func TestService_Apply_projectChecks(t *testing.T) {
	db, svc := setup(t)
	ctx := context.Background()

	testutil.CreatePeriod(t, db, 2026, period.Half1, 10)
	dep := testutil.CreateDepartment(t, db, "Mathematics", "DMAT")
	stu := testutil.CreateStudent(t, db, "Bruno", "bruno@uni.test", "2021002", 7)

	draft := db.AddProject(project.Project{
		DepartmentID:          dep.ID,
		Title:                 "Calculus II",
		Year:                  2026,
		Half:                  period.Half1,
		Status:                project.StatusDraft,
		RequestedScholarships: 2,
	})

	noScholarships := testutil.CreateProject(t, db, dep, "Linear Algebra", 2026, period.Half1, 0)
	noPeriod := testutil.CreateProject(t, db, dep, "Statistics", 2027, period.Half1, 2)

	tests := []struct {
		name    string
		na      application.NewApplication
		wantErr error
	}{
		{
			name:    "unknown project",
			na:      application.NewApplication{StudentID: stu.ID, ProjectID: 999, Kind: application.KindAny},
			wantErr: project.ErrNotFound,
		},
		{
			name:    "unapproved project",
			na:      application.NewApplication{StudentID: stu.ID, ProjectID: draft.ID, Kind: application.KindAny},
			wantErr: project.ErrNotFound,
		},
		{
			name:    "no enrollment period",
			na:      application.NewApplication{StudentID: stu.ID, ProjectID: noPeriod.ID, Kind: application.KindAny},
			wantErr: application.ErrPeriodClosed,
		},
		{
			name:    "no scholarship openings",
			na:      application.NewApplication{StudentID: stu.ID, ProjectID: noScholarships.ID, Kind: application.KindScholarship},
			wantErr: application.ErrNoScholarshipOpenings,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Apply(ctx, tt.na); err != tt.wantErr {
				t.Errorf("Apply() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestService_Grade(t *testing.T) {
	db, svc := setup(t)
	ctx := context.Background()

	testutil.CreatePeriod(t, db, 2026, period.Half1, 10)
	dep := testutil.CreateDepartment(t, db, "Computer Science", "DCC")
	proj := testutil.CreateProject(t, db, dep, "Algorithms I", 2026, period.Half1, 2)
	stu := testutil.CreateStudent(t, db, "Ana", "ana@uni.test", "2021001", 7)

	app, err := svc.Apply(ctx, application.NewApplication{
		StudentID: stu.ID, ProjectID: proj.ID, Kind: application.KindScholarship,
	})
	if err != nil {
		t.Fatalf("Apply() failed: %v", err)
	}

	app, err = svc.Grade(ctx, app.ID, application.GradeInput{DisciplineGrade: 8, SelectionGrade: 9})
	if err != nil {
		t.Fatalf("Grade() failed: %v", err)
	}
	// (8 + 9 + 7) / 3 = 8.00
	if !app.FinalGrade.Valid || app.FinalGrade.Float64 != 8.00 {
		t.Errorf("Grade() final grade = %v, want 8.00", app.FinalGrade)
	}

	// grading is only allowed while submitted
	if _, err = svc.Select(ctx, app.ID, application.KindScholarship); err != nil {
		t.Fatalf("Select() failed: %v", err)
	}
	_, err = svc.Grade(ctx, app.ID, application.GradeInput{DisciplineGrade: 10, SelectionGrade: 10})
	if serr, ok := err.(*application.StateError); !ok || serr.Op != "grade" {
		t.Errorf("Grade() error = %v, want StateError{Op: grade}", err)
	}
}

func TestFinalGrade(t *testing.T) {
	tests := []struct {
		name                  string
		discipline, selection float64
		creditRatio           float64
		want                  float64
	}{
		{name: "integer average", discipline: 8, selection: 9, creditRatio: 7, want: 8},
		{name: "rounds up", discipline: 9.5, selection: 8.7, creditRatio: 6.9, want: 8.37},
		{name: "rounds half away from zero", discipline: 10, selection: 9, creditRatio: 8.5, want: 9.17},
		{name: "all zeros", want: 0},
		{name: "maximum", discipline: 10, selection: 10, creditRatio: 10, want: 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := application.FinalGrade(tt.discipline, tt.selection, tt.creditRatio); got != tt.want {
				t.Errorf("FinalGrade() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestService_Select(t *testing.T) {
	db, svc := setup(t)
	ctx := context.Background()

	testutil.CreatePeriod(t, db, 2026, period.Half1, 10)
	dep := testutil.CreateDepartment(t, db, "Computer Science", "DCC")
	proj := testutil.CreateProject(t, db, dep, "Algorithms I", 2026, period.Half1, 2)
	stu := testutil.CreateStudent(t, db, "Ana", "ana@uni.test", "2021001", 7)

	app, err := svc.Apply(ctx, application.NewApplication{
		StudentID: stu.ID, ProjectID: proj.ID, Kind: application.KindAny,
	})
	if err != nil {
		t.Fatalf("Apply() failed: %v", err)
	}

	// ANY is not a concrete vacancy kind
	if _, err = svc.Select(ctx, app.ID, application.KindAny); err == nil {
		t.Error("Select() must reject kind ANY")
	}

	app, err = svc.Select(ctx, app.ID, application.KindVolunteer)
	if err != nil {
		t.Fatalf("Select() failed: %v", err)
	}
	if app.Status != application.StatusSelectedVolunteer {
		t.Errorf("Select() status = %s, want %s", app.Status, application.StatusSelectedVolunteer)
	}

	// selecting twice
	_, err = svc.Select(ctx, app.ID, application.KindVolunteer)
	if serr, ok := err.(*application.StateError); !ok || serr.Op != "select" {
		t.Errorf("Select() error = %v, want StateError{Op: select}", err)
	}
}

func TestService_Reject(t *testing.T) {
	db, svc := setup(t)
	ctx := context.Background()

	testutil.CreatePeriod(t, db, 2026, period.Half1, 10)
	dep := testutil.CreateDepartment(t, db, "Computer Science", "DCC")
	proj := testutil.CreateProject(t, db, dep, "Algorithms I", 2026, period.Half1, 2)
	stu := testutil.CreateStudent(t, db, "Ana", "ana@uni.test", "2021001", 7)

	app, err := svc.Apply(ctx, application.NewApplication{
		StudentID: stu.ID, ProjectID: proj.ID, Kind: application.KindScholarship,
	})
	if err != nil {
		t.Fatalf("Apply() failed: %v", err)
	}

	app, err = svc.Reject(ctx, app.ID, application.ActorProfessor, "insufficient availability")
	if err != nil {
		t.Fatalf("Reject() failed: %v", err)
	}
	if app.Status != application.StatusRejectedByProfessor {
		t.Errorf("Reject() status = %s, want %s", app.Status, application.StatusRejectedByProfessor)
	}
	if app.Feedback.String != "insufficient availability" {
		t.Errorf("Reject() feedback = %q", app.Feedback.String)
	}

	// terminal states stay terminal
	_, err = svc.Reject(ctx, app.ID, application.ActorStudent, "")
	if _, ok := err.(*application.StateError); !ok {
		t.Errorf("Reject() error = %v, want StateError", err)
	}
}

func TestStatus_CanTransition(t *testing.T) {
	tests := []struct {
		from, to application.Status
		want     bool
	}{
		{application.StatusSubmitted, application.StatusSelectedScholarship, true},
		{application.StatusSubmitted, application.StatusSelectedVolunteer, true},
		{application.StatusSubmitted, application.StatusRejectedByProfessor, true},
		{application.StatusSubmitted, application.StatusAcceptedScholarship, false},
		{application.StatusSelectedScholarship, application.StatusAcceptedScholarship, true},
		{application.StatusSelectedScholarship, application.StatusAcceptedVolunteer, false},
		{application.StatusSelectedVolunteer, application.StatusAcceptedVolunteer, true},
		{application.StatusSelectedVolunteer, application.StatusRejectedByStudent, true},
		{application.StatusAcceptedScholarship, application.StatusRejectedByStudent, false},
		{application.StatusRejectedByProfessor, application.StatusSubmitted, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			if got := tt.from.CanTransition(tt.to); got != tt.want {
				t.Errorf("CanTransition() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestService_Candidates(t *testing.T) {
	db, svc := setup(t)
	ctx := context.Background()

	testutil.CreatePeriod(t, db, 2026, period.Half1, 10)
	dep := testutil.CreateDepartment(t, db, "Computer Science", "DCC")
	proj := testutil.CreateProject(t, db, dep, "Algorithms I", 2026, period.Half1, 2)

	grades := []struct {
		registration          string
		discipline, selection float64
	}{
		{"2021001", 6, 7},
		{"2021002", 9, 10},
		{"2021003", 8, 8},
	}
	for _, g := range grades {
		stu := testutil.CreateStudent(t, db, "Student "+g.registration, g.registration+"@uni.test", g.registration, 7)
		app, err := svc.Apply(ctx, application.NewApplication{
			StudentID: stu.ID, ProjectID: proj.ID, Kind: application.KindAny,
		})
		if err != nil {
			t.Fatalf("Apply() failed: %v", err)
		}
		if _, err = svc.Grade(ctx, app.ID, application.GradeInput{
			DisciplineGrade: g.discipline, SelectionGrade: g.selection,
		}); err != nil {
			t.Fatalf("Grade() failed: %v", err)
		}
	}

	candidates, err := svc.Candidates(ctx, proj.ID)
	if err != nil {
		t.Fatalf("Candidates() failed: %v", err)
	}
	if len(candidates) != 3 {
		t.Fatalf("Candidates() returned %d rows, want 3", len(candidates))
	}
	// best final grade first
	wantOrder := []string{"2021002", "2021003", "2021001"}
	for i, want := range wantOrder {
		if got := candidates[i].Student.Registration; got != want {
			t.Errorf("Candidates()[%d] = %s, want %s", i, got, want)
		}
	}

	if _, err := svc.Candidates(ctx, 999); err != project.ErrNotFound {
		t.Errorf("Candidates() error = %v, wantErr %v", err, project.ErrNotFound)
	}
}

func TestService_Apply_periodWindow(t *testing.T) {
	db, svc := setup(t)
	ctx := context.Background()

	// closed period: window ended yesterday
	now := time.Now().UTC()
	per := period.Period{
		Year:      2025,
		Half:      period.Half2,
		StartDate: now.Add(-60 * 24 * time.Hour),
		EndDate:   now.Add(-24 * time.Hour),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := dummydb.NewPeriodRepository(db).CreatePeriod(ctx, per); err != nil {
		t.Fatalf("CreatePeriod() failed: %v", err)
	}
	dep := testutil.CreateDepartment(t, db, "Physics", "DFIS")
	proj := testutil.CreateProject(t, db, dep, "Mechanics", 2025, period.Half2, 2)
	stu := testutil.CreateStudent(t, db, "Carla", "carla@uni.test", "2021003", 9)

	_, err := svc.Apply(ctx, application.NewApplication{
		StudentID: stu.ID, ProjectID: proj.ID, Kind: application.KindScholarship,
	})
	if err != application.ErrPeriodClosed {
		t.Errorf("Apply() error = %v, wantErr %v", err, application.ErrPeriodClosed)
	}
}
