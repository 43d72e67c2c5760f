package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/uniteach/monitoria/core/application"
	"github.com/uniteach/monitoria/core/period"
	"github.com/uniteach/monitoria/core/position"
	"github.com/uniteach/monitoria/core/project"
	"github.com/uniteach/monitoria/core/student"
	testutil "github.com/uniteach/monitoria/tests"
)

type applicationFixture struct {
	*testApp
	project project.Project
	student student.Student
}

func newApplicationFixture(t *testing.T) *applicationFixture {
	t.Helper()
	ta := newTestApp(t)
	testutil.CreatePeriod(t, ta.db, 2026, period.Half1, 10)
	dep := testutil.CreateDepartment(t, ta.db, "Computer Science", "DCC")
	return &applicationFixture{
		testApp: ta,
		project: testutil.CreateProject(t, ta.db, dep, "Algorithms I", 2026, period.Half1, 2),
		student: testutil.CreateStudent(t, ta.db, "Ana", "ana@uni.test", "2021001", 8),
	}
}

func (f *applicationFixture) apply(t *testing.T, kind application.Kind) application.Application {
	t.Helper()
	body := marchallObj(t, application.NewApplication{
		StudentID: f.student.ID, ProjectID: f.project.ID, Kind: kind,
	})
	rec := f.serve(newRequest(http.MethodPost, "/v1/applications", body))
	if rec.Code != http.StatusCreated {
		t.Fatalf("apply failed: code = %v; body %s", rec.Code, rec.Body.String())
	}
	var app application.Application
	if err := json.Unmarshal(rec.Body.Bytes(), &app); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	return app
}

func TestApplicationAPI_apply(t *testing.T) {
	f := newApplicationFixture(t)

	app := f.apply(t, application.KindAny)
	if app.Status != application.StatusSubmitted {
		t.Errorf("apply() status = %s, want %s", app.Status, application.StatusSubmitted)
	}
	if !app.CreditRatio.Valid || app.CreditRatio.Float64 != 8 {
		t.Errorf("apply() credit_ratio = %v, want snapshot of 8", app.CreditRatio)
	}

	tests := []httpTest{
		{
			name:   "Duplicate application conflicts",
			method: http.MethodPost,
			path:   "/v1/applications",
			body: marchallObj(t, application.NewApplication{
				StudentID: f.student.ID, ProjectID: f.project.ID, Kind: application.KindVolunteer,
			}),
			wantCode: http.StatusConflict,
			wantData: marchallObj(t, httpErr{Error: application.ErrDuplicate.Error()}),
		},
		{
			name:   "Unknown project",
			method: http.MethodPost,
			path:   "/v1/applications",
			body: marchallObj(t, application.NewApplication{
				StudentID: f.student.ID, ProjectID: 999, Kind: application.KindAny,
			}),
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: project.ErrNotFound.Error()}),
		},
		{
			name:     "Invalid kind",
			method:   http.MethodPost,
			path:     "/v1/applications",
			body:     []byte(fmt.Sprintf(`{"student_id": %d, "project_id": %d, "kind": "PAID"}`, f.student.ID, f.project.ID)),
			wantCode: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.serve(newRequest(tt.method, tt.path, tt.body))
			checkCodeAndData(t, tt, rec)
		})
	}
}

func TestApplicationAPI_applyClosedPeriod(t *testing.T) {
	ta := newTestApp(t)
	dep := testutil.CreateDepartment(t, ta.db, "Computer Science", "DCC")
	proj := testutil.CreateProject(t, ta.db, dep, "Algorithms I", 2026, period.Half2, 2)
	stu := testutil.CreateStudent(t, ta.db, "Ana", "ana@uni.test", "2021001", 8)

	body := marchallObj(t, application.NewApplication{
		StudentID: stu.ID, ProjectID: proj.ID, Kind: application.KindAny,
	})
	rec := ta.serve(newRequest(http.MethodPost, "/v1/applications", body))
	tt := httpTest{
		wantCode: http.StatusBadRequest,
		wantData: marchallObj(t, httpErr{Error: application.ErrPeriodClosed.Error()}),
	}
	checkCodeAndData(t, tt, rec)
}

func TestApplicationAPI_gradeAndSelect(t *testing.T) {
	f := newApplicationFixture(t)
	app := f.apply(t, application.KindAny)

	gradePath := fmt.Sprintf("/v1/applications/%d/grade", app.ID)
	rec := f.serve(newRequest(http.MethodPut, gradePath, marchallObj(t, application.GradeInput{
		DisciplineGrade: 8,
		SelectionGrade:  9,
	})))
	if rec.Code != http.StatusOK {
		t.Fatalf("grade failed: code = %v; body %s", rec.Code, rec.Body.String())
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &app); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if !app.FinalGrade.Valid || app.FinalGrade.Float64 != 8.33 {
		t.Errorf("grade() final_grade = %v, want 8.33", app.FinalGrade)
	}

	t.Run("Grade out of range", func(t *testing.T) {
		rec := f.serve(newRequest(http.MethodPut, gradePath, []byte(`{"discipline_grade": 11, "selection_grade": 9}`)))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("failed! code = %v; wantCode %v", rec.Code, http.StatusBadRequest)
		}
	})

	selectPath := fmt.Sprintf("/v1/applications/%d/select", app.ID)
	rec = f.serve(newRequest(http.MethodPut, selectPath, marchallObj(t, selectRequest{Kind: application.KindScholarship})))
	if rec.Code != http.StatusOK {
		t.Fatalf("select failed: code = %v; body %s", rec.Code, rec.Body.String())
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &app); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if app.Status != application.StatusSelectedScholarship {
		t.Errorf("select() status = %s, want %s", app.Status, application.StatusSelectedScholarship)
	}

	t.Run("Grading after selection conflicts", func(t *testing.T) {
		rec := f.serve(newRequest(http.MethodPut, gradePath, marchallObj(t, application.GradeInput{
			DisciplineGrade: 7,
			SelectionGrade:  7,
		})))
		if rec.Code != http.StatusConflict {
			t.Errorf("failed! code = %v; wantCode %v; body %s", rec.Code, http.StatusConflict, rec.Body.String())
		}
	})

	t.Run("ANY is not selectable", func(t *testing.T) {
		rec := f.serve(newRequest(http.MethodPut, selectPath, []byte(`{"kind": "ANY"}`)))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("failed! code = %v; wantCode %v", rec.Code, http.StatusBadRequest)
		}
	})
}

func TestApplicationAPI_candidates(t *testing.T) {
	f := newApplicationFixture(t)
	f.apply(t, application.KindAny)

	rec := f.serve(newRequest(http.MethodGet, fmt.Sprintf("/v1/projects/%d/candidates", f.project.ID)))
	if rec.Code != http.StatusOK {
		t.Fatalf("candidates failed: code = %v; body %s", rec.Code, rec.Body.String())
	}
	var candidates []application.Candidate
	if err := json.Unmarshal(rec.Body.Bytes(), &candidates); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if len(candidates) != 1 || candidates[0].Student.ID != f.student.ID {
		t.Errorf("candidates() = %+v", candidates)
	}

	t.Run("Unknown project", func(t *testing.T) {
		rec := f.serve(newRequest(http.MethodGet, "/v1/projects/999/candidates"))
		if rec.Code != http.StatusNotFound {
			t.Errorf("failed! code = %v; wantCode %v", rec.Code, http.StatusNotFound)
		}
	})
}

func TestApplicationAPI_acceptAndFinalize(t *testing.T) {
	f := newApplicationFixture(t)
	app := f.apply(t, application.KindVolunteer)

	selectPath := fmt.Sprintf("/v1/applications/%d/select", app.ID)
	if rec := f.serve(newRequest(http.MethodPut, selectPath, marchallObj(t, selectRequest{Kind: application.KindVolunteer}))); rec.Code != http.StatusOK {
		t.Fatalf("select failed: %s", rec.Body.String())
	}

	acceptPath := fmt.Sprintf("/v1/applications/%d/accept", app.ID)

	t.Run("Only the owner accepts", func(t *testing.T) {
		rec := f.serve(newRequest(http.MethodPost, acceptPath, marchallObj(t, decisionRequest{StudentID: f.student.ID + 1})))
		if rec.Code != http.StatusForbidden {
			t.Errorf("failed! code = %v; wantCode %v; body %s", rec.Code, http.StatusForbidden, rec.Body.String())
		}
	})

	rec := f.serve(newRequest(http.MethodPost, acceptPath, marchallObj(t, decisionRequest{StudentID: f.student.ID})))
	if rec.Code != http.StatusCreated {
		t.Fatalf("accept failed: code = %v; body %s", rec.Code, rec.Body.String())
	}
	var pos position.Position
	if err := json.Unmarshal(rec.Body.Bytes(), &pos); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if pos.Type != position.TypeVolunteer || pos.EndDate.Valid {
		t.Errorf("accept() = %+v", pos)
	}

	t.Run("Second accept conflicts", func(t *testing.T) {
		rec := f.serve(newRequest(http.MethodPost, acceptPath, marchallObj(t, decisionRequest{StudentID: f.student.ID})))
		tt := httpTest{
			wantCode: http.StatusConflict,
			wantData: marchallObj(t, httpErr{Error: position.ErrAlreadyAccepted.Error()}),
		}
		checkCodeAndData(t, tt, rec)
	})

	finalizePath := fmt.Sprintf("/v1/positions/%d/finalize", pos.ID)
	end := pos.StartDate.Add(90 * 24 * time.Hour)

	rec = f.serve(newRequest(http.MethodPut, finalizePath, marchallObj(t, finalizeRequest{EndDate: end})))
	if rec.Code != http.StatusOK {
		t.Fatalf("finalize failed: code = %v; body %s", rec.Code, rec.Body.String())
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &pos); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if !pos.EndDate.Valid {
		t.Error("finalize() left the position open")
	}

	t.Run("Second finalize conflicts", func(t *testing.T) {
		rec := f.serve(newRequest(http.MethodPut, finalizePath, marchallObj(t, finalizeRequest{EndDate: end})))
		if rec.Code != http.StatusConflict {
			t.Errorf("failed! code = %v; wantCode %v; body %s", rec.Code, http.StatusConflict, rec.Body.String())
		}
	})
}

func TestApplicationAPI_reject(t *testing.T) {
	f := newApplicationFixture(t)
	app := f.apply(t, application.KindVolunteer)

	selectPath := fmt.Sprintf("/v1/applications/%d/select", app.ID)
	if rec := f.serve(newRequest(http.MethodPut, selectPath, marchallObj(t, selectRequest{Kind: application.KindVolunteer}))); rec.Code != http.StatusOK {
		t.Fatalf("select failed: %s", rec.Body.String())
	}

	rejectPath := fmt.Sprintf("/v1/applications/%d/reject", app.ID)
	rec := f.serve(newRequest(http.MethodPost, rejectPath, marchallObj(t, decisionRequest{
		StudentID: f.student.ID, Reason: "accepted another offer",
	})))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("reject failed: code = %v; body %s", rec.Code, rec.Body.String())
	}

	rec = f.serve(newRequest(http.MethodGet, fmt.Sprintf("/v1/students/%d/applications", f.student.ID)))
	if rec.Code != http.StatusOK {
		t.Fatalf("applications failed: %s", rec.Body.String())
	}
	var apps []application.Application
	if err := json.Unmarshal(rec.Body.Bytes(), &apps); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if len(apps) != 1 || apps[0].Status != application.StatusRejectedByStudent {
		t.Errorf("reject() applications = %+v", apps)
	}
}
