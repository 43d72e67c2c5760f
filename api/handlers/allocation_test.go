package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/uniteach/monitoria/core/allocation"
	"github.com/uniteach/monitoria/core/period"
	"github.com/uniteach/monitoria/core/project"
	testutil "github.com/uniteach/monitoria/tests"
)

type allocationFixture struct {
	*testApp
	projA, projB project.Project
}

// newAllocationFixture seeds a 2026/H1 period with a ceiling of 10 and two
// approved projects already holding 6 and 3 scholarships.
func newAllocationFixture(t *testing.T) *allocationFixture {
	t.Helper()
	ta := newTestApp(t)
	testutil.CreatePeriod(t, ta.db, 2026, period.Half1, 10)
	dep := testutil.CreateDepartment(t, ta.db, "Computer Science", "DCC")
	return &allocationFixture{
		testApp: ta,
		projA:   testutil.CreateProject(t, ta.db, dep, "Algorithms I", 2026, period.Half1, 6),
		projB:   testutil.CreateProject(t, ta.db, dep, "Databases", 2026, period.Half1, 3),
	}
}

func TestAllocationAPI_update(t *testing.T) {
	f := newAllocationFixture(t)
	path := fmt.Sprintf("/v1/projects/%d/allocation?year=2026&half=H1", f.projA.ID)

	rec := f.serve(newRequest(http.MethodPut, path, []byte(`{"value": 7}`)))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
	}

	t.Run("Ceiling overflow reports the excess", func(t *testing.T) {
		rec := f.serve(newRequest(http.MethodPut, path, []byte(`{"value": 9}`)))
		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, http.StatusUnprocessableEntity, rec.Body.String())
		}
		var payload struct {
			Error  string `json:"error"`
			Excess int    `json:"excess"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
			t.Fatalf("unmarshal failed: %v", err)
		}
		// 9 + 3 committed elsewhere = 12, ceiling 10
		if payload.Excess != 2 {
			t.Errorf("excess = %d, want 2", payload.Excess)
		}
	})

	t.Run("Value is required", func(t *testing.T) {
		rec := f.serve(newRequest(http.MethodPut, path, []byte(`{}`)))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("failed! code = %v; wantCode %v", rec.Code, http.StatusBadRequest)
		}
	})

	t.Run("Unknown project", func(t *testing.T) {
		rec := f.serve(newRequest(http.MethodPut, "/v1/projects/999/allocation", []byte(`{"value": 1}`)))
		if rec.Code != http.StatusNotFound {
			t.Errorf("failed! code = %v; wantCode %v; body %s", rec.Code, http.StatusNotFound, rec.Body.String())
		}
	})
}

func TestAllocationAPI_bulkUpdate(t *testing.T) {
	f := newAllocationFixture(t)

	body := marchallObj(t, allocation.BulkUpdate{Values: []allocation.ProjectValue{
		{ProjectID: f.projA.ID, Value: 4},
		{ProjectID: f.projB.ID, Value: 6},
	}})
	rec := f.serve(newRequest(http.MethodPut, "/v1/allocations", body))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
	}

	t.Run("All or nothing on overflow", func(t *testing.T) {
		body := marchallObj(t, allocation.BulkUpdate{Values: []allocation.ProjectValue{
			{ProjectID: f.projA.ID, Value: 7},
			{ProjectID: f.projB.ID, Value: 4},
		}})
		rec := f.serve(newRequest(http.MethodPut, "/v1/allocations", body))
		if rec.Code != http.StatusUnprocessableEntity {
			t.Errorf("failed! code = %v; wantCode %v; body %s", rec.Code, http.StatusUnprocessableEntity, rec.Body.String())
		}
	})

	t.Run("Empty values", func(t *testing.T) {
		rec := f.serve(newRequest(http.MethodPut, "/v1/allocations", []byte(`{"values": []}`)))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("failed! code = %v; wantCode %v", rec.Code, http.StatusBadRequest)
		}
	})
}

func TestAllocationAPI_ceiling(t *testing.T) {
	f := newAllocationFixture(t)

	rec := f.serve(newRequest(http.MethodGet, "/v1/periods/ceiling?year=2026&half=H1"))
	if rec.Code != http.StatusOK {
		t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
	}
	var payload struct {
		Year    int         `json:"year"`
		Half    period.Half `json:"half"`
		Ceiling int         `json:"ceiling"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if payload.Ceiling != 10 {
		t.Errorf("ceiling = %d, want 10", payload.Ceiling)
	}

	t.Run("Raise the ceiling", func(t *testing.T) {
		body := marchallObj(t, ceilingUpdateRequest{Year: 2026, Half: period.Half1, Ceiling: 20})
		rec := f.serve(newRequest(http.MethodPut, "/v1/periods/ceiling", body))
		if rec.Code != http.StatusNoContent {
			t.Errorf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("Lowering below committed total fails", func(t *testing.T) {
		// 9 scholarships are committed
		body := marchallObj(t, ceilingUpdateRequest{Year: 2026, Half: period.Half1, Ceiling: 5})
		rec := f.serve(newRequest(http.MethodPut, "/v1/periods/ceiling", body))
		if rec.Code != http.StatusUnprocessableEntity {
			t.Errorf("failed! code = %v; wantCode %v; body %s", rec.Code, http.StatusUnprocessableEntity, rec.Body.String())
		}
	})

	t.Run("Unknown period", func(t *testing.T) {
		rec := f.serve(newRequest(http.MethodGet, "/v1/periods/ceiling?year=2030&half=H1"))
		if rec.Code != http.StatusNotFound {
			t.Errorf("failed! code = %v; wantCode %v; body %s", rec.Code, http.StatusNotFound, rec.Body.String())
		}
	})

	t.Run("Missing params", func(t *testing.T) {
		rec := f.serve(newRequest(http.MethodGet, "/v1/periods/ceiling"))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("failed! code = %v; wantCode %v", rec.Code, http.StatusBadRequest)
		}
	})
}

func TestAllocationAPI_summary(t *testing.T) {
	f := newAllocationFixture(t)

	rec := f.serve(newRequest(http.MethodGet, "/v1/allocations/summary?year=2026&half=H1"))
	if rec.Code != http.StatusOK {
		t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
	}
	var summary allocation.Summary
	if err := json.Unmarshal(rec.Body.Bytes(), &summary); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if summary.TotalProjects != 2 || summary.TotalAllocatedScholarships != 9 {
		t.Errorf("summary = %+v", summary)
	}
	if len(summary.Departments) != 1 || summary.Departments[0].Department.Acronym != "DCC" {
		t.Errorf("departments = %+v", summary.Departments)
	}

	rec = f.serve(newRequest(http.MethodGet, "/v1/allocations/projects?year=2026&half=H1"))
	if rec.Code != http.StatusOK {
		t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
	}
	var projects []allocation.ApprovedProject
	if err := json.Unmarshal(rec.Body.Bytes(), &projects); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if len(projects) != 2 {
		t.Errorf("projects = %d rows, want 2", len(projects))
	}

	t.Run("Invalid half", func(t *testing.T) {
		rec := f.serve(newRequest(http.MethodGet, "/v1/allocations/summary?year=2026&half=H3"))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("failed! code = %v; wantCode %v", rec.Code, http.StatusBadRequest)
		}
	})
}
