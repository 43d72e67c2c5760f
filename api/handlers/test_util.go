package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/uniteach/monitoria/core/allocation"
	"github.com/uniteach/monitoria/core/application"
	"github.com/uniteach/monitoria/core/period"
	"github.com/uniteach/monitoria/core/position"
	"github.com/uniteach/monitoria/core/student"
	dummydb "github.com/uniteach/monitoria/storage/database/dummy"
	testutil "github.com/uniteach/monitoria/tests"
)

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	wantCode int
	wantData []byte
}

type testApp struct {
	app      *echo.Echo
	db       *dummydb.DB
	recorder *testutil.EventRecorder
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	db := testutil.OpenDB(t)
	recorder := &testutil.EventRecorder{}
	log := testutil.NopLogger{}

	svcs := Services{
		Period:      period.NewService(dummydb.NewPeriodRepository(db)),
		Student:     student.NewService(dummydb.NewStudentRepository(db)),
		Application: application.NewService(dummydb.NewApplicationRepository(db), log),
		Allocation:  allocation.NewService(db, dummydb.NewAllocationRepository(db), recorder, log),
		Position:    position.NewIssuer(db, dummydb.NewPositionRepository(db), recorder, log),
		Logger:      log,
	}

	app := echo.New()
	API(app, svcs, true, nil)
	return &testApp{app: app, db: db, recorder: recorder}
}

func (ta *testApp) serve(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	ta.app.ServeHTTP(rec, req)
	return rec
}

func newRequest(method, path string, data ...[]byte) *http.Request {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %s; wantData %s", rec.Body.Bytes(), tt.wantData)
	}
}
