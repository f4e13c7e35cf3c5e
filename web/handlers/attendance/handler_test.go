package attendance

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bawabt.com/labour/core"
	"bawabt.com/labour/security"
	"bawabt.com/labour/web/middlewares"
)

// fakeStore enforces the live (employeeId, date) uniqueness and can be told
// to fail creation for one employee, simulating a storage outage mid-batch.
type fakeStore struct {
	records map[string]core.Attendance
	failFor string
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: map[string]core.Attendance{}}
}

func (s *fakeStore) ListAttendance(context.Context, core.AttendanceFilter) ([]core.Attendance, error) {
	var out []core.Attendance
	for _, rec := range s.records {
		out = append(out, rec)
	}
	return out, nil
}

func (s *fakeStore) GetAttendance(_ context.Context, id string) (*core.Attendance, error) {
	rec, ok := s.records[id]
	if !ok {
		return nil, &core.NotFoundError{Entity: "attendance"}
	}
	out := rec
	return &out, nil
}

func (s *fakeStore) CreateAttendance(_ context.Context, rec *core.Attendance) error {
	if rec.EmployeeID == s.failFor {
		return &core.UpstreamError{Op: "create attendance", Err: errors.New("store down")}
	}
	for _, existing := range s.records {
		if existing.EmployeeID == rec.EmployeeID && existing.Date == rec.Date {
			return &core.DuplicateError{Message: "attendance already marked for this date"}
		}
	}
	s.records[rec.ID] = *rec
	return nil
}

func (s *fakeStore) SaveAttendance(_ context.Context, rec *core.Attendance) error {
	if _, ok := s.records[rec.ID]; !ok {
		return &core.NotFoundError{Entity: "attendance"}
	}
	s.records[rec.ID] = *rec
	return nil
}

func (s *fakeStore) DeleteAttendance(_ context.Context, id string) error {
	if _, ok := s.records[id]; !ok {
		return &core.NotFoundError{Entity: "attendance"}
	}
	delete(s.records, id)
	return nil
}

var testSecret = []byte("test-secret")

func newTestRouter(store core.AttendanceStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/api")
	api.Use(middlewares.Authentication(testSecret))
	Register(api, store, core.NewAuditTrail(nil))
	return r
}

func bearerToken(t *testing.T, role string) string {
	t.Helper()
	token, err := security.CreateUserToken(core.User{ID: "usr_1", Name: "Sam", Role: role}, testSecret, time.Hour)
	require.NoError(t, err)
	return "Bearer " + token
}

func postBulk(t *testing.T, r *gin.Engine, role, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/attendance/bulk", strings.NewReader(body))
	req.Header.Set("Authorization", bearerToken(t, role))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type bulkResponse struct {
	Error   string          `json:"error"`
	Count   int             `json:"count"`
	Created []AttendanceDTO `json:"created"`
}

func TestBulkMarkSkipsDuplicates(t *testing.T) {
	store := newFakeStore()
	store.records["att_seed"] = core.Attendance{ID: "att_seed", EmployeeID: "emp_2", Date: "2024-02-05", Status: core.StatusAbsent}

	w := postBulk(t, newTestRouter(store), core.RoleSupervisor, `{
		"date": "2024-02-05",
		"records": [
			{"employeeId": "emp_1", "status": "Present"},
			{"employeeId": "emp_2", "status": "Present"}
		]
	}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp bulkResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
	require.Len(t, resp.Created, 1)
	assert.Equal(t, "emp_1", resp.Created[0].EmployeeID)
}

func TestBulkMarkReturnsPartialSubsetOnFailure(t *testing.T) {
	store := newFakeStore()
	store.failFor = "emp_3"

	w := postBulk(t, newTestRouter(store), core.RoleSupervisor, `{
		"date": "2024-02-05",
		"records": [
			{"employeeId": "emp_1", "status": "Present"},
			{"employeeId": "emp_3", "status": "Present"},
			{"employeeId": "emp_4", "status": "Present"}
		]
	}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var resp bulkResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "internal server error", resp.Error)

	// The record created before the failure is reported back.
	assert.Equal(t, 1, resp.Count)
	require.Len(t, resp.Created, 1)
	assert.Equal(t, "emp_1", resp.Created[0].EmployeeID)

	// And it really is in the store.
	listed, err := store.ListAttendance(context.Background(), core.AttendanceFilter{})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "emp_1", listed[0].EmployeeID)
}

func TestBulkMarkRequiresSupervisorRole(t *testing.T) {
	w := postBulk(t, newTestRouter(newFakeStore()), "viewer", `{
		"date": "2024-02-05",
		"records": [{"employeeId": "emp_1", "status": "Present"}]
	}`)

	assert.Equal(t, http.StatusForbidden, w.Code)
}
