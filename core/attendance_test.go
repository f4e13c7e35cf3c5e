package core

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bawabt.com/labour/utils"
)

// memStore is an in-memory AttendanceStore enforcing the same live
// (employeeId, date) uniqueness the database index provides.
type memStore struct {
	mu      sync.Mutex
	records map[string]Attendance
}

func newMemStore() *memStore {
	return &memStore{records: map[string]Attendance{}}
}

func (m *memStore) ListAttendance(_ context.Context, f AttendanceFilter) ([]Attendance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Attendance
	for _, rec := range m.records {
		if f.EmployeeID != "" && rec.EmployeeID != f.EmployeeID {
			continue
		}
		if f.Status != "" && rec.Status != f.Status {
			continue
		}
		if f.SiteID != "" && (rec.SiteID == nil || *rec.SiteID != f.SiteID) {
			continue
		}
		if f.StartDate != "" && rec.Date < f.StartDate {
			continue
		}
		if f.EndDate != "" && rec.Date > f.EndDate {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (m *memStore) GetAttendance(_ context.Context, id string) (*Attendance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[id]
	if !ok {
		return nil, &NotFoundError{Entity: "attendance"}
	}
	out := rec
	return &out, nil
}

func (m *memStore) CreateAttendance(_ context.Context, rec *Attendance) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.records {
		if existing.EmployeeID == rec.EmployeeID && existing.Date == rec.Date {
			return &DuplicateError{Message: "attendance already marked for this date"}
		}
	}
	m.records[rec.ID] = *rec
	return nil
}

func (m *memStore) SaveAttendance(_ context.Context, rec *Attendance) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[rec.ID]; !ok {
		return &NotFoundError{Entity: "attendance"}
	}
	m.records[rec.ID] = *rec
	return nil
}

func (m *memStore) DeleteAttendance(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[id]; !ok {
		return &NotFoundError{Entity: "attendance"}
	}
	delete(m.records, id)
	return nil
}

// recordingSink keeps appended entries for assertions.
type recordingSink struct {
	mu      sync.Mutex
	entries []AuditLog
}

func (s *recordingSink) Append(_ context.Context, entry AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	return nil
}

type failingSink struct{}

func (failingSink) Append(context.Context, AuditLog) error {
	return errors.New("sink unavailable")
}

var (
	supervisor = Actor{ID: "usr_sup", Name: "Sam", Role: RoleSupervisor}
	manager    = Actor{ID: "usr_mgr", Name: "Mel", Role: RoleManager}
)

func TestMarkAttendance(t *testing.T) {
	store := newMemStore()
	sink := &recordingSink{}
	audit := NewAuditTrail(sink)

	rec, err := MarkAttendance(context.Background(), store, audit, MarkInput{
		EmployeeID: "emp_1",
		Date:       "2024-02-05",
		Status:     StatusPresent,
		OtHours:    2,
		SiteID:     utils.Ptr("site_1"),
	}, supervisor)
	require.NoError(t, err)

	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, "emp_1", rec.EmployeeID)
	assert.Equal(t, StatusPresent, rec.Status)
	assert.Equal(t, supervisor.ID, rec.MarkedBy)
	assert.False(t, rec.Approved)
	assert.Nil(t, rec.ApprovedBy)
	assert.False(t, rec.MarkedAt.IsZero())

	listed, err := store.ListAttendance(context.Background(), AttendanceFilter{EmployeeID: "emp_1"})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, rec.ID, listed[0].ID)

	require.Len(t, sink.entries, 1)
	assert.Equal(t, ActionMarkAttendance, sink.entries[0].Action)
	assert.Equal(t, supervisor.ID, sink.entries[0].UserID)
}

func TestMarkAttendanceValidation(t *testing.T) {
	store := newMemStore()
	audit := NewAuditTrail(&recordingSink{})

	tests := []struct {
		name string
		in   MarkInput
	}{
		{"missing employee", MarkInput{Date: "2024-02-05", Status: StatusPresent}},
		{"bad date", MarkInput{EmployeeID: "emp_1", Date: "05/02/2024", Status: StatusPresent}},
		{"bad status", MarkInput{EmployeeID: "emp_1", Date: "2024-02-05", Status: "Late"}},
		{"negative ot", MarkInput{EmployeeID: "emp_1", Date: "2024-02-05", Status: StatusPresent, OtHours: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := MarkAttendance(context.Background(), store, audit, tt.in, supervisor)
			var verr *ValidationError
			assert.ErrorAs(t, err, &verr)
		})
	}
}

func TestMarkAttendanceDuplicate(t *testing.T) {
	store := newMemStore()
	audit := NewAuditTrail(&recordingSink{})
	in := MarkInput{EmployeeID: "emp_1", Date: "2024-02-05", Status: StatusPresent}

	_, err := MarkAttendance(context.Background(), store, audit, in, supervisor)
	require.NoError(t, err)

	in.Status = StatusAbsent
	_, err = MarkAttendance(context.Background(), store, audit, in, supervisor)
	var dup *DuplicateError
	assert.ErrorAs(t, err, &dup)

	listed, err := store.ListAttendance(context.Background(), AttendanceFilter{})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, StatusPresent, listed[0].Status)
}

func TestMarkAttendanceConcurrentSameDay(t *testing.T) {
	store := newMemStore()
	audit := NewAuditTrail(&recordingSink{})
	in := MarkInput{EmployeeID: "emp_1", Date: "2024-02-05", Status: StatusPresent}

	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := MarkAttendance(context.Background(), store, audit, in, supervisor)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var ok, dup int
	for err := range errs {
		if err == nil {
			ok++
			continue
		}
		var d *DuplicateError
		if assert.ErrorAs(t, err, &d) {
			dup++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, dup)
}

func TestMarkAttendanceEmptySiteBecomesNil(t *testing.T) {
	store := newMemStore()
	audit := NewAuditTrail(&recordingSink{})

	rec, err := MarkAttendance(context.Background(), store, audit, MarkInput{
		EmployeeID: "emp_1",
		Date:       "2024-02-05",
		Status:     StatusPresent,
		SiteID:     utils.Ptr(""),
	}, supervisor)
	require.NoError(t, err)
	assert.Nil(t, rec.SiteID)
}

func TestMarkAttendanceAuditFailureDoesNotAbort(t *testing.T) {
	store := newMemStore()
	audit := NewAuditTrail(failingSink{})

	rec, err := MarkAttendance(context.Background(), store, audit, MarkInput{
		EmployeeID: "emp_1",
		Date:       "2024-02-05",
		Status:     StatusPresent,
	}, supervisor)
	require.NoError(t, err)

	got, err := store.GetAttendance(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)
}

func TestBulkMarkAttendanceSkipsDuplicates(t *testing.T) {
	store := newMemStore()
	audit := NewAuditTrail(&recordingSink{})

	_, err := MarkAttendance(context.Background(), store, audit, MarkInput{
		EmployeeID: "emp_2",
		Date:       "2024-02-05",
		Status:     StatusAbsent,
	}, supervisor)
	require.NoError(t, err)

	created, err := BulkMarkAttendance(context.Background(), store, audit, "2024-02-05", []BulkRecord{
		{EmployeeID: "emp_1", Status: StatusPresent},
		{EmployeeID: "emp_2", Status: StatusPresent},
		{EmployeeID: "emp_3", Status: StatusHalfDay},
	}, supervisor)
	require.NoError(t, err)

	require.Len(t, created, 2)
	assert.Equal(t, "emp_1", created[0].EmployeeID)
	assert.Equal(t, "emp_3", created[1].EmployeeID)

	// The pre-existing record keeps its status.
	listed, err := store.ListAttendance(context.Background(), AttendanceFilter{EmployeeID: "emp_2"})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, StatusAbsent, listed[0].Status)
}

func TestBulkMarkAttendanceEmpty(t *testing.T) {
	store := newMemStore()
	audit := NewAuditTrail(&recordingSink{})

	_, err := BulkMarkAttendance(context.Background(), store, audit, "2024-02-05", nil, supervisor)
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestBulkMarkAttendancePartialOnFailure(t *testing.T) {
	store := newMemStore()
	audit := NewAuditTrail(&recordingSink{})

	created, err := BulkMarkAttendance(context.Background(), store, audit, "2024-02-05", []BulkRecord{
		{EmployeeID: "emp_1", Status: StatusPresent},
		{EmployeeID: "emp_2", Status: "Vacation"},
		{EmployeeID: "emp_3", Status: StatusPresent},
	}, supervisor)

	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
	// Records created before the failure stay created.
	require.Len(t, created, 1)
	assert.Equal(t, "emp_1", created[0].EmployeeID)
}

func TestUpdateAttendance(t *testing.T) {
	store := newMemStore()
	audit := NewAuditTrail(&recordingSink{})

	rec, err := MarkAttendance(context.Background(), store, audit, MarkInput{
		EmployeeID: "emp_1",
		Date:       "2024-02-05",
		Status:     StatusPresent,
	}, supervisor)
	require.NoError(t, err)

	updated, err := UpdateAttendance(context.Background(), store, audit, rec.ID, AttendancePatch{
		Status:  utils.Ptr(StatusHalfDay),
		OtHours: utils.Ptr(3.5),
		Notes:   utils.Ptr("left early"),
	}, supervisor)
	require.NoError(t, err)

	assert.Equal(t, StatusHalfDay, updated.Status)
	assert.Equal(t, 3.5, updated.OtHours)
	assert.Equal(t, "left early", updated.Notes)
	require.NotNil(t, updated.LastEditedAt)

	// Identity and provenance fields never move through a patch.
	assert.Equal(t, rec.EmployeeID, updated.EmployeeID)
	assert.Equal(t, rec.Date, updated.Date)
	assert.Equal(t, rec.MarkedBy, updated.MarkedBy)
	assert.Equal(t, rec.MarkedAt, updated.MarkedAt)
	assert.False(t, updated.Approved)
}

func TestUpdateAttendanceApprovedGate(t *testing.T) {
	store := newMemStore()
	audit := NewAuditTrail(&recordingSink{})

	rec, err := MarkAttendance(context.Background(), store, audit, MarkInput{
		EmployeeID: "emp_1",
		Date:       "2024-02-05",
		Status:     StatusPresent,
	}, supervisor)
	require.NoError(t, err)
	_, err = ApproveAttendance(context.Background(), store, audit, rec.ID, manager)
	require.NoError(t, err)

	_, err = UpdateAttendance(context.Background(), store, audit, rec.ID, AttendancePatch{
		Status: utils.Ptr(StatusAbsent),
	}, supervisor)
	var ferr *ForbiddenError
	assert.ErrorAs(t, err, &ferr)

	// Managers can still correct approved records.
	updated, err := UpdateAttendance(context.Background(), store, audit, rec.ID, AttendancePatch{
		Status: utils.Ptr(StatusAbsent),
	}, manager)
	require.NoError(t, err)
	assert.Equal(t, StatusAbsent, updated.Status)
	assert.True(t, updated.Approved)
}

func TestUpdateAttendanceClearsSite(t *testing.T) {
	store := newMemStore()
	audit := NewAuditTrail(&recordingSink{})

	rec, err := MarkAttendance(context.Background(), store, audit, MarkInput{
		EmployeeID: "emp_1",
		Date:       "2024-02-05",
		Status:     StatusPresent,
		SiteID:     utils.Ptr("site_1"),
	}, supervisor)
	require.NoError(t, err)

	updated, err := UpdateAttendance(context.Background(), store, audit, rec.ID, AttendancePatch{
		SiteID: utils.Ptr(""),
	}, supervisor)
	require.NoError(t, err)
	assert.Nil(t, updated.SiteID)
}

func TestUpdateAttendanceNotFound(t *testing.T) {
	store := newMemStore()
	audit := NewAuditTrail(&recordingSink{})

	_, err := UpdateAttendance(context.Background(), store, audit, "att_missing", AttendancePatch{}, supervisor)
	var nf *NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestApproveAttendanceLatestApproverWins(t *testing.T) {
	store := newMemStore()
	audit := NewAuditTrail(&recordingSink{})

	rec, err := MarkAttendance(context.Background(), store, audit, MarkInput{
		EmployeeID: "emp_1",
		Date:       "2024-02-05",
		Status:     StatusPresent,
	}, supervisor)
	require.NoError(t, err)

	first, err := ApproveAttendance(context.Background(), store, audit, rec.ID, manager)
	require.NoError(t, err)
	assert.True(t, first.Approved)
	require.NotNil(t, first.ApprovedBy)
	assert.Equal(t, manager.ID, *first.ApprovedBy)
	require.NotNil(t, first.ApprovedAt)

	other := Actor{ID: "usr_mgr2", Name: "Morgan", Role: RoleManager}
	second, err := ApproveAttendance(context.Background(), store, audit, rec.ID, other)
	require.NoError(t, err)
	require.NotNil(t, second.ApprovedBy)
	assert.Equal(t, other.ID, *second.ApprovedBy)
	assert.True(t, !second.ApprovedAt.Before(*first.ApprovedAt))
}

func TestRemoveAttendance(t *testing.T) {
	store := newMemStore()
	audit := NewAuditTrail(&recordingSink{})

	rec, err := MarkAttendance(context.Background(), store, audit, MarkInput{
		EmployeeID: "emp_1",
		Date:       "2024-02-05",
		Status:     StatusPresent,
	}, supervisor)
	require.NoError(t, err)

	require.NoError(t, RemoveAttendance(context.Background(), store, audit, rec.ID, supervisor))

	listed, err := store.ListAttendance(context.Background(), AttendanceFilter{})
	require.NoError(t, err)
	assert.Empty(t, listed)

	// The (employee, date) pair is free again after the delete.
	_, err = MarkAttendance(context.Background(), store, audit, MarkInput{
		EmployeeID: "emp_1",
		Date:       "2024-02-05",
		Status:     StatusAbsent,
	}, supervisor)
	assert.NoError(t, err)
}

func TestRemoveAttendanceApprovedGate(t *testing.T) {
	store := newMemStore()
	audit := NewAuditTrail(&recordingSink{})

	rec, err := MarkAttendance(context.Background(), store, audit, MarkInput{
		EmployeeID: "emp_1",
		Date:       "2024-02-05",
		Status:     StatusPresent,
	}, supervisor)
	require.NoError(t, err)
	_, err = ApproveAttendance(context.Background(), store, audit, rec.ID, manager)
	require.NoError(t, err)

	err = RemoveAttendance(context.Background(), store, audit, rec.ID, supervisor)
	var ferr *ForbiddenError
	assert.ErrorAs(t, err, &ferr)

	require.NoError(t, RemoveAttendance(context.Background(), store, audit, rec.ID, manager))
}
