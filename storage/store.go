// Package storage implements the core store interfaces on GORM/MySQL.
package storage

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"bawabt.com/labour/core"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) ListAttendance(ctx context.Context, f core.AttendanceFilter) ([]core.Attendance, error) {
	q := s.db.WithContext(ctx).Model(&core.Attendance{})
	if f.StartDate != "" {
		q = q.Where("date >= ?", f.StartDate)
	}
	if f.EndDate != "" {
		q = q.Where("date <= ?", f.EndDate)
	}
	if f.EmployeeID != "" {
		q = q.Where("employee_id = ?", f.EmployeeID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.SiteID != "" {
		q = q.Where("site_id = ?", f.SiteID)
	}

	var records []core.Attendance
	if err := q.Order("date, employee_id").Find(&records).Error; err != nil {
		return nil, &core.UpstreamError{Op: "list attendance", Err: err}
	}
	return records, nil
}

func (s *Store) GetAttendance(ctx context.Context, id string) (*core.Attendance, error) {
	var rec core.Attendance
	err := s.db.WithContext(ctx).First(&rec, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &core.NotFoundError{Entity: "attendance"}
	}
	if err != nil {
		return nil, &core.UpstreamError{Op: "get attendance", Err: err}
	}
	return &rec, nil
}

// CreateAttendance inserts a record. The unique index on
// (employee_id, date, deleted_at) rejects a second live record for the same
// pair, so the duplicate check holds even when two writers race: the second
// insert fails and is reported as a DuplicateError.
func (s *Store) CreateAttendance(ctx context.Context, rec *core.Attendance) error {
	err := s.db.WithContext(ctx).Create(rec).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return &core.DuplicateError{Message: "attendance already marked for this date"}
	}
	if err != nil {
		return &core.UpstreamError{Op: "create attendance", Err: err}
	}
	return nil
}

func (s *Store) SaveAttendance(ctx context.Context, rec *core.Attendance) error {
	if err := s.db.WithContext(ctx).Save(rec).Error; err != nil {
		return &core.UpstreamError{Op: "save attendance", Err: err}
	}
	return nil
}

func (s *Store) DeleteAttendance(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Delete(&core.Attendance{}, "id = ?", id)
	if result.Error != nil {
		return &core.UpstreamError{Op: "delete attendance", Err: result.Error}
	}
	if result.RowsAffected == 0 {
		return &core.NotFoundError{Entity: "attendance"}
	}
	return nil
}

// Append persists one audit entry. Callers treat failures as non-fatal.
func (s *Store) Append(ctx context.Context, entry core.AuditLog) error {
	return s.db.WithContext(ctx).Create(&entry).Error
}
