package core

import (
	"context"
	"errors"
	"time"
)

// AttendanceStore is the persistence surface the attendance lifecycle needs.
// CreateAttendance must reject a second live record for the same
// (employeeId, date) pair with a DuplicateError, including under concurrent
// writers; the backing store enforces this with a uniqueness constraint.
type AttendanceStore interface {
	ListAttendance(ctx context.Context, f AttendanceFilter) ([]Attendance, error)
	GetAttendance(ctx context.Context, id string) (*Attendance, error)
	CreateAttendance(ctx context.Context, rec *Attendance) error
	SaveAttendance(ctx context.Context, rec *Attendance) error
	DeleteAttendance(ctx context.Context, id string) error
}

// AttendanceFilter carries the optional, AND-combined list filters. Dates
// are inclusive ISO bounds.
type AttendanceFilter struct {
	StartDate  string
	EndDate    string
	EmployeeID string
	Status     string
	SiteID     string
}

type MarkInput struct {
	EmployeeID string
	Date       string
	Status     string
	OtHours    float64
	SiteID     *string
	Notes      string
}

func (in *MarkInput) validate() error {
	if in.EmployeeID == "" {
		return NewValidationError("employeeId is required")
	}
	if _, err := time.Parse(DateLayout, in.Date); err != nil {
		return NewValidationError("invalid date %q", in.Date)
	}
	switch in.Status {
	case StatusPresent, StatusAbsent, StatusHalfDay:
	default:
		return NewValidationError("invalid status %q", in.Status)
	}
	if in.OtHours < 0 {
		return NewValidationError("otHours must not be negative")
	}
	return nil
}

// MarkAttendance creates an unapproved record for (employeeId, date).
func MarkAttendance(ctx context.Context, store AttendanceStore, audit *AuditTrail, in MarkInput, actor Actor) (*Attendance, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	rec := &Attendance{
		ID:         NewID("att_"),
		EmployeeID: in.EmployeeID,
		Date:       in.Date,
		Status:     in.Status,
		OtHours:    in.OtHours,
		SiteID:     normalizeSiteID(in.SiteID),
		Notes:      in.Notes,
		MarkedBy:   actor.ID,
		Approved:   false,
		MarkedAt:   time.Now().UTC(),
	}

	if err := store.CreateAttendance(ctx, rec); err != nil {
		return nil, err
	}

	audit.Log(ctx, actor, ActionMarkAttendance, "attendance", rec.ID, map[string]any{
		"employeeId": in.EmployeeID,
		"date":       in.Date,
		"status":     in.Status,
	})
	return rec, nil
}

type BulkRecord struct {
	EmployeeID string
	Status     string
	OtHours    float64
	SiteID     *string
	Notes      string
}

// BulkMarkAttendance applies mark semantics per record, skipping any record
// whose (employeeId, date) already has a live entry. Partial application on
// partial input is the contract: records created before a storage failure
// stay created.
func BulkMarkAttendance(ctx context.Context, store AttendanceStore, audit *AuditTrail, date string, records []BulkRecord, actor Actor) ([]Attendance, error) {
	if len(records) == 0 {
		return nil, NewValidationError("no records provided")
	}

	created := make([]Attendance, 0, len(records))
	for _, r := range records {
		in := MarkInput{
			EmployeeID: r.EmployeeID,
			Date:       date,
			Status:     r.Status,
			OtHours:    r.OtHours,
			SiteID:     r.SiteID,
			Notes:      r.Notes,
		}
		if err := in.validate(); err != nil {
			return created, err
		}

		rec := &Attendance{
			ID:         NewID("att_"),
			EmployeeID: in.EmployeeID,
			Date:       in.Date,
			Status:     in.Status,
			OtHours:    in.OtHours,
			SiteID:     normalizeSiteID(in.SiteID),
			Notes:      in.Notes,
			MarkedBy:   actor.ID,
			Approved:   false,
			MarkedAt:   time.Now().UTC(),
		}

		err := store.CreateAttendance(ctx, rec)
		var dup *DuplicateError
		if errors.As(err, &dup) {
			continue
		}
		if err != nil {
			return created, err
		}
		created = append(created, *rec)
	}

	audit.Log(ctx, actor, ActionBulkMarkAttendance, "attendance", "bulk", map[string]any{
		"date":  date,
		"count": len(created),
	})
	return created, nil
}

// AttendancePatch is a partial update. employeeId, date, markedBy,
// approvedBy, approved, markedAt and approvedAt cannot be changed here.
// A non-nil empty SiteID clears the site assignment.
type AttendancePatch struct {
	Status  *string
	OtHours *float64
	SiteID  *string
	Notes   *string
}

// UpdateAttendance merges the patch over a record. Supervisors cannot edit
// approved records.
func UpdateAttendance(ctx context.Context, store AttendanceStore, audit *AuditTrail, id string, patch AttendancePatch, actor Actor) (*Attendance, error) {
	rec, err := store.GetAttendance(ctx, id)
	if err != nil {
		return nil, err
	}

	if rec.Approved && !actor.IsManager() {
		return nil, &ForbiddenError{Message: "cannot edit approved attendance"}
	}

	if patch.Status != nil {
		switch *patch.Status {
		case StatusPresent, StatusAbsent, StatusHalfDay:
		default:
			return nil, NewValidationError("invalid status %q", *patch.Status)
		}
		rec.Status = *patch.Status
	}
	if patch.OtHours != nil {
		if *patch.OtHours < 0 {
			return nil, NewValidationError("otHours must not be negative")
		}
		rec.OtHours = *patch.OtHours
	}
	if patch.SiteID != nil {
		rec.SiteID = normalizeSiteID(patch.SiteID)
	}
	if patch.Notes != nil {
		rec.Notes = *patch.Notes
	}

	now := time.Now().UTC()
	rec.LastEditedAt = &now

	if err := store.SaveAttendance(ctx, rec); err != nil {
		return nil, err
	}

	audit.Log(ctx, actor, ActionUpdate, "attendance", rec.ID, patch.details())
	return rec, nil
}

func (p AttendancePatch) details() map[string]any {
	d := map[string]any{}
	if p.Status != nil {
		d["status"] = *p.Status
	}
	if p.OtHours != nil {
		d["otHours"] = *p.OtHours
	}
	if p.SiteID != nil {
		d["siteId"] = *p.SiteID
	}
	if p.Notes != nil {
		d["notes"] = *p.Notes
	}
	return d
}

// ApproveAttendance marks a record approved. Re-approval is allowed and
// overwrites approvedBy/approvedAt: latest approver wins. The manager-only
// rule is enforced by the route, not here.
func ApproveAttendance(ctx context.Context, store AttendanceStore, audit *AuditTrail, id string, actor Actor) (*Attendance, error) {
	rec, err := store.GetAttendance(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	rec.ApprovedBy = &actor.ID
	rec.Approved = true
	rec.ApprovedAt = &now

	if err := store.SaveAttendance(ctx, rec); err != nil {
		return nil, err
	}

	audit.Log(ctx, actor, ActionApprove, "attendance", rec.ID, map[string]any{
		"employeeId": rec.EmployeeID,
		"date":       rec.Date,
	})
	return rec, nil
}

// RemoveAttendance soft-deletes a record. Only a manager may delete an
// approved record.
func RemoveAttendance(ctx context.Context, store AttendanceStore, audit *AuditTrail, id string, actor Actor) error {
	rec, err := store.GetAttendance(ctx, id)
	if err != nil {
		return err
	}

	if rec.Approved && !actor.IsManager() {
		return &ForbiddenError{Message: "cannot delete approved attendance"}
	}

	if err := store.DeleteAttendance(ctx, id); err != nil {
		return err
	}

	audit.Log(ctx, actor, ActionDelete, "attendance", id, map[string]any{
		"employeeId": rec.EmployeeID,
		"date":       rec.Date,
	})
	return nil
}

func normalizeSiteID(siteID *string) *string {
	if siteID == nil || *siteID == "" {
		return nil
	}
	return siteID
}
