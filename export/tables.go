// Package export renders record sets into xlsx workbooks, keeping the
// spreadsheet lineage of the data for backups and reports.
package export

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"bawabt.com/labour/core"
)

// backupData is one full snapshot of the datastore, soft-deleted rows
// included: a backup is a full copy, not a view.
type backupData struct {
	users      []core.User
	employees  []core.Employee
	attendance []core.Attendance
	sites      []core.Site
	expenses   []core.SiteExpense
	logs       []core.AuditLog
}

// BackupWorkbook snapshots every table into one workbook, one sheet per
// table.
func BackupWorkbook(ctx context.Context, db *gorm.DB) (*excelize.File, error) {
	var data backupData

	if err := db.WithContext(ctx).Unscoped().Find(&data.users).Error; err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	if err := db.WithContext(ctx).Unscoped().Find(&data.employees).Error; err != nil {
		return nil, fmt.Errorf("load employees: %w", err)
	}
	if err := db.WithContext(ctx).Unscoped().Find(&data.attendance).Error; err != nil {
		return nil, fmt.Errorf("load attendance: %w", err)
	}
	if err := db.WithContext(ctx).Unscoped().Find(&data.sites).Error; err != nil {
		return nil, fmt.Errorf("load sites: %w", err)
	}
	if err := db.WithContext(ctx).Unscoped().Find(&data.expenses).Error; err != nil {
		return nil, fmt.Errorf("load site expenses: %w", err)
	}
	if err := db.WithContext(ctx).Find(&data.logs).Error; err != nil {
		return nil, fmt.Errorf("load audit logs: %w", err)
	}

	return renderBackup(data)
}

func renderBackup(data backupData) (*excelize.File, error) {
	f := excelize.NewFile()

	rows := make([][]any, 0, len(data.users))
	for _, u := range data.users {
		rows = append(rows, []any{u.ID, u.Email, u.Name, u.Role, u.Active, u.CreatedAt, formatTimePtr(u.LastLogin), int64(u.DeletedAt)})
	}
	if err := writeSheet(f, "Users", []string{"id", "email", "name", "role", "active", "createdAt", "lastLogin", "deletedAt"}, rows); err != nil {
		return nil, err
	}

	rows = rows[:0]
	for _, e := range data.employees {
		rows = append(rows, []any{e.ID, e.Name, e.Profession, e.PerDaySalary, e.PerHourSalary, deref(e.SiteID), e.Active, deref(e.JoiningDate), e.Notes, e.CreatedAt, e.UpdatedAt, int64(e.DeletedAt)})
	}
	if err := writeSheet(f, "Employees", []string{"id", "name", "profession", "perDaySalary", "perHourSalary", "siteId", "active", "joiningDate", "notes", "createdAt", "updatedAt", "deletedAt"}, rows); err != nil {
		return nil, err
	}

	rows = rows[:0]
	for _, a := range data.attendance {
		rows = append(rows, []any{a.ID, a.EmployeeID, a.Date, a.Status, a.OtHours, deref(a.SiteID), a.Notes, a.MarkedBy, deref(a.ApprovedBy), a.Approved, a.MarkedAt, formatTimePtr(a.LastEditedAt), formatTimePtr(a.ApprovedAt), int64(a.DeletedAt)})
	}
	if err := writeSheet(f, "Attendance", []string{"id", "employeeId", "date", "status", "otHours", "siteId", "notes", "markedBy", "approvedBy", "approved", "markedAt", "lastEditedAt", "approvedAt", "deletedAt"}, rows); err != nil {
		return nil, err
	}

	rows = rows[:0]
	for _, s := range data.sites {
		rows = append(rows, []any{s.ID, s.SiteNumber, s.SiteName, s.Location, s.Active, s.Notes, s.CreatedAt, s.UpdatedAt, int64(s.DeletedAt)})
	}
	if err := writeSheet(f, "Sites", []string{"id", "siteNumber", "siteName", "location", "active", "notes", "createdAt", "updatedAt", "deletedAt"}, rows); err != nil {
		return nil, err
	}

	rows = rows[:0]
	for _, e := range data.expenses {
		rows = append(rows, []any{e.ID, e.SiteID, e.SiteNumber, e.Amount, e.Date, e.Category, e.Notes, e.CreatedBy, e.CreatedAt, int64(e.DeletedAt)})
	}
	if err := writeSheet(f, "SiteExpenses", []string{"id", "siteId", "siteNumber", "amount", "date", "category", "notes", "createdBy", "createdAt", "deletedAt"}, rows); err != nil {
		return nil, err
	}

	rows = rows[:0]
	for _, l := range data.logs {
		rows = append(rows, []any{l.ID, l.Timestamp, l.UserID, l.UserName, l.Action, l.Entity, l.EntityID, string(l.Details)})
	}
	if err := writeSheet(f, "AuditLogs", []string{"id", "timestamp", "userId", "userName", "action", "entity", "entityId", "details"}, rows); err != nil {
		return nil, err
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("drop default sheet: %w", err)
	}
	return f, nil
}

func writeSheet(f *excelize.File, name string, headers []string, rows [][]any) error {
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("new sheet %s: %w", name, err)
	}

	header := make([]any, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return fmt.Errorf("write header of %s: %w", name, err)
	}

	for i, row := range rows {
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(name, cell, &row); err != nil {
			return fmt.Errorf("write row %d of %s: %w", i+2, name, err)
		}
	}

	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
