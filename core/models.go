package core

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/plugin/soft_delete"
)

const (
	RoleManager    = "manager"
	RoleSupervisor = "supervisor"
)

const (
	StatusPresent = "Present"
	StatusAbsent  = "Absent"
	StatusHalfDay = "Half-Day"
)

// DateLayout is the calendar-date format used everywhere a date is stored or
// compared. ISO dates compare correctly as strings, which the range filters
// rely on.
const DateLayout = "2006-01-02"

type User struct {
	ID           string `gorm:"primaryKey;size:40"`
	Email        string `gorm:"size:255;uniqueIndex:idx_users_email"`
	PasswordHash string `gorm:"size:100"`
	Name         string
	Role         string `gorm:"size:20"`
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
	LastLogin    *time.Time
	DeletedAt    soft_delete.DeletedAt `gorm:"uniqueIndex:idx_users_email"`
}

func (u User) IsManager() bool { return u.Role == RoleManager }

type Employee struct {
	ID            string  `gorm:"primaryKey;size:40"`
	Name          string
	Profession    string
	PerDaySalary  float64 `gorm:"type:decimal(13,4);default:0"`
	PerHourSalary float64 `gorm:"type:decimal(13,4);default:0"`
	SiteID        *string `gorm:"size:40;index"`
	Active        bool
	JoiningDate   *string `gorm:"size:10"`
	Notes         string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeletedAt     soft_delete.DeletedAt
}

// Attendance is one employee's record for one calendar day. The composite
// unique index spans DeletedAt (0 for live rows) so at most one live record
// can exist per (employee, date) while soft-deleted rows keep their history.
type Attendance struct {
	ID           string  `gorm:"primaryKey;size:40"`
	EmployeeID   string  `gorm:"size:40;uniqueIndex:idx_attendance_employee_date"`
	Date         string  `gorm:"size:10;uniqueIndex:idx_attendance_employee_date"`
	Status       string  `gorm:"size:10"`
	OtHours      float64 `gorm:"type:decimal(10,2);default:0"`
	SiteID       *string `gorm:"size:40;index"`
	Notes        string
	MarkedBy     string `gorm:"size:40"`
	ApprovedBy   *string `gorm:"size:40"`
	Approved     bool
	MarkedAt     time.Time
	LastEditedAt *time.Time
	ApprovedAt   *time.Time
	DeletedAt    soft_delete.DeletedAt `gorm:"uniqueIndex:idx_attendance_employee_date"`
}

func (Attendance) TableName() string { return "attendance" }

type Site struct {
	ID         string `gorm:"primaryKey;size:40"`
	SiteNumber string `gorm:"size:50;uniqueIndex:idx_sites_number"`
	SiteName   string
	Location   string
	Active     bool
	Notes      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	DeletedAt  soft_delete.DeletedAt `gorm:"uniqueIndex:idx_sites_number"`
}

type SiteExpense struct {
	ID         string  `gorm:"primaryKey;size:40"`
	SiteID     string  `gorm:"size:40;index"`
	SiteNumber string  `gorm:"size:50"`
	Amount     float64 `gorm:"type:decimal(13,2);default:0"`
	Date       string  `gorm:"size:10"`
	Category   string
	Notes      string
	CreatedBy  string `gorm:"size:40"`
	CreatedAt  time.Time
	DeletedAt  soft_delete.DeletedAt
}

type AuditLog struct {
	ID        string    `gorm:"primaryKey;size:40"`
	Timestamp time.Time `gorm:"index"`
	UserID    string    `gorm:"size:40;index"`
	UserName  string
	Action    string `gorm:"size:40"`
	Entity    string `gorm:"size:40;index"`
	EntityID  string `gorm:"size:40"`
	Details   datatypes.JSON
}
