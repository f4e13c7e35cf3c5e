package core

import (
	"time"

	"bawabt.com/labour/utils"
)

type PayrollSiteDays struct {
	SiteNumber string  `json:"siteNumber"`
	SiteName   string  `json:"siteName"`
	Days       float64 `json:"days"`
}

type PayrollEntry struct {
	EmployeeID    string            `json:"employeeId"`
	EmployeeName  string            `json:"employeeName"`
	Profession    string            `json:"profession"`
	PresentDays   float64           `json:"presentDays"`
	AbsentDays    int               `json:"absentDays"`
	HalfDays      int               `json:"halfDays"`
	TotalOtHours  float64           `json:"totalOtHours"`
	PerDaySalary  float64           `json:"perDaySalary"`
	PerHourSalary float64           `json:"perHourSalary"`
	DaySalary     float64           `json:"daySalary"`
	OtSalary      float64           `json:"otSalary"`
	TotalSalary   float64           `json:"totalSalary"`
	Sites         []PayrollSiteDays `json:"sites"`
}

type PayrollSummary struct {
	Month          int            `json:"month"`
	Year           int            `json:"year"`
	GeneratedAt    time.Time      `json:"generatedAt"`
	GeneratedBy    string         `json:"generatedBy"`
	TotalEmployees int            `json:"totalEmployees"`
	TotalAmount    float64        `json:"totalAmount"`
	Payroll        []PayrollEntry `json:"payroll"`
}

// MonthRange returns the inclusive ISO date bounds of a month, using the
// month's actual day count.
func MonthRange(year, month int) (string, string, error) {
	if month < 1 || month > 12 || year < 2000 {
		return "", "", NewValidationError("invalid month or year")
	}
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return first.Format(DateLayout), last.Format(DateLayout), nil
}

// BuildPayroll derives the per-employee monthly summary from the loaded
// record sets. It is a pure computation: nothing is persisted and callers
// recompute on every request. Employees with zero attendance in the month
// are excluded from the result.
func BuildPayroll(employees []Employee, attendance []Attendance, sites []Site, year, month int) ([]PayrollEntry, float64, error) {
	start, end, err := MonthRange(year, month)
	if err != nil {
		return nil, 0, err
	}

	inRange := utils.Filter(attendance, func(a Attendance) bool {
		return a.Date >= start && a.Date <= end
	})
	byEmployee := utils.GroupBy(inRange, func(a Attendance) string { return a.EmployeeID })

	// Only live sites resolve to a name; a deleted or unknown site tallies
	// under the "No Site" fallback.
	siteLookup := make(map[string]Site, len(sites))
	for _, s := range sites {
		if s.DeletedAt != 0 {
			continue
		}
		siteLookup[s.ID] = s
	}

	var entries []PayrollEntry
	var totalAmount float64

	for _, emp := range employees {
		records := byEmployee[emp.ID]

		entry := PayrollEntry{
			EmployeeID:    emp.ID,
			EmployeeName:  emp.Name,
			Profession:    emp.Profession,
			PerDaySalary:  emp.PerDaySalary,
			PerHourSalary: emp.PerHourSalary,
			Sites:         []PayrollSiteDays{},
		}

		siteIndex := map[string]int{}
		for _, att := range records {
			days := 1.0
			switch att.Status {
			case StatusPresent:
				entry.PresentDays++
			case StatusAbsent:
				entry.AbsentDays++
			case StatusHalfDay:
				entry.HalfDays++
				entry.PresentDays += 0.5
				days = 0.5
			}
			entry.TotalOtHours += att.OtHours

			siteKey := "No Site"
			siteNumber, siteName := "N/A", "No Site"
			if att.SiteID != nil {
				siteKey = *att.SiteID
				if s, ok := siteLookup[*att.SiteID]; ok {
					siteNumber, siteName = s.SiteNumber, s.SiteName
				}
			}
			idx, ok := siteIndex[siteKey]
			if !ok {
				idx = len(entry.Sites)
				siteIndex[siteKey] = idx
				entry.Sites = append(entry.Sites, PayrollSiteDays{SiteNumber: siteNumber, SiteName: siteName})
			}
			entry.Sites[idx].Days += days
		}

		// Zero attendance in the month: drop the employee entirely. An
		// employee with only half-days stays because presentDays > 0.
		if entry.PresentDays == 0 && entry.AbsentDays == 0 {
			continue
		}

		entry.DaySalary = entry.PresentDays * emp.PerDaySalary
		entry.OtSalary = entry.TotalOtHours * emp.PerHourSalary
		entry.TotalSalary = entry.DaySalary + entry.OtSalary

		totalAmount += entry.TotalSalary
		entries = append(entries, entry)
	}

	return entries, totalAmount, nil
}
