package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"bawabt.com/labour/core"
)

const payrollSheet = "Payroll"

var payrollHeaders = []string{
	"Employee", "Profession", "Present Days", "Absent Days", "Half Days",
	"OT Hours", "Per Day Salary", "Per Hour Salary", "Day Salary",
	"OT Salary", "Total Salary", "Sites",
}

// PayrollWorkbook renders a monthly payroll summary as a workbook with one
// row per employee and a totals row at the bottom.
func PayrollWorkbook(sum core.PayrollSummary) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", payrollSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	title := fmt.Sprintf("Payroll %04d-%02d", sum.Year, sum.Month)
	if err := f.SetCellValue(payrollSheet, "A1", title); err != nil {
		return nil, err
	}
	if err := f.SetCellValue(payrollSheet, "A2", "Generated "+sum.GeneratedAt.Format(time.RFC3339)+" by "+sum.GeneratedBy); err != nil {
		return nil, err
	}

	header := make([]any, len(payrollHeaders))
	for i, h := range payrollHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(payrollSheet, "A4", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	row := 5
	for _, e := range sum.Payroll {
		values := []any{
			e.EmployeeName, e.Profession, e.PresentDays, e.AbsentDays,
			e.HalfDays, e.TotalOtHours, e.PerDaySalary, e.PerHourSalary,
			e.DaySalary, e.OtSalary, e.TotalSalary, formatSites(e.Sites),
		}
		if err := f.SetSheetRow(payrollSheet, fmt.Sprintf("A%d", row), &values); err != nil {
			return nil, fmt.Errorf("write row %d: %w", row, err)
		}
		row++
	}

	totals := []any{"Total", "", "", "", "", "", "", "", "", "", sum.TotalAmount, ""}
	if err := f.SetSheetRow(payrollSheet, fmt.Sprintf("A%d", row), &totals); err != nil {
		return nil, fmt.Errorf("write totals: %w", err)
	}

	return f, nil
}

func formatSites(sites []core.PayrollSiteDays) string {
	parts := make([]string, 0, len(sites))
	for _, s := range sites {
		parts = append(parts, fmt.Sprintf("%s %s (%g)", s.SiteNumber, s.SiteName, s.Days))
	}
	return strings.Join(parts, "; ")
}
