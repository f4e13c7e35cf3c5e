package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"bawabt.com/labour/core"
	"bawabt.com/labour/export"
	"bawabt.com/labour/web/common"
	"bawabt.com/labour/web/middlewares"
)

func buildPayrollSummary(ctx context.Context, db *gorm.DB, year, month int, actor core.Actor) (*core.PayrollSummary, error) {
	start, end, err := core.MonthRange(year, month)
	if err != nil {
		return nil, err
	}

	var employees []core.Employee
	if err := db.WithContext(ctx).Find(&employees).Error; err != nil {
		return nil, &core.UpstreamError{Op: "list employees", Err: err}
	}

	var attendance []core.Attendance
	if err := db.WithContext(ctx).Where("date >= ? AND date <= ?", start, end).Find(&attendance).Error; err != nil {
		return nil, &core.UpstreamError{Op: "list attendance", Err: err}
	}

	// Live sites only. Records referencing a deleted site tally under the
	// "No Site" fallback.
	var sites []core.Site
	if err := db.WithContext(ctx).Find(&sites).Error; err != nil {
		return nil, &core.UpstreamError{Op: "list sites", Err: err}
	}

	entries, total, err := core.BuildPayroll(employees, attendance, sites, year, month)
	if err != nil {
		return nil, err
	}

	return &core.PayrollSummary{
		Month:          month,
		Year:           year,
		GeneratedAt:    time.Now().UTC(),
		GeneratedBy:    actor.Name,
		TotalEmployees: len(entries),
		TotalAmount:    total,
		Payroll:        entries,
	}, nil
}

func payrollParams(c *gin.Context) (int, int, error) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		return 0, 0, core.NewValidationError("invalid year %q", c.Param("year"))
	}
	month, err := strconv.Atoi(c.Param("month"))
	if err != nil {
		return 0, 0, core.NewValidationError("invalid month %q", c.Param("month"))
	}
	return year, month, nil
}

func MonthlyPayrollHandler(db *gorm.DB, audit *core.AuditTrail) gin.HandlerFunc {
	return func(c *gin.Context) {
		year, month, err := payrollParams(c)
		if err != nil {
			common.Fail(c, err)
			return
		}

		ctx := c.Request.Context()
		actor := middlewares.CurrentActor(c)

		sum, err := buildPayrollSummary(ctx, db, year, month, actor)
		if err != nil {
			common.Fail(c, err)
			return
		}

		audit.Log(ctx, actor, core.ActionCalculatePayroll, "payroll", fmt.Sprintf("%04d-%02d", year, month), gin.H{
			"employees": sum.TotalEmployees,
			"total":     sum.TotalAmount,
		})

		c.JSON(http.StatusOK, sum)
	}
}

func ExportPayrollHandler(db *gorm.DB, audit *core.AuditTrail) gin.HandlerFunc {
	return func(c *gin.Context) {
		year, month, err := payrollParams(c)
		if err != nil {
			common.Fail(c, err)
			return
		}

		ctx := c.Request.Context()
		actor := middlewares.CurrentActor(c)

		sum, err := buildPayrollSummary(ctx, db, year, month, actor)
		if err != nil {
			common.Fail(c, err)
			return
		}

		f, err := export.PayrollWorkbook(*sum)
		if err != nil {
			common.Fail(c, &core.UpstreamError{Op: "build payroll workbook", Err: err})
			return
		}

		audit.Log(ctx, actor, core.ActionCalculatePayroll, "payroll", fmt.Sprintf("%04d-%02d", year, month), gin.H{
			"employees": sum.TotalEmployees,
			"total":     sum.TotalAmount,
			"export":    "xlsx",
		})

		filename := fmt.Sprintf("Payroll_%04d-%02d.xlsx", year, month)
		c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		if err := f.Write(c.Writer); err != nil {
			// Headers are already out, nothing useful to send back.
			_ = c.Error(err)
		}
	}
}
