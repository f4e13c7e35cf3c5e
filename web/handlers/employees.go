// Package handlers holds the flat HTTP handlers for the records the
// application manages: employees, sites, users, payroll, expenses, audit
// trail, backups and uploads.
package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"bawabt.com/labour/core"
	"bawabt.com/labour/utils"
	"bawabt.com/labour/web/common"
	"bawabt.com/labour/web/middlewares"
)

type EmployeeDTO struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Profession    string    `json:"profession"`
	PerDaySalary  float64   `json:"perDaySalary"`
	PerHourSalary float64   `json:"perHourSalary"`
	SiteID        *string   `json:"siteId"`
	Active        bool      `json:"active"`
	JoiningDate   *string   `json:"joiningDate"`
	Notes         string    `json:"notes"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func toEmployeeDTO(e core.Employee) EmployeeDTO {
	return EmployeeDTO{
		ID:            e.ID,
		Name:          e.Name,
		Profession:    e.Profession,
		PerDaySalary:  e.PerDaySalary,
		PerHourSalary: e.PerHourSalary,
		SiteID:        e.SiteID,
		Active:        e.Active,
		JoiningDate:   e.JoiningDate,
		Notes:         e.Notes,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}

func ListEmployeesHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := db.WithContext(c.Request.Context()).Order("name")
		if active := c.Query("active"); active != "" {
			query = query.Where("active = ?", active == "true")
		}
		if siteID := c.Query("siteId"); siteID != "" {
			query = query.Where("site_id = ?", siteID)
		}

		var employees []core.Employee
		if err := query.Find(&employees).Error; err != nil {
			common.Fail(c, &core.UpstreamError{Op: "list employees", Err: err})
			return
		}

		c.JSON(http.StatusOK, utils.Map(employees, toEmployeeDTO))
	}
}

func GetEmployeeHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var employee core.Employee
		err := db.WithContext(c.Request.Context()).First(&employee, "id = ?", c.Param("id")).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.Fail(c, &core.NotFoundError{Entity: "employee"})
			return
		}
		if err != nil {
			common.Fail(c, &core.UpstreamError{Op: "find employee", Err: err})
			return
		}

		c.JSON(http.StatusOK, toEmployeeDTO(employee))
	}
}

type CreateEmployeeDTO struct {
	Name          string  `json:"name" binding:"required"`
	Profession    string  `json:"profession" binding:"required"`
	PerDaySalary  float64 `json:"perDaySalary" binding:"gte=0"`
	PerHourSalary float64 `json:"perHourSalary" binding:"gte=0"`
	SiteID        *string `json:"siteId,omitempty"`
	Active        *bool   `json:"active,omitempty"`
	JoiningDate   *string `json:"joiningDate,omitempty" binding:"omitempty,datetime=2006-01-02"`
	Notes         string  `json:"notes"`
}

func CreateEmployeeHandler(db *gorm.DB, audit *core.AuditTrail) gin.HandlerFunc {
	return func(c *gin.Context) {
		var dto CreateEmployeeDTO
		if err := c.ShouldBindJSON(&dto); err != nil {
			c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
			return
		}

		employee := core.Employee{
			ID:            core.NewID("emp_"),
			Name:          dto.Name,
			Profession:    dto.Profession,
			PerDaySalary:  dto.PerDaySalary,
			PerHourSalary: dto.PerHourSalary,
			SiteID:        dto.SiteID,
			Active:        true,
			JoiningDate:   dto.JoiningDate,
			Notes:         dto.Notes,
		}
		if dto.Active != nil {
			employee.Active = *dto.Active
		}

		ctx := c.Request.Context()
		if err := db.WithContext(ctx).Create(&employee).Error; err != nil {
			common.Fail(c, &core.UpstreamError{Op: "create employee", Err: err})
			return
		}

		audit.Log(ctx, middlewares.CurrentActor(c), core.ActionCreate, "employee", employee.ID, gin.H{"name": employee.Name})

		c.JSON(http.StatusCreated, toEmployeeDTO(employee))
	}
}

type UpdateEmployeeDTO struct {
	Name          *string  `json:"name,omitempty"`
	Profession    *string  `json:"profession,omitempty"`
	PerDaySalary  *float64 `json:"perDaySalary,omitempty" binding:"omitempty,gte=0"`
	PerHourSalary *float64 `json:"perHourSalary,omitempty" binding:"omitempty,gte=0"`
	SiteID        *string  `json:"siteId,omitempty"`
	Active        *bool    `json:"active,omitempty"`
	JoiningDate   *string  `json:"joiningDate,omitempty" binding:"omitempty,datetime=2006-01-02"`
	Notes         *string  `json:"notes,omitempty"`
}

func UpdateEmployeeHandler(db *gorm.DB, audit *core.AuditTrail) gin.HandlerFunc {
	return func(c *gin.Context) {
		var dto UpdateEmployeeDTO
		if err := c.ShouldBindJSON(&dto); err != nil {
			c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
			return
		}

		ctx := c.Request.Context()
		var employee core.Employee
		err := db.WithContext(ctx).First(&employee, "id = ?", c.Param("id")).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.Fail(c, &core.NotFoundError{Entity: "employee"})
			return
		}
		if err != nil {
			common.Fail(c, &core.UpstreamError{Op: "find employee", Err: err})
			return
		}

		changes := map[string]any{}
		if dto.Name != nil {
			changes["name"] = *dto.Name
		}
		if dto.Profession != nil {
			changes["profession"] = *dto.Profession
		}
		if dto.PerDaySalary != nil {
			changes["per_day_salary"] = *dto.PerDaySalary
		}
		if dto.PerHourSalary != nil {
			changes["per_hour_salary"] = *dto.PerHourSalary
		}
		if dto.SiteID != nil {
			if *dto.SiteID == "" {
				changes["site_id"] = nil
			} else {
				changes["site_id"] = *dto.SiteID
			}
		}
		if dto.Active != nil {
			changes["active"] = *dto.Active
		}
		if dto.JoiningDate != nil {
			changes["joining_date"] = *dto.JoiningDate
		}
		if dto.Notes != nil {
			changes["notes"] = *dto.Notes
		}
		if len(changes) == 0 {
			c.JSON(http.StatusOK, toEmployeeDTO(employee))
			return
		}

		if err := db.WithContext(ctx).Model(&employee).Updates(changes).Error; err != nil {
			common.Fail(c, &core.UpstreamError{Op: "update employee", Err: err})
			return
		}

		audit.Log(ctx, middlewares.CurrentActor(c), core.ActionUpdate, "employee", employee.ID, changes)

		c.JSON(http.StatusOK, toEmployeeDTO(employee))
	}
}

func DeleteEmployeeHandler(db *gorm.DB, audit *core.AuditTrail) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		id := c.Param("id")

		res := db.WithContext(ctx).Delete(&core.Employee{}, "id = ?", id)
		if res.Error != nil {
			common.Fail(c, &core.UpstreamError{Op: "delete employee", Err: res.Error})
			return
		}
		if res.RowsAffected == 0 {
			common.Fail(c, &core.NotFoundError{Entity: "employee"})
			return
		}

		audit.Log(ctx, middlewares.CurrentActor(c), core.ActionDelete, "employee", id, nil)

		c.JSON(http.StatusOK, gin.H{"message": "Employee deleted successfully"})
	}
}
