// Package attendance exposes the attendance lifecycle over HTTP.
package attendance

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"bawabt.com/labour/core"
	"bawabt.com/labour/web/common"
	"bawabt.com/labour/web/middlewares"
)

type Endpoint struct {
	store core.AttendanceStore
	audit *core.AuditTrail
}

func Register(r *gin.RouterGroup, store core.AttendanceStore, audit *core.AuditTrail) {
	ep := &Endpoint{store: store, audit: audit}
	supervisor := middlewares.RequireSupervisor()

	r.GET("/attendance", ep.List)
	r.POST("/attendance", supervisor, ep.Mark)
	r.POST("/attendance/bulk", supervisor, ep.BulkMark)
	r.PUT("/attendance/:id", supervisor, ep.Update)
	r.POST("/attendance/:id/approve", middlewares.RequireManager(), ep.Approve)
	r.DELETE("/attendance/:id", supervisor, ep.Delete)
}

type AttendanceDTO struct {
	ID           string     `json:"id"`
	EmployeeID   string     `json:"employeeId"`
	Date         string     `json:"date"`
	Status       string     `json:"status"`
	OtHours      float64    `json:"otHours"`
	SiteID       *string    `json:"siteId"`
	Notes        string     `json:"notes"`
	MarkedBy     string     `json:"markedBy"`
	ApprovedBy   *string    `json:"approvedBy"`
	Approved     bool       `json:"approved"`
	MarkedAt     time.Time  `json:"markedAt"`
	LastEditedAt *time.Time `json:"lastEditedAt"`
	ApprovedAt   *time.Time `json:"approvedAt"`
}

func toDTO(rec core.Attendance) AttendanceDTO {
	return AttendanceDTO{
		ID:           rec.ID,
		EmployeeID:   rec.EmployeeID,
		Date:         rec.Date,
		Status:       rec.Status,
		OtHours:      rec.OtHours,
		SiteID:       rec.SiteID,
		Notes:        rec.Notes,
		MarkedBy:     rec.MarkedBy,
		ApprovedBy:   rec.ApprovedBy,
		Approved:     rec.Approved,
		MarkedAt:     rec.MarkedAt,
		LastEditedAt: rec.LastEditedAt,
		ApprovedAt:   rec.ApprovedAt,
	}
}

type UpdateAttendanceDTO struct {
	Status  *string  `json:"status,omitempty"`
	OtHours *float64 `json:"otHours,omitempty"`
	SiteID  *string  `json:"siteId,omitempty"`
	Notes   *string  `json:"notes,omitempty"`
}

func (ep *Endpoint) Update(c *gin.Context) {
	var dto UpdateAttendanceDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
		return
	}

	patch := core.AttendancePatch{
		Status:  dto.Status,
		OtHours: dto.OtHours,
		SiteID:  dto.SiteID,
		Notes:   dto.Notes,
	}

	rec, err := core.UpdateAttendance(c.Request.Context(), ep.store, ep.audit, c.Param("id"), patch, middlewares.CurrentActor(c))
	if err != nil {
		common.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, toDTO(*rec))
}

func (ep *Endpoint) Approve(c *gin.Context) {
	_, err := core.ApproveAttendance(c.Request.Context(), ep.store, ep.audit, c.Param("id"), middlewares.CurrentActor(c))
	if err != nil {
		common.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Attendance approved successfully"})
}

func (ep *Endpoint) Delete(c *gin.Context) {
	err := core.RemoveAttendance(c.Request.Context(), ep.store, ep.audit, c.Param("id"), middlewares.CurrentActor(c))
	if err != nil {
		common.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Attendance deleted successfully"})
}
