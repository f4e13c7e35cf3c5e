package attendance

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"bawabt.com/labour/core"
	"bawabt.com/labour/utils"
	"bawabt.com/labour/web/common"
	"bawabt.com/labour/web/middlewares"
)

type MarkAttendanceDTO struct {
	EmployeeID string  `json:"employeeId" binding:"required"`
	Date       string  `json:"date" binding:"required,datetime=2006-01-02"`
	Status     string  `json:"status" binding:"required,oneof=Present Absent Half-Day"`
	OtHours    float64 `json:"otHours" binding:"omitempty,gte=0"`
	SiteID     *string `json:"siteId,omitempty"`
	Notes      string  `json:"notes"`
}

func (ep *Endpoint) Mark(c *gin.Context) {
	var dto MarkAttendanceDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
		return
	}

	rec, err := core.MarkAttendance(c.Request.Context(), ep.store, ep.audit, core.MarkInput{
		EmployeeID: dto.EmployeeID,
		Date:       dto.Date,
		Status:     dto.Status,
		OtHours:    dto.OtHours,
		SiteID:     dto.SiteID,
		Notes:      dto.Notes,
	}, middlewares.CurrentActor(c))
	if err != nil {
		common.Fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, toDTO(*rec))
}

type BulkRecordDTO struct {
	EmployeeID string  `json:"employeeId" binding:"required"`
	Status     string  `json:"status" binding:"required,oneof=Present Absent Half-Day"`
	OtHours    float64 `json:"otHours" binding:"omitempty,gte=0"`
	SiteID     *string `json:"siteId,omitempty"`
	Notes      string  `json:"notes"`
}

type BulkMarkDTO struct {
	Date    string          `json:"date" binding:"required,datetime=2006-01-02"`
	Records []BulkRecordDTO `json:"records" binding:"required"`
}

// BulkMark creates one record per entry, skipping employees already marked
// for the date. Best effort, not a transaction.
func (ep *Endpoint) BulkMark(c *gin.Context) {
	var dto BulkMarkDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
		return
	}

	records := utils.Map(dto.Records, func(r BulkRecordDTO) core.BulkRecord {
		return core.BulkRecord{
			EmployeeID: r.EmployeeID,
			Status:     r.Status,
			OtHours:    r.OtHours,
			SiteID:     r.SiteID,
			Notes:      r.Notes,
		}
	})

	created, err := core.BulkMarkAttendance(c.Request.Context(), ep.store, ep.audit, dto.Date, records, middlewares.CurrentActor(c))
	if err != nil {
		// Partial application: records created before the failure stay
		// created, so the client gets the subset alongside the error.
		status, message := common.Classify(err)
		if status == http.StatusInternalServerError {
			log.Printf("POST %s: %v", c.Request.URL.Path, err)
		}
		c.JSON(status, gin.H{
			"error":   message,
			"created": utils.Map(created, toDTO),
			"count":   len(created),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"created": utils.Map(created, toDTO),
		"count":   len(created),
	})
}
