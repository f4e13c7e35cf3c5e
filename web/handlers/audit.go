package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"bawabt.com/labour/core"
	"bawabt.com/labour/utils"
	"bawabt.com/labour/web/common"
)

type AuditLogDTO struct {
	ID        string          `json:"id"`
	Timestamp time.Time       `json:"timestamp"`
	UserID    string          `json:"userId"`
	UserName  string          `json:"userName"`
	Action    string          `json:"action"`
	Entity    string          `json:"entity"`
	EntityID  string          `json:"entityId"`
	Details   json.RawMessage `json:"details,omitempty"`
}

func toAuditLogDTO(e core.AuditLog) AuditLogDTO {
	return AuditLogDTO{
		ID:        e.ID,
		Timestamp: e.Timestamp,
		UserID:    e.UserID,
		UserName:  e.UserName,
		Action:    e.Action,
		Entity:    e.Entity,
		EntityID:  e.EntityID,
		Details:   json.RawMessage(e.Details),
	}
}

// ListAuditLogsHandler serves the audit trail, newest first. Date filters
// accept either a calendar date or a full timestamp.
func ListAuditLogsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := db.WithContext(c.Request.Context()).Order("timestamp DESC")

		if userID := c.Query("userId"); userID != "" {
			query = query.Where("user_id = ?", userID)
		}
		if entity := c.Query("entity"); entity != "" {
			query = query.Where("entity = ?", entity)
		}
		if action := c.Query("action"); action != "" {
			query = query.Where("action = ?", action)
		}
		if start := c.Query("startDate"); start != "" {
			t, err := utils.ParseISOTime(start)
			if err != nil {
				common.Fail(c, core.NewValidationError("invalid startDate %q", start))
				return
			}
			query = query.Where("timestamp >= ?", t)
		}
		if end := c.Query("endDate"); end != "" {
			t, err := utils.ParseISOTime(end)
			if err != nil {
				common.Fail(c, core.NewValidationError("invalid endDate %q", end))
				return
			}
			bound := *t
			// A bare date means the whole day inclusive.
			if len(end) == len(core.DateLayout) {
				bound = bound.AddDate(0, 0, 1)
			}
			query = query.Where("timestamp < ?", bound)
		}

		var entries []core.AuditLog
		if err := query.Limit(1000).Find(&entries).Error; err != nil {
			common.Fail(c, &core.UpstreamError{Op: "list audit logs", Err: err})
			return
		}

		c.JSON(http.StatusOK, utils.Map(entries, toAuditLogDTO))
	}
}
