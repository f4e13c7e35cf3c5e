package attendance

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bawabt.com/labour/core"
	"bawabt.com/labour/utils"
	"bawabt.com/labour/web/common"
)

func (ep *Endpoint) List(c *gin.Context) {
	filter := core.AttendanceFilter{
		StartDate:  c.Query("startDate"),
		EndDate:    c.Query("endDate"),
		EmployeeID: c.Query("employeeId"),
		Status:     c.Query("status"),
		SiteID:     c.Query("siteId"),
	}

	records, err := ep.store.ListAttendance(c.Request.Context(), filter)
	if err != nil {
		common.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, utils.Map(records, toDTO))
}
