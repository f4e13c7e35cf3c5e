package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bawabt.com/labour/core"
	"bawabt.com/labour/web/common"
)

// RequireManager gates manager-only routes.
func RequireManager() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentActor(c).Role != core.RoleManager {
			c.AbortWithStatusJSON(http.StatusForbidden, common.NewErrorResponse("manager role required"))
			return
		}
		c.Next()
	}
}

// RequireSupervisor gates write routes. Managers pass as well: manager is a
// superset of supervisor privileges.
func RequireSupervisor() gin.HandlerFunc {
	return func(c *gin.Context) {
		role := CurrentActor(c).Role
		if role != core.RoleManager && role != core.RoleSupervisor {
			c.AbortWithStatusJSON(http.StatusForbidden, common.NewErrorResponse("supervisor role required"))
			return
		}
		c.Next()
	}
}
