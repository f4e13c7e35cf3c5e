package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"bawabt.com/labour/core"
	"bawabt.com/labour/security"
	"bawabt.com/labour/web/common"
)

const actorKey = "actor"

// Authentication checks for a valid Bearer token and stores the acting user
// on the request context.
func Authentication(jwtSecret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, common.NewErrorResponse("missing authorization header"))
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, common.NewErrorResponse("malformed authorization header"))
			return
		}

		claims, err := security.ParseUserToken(parts[1], jwtSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, common.NewErrorResponse("invalid or expired token"))
			return
		}

		c.Set(actorKey, core.Actor{
			ID:   claims.Identity.ID,
			Name: claims.Name,
			Role: claims.Role,
		})
		c.Next()
	}
}

// CurrentActor returns the authenticated user stored by Authentication.
func CurrentActor(c *gin.Context) core.Actor {
	if v, ok := c.Get(actorKey); ok {
		if actor, ok := v.(core.Actor); ok {
			return actor
		}
	}
	return core.Actor{}
}
