package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bawabt.com/labour/backup"
	"bawabt.com/labour/core"
	"bawabt.com/labour/web/common"
	"bawabt.com/labour/web/middlewares"
)

func RunBackupHandler(svc *backup.Service, audit *core.AuditTrail) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		actor := middlewares.CurrentActor(c)

		key, err := svc.Run(ctx)
		if err != nil {
			common.Fail(c, &core.UpstreamError{Op: "run backup", Err: err})
			return
		}

		audit.Log(ctx, actor, core.ActionManualBackup, "backup", key, nil)

		c.JSON(http.StatusOK, gin.H{"message": "Backup created successfully", "key": key})
	}
}

func ListBackupsHandler(svc *backup.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		keys, err := svc.List(c.Request.Context())
		if err != nil {
			common.Fail(c, &core.UpstreamError{Op: "list backups", Err: err})
			return
		}
		if keys == nil {
			keys = []string{}
		}

		c.JSON(http.StatusOK, gin.H{"backups": keys})
	}
}
