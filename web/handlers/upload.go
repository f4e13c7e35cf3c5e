package handlers

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"bawabt.com/labour/core"
	"bawabt.com/labour/infrastructure/filesystem"
	"bawabt.com/labour/web/common"
)

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".pdf":  true,
	".xlsx": true,
}

// UploadHandler stores multipart files under a namespaced S3 prefix and
// returns the stored keys.
func UploadHandler(bucket, prefix string) gin.HandlerFunc {
	return func(c *gin.Context) {
		form, err := c.MultipartForm()
		if err != nil {
			c.JSON(http.StatusBadRequest, common.NewErrorResponse("invalid multipart form"))
			return
		}

		files := form.File["files"]
		if len(files) == 0 {
			common.Fail(c, core.NewValidationError("no files provided"))
			return
		}

		ctx := c.Request.Context()
		keys := make([]string, 0, len(files))
		for _, file := range files {
			ext := strings.ToLower(filepath.Ext(file.Filename))
			if !allowedExtensions[ext] {
				common.Fail(c, core.NewValidationError("file type %q is not allowed", ext))
				return
			}

			src, err := file.Open()
			if err != nil {
				common.Fail(c, &core.UpstreamError{Op: "open upload", Err: err})
				return
			}

			key := prefix + core.NewID("file_") + ext
			err = filesystem.WriteFile(ctx, bucket, key, src)
			src.Close()
			if err != nil {
				common.Fail(c, &core.UpstreamError{Op: "store upload", Err: err})
				return
			}
			keys = append(keys, key)
		}

		c.JSON(http.StatusCreated, gin.H{"keys": keys})
	}
}
