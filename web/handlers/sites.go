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

type SiteDTO struct {
	ID         string    `json:"id"`
	SiteNumber string    `json:"siteNumber"`
	SiteName   string    `json:"siteName"`
	Location   string    `json:"location"`
	Active     bool      `json:"active"`
	Notes      string    `json:"notes"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func toSiteDTO(s core.Site) SiteDTO {
	return SiteDTO{
		ID:         s.ID,
		SiteNumber: s.SiteNumber,
		SiteName:   s.SiteName,
		Location:   s.Location,
		Active:     s.Active,
		Notes:      s.Notes,
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.UpdatedAt,
	}
}

func ListSitesHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := db.WithContext(c.Request.Context()).Order("site_number")
		if active := c.Query("active"); active != "" {
			query = query.Where("active = ?", active == "true")
		}

		var sites []core.Site
		if err := query.Find(&sites).Error; err != nil {
			common.Fail(c, &core.UpstreamError{Op: "list sites", Err: err})
			return
		}

		c.JSON(http.StatusOK, utils.Map(sites, toSiteDTO))
	}
}

func GetSiteHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var site core.Site
		err := db.WithContext(c.Request.Context()).First(&site, "id = ?", c.Param("id")).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.Fail(c, &core.NotFoundError{Entity: "site"})
			return
		}
		if err != nil {
			common.Fail(c, &core.UpstreamError{Op: "find site", Err: err})
			return
		}

		c.JSON(http.StatusOK, toSiteDTO(site))
	}
}

type CreateSiteDTO struct {
	SiteNumber string `json:"siteNumber" binding:"required"`
	SiteName   string `json:"siteName" binding:"required"`
	Location   string `json:"location"`
	Notes      string `json:"notes"`
}

func CreateSiteHandler(db *gorm.DB, audit *core.AuditTrail) gin.HandlerFunc {
	return func(c *gin.Context) {
		var dto CreateSiteDTO
		if err := c.ShouldBindJSON(&dto); err != nil {
			c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
			return
		}

		site := core.Site{
			ID:         core.NewID("site_"),
			SiteNumber: dto.SiteNumber,
			SiteName:   dto.SiteName,
			Location:   dto.Location,
			Active:     true,
			Notes:      dto.Notes,
		}

		ctx := c.Request.Context()
		if err := db.WithContext(ctx).Create(&site).Error; err != nil {
			common.Fail(c, translateSaveError(err, "create site", "site number already exists"))
			return
		}

		audit.Log(ctx, middlewares.CurrentActor(c), core.ActionCreate, "site", site.ID, gin.H{"siteNumber": site.SiteNumber})

		c.JSON(http.StatusCreated, toSiteDTO(site))
	}
}

type UpdateSiteDTO struct {
	SiteNumber *string `json:"siteNumber,omitempty"`
	SiteName   *string `json:"siteName,omitempty"`
	Location   *string `json:"location,omitempty"`
	Active     *bool   `json:"active,omitempty"`
	Notes      *string `json:"notes,omitempty"`
}

func UpdateSiteHandler(db *gorm.DB, audit *core.AuditTrail) gin.HandlerFunc {
	return func(c *gin.Context) {
		var dto UpdateSiteDTO
		if err := c.ShouldBindJSON(&dto); err != nil {
			c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
			return
		}

		ctx := c.Request.Context()
		var site core.Site
		err := db.WithContext(ctx).First(&site, "id = ?", c.Param("id")).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.Fail(c, &core.NotFoundError{Entity: "site"})
			return
		}
		if err != nil {
			common.Fail(c, &core.UpstreamError{Op: "find site", Err: err})
			return
		}

		changes := map[string]any{}
		if dto.SiteNumber != nil {
			changes["site_number"] = *dto.SiteNumber
		}
		if dto.SiteName != nil {
			changes["site_name"] = *dto.SiteName
		}
		if dto.Location != nil {
			changes["location"] = *dto.Location
		}
		if dto.Active != nil {
			changes["active"] = *dto.Active
		}
		if dto.Notes != nil {
			changes["notes"] = *dto.Notes
		}
		if len(changes) == 0 {
			c.JSON(http.StatusOK, toSiteDTO(site))
			return
		}

		if err := db.WithContext(ctx).Model(&site).Updates(changes).Error; err != nil {
			common.Fail(c, translateSaveError(err, "update site", "site number already exists"))
			return
		}

		audit.Log(ctx, middlewares.CurrentActor(c), core.ActionUpdate, "site", site.ID, changes)

		c.JSON(http.StatusOK, toSiteDTO(site))
	}
}

func DeleteSiteHandler(db *gorm.DB, audit *core.AuditTrail) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		id := c.Param("id")

		res := db.WithContext(ctx).Delete(&core.Site{}, "id = ?", id)
		if res.Error != nil {
			common.Fail(c, &core.UpstreamError{Op: "delete site", Err: res.Error})
			return
		}
		if res.RowsAffected == 0 {
			common.Fail(c, &core.NotFoundError{Entity: "site"})
			return
		}

		audit.Log(ctx, middlewares.CurrentActor(c), core.ActionDelete, "site", id, nil)

		c.JSON(http.StatusOK, gin.H{"message": "Site deleted successfully"})
	}
}
