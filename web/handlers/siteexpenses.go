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

type SiteExpenseDTO struct {
	ID         string    `json:"id"`
	SiteID     string    `json:"siteId"`
	SiteNumber string    `json:"siteNumber"`
	Amount     float64   `json:"amount"`
	Date       string    `json:"date"`
	Category   string    `json:"category"`
	Notes      string    `json:"notes"`
	CreatedBy  string    `json:"createdBy"`
	CreatedAt  time.Time `json:"createdAt"`
}

func toSiteExpenseDTO(e core.SiteExpense) SiteExpenseDTO {
	return SiteExpenseDTO{
		ID:         e.ID,
		SiteID:     e.SiteID,
		SiteNumber: e.SiteNumber,
		Amount:     e.Amount,
		Date:       e.Date,
		Category:   e.Category,
		Notes:      e.Notes,
		CreatedBy:  e.CreatedBy,
		CreatedAt:  e.CreatedAt,
	}
}

func ListSiteExpensesHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := db.WithContext(c.Request.Context()).Order("date DESC")
		if siteID := c.Query("siteId"); siteID != "" {
			query = query.Where("site_id = ?", siteID)
		}
		if start := c.Query("startDate"); start != "" {
			query = query.Where("date >= ?", start)
		}
		if end := c.Query("endDate"); end != "" {
			query = query.Where("date <= ?", end)
		}

		var expenses []core.SiteExpense
		if err := query.Find(&expenses).Error; err != nil {
			common.Fail(c, &core.UpstreamError{Op: "list site expenses", Err: err})
			return
		}

		c.JSON(http.StatusOK, utils.Map(expenses, toSiteExpenseDTO))
	}
}

type CreateSiteExpenseDTO struct {
	SiteID   string  `json:"siteId" binding:"required"`
	Amount   float64 `json:"amount" binding:"required,gte=0"`
	Date     string  `json:"date" binding:"required,datetime=2006-01-02"`
	Category string  `json:"category"`
	Notes    string  `json:"notes"`
}

func CreateSiteExpenseHandler(db *gorm.DB, audit *core.AuditTrail) gin.HandlerFunc {
	return func(c *gin.Context) {
		var dto CreateSiteExpenseDTO
		if err := c.ShouldBindJSON(&dto); err != nil {
			c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
			return
		}

		ctx := c.Request.Context()
		var site core.Site
		err := db.WithContext(ctx).First(&site, "id = ?", dto.SiteID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.Fail(c, &core.NotFoundError{Entity: "site"})
			return
		}
		if err != nil {
			common.Fail(c, &core.UpstreamError{Op: "find site", Err: err})
			return
		}

		actor := middlewares.CurrentActor(c)
		expense := core.SiteExpense{
			ID:         core.NewID("exp_"),
			SiteID:     site.ID,
			SiteNumber: site.SiteNumber,
			Amount:     dto.Amount,
			Date:       dto.Date,
			Category:   dto.Category,
			Notes:      dto.Notes,
			CreatedBy:  actor.ID,
		}

		if err := db.WithContext(ctx).Create(&expense).Error; err != nil {
			common.Fail(c, &core.UpstreamError{Op: "create site expense", Err: err})
			return
		}

		audit.Log(ctx, actor, core.ActionCreate, "siteExpense", expense.ID, gin.H{"siteId": site.ID, "amount": expense.Amount})

		c.JSON(http.StatusCreated, toSiteExpenseDTO(expense))
	}
}

func DeleteSiteExpenseHandler(db *gorm.DB, audit *core.AuditTrail) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		id := c.Param("id")

		res := db.WithContext(ctx).Delete(&core.SiteExpense{}, "id = ?", id)
		if res.Error != nil {
			common.Fail(c, &core.UpstreamError{Op: "delete site expense", Err: res.Error})
			return
		}
		if res.RowsAffected == 0 {
			common.Fail(c, &core.NotFoundError{Entity: "site expense"})
			return
		}

		audit.Log(ctx, middlewares.CurrentActor(c), core.ActionDelete, "siteExpense", id, nil)

		c.JSON(http.StatusOK, gin.H{"message": "Expense deleted successfully"})
	}
}
