package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"bawabt.com/labour/core"
	"bawabt.com/labour/security"
	"bawabt.com/labour/utils"
	"bawabt.com/labour/web/common"
	"bawabt.com/labour/web/middlewares"
)

func ListUsersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var users []core.User
		err := db.WithContext(c.Request.Context()).Order("name").Find(&users).Error
		if err != nil {
			common.Fail(c, &core.UpstreamError{Op: "list users", Err: err})
			return
		}

		c.JSON(http.StatusOK, utils.Map(users, toUserDTO))
	}
}

type CreateUserDTO struct {
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"required,oneof=manager supervisor"`
}

func CreateUserHandler(db *gorm.DB, audit *core.AuditTrail) gin.HandlerFunc {
	return func(c *gin.Context) {
		var dto CreateUserDTO
		if err := c.ShouldBindJSON(&dto); err != nil {
			c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
			return
		}

		hash, err := security.HashPassword(dto.Password)
		if err != nil {
			common.Fail(c, err)
			return
		}

		user := core.User{
			ID:           core.NewID("usr_"),
			Email:        dto.Email,
			Name:         dto.Name,
			PasswordHash: hash,
			Role:         dto.Role,
			Active:       true,
		}

		ctx := c.Request.Context()
		if err := db.WithContext(ctx).Create(&user).Error; err != nil {
			common.Fail(c, translateSaveError(err, "create user", "email already registered"))
			return
		}

		audit.Log(ctx, middlewares.CurrentActor(c), core.ActionCreate, "user", user.ID, gin.H{"email": user.Email, "role": user.Role})

		c.JSON(http.StatusCreated, toUserDTO(user))
	}
}

type UpdateUserDTO struct {
	Name     *string `json:"name,omitempty"`
	Password *string `json:"password,omitempty" binding:"omitempty,min=8"`
	Role     *string `json:"role,omitempty" binding:"omitempty,oneof=manager supervisor"`
	Active   *bool   `json:"active,omitempty"`
}

func UpdateUserHandler(db *gorm.DB, audit *core.AuditTrail) gin.HandlerFunc {
	return func(c *gin.Context) {
		var dto UpdateUserDTO
		if err := c.ShouldBindJSON(&dto); err != nil {
			c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
			return
		}

		ctx := c.Request.Context()
		var user core.User
		err := db.WithContext(ctx).First(&user, "id = ?", c.Param("id")).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.Fail(c, &core.NotFoundError{Entity: "user"})
			return
		}
		if err != nil {
			common.Fail(c, &core.UpstreamError{Op: "find user", Err: err})
			return
		}

		changes := map[string]any{}
		audited := map[string]any{}
		if dto.Name != nil {
			changes["name"] = *dto.Name
			audited["name"] = *dto.Name
		}
		if dto.Password != nil {
			hash, err := security.HashPassword(*dto.Password)
			if err != nil {
				common.Fail(c, err)
				return
			}
			changes["password_hash"] = hash
			audited["password"] = "changed"
		}
		if dto.Role != nil {
			changes["role"] = *dto.Role
			audited["role"] = *dto.Role
		}
		if dto.Active != nil {
			changes["active"] = *dto.Active
			audited["active"] = *dto.Active
		}
		if len(changes) == 0 {
			c.JSON(http.StatusOK, toUserDTO(user))
			return
		}

		if err := db.WithContext(ctx).Model(&user).Updates(changes).Error; err != nil {
			common.Fail(c, &core.UpstreamError{Op: "update user", Err: err})
			return
		}

		audit.Log(ctx, middlewares.CurrentActor(c), core.ActionUpdate, "user", user.ID, audited)

		c.JSON(http.StatusOK, toUserDTO(user))
	}
}

func DeleteUserHandler(db *gorm.DB, audit *core.AuditTrail) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		var user core.User
		err := db.WithContext(ctx).First(&user, "id = ?", c.Param("id")).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.Fail(c, &core.NotFoundError{Entity: "user"})
			return
		}
		if err != nil {
			common.Fail(c, &core.UpstreamError{Op: "find user", Err: err})
			return
		}

		// Manager accounts stay. Deactivate them instead.
		if user.Role == core.RoleManager {
			common.Fail(c, &core.ForbiddenError{Message: "manager accounts cannot be deleted"})
			return
		}

		if err := db.WithContext(ctx).Delete(&user).Error; err != nil {
			common.Fail(c, &core.UpstreamError{Op: "delete user", Err: err})
			return
		}

		audit.Log(ctx, middlewares.CurrentActor(c), core.ActionDelete, "user", user.ID, gin.H{"email": user.Email})

		c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
	}
}
