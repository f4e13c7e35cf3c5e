package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"bawabt.com/labour/core"
	"bawabt.com/labour/security"
	"bawabt.com/labour/web/common"
	"bawabt.com/labour/web/middlewares"
)

type LoginDTO struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UserDTO struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	Name      string     `json:"name"`
	Role      string     `json:"role"`
	Active    bool       `json:"active"`
	CreatedAt time.Time  `json:"createdAt"`
	LastLogin *time.Time `json:"lastLogin,omitempty"`
}

func toUserDTO(u core.User) UserDTO {
	return UserDTO{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		Active:    u.Active,
		CreatedAt: u.CreatedAt,
		LastLogin: u.LastLogin,
	}
}

func LoginHandler(db *gorm.DB, audit *core.AuditTrail, jwtSecret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		var dto LoginDTO
		if err := c.ShouldBindJSON(&dto); err != nil {
			c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
			return
		}

		ctx := c.Request.Context()
		var user core.User
		err := db.WithContext(ctx).First(&user, "email = ? AND active = ?", dto.Email, true).Error
		if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && !security.CheckPassword(user.PasswordHash, dto.Password)) {
			c.JSON(http.StatusUnauthorized, common.NewErrorResponse("invalid credentials"))
			return
		}
		if err != nil {
			common.Fail(c, &core.UpstreamError{Op: "find user", Err: err})
			return
		}

		now := time.Now().UTC()
		if err := db.WithContext(ctx).Model(&user).Update("last_login", now).Error; err != nil {
			common.Fail(c, &core.UpstreamError{Op: "update last login", Err: err})
			return
		}
		user.LastLogin = &now

		token, err := security.CreateUserToken(user, jwtSecret, security.TokenTTL)
		if err != nil {
			common.Fail(c, err)
			return
		}

		audit.Log(ctx, core.Actor{ID: user.ID, Name: user.Name, Role: user.Role}, core.ActionLogin, "user", user.ID, nil)

		c.JSON(http.StatusOK, gin.H{
			"token": token,
			"user":  toUserDTO(user),
		})
	}
}

func CurrentUserHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := middlewares.CurrentActor(c)

		var user core.User
		err := db.WithContext(c.Request.Context()).First(&user, "id = ?", actor.ID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.Fail(c, &core.NotFoundError{Entity: "user"})
			return
		}
		if err != nil {
			common.Fail(c, &core.UpstreamError{Op: "find user", Err: err})
			return
		}

		c.JSON(http.StatusOK, toUserDTO(user))
	}
}

type ChangePasswordDTO struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=8"`
}

func ChangePasswordHandler(db *gorm.DB, audit *core.AuditTrail) gin.HandlerFunc {
	return func(c *gin.Context) {
		var dto ChangePasswordDTO
		if err := c.ShouldBindJSON(&dto); err != nil {
			c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
			return
		}

		ctx := c.Request.Context()
		actor := middlewares.CurrentActor(c)

		var user core.User
		err := db.WithContext(ctx).First(&user, "id = ?", actor.ID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.Fail(c, &core.NotFoundError{Entity: "user"})
			return
		}
		if err != nil {
			common.Fail(c, &core.UpstreamError{Op: "find user", Err: err})
			return
		}

		if !security.CheckPassword(user.PasswordHash, dto.CurrentPassword) {
			c.JSON(http.StatusUnauthorized, common.NewErrorResponse("current password is incorrect"))
			return
		}

		hash, err := security.HashPassword(dto.NewPassword)
		if err != nil {
			common.Fail(c, err)
			return
		}
		if err := db.WithContext(ctx).Model(&user).Update("password_hash", hash).Error; err != nil {
			common.Fail(c, &core.UpstreamError{Op: "update password", Err: err})
			return
		}

		audit.Log(ctx, actor, core.ActionPasswordChange, "user", user.ID, nil)

		c.JSON(http.StatusOK, gin.H{"message": "Password changed successfully"})
	}
}
