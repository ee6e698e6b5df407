package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sokohub/sokohub-api/middlewares"
	"github.com/sokohub/sokohub-api/models"
	"github.com/sokohub/sokohub-api/utils"
	"gorm.io/gorm"
)

type SecurityController struct {
	DB *gorm.DB
}

func NewSecurityController(db *gorm.DB) *SecurityController {
	return &SecurityController{DB: db}
}

// GetSettings returns the caller's security settings, creating the row
// with defaults on first read.
func (c *SecurityController) GetSettings(ctx *gin.Context) {
	userID := middlewares.UserID(ctx)

	var settings models.SecuritySetting
	err := c.DB.Where("user_id = ?", userID).First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		settings = models.SecuritySetting{UserID: userID, LoginAlerts: true}
		if err := c.DB.Create(&settings).Error; err != nil {
			utils.RespondError(ctx, utils.Wrap(utils.KindInternal, "Failed to create security settings", err))
			return
		}
	} else if err != nil {
		utils.RespondError(ctx, utils.Wrap(utils.KindInternal, "Failed to fetch security settings", err))
		return
	}

	utils.Respond(ctx, http.StatusOK, "Security settings fetched", gin.H{"settings": settings})
}

func (c *SecurityController) UpdateSettings(ctx *gin.Context) {
	var body struct {
		TwoFactorEnabled *bool `json:"twoFactorEnabled"`
		LoginAlerts      *bool `json:"loginAlerts"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil {
		utils.RespondError(ctx, utils.E(utils.KindValidation, msgInvalidInput))
		return
	}

	updates := map[string]any{}
	if body.TwoFactorEnabled != nil {
		updates["two_factor_enabled"] = *body.TwoFactorEnabled
	}
	if body.LoginAlerts != nil {
		updates["login_alerts"] = *body.LoginAlerts
	}
	if len(updates) == 0 {
		utils.RespondError(ctx, utils.E(utils.KindValidation, "Nothing to update"))
		return
	}

	userID := middlewares.UserID(ctx)
	result := c.DB.Model(&models.SecuritySetting{}).Where("user_id = ?", userID).Updates(updates)
	if result.Error != nil {
		utils.RespondError(ctx, utils.Wrap(utils.KindInternal, "Failed to update security settings", result.Error))
		return
	}
	if result.RowsAffected == 0 {
		settings := models.SecuritySetting{UserID: userID}
		if body.TwoFactorEnabled != nil {
			settings.TwoFactorEnabled = *body.TwoFactorEnabled
		}
		if body.LoginAlerts != nil {
			settings.LoginAlerts = *body.LoginAlerts
		}
		if err := c.DB.Create(&settings).Error; err != nil {
			utils.RespondError(ctx, utils.Wrap(utils.KindInternal, "Failed to update security settings", err))
			return
		}
	}

	utils.Respond(ctx, http.StatusOK, "Security settings updated", nil)
}

// ChangePassword verifies the current password, stores the new hash and
// revokes every open session.
func (c *SecurityController) ChangePassword(ctx *gin.Context) {
	var body struct {
		CurrentPassword string `json:"currentPassword" binding:"required"`
		NewPassword     string `json:"newPassword" binding:"required,min=8"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil {
		utils.RespondError(ctx, utils.E(utils.KindValidation, msgInvalidInput))
		return
	}

	userID := middlewares.UserID(ctx)
	var user models.User
	if err := c.DB.First(&user, userID).Error; err != nil {
		utils.RespondError(ctx, utils.E(utils.KindNotFound, "User not found"))
		return
	}

	if err := comparePasswords(user.Password, body.CurrentPassword); err != nil {
		utils.RespondError(ctx, utils.E(utils.KindUnauthorized, "Current password is incorrect"))
		return
	}

	hashed, err := hashPassword(body.NewPassword)
	if err != nil {
		utils.RespondError(ctx, utils.Wrap(utils.KindInternal, msgInternalServerError, err))
		return
	}

	err = c.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&user).Update("password", hashed).Error; err != nil {
			return err
		}
		return tx.Model(&models.RefreshToken{}).Where("user_id = ?", userID).Update("revoked", true).Error
	})
	if err != nil {
		utils.RespondError(ctx, utils.Wrap(utils.KindInternal, "Failed to change password", err))
		return
	}

	utils.Respond(ctx, http.StatusOK, "Password changed. Please log in again.", nil)
}

func (c *SecurityController) GetActivity(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * limit

	userID := middlewares.UserID(ctx)
	var activity []models.LoginActivity
	if err := c.DB.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&activity).Error; err != nil {
		utils.RespondError(ctx, utils.Wrap(utils.KindInternal, "Failed to fetch login activity", err))
		return
	}

	var count int64
	c.DB.Model(&models.LoginActivity{}).Where("user_id = ?", userID).Count(&count)

	utils.Respond(ctx, http.StatusOK, "Login activity fetched", gin.H{
		"activity": activity,
		"metadata": gin.H{"total": count, "page": page, "limit": limit},
	})
}
