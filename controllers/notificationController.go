package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sokohub/sokohub-api/middlewares"
	"github.com/sokohub/sokohub-api/models"
	"github.com/sokohub/sokohub-api/utils"
	"gorm.io/gorm"
)

type NotificationController struct {
	DB *gorm.DB
}

func NewNotificationController(db *gorm.DB) *NotificationController {
	return &NotificationController{DB: db}
}

func (c *NotificationController) List(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * limit

	userID := middlewares.UserID(ctx)
	var notifications []models.Notification
	if err := c.DB.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&notifications).Error; err != nil {
		utils.RespondError(ctx, utils.Wrap(utils.KindInternal, "Unable to fetch notifications", err))
		return
	}

	var total, unread int64
	c.DB.Model(&models.Notification{}).Where("user_id = ?", userID).Count(&total)
	c.DB.Model(&models.Notification{}).Where("user_id = ? AND `read` = ?", userID, false).Count(&unread)

	utils.Respond(ctx, http.StatusOK, "Notifications fetched", gin.H{
		"notifications": notifications,
		"unreadCount":   unread,
		"metadata":      gin.H{"total": total, "page": page, "limit": limit},
	})
}

func (c *NotificationController) MarkRead(ctx *gin.Context) {
	notificationID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		utils.RespondError(ctx, utils.E(utils.KindValidation, "Invalid notification id"))
		return
	}

	result := c.DB.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, middlewares.UserID(ctx)).
		Update("read", true)
	if result.Error != nil {
		utils.RespondError(ctx, utils.Wrap(utils.KindInternal, "Unable to update notification", result.Error))
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondError(ctx, utils.E(utils.KindNotFound, "Notification not found"))
		return
	}
	utils.Respond(ctx, http.StatusOK, "Notification marked as read", nil)
}

func (c *NotificationController) MarkAllRead(ctx *gin.Context) {
	if err := c.DB.Model(&models.Notification{}).
		Where("user_id = ?", middlewares.UserID(ctx)).
		Update("read", true).Error; err != nil {
		utils.RespondError(ctx, utils.Wrap(utils.KindInternal, "Unable to update notifications", err))
		return
	}
	utils.Respond(ctx, http.StatusOK, "All notifications marked as read", nil)
}

func (c *NotificationController) Delete(ctx *gin.Context) {
	notificationID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		utils.RespondError(ctx, utils.E(utils.KindValidation, "Invalid notification id"))
		return
	}

	result := c.DB.Where("id = ? AND user_id = ?", notificationID, middlewares.UserID(ctx)).
		Delete(&models.Notification{})
	if result.Error != nil {
		utils.RespondError(ctx, utils.Wrap(utils.KindInternal, "Unable to delete notification", result.Error))
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondError(ctx, utils.E(utils.KindNotFound, "Notification not found"))
		return
	}
	utils.Respond(ctx, http.StatusOK, "Notification deleted", nil)
}
