package services

import (
	"fmt"
	"log"

	"github.com/sokohub/sokohub-api/models"
	"gorm.io/gorm"
)

// NotificationService writes in-app notification rows. It lives on the
// auth database, so a notification can diverge from the shop-side row
// that triggered it; callers log failures instead of rolling back.
type NotificationService struct {
	DB *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{DB: db}
}

func (s *NotificationService) Notify(userID uint, notifType, title, body string) error {
	notification := models.Notification{
		UserID: userID,
		Type:   notifType,
		Title:  title,
		Body:   body,
	}
	return s.DB.Create(&notification).Error
}

// NotifyOrderStatus sends the status-change notification for an order.
// Failures are logged and swallowed so a status write never fails on
// notification trouble.
func (s *NotificationService) NotifyOrderStatus(order *models.Order) {
	title, bodyFormat, ok := models.StatusNotification(order.Status)
	if !ok {
		return
	}
	if err := s.Notify(order.UserID, "ORDER", title, fmt.Sprintf(bodyFormat, order.OrderNumber)); err != nil {
		log.Printf("Failed to notify user %d about order %s: %v", order.UserID, order.OrderNumber, err)
	}
}
