package models

import "gorm.io/gorm"

type Address struct {
	gorm.Model
	UserID         uint   `json:"userId" gorm:"index"`
	Label          string `json:"label"`
	RecipientName  string `json:"recipientName" binding:"required"`
	RecipientPhone string `json:"recipientPhone" binding:"required"`
	Line1          string `json:"line1" binding:"required"`
	City           string `json:"city" binding:"required"`
	Region         string `json:"region"`
	Country        string `json:"country" binding:"required"`
	PostalCode     string `json:"postalCode"`
	IsDefault      bool   `json:"isDefault"`
}

type SecuritySetting struct {
	gorm.Model
	UserID           uint `json:"userId" gorm:"uniqueIndex"`
	TwoFactorEnabled bool `json:"twoFactorEnabled"`
	LoginAlerts      bool `json:"loginAlerts"`
}

type LoginActivity struct {
	gorm.Model
	UserID    uint   `json:"userId" gorm:"index"`
	IPAddress string `json:"ipAddress"`
	UserAgent string `json:"userAgent"`
}

type Notification struct {
	gorm.Model
	UserID uint   `json:"userId" gorm:"index"`
	Type   string `json:"type"`
	Title  string `json:"title"`
	Body   string `json:"body"`
	Read   bool   `json:"read"`
}
