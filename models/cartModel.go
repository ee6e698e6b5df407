package models

import "gorm.io/gorm"

type CartItem struct {
	gorm.Model
	CartID          uint   `json:"cartId" gorm:"index"`
	ProductID       uint   `json:"productId"`
	ProductName     string `json:"productName"`
	UnitPrice       int64  `json:"unitPrice"`
	Quantity        int    `json:"quantity"`
	ProductImageUrl string `json:"productImageUrl"`
}

type Cart struct {
	gorm.Model
	UserID uint       `json:"userId" gorm:"uniqueIndex"`
	Items  []CartItem `json:"items" gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
}
