package models

import "gorm.io/gorm"

type Review struct {
	gorm.Model
	UserID    uint   `json:"userId" gorm:"index;uniqueIndex:idx_review_user_product"`
	ProductID uint   `json:"productId" gorm:"index;uniqueIndex:idx_review_user_product"`
	Rating    int    `json:"rating" binding:"required,min=1,max=5"`
	Comment   string `json:"comment"`
}

type Favorite struct {
	gorm.Model
	UserID    uint `json:"userId" gorm:"index;uniqueIndex:idx_favorite_user_product"`
	ProductID uint `json:"productId" gorm:"uniqueIndex:idx_favorite_user_product"`
}
