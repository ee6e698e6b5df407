package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	ProductActive   = "ACTIVE"
	ProductDraft    = "DRAFT"
	ProductArchived = "ARCHIVED"
)

type Category struct {
	gorm.Model
	Name string `json:"name" binding:"required"`
	Slug string `json:"slug" gorm:"uniqueIndex"`
}

type ProductSpecs struct {
	gorm.Model
	Label     string `json:"label" binding:"required"`
	Value     string `json:"value" binding:"required"`
	ProductID uint   `json:"productId"`
}

type ProductImage struct {
	gorm.Model
	Url       string `json:"url" binding:"required"`
	ProductID uint   `json:"productId"`
}

// ProductStock tracks raw quantity next to the portion earmarked for
// open orders. Availability is always quantity minus reserved.
type ProductStock struct {
	gorm.Model
	ProductID         uint `json:"productId" gorm:"uniqueIndex"`
	Quantity          int  `json:"quantity"`
	ReservedQuantity  int  `json:"reservedQuantity"`
	LowStockThreshold int  `json:"lowStockThreshold"`
	Backorderable     bool `json:"backorderable"`
}

func (s *ProductStock) Available() int {
	return s.Quantity - s.ReservedQuantity
}

const (
	PromotionPercentage = "PERCENTAGE"
	PromotionFixed      = "FIXED"
)

// Promotion is a time-bounded discount attached to one product. Value is
// a whole percent for PERCENTAGE and minor currency units for FIXED.
type Promotion struct {
	gorm.Model
	ProductID uint      `json:"productId" gorm:"index"`
	Name      string    `json:"name"`
	Type      string    `json:"type" binding:"required,oneof=PERCENTAGE FIXED"`
	Value     int64     `json:"value" binding:"required,gt=0"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	IsActive  bool      `json:"isActive"`
}

func (p *Promotion) ActiveAt(t time.Time) bool {
	return p.IsActive && !t.Before(p.StartDate) && !t.After(p.EndDate)
}

type Product struct {
	gorm.Model
	SellerID       uint           `json:"sellerId" gorm:"index"`
	CategoryID     uint           `json:"categoryId" gorm:"index"`
	Brand          string         `json:"brand"`
	Name           string         `json:"name" binding:"required"`
	Slug           string         `json:"slug"`
	SKU            string         `json:"sku"`
	Description    string         `json:"description"`
	Price          int64          `json:"price" binding:"required,gt=0"`
	Status         string         `json:"status"`
	TrackInventory bool           `json:"trackInventory"`
	Attributes     datatypes.JSON `json:"attributes"`
	Specifications []ProductSpecs `json:"specifications" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Images         []ProductImage `json:"images" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Promotions     []Promotion    `json:"promotions" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Stock          *ProductStock  `json:"stock" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
}
