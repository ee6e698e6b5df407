package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sokohub/sokohub-api/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openTestDB opens a fresh in-memory database holding both the shop and
// notification tables, which in production live on separate connections.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.New().String() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.Notification{},
		&models.Product{},
		&models.ProductStock{},
		&models.Promotion{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderMessage{},
		&models.Payment{},
	))
	return db
}

func newTestOrderService(t *testing.T) (*OrderService, *gorm.DB) {
	t.Helper()
	db := openTestDB(t)
	return NewOrderService(db, NewNotificationService(db)), db
}

// seedProduct creates an active tracked product with stock and an
// optional percentage promotion.
func seedProduct(t *testing.T, db *gorm.DB, price int64, quantity int, promoPercent int64) *models.Product {
	t.Helper()

	product := models.Product{
		SellerID:       1,
		Name:           "Wireless Speaker",
		SKU:            "SPK-001",
		Price:          price,
		Status:         models.ProductActive,
		TrackInventory: true,
		Stock:          &models.ProductStock{Quantity: quantity},
	}
	if promoPercent > 0 {
		now := time.Now()
		product.Promotions = []models.Promotion{{
			Name:      "Launch offer",
			Type:      models.PromotionPercentage,
			Value:     promoPercent,
			StartDate: now.Add(-time.Hour),
			EndDate:   now.Add(time.Hour),
			IsActive:  true,
		}}
	}
	require.NoError(t, db.Create(&product).Error)
	return &product
}

func seedCart(t *testing.T, db *gorm.DB, userID uint, product *models.Product, quantity int) *models.Cart {
	t.Helper()

	cart := models.Cart{
		UserID: userID,
		Items: []models.CartItem{{
			ProductID:   product.ID,
			ProductName: product.Name,
			UnitPrice:   product.Price,
			Quantity:    quantity,
		}},
	}
	require.NoError(t, db.Create(&cart).Error)
	return &cart
}

func testSnapshot() ShippingSnapshot {
	return ShippingSnapshot{
		RecipientName:  "Achieng Otieno",
		RecipientPhone: "+254700000001",
		Line1:          "12 Riverside Drive",
		City:           "Nairobi",
		Region:         "Nairobi",
		Country:        "KE",
		PostalCode:     "00100",
	}
}

func stockFor(t *testing.T, db *gorm.DB, productID uint) models.ProductStock {
	t.Helper()
	var stock models.ProductStock
	require.NoError(t, db.Where("product_id = ?", productID).First(&stock).Error)
	return stock
}
