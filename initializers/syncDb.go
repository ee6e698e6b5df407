package initializers

import (
	"log"

	"github.com/sokohub/sokohub-api/models"
)

func SyncDatabase() {
	if err := AuthDB.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.Address{},
		&models.SecuritySetting{},
		&models.LoginActivity{},
		&models.Notification{},
	); err != nil {
		log.Fatal("Failed to migrate auth database: ", err)
	}

	if err := ShopDB.AutoMigrate(
		&models.Category{},
		&models.Product{},
		&models.ProductSpecs{},
		&models.ProductImage{},
		&models.ProductStock{},
		&models.Promotion{},
		&models.Review{},
		&models.Favorite{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderMessage{},
		&models.Payment{},
	); err != nil {
		log.Fatal("Failed to migrate shop database: ", err)
	}

	log.Println("Database synced successfully.")
}
