package initializers

import (
	"log"
	"os"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// AuthDB holds users, sessions, addresses, security settings and
// notifications. ShopDB holds the catalog, carts, orders and payments.
// The two are separate connections with no shared transaction boundary.
var (
	AuthDB *gorm.DB
	ShopDB *gorm.DB
)

func connect(dsn string) *gorm.DB {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}
	return db
}

func ConnectToDB() {
	AuthDB = connect(os.Getenv("AUTH_DSN"))
	ShopDB = connect(os.Getenv("SHOP_DSN"))
	log.Println("Connected to databases.")
}
