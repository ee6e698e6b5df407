package main

import (
	"context"
	"log"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sokohub/sokohub-api/controllers"
	"github.com/sokohub/sokohub-api/initializers"
	"github.com/sokohub/sokohub-api/routes"
	"github.com/sokohub/sokohub-api/services"
	"github.com/sokohub/sokohub-api/utils"
)

func init() {
	initializers.LoadEnv()
	initializers.ConnectToDB()
	initializers.SyncDatabase()
}

func allowedOrigins() []string {
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		return strings.Split(origins, ",")
	}
	return []string{"http://localhost:4200"}
}

func currency() string {
	if c := os.Getenv("CURRENCY"); c != "" {
		return c
	}
	return "KES"
}

func main() {
	server := gin.Default()
	server.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	mailer := utils.NewMailerFromEnv()
	uploader, err := utils.NewImageUploader(context.Background())
	if err != nil {
		log.Fatal("Failed to configure image uploader: ", err)
	}

	notifications := services.NewNotificationService(initializers.AuthDB)
	orders := services.NewOrderService(initializers.ShopDB, notifications)
	gateway := services.NewMobileMoneyClientFromEnv()
	webhookURL := os.Getenv("PUBLIC_API_URL") + os.Getenv("API_BASE_PATH") + "/payments/webhook"
	payments := services.NewPaymentService(initializers.ShopDB, orders, gateway, currency(), webhookURL)

	api := server.Group(os.Getenv("API_BASE_PATH"))
	routes.DefaultRoutes(api)
	routes.AuthRoutes(api, controllers.NewAuthController(initializers.AuthDB, mailer))
	routes.ProfileRoutes(api,
		controllers.NewProfileController(initializers.AuthDB),
		controllers.NewSecurityController(initializers.AuthDB))
	routes.CatalogRoutes(api,
		controllers.NewCatalogController(initializers.ShopDB),
		controllers.NewFavoriteController(initializers.ShopDB))
	routes.CartRoutes(api, controllers.NewCartController(initializers.ShopDB))
	routes.OrderRoutes(api, controllers.NewOrderController(initializers.AuthDB, initializers.ShopDB, orders, currency()))
	routes.PaymentRoutes(api, controllers.NewPaymentController(payments))
	routes.SellerRoutes(api, controllers.NewSellerController(
		initializers.AuthDB, initializers.ShopDB, orders, uploader, mailer, currency()))
	routes.NotificationRoutes(api, controllers.NewNotificationController(initializers.AuthDB))
	routes.ReviewRoutes(api, controllers.NewReviewController(initializers.ShopDB))

	server.Run()
}
