package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/sokohub/sokohub-api/controllers"
	"github.com/sokohub/sokohub-api/middlewares"
	"github.com/sokohub/sokohub-api/models"
)

func SellerRoutes(api *gin.RouterGroup, ctrl *controllers.SellerController) {
	seller := api.Group("/seller", middlewares.RequireAuth(),
		middlewares.RequireRoles(models.RoleSeller, models.RoleEnterprise))
	{
		seller.GET("/products", ctrl.ListProducts)
		seller.POST("/products", ctrl.CreateProduct)
		seller.GET("/products/:id", ctrl.GetProduct)
		seller.PATCH("/products/:id", ctrl.UpdateProduct)
		seller.DELETE("/products/:id", ctrl.DeleteProduct)
		seller.POST("/products/:id/images", ctrl.UploadImages)
		seller.PUT("/products/:id/stock", ctrl.UpdateStock)

		seller.GET("/promotions", ctrl.ListPromotions)
		seller.POST("/promotions", ctrl.CreatePromotion)
		seller.PATCH("/promotions/:id", ctrl.UpdatePromotion)
		seller.DELETE("/promotions/:id", ctrl.DeletePromotion)

		seller.GET("/orders", ctrl.ListOrders)
		seller.GET("/orders/:id", ctrl.GetOrder)
		seller.PATCH("/orders/:id/status", ctrl.UpdateOrderStatus)
		seller.PUT("/orders/:id/tracking", ctrl.UpdateTracking)
		seller.POST("/orders/:id/invoice-email", ctrl.EmailInvoice)
		seller.GET("/orders/:id/messages", ctrl.GetMessages)
		seller.POST("/orders/:id/messages", ctrl.PostMessage)
	}
}
