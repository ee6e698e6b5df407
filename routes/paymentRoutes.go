package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/sokohub/sokohub-api/controllers"
	"github.com/sokohub/sokohub-api/middlewares"
	"github.com/sokohub/sokohub-api/models"
)

func PaymentRoutes(api *gin.RouterGroup, ctrl *controllers.PaymentController) {
	payments := api.Group("/payments")
	{
		// The webhook is public: the service re-verifies the invoice with
		// the gateway before trusting anything in the payload.
		payments.POST("/webhook", ctrl.Webhook)

		authed := payments.Group("/orders/:id", middlewares.RequireAuth(), middlewares.RequireRoles(models.RoleCustomer))
		{
			authed.POST("/mobile-money", ctrl.MobileMoney)
			authed.POST("/cash-on-delivery", ctrl.CashOnDelivery)
			authed.POST("/direct-contact", ctrl.DirectContact)
		}
	}
}
