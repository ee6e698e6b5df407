package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/sokohub/sokohub-api/controllers"
	"github.com/sokohub/sokohub-api/middlewares"
	"github.com/sokohub/sokohub-api/models"
)

func OrderRoutes(api *gin.RouterGroup, ctrl *controllers.OrderController) {
	orders := api.Group("/orders", middlewares.RequireAuth(), middlewares.RequireRoles(models.RoleCustomer))
	{
		orders.POST("", ctrl.Create)
		orders.GET("", ctrl.List)
		orders.GET("/:id", ctrl.Get)
		orders.POST("/:id/cancel", ctrl.Cancel)
		orders.GET("/:id/invoice", ctrl.Invoice)
		orders.GET("/:id/messages", ctrl.GetMessages)
		orders.POST("/:id/messages", ctrl.PostMessage)
	}
}
