package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/sokohub/sokohub-api/controllers"
	"github.com/sokohub/sokohub-api/middlewares"
	"github.com/sokohub/sokohub-api/models"
)

func CartRoutes(api *gin.RouterGroup, ctrl *controllers.CartController) {
	cart := api.Group("/cart", middlewares.RequireAuth(), middlewares.RequireRoles(models.RoleCustomer))
	{
		cart.GET("", ctrl.GetCart)
		cart.POST("/items", ctrl.AddItem)
		cart.PATCH("/items/:id", ctrl.UpdateItem)
		cart.DELETE("/items/:id", ctrl.RemoveItem)
		cart.DELETE("", ctrl.Clear)
	}
}
