package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/sokohub/sokohub-api/controllers"
	"github.com/sokohub/sokohub-api/middlewares"
	"github.com/sokohub/sokohub-api/models"
)

func ReviewRoutes(api *gin.RouterGroup, ctrl *controllers.ReviewController) {
	reviews := api.Group("/reviews", middlewares.RequireAuth(), middlewares.RequireRoles(models.RoleCustomer))
	{
		reviews.POST("/products/:id", ctrl.Create)
		reviews.PATCH("/:id", ctrl.Update)
		reviews.DELETE("/:id", ctrl.Delete)
	}
}
