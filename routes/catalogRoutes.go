package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/sokohub/sokohub-api/controllers"
	"github.com/sokohub/sokohub-api/middlewares"
	"github.com/sokohub/sokohub-api/models"
)

func CatalogRoutes(api *gin.RouterGroup, ctrl *controllers.CatalogController, favorites *controllers.FavoriteController) {
	catalog := api.Group("/catalog")
	{
		catalog.GET("/categories", ctrl.GetCategories)
		catalog.GET("/categories/:slug/products", ctrl.GetCategoryProducts)
		catalog.GET("/products", ctrl.GetProducts)
		catalog.GET("/products/:id", ctrl.GetProduct)
		catalog.GET("/products/:id/reviews", ctrl.GetProductReviews)
	}

	favs := api.Group("/favorites", middlewares.RequireAuth(), middlewares.RequireRoles(models.RoleCustomer))
	{
		favs.GET("", favorites.List)
		favs.POST("/:productId", favorites.Add)
		favs.DELETE("/:productId", favorites.Remove)
	}
}
