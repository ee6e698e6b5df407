package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/sokohub/sokohub-api/controllers"
)

func DefaultRoutes(api *gin.RouterGroup) {
	api.GET("/", controllers.GetHome)
}
