package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/sokohub/sokohub-api/controllers"
	"github.com/sokohub/sokohub-api/middlewares"
)

func NotificationRoutes(api *gin.RouterGroup, ctrl *controllers.NotificationController) {
	notifications := api.Group("/notifications", middlewares.RequireAuth())
	{
		notifications.GET("", ctrl.List)
		notifications.POST("/:id/read", ctrl.MarkRead)
		notifications.POST("/read-all", ctrl.MarkAllRead)
		notifications.DELETE("/:id", ctrl.Delete)
	}
}
