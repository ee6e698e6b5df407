package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/sokohub/sokohub-api/controllers"
)

func AuthRoutes(api *gin.RouterGroup, ctrl *controllers.AuthController) {
	auth := api.Group("/auth")
	{
		auth.POST("/signup", ctrl.Signup)
		auth.POST("/login", ctrl.Login)
		auth.POST("/refresh", ctrl.Refresh)
		auth.POST("/logout", ctrl.Logout)
		auth.POST("/verify-email/:activationToken", ctrl.ActivateAccount)
		auth.POST("/forgot-password", ctrl.SendPasswordResetLink)
		auth.POST("/reset-password/:resetToken", ctrl.ResetPassword)
	}
}
