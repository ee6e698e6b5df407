package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/sokohub/sokohub-api/controllers"
	"github.com/sokohub/sokohub-api/middlewares"
)

func ProfileRoutes(api *gin.RouterGroup, ctrl *controllers.ProfileController, security *controllers.SecurityController) {
	profile := api.Group("/profile", middlewares.RequireAuth())
	{
		profile.GET("/me", ctrl.Me)
		profile.PATCH("/me", ctrl.UpdateMe)
		profile.GET("/addresses", ctrl.ListAddresses)
		profile.POST("/addresses", ctrl.CreateAddress)
		profile.PATCH("/addresses/:id", ctrl.UpdateAddress)
		profile.DELETE("/addresses/:id", ctrl.DeleteAddress)
		profile.POST("/addresses/:id/default", ctrl.SetDefaultAddress)
	}

	sec := api.Group("/security", middlewares.RequireAuth())
	{
		sec.GET("/settings", security.GetSettings)
		sec.PATCH("/settings", security.UpdateSettings)
		sec.POST("/password", security.ChangePassword)
		sec.GET("/activity", security.GetActivity)
	}
}
