package routes

import (
	"github.com/ichchha07-wish/meal-system/controllers"
	"github.com/ichchha07-wish/meal-system/middlewares"
	"github.com/ichchha07-wish/meal-system/models"

	"github.com/gin-gonic/gin"
)

type Controllers struct {
	Auth          *controllers.AuthController
	Meals         *controllers.MealController
	Claims        *controllers.ClaimController
	Stats         *controllers.StatsController
	Notifications *controllers.NotificationController
	Realtime      *controllers.RealtimeController
}

func SetupRouter(ctrl Controllers) *gin.Engine {
	r := gin.Default()

	auth := r.Group("/auth")
	{
		auth.POST("/register", ctrl.Auth.Register)
		auth.POST("/login", ctrl.Auth.Login)
	}

	// Browsing the catalog is public; everything mutating sits behind
	// the bearer token.
	r.GET("/meals", ctrl.Meals.List)
	r.GET("/meals/nearby", ctrl.Meals.Nearby)
	r.GET("/meals/:id", ctrl.Meals.Get)

	authed := r.Group("/")
	authed.Use(middlewares.AuthMiddleware())
	{
		authed.GET("/user/profile", ctrl.Auth.Profile)
		authed.GET("/statistics", ctrl.Stats.Statistics)

		authed.GET("/notifications", ctrl.Notifications.List)
		authed.POST("/notifications/:id/mark-read", ctrl.Notifications.MarkRead)
		authed.POST("/notifications/mark-all-read", ctrl.Notifications.MarkAllRead)

		authed.GET("/ws", ctrl.Realtime.EventsWS)

		provider := authed.Group("/")
		provider.Use(middlewares.RequireRole(models.RoleProvider))
		{
			provider.POST("/meals", ctrl.Meals.Create)
			provider.PUT("/meals/:id", ctrl.Meals.Update)
			provider.DELETE("/meals/:id", ctrl.Meals.Delete)
			provider.POST("/meals/:id/deactivate", ctrl.Meals.Deactivate)
			provider.POST("/meals/:id/toggle-active", ctrl.Meals.ToggleActive)
			provider.POST("/meals/:id/image", ctrl.Meals.UploadImage)

			provider.POST("/claims/verify-collection", ctrl.Claims.VerifyCollection)
			provider.POST("/claims/:id/mark-collected", ctrl.Claims.MarkCollected)
		}

		beneficiary := authed.Group("/")
		beneficiary.Use(middlewares.RequireRole(models.RoleBeneficiary))
		{
			beneficiary.POST("/claims", ctrl.Claims.Create)
		}

		authed.GET("/claims", ctrl.Claims.List)
		authed.GET("/claims/:id", ctrl.Claims.Get)
		authed.POST("/claims/:id/cancel", ctrl.Claims.Cancel)
	}

	return r
}
