package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/peerconnect/api/internal/app/controllers"
	"github.com/peerconnect/api/internal/middleware"
	"github.com/peerconnect/api/internal/pkg/websocket"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	activityController *controllers.ActivityController,
	notificationController *controllers.NotificationController,
	healthController *controllers.HealthController,
	wsHandler *websocket.Handler,
	authMiddleware *middleware.AuthMiddleware,
	authLimiter *middleware.RateLimiter,
) {
	api := router.Group("/api")

	// --- Public routes ---
	auth := api.Group("/auth")
	{
		auth.POST("/register", authLimiter.Middleware(), authController.Register)
		auth.POST("/login", authLimiter.Middleware(), authController.Login)
		auth.GET("/verify/:token", authController.Verify)
	}
	api.GET("/colleges", authController.ListColleges)
	api.GET("/health", healthController.Health)
	api.GET("/activities", activityController.ListActivities)
	api.GET("/activities/:id", activityController.GetActivity)

	// --- Authenticated routes ---
	authenticated := api.Group("")
	authenticated.Use(authMiddleware.JWTAuth())
	{
		authenticated.GET("/auth/me", authController.GetProfile)
		authenticated.PUT("/auth/me", authController.UpdateProfile)

		activities := authenticated.Group("/activities")
		{
			activities.POST("", activityController.CreateActivity)
			activities.PUT("/:id", activityController.UpdateActivity)
			activities.DELETE("/:id", activityController.DeleteActivity)
			activities.POST("/:id/join", activityController.JoinActivity)
			activities.POST("/:id/leave", activityController.LeaveActivity)
			activities.GET("/:id/messages", activityController.GetMessages)
		}

		notifications := authenticated.Group("/notifications")
		{
			notifications.GET("", notificationController.ListNotifications)
			notifications.DELETE("", notificationController.DeleteAll)
			notifications.GET("/unread-count", notificationController.UnreadCount)
			notifications.PUT("/read-all", notificationController.MarkAllRead)
			notifications.PUT("/:id/read", notificationController.MarkRead)
			notifications.DELETE("/:id", notificationController.DeleteNotification)
		}

		// Token may come from the query string since browsers cannot set headers on upgrade
		authenticated.GET("/ws", wsHandler.HandleConnection)
	}
}
