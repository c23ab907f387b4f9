package routes

import (
	"net/http"

	"scoresync/handlers"
	"scoresync/middleware"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	router *gin.Engine,
	authHandler *handlers.AuthHandler,
	gameHandler *handlers.GameHandler,
	syncHandler *handlers.SyncHandler,
	jwtSecret string,
) {
	// API routes
	api := router.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
		}

		// Protected routes
		protected := api.Group("/")
		protected.Use(middleware.AuthMiddleware(jwtSecret))
		{
			protected.GET("/auth/profile", authHandler.GetProfile)
			protected.GET("/games", gameHandler.GetUserGames)
		}

		// Game routes; auth is optional so offline/anonymous devices can sync
		games := api.Group("/games")
		games.Use(middleware.OptionalAuth(jwtSecret))
		{
			games.POST("", gameHandler.CreateGame)
			games.GET("/:gameId", gameHandler.GetGame)

			// Sync endpoint: push events, force-push snapshot, pull events,
			// pull snapshot
			games.POST("/:gameId/sync/events", syncHandler.PushEvents)
			games.GET("/:gameId/sync/events", syncHandler.PullEvents)
			games.POST("/:gameId/sync/snapshot", syncHandler.ForcePush)
			games.GET("/:gameId/sync/snapshot", syncHandler.PullSnapshot)
		}
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
