package main

import (
	"log"
	"time"

	"scoresync/config"
	"scoresync/handlers"
	"scoresync/middleware"
	"scoresync/models"
	"scoresync/routes"
	"scoresync/services"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate database models
	err = db.AutoMigrate(
		&models.User{},
		&models.Game{},
		&models.GameEvent{},
		&models.GameSnapshot{},
	)
	if err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize Redis-backed mirror (nil when mirroring is disabled)
	mirror := services.NewMirrorPublisher(config.InitRedis(cfg))

	// Initialize services
	authService := services.NewAuthService(db, cfg.JWTSecret)
	gameService := services.NewGameService(db)
	syncService := services.NewSyncService(db, mirror)

	// Enforce snapshot retention in the background
	go syncService.RunSnapshotJanitor(24 * time.Hour)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	gameHandler := handlers.NewGameHandler(gameService)
	syncHandler := handlers.NewSyncHandler(syncService)

	// Setup Gin router
	router := gin.Default()

	// Add CORS middleware
	router.Use(middleware.CORS())

	// Setup routes
	routes.SetupRoutes(router, authHandler, gameHandler, syncHandler, cfg.JWTSecret)

	// Start server
	log.Printf("Server starting on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
