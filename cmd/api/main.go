package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tpo-cell/backend/internal/auth"
	"github.com/tpo-cell/backend/internal/config"
	"github.com/tpo-cell/backend/internal/database"
	"github.com/tpo-cell/backend/internal/repository"
	"github.com/tpo-cell/backend/internal/router"
	"github.com/tpo-cell/backend/internal/storage"
)

func main() {
	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// Initialize MinIO client
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	minioClient, err := storage.NewMinIOClient(ctx, cfg)
	cancel()
	if err != nil {
		log.Fatalf("Failed to connect to MinIO: %v", err)
	}

	app := router.New(router.Deps{
		Config: cfg,
		DB:     db,
		JWT:    auth.NewJWTService(cfg),
		Store:  minioClient,
	})

	// Expired refresh tokens and blacklist entries
	stopCleanup := make(chan struct{})
	go cleanupTokens(repository.NewAuthRepository(db), stopCleanup)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("Gracefully shutting down...")
		close(stopCleanup)
		_ = app.ShutdownWithTimeout(30 * time.Second)
	}()

	// Start server
	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}
	log.Printf("Server starting on port %s", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func cleanupTokens(authRepo *repository.AuthRepository, stop <-chan struct{}) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := authRepo.CleanupExpiredTokens(); err != nil {
				log.Printf("[Auth] Token cleanup failed: %v", err)
			}
		}
	}
}
