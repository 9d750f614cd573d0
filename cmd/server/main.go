package main

import (
	"alcyxob/fitness-coach/internal/api"
	"alcyxob/fitness-coach/internal/app"
	"alcyxob/fitness-coach/internal/config"
	"alcyxob/fitness-coach/internal/service"
	"alcyxob/fitness-coach/internal/storage"
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
)

// @title Fitness Coach API
// @version 1.0
// @description Training templates, client mesocycles and workout logs for coaches and their clients.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	log.Println("Starting Fitness Coach Server...")

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}
	log.Printf("Configuration loaded (database driver: %s).", cfg.Database.Driver)

	// --- Database ---
	repos, closeDB, err := app.OpenRepositories(context.Background(), cfg.Database)
	if err != nil {
		log.Fatalf("FATAL: Could not open database: %v", err)
	}
	defer closeDB()
	log.Println("Database ready.")

	// --- Initialize Storage ---
	log.Println("Initializing file storage service...")
	var fileStorage storage.FileStorage
	if cfg.S3.BucketName == "" {
		log.Println("WARN: s3.bucket_name is not set; exercise video uploads are disabled.")
		fileStorage = storage.NewDisabledStorage()
	} else {
		fileStorage, err = storage.NewS3Storage(context.Background(), cfg.S3)
		if err != nil {
			log.Fatalf("FATAL: Failed to initialize S3 storage: %v", err)
		}
	}

	// --- Initialize Services ---
	log.Println("Initializing services...")
	services := api.Services{
		Auth:          service.NewAuthService(repos.Users, cfg.JWT.Secret, cfg.JWT.Expiration),
		Trainer:       service.NewTrainerService(repos),
		Templates:     service.NewTemplateService(repos),
		Cycles:        service.NewCycleService(repos, nil),
		Forks:         service.NewForkService(repos),
		Logs:          service.NewLogService(repos),
		Uploads:       service.NewUploadService(repos, fileStorage, cfg.Uploads.PresignExpiry),
		Notifications: service.NewNotificationService(repos.Notifications, nil),
	}

	// --- Initialize Gin Engine ---
	gin.SetMode(cfg.Server.Mode)
	router := gin.Default() // Includes Logger and Recovery middleware

	log.Println("Setting up API routes...")
	api.SetupRoutes(router, services.Auth.GetJWTSecret(), services)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Server starting on %s", cfg.Server.Address)

	// --- Graceful Shutdown ---
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: ListenAndServe Error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Requests in flight get 5 seconds to finish.
	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Printf("ERROR: Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting.")
}
