package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/csrf"

	"github.com/avelez/agripredict-web/internal/api"
	"github.com/avelez/agripredict-web/internal/auth"
	"github.com/avelez/agripredict-web/internal/config"
	"github.com/avelez/agripredict-web/internal/database"
	"github.com/avelez/agripredict-web/internal/logger"
	"github.com/avelez/agripredict-web/internal/monitoring"
	"github.com/avelez/agripredict-web/internal/prediction"
	"github.com/avelez/agripredict-web/internal/services"
	"github.com/avelez/agripredict-web/internal/web"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Init()

	// Set up database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to apply database migrations: %v", err)
	}

	isProd := cfg.AppEnv == "production"

	// Set up services
	userService := services.NewUserService(db)
	reportService := services.NewReportService(db)
	sessionService := services.NewSessionService(db)
	eventService := services.NewEventService(db)

	sessionManager := auth.NewManager(sessionService, cfg.SessionTTL, isProd)
	predictor := prediction.NewClient(cfg.PredictionURL, cfg.PredictionTimeout)

	renderer, err := web.NewRenderer()
	if err != nil {
		log.Fatalf("Failed to parse templates: %v", err)
	}

	// Set up and run the background session cleaner
	sessionCleaner := monitoring.NewSessionCleaner(sessionService)
	go sessionCleaner.Run()

	// Set up router; CSRF protection wraps the whole form surface
	router := api.NewRouter(renderer, sessionManager, userService, reportService, eventService, predictor)
	protect := csrf.Protect([]byte(cfg.SessionSecret), csrf.Secure(isProd), csrf.Path("/"))

	// Set up server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ServerPort),
		Handler: protect(router),
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on port %d\n", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	sessionCleaner.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}
