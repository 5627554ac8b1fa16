package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"

	"github.com/kumiteops/kumite-system/brackets"
	"github.com/kumiteops/kumite-system/config"
	"github.com/kumiteops/kumite-system/db"
	"github.com/kumiteops/kumite-system/handlers"
	"github.com/kumiteops/kumite-system/repositories"
	api "github.com/kumiteops/kumite-system/routes"
	"github.com/kumiteops/kumite-system/services"
	"github.com/kumiteops/kumite-system/storage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		}
	}()
	logger.Info("database connection established")

	uploader, err := storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
		AccountID:       cfg.R2AccountID,
		AccessKeyID:     cfg.R2AccessKeyID,
		SecretAccessKey: cfg.R2SecretAccessKey,
		BucketName:      cfg.R2BucketName,
		PublicBaseURL:   cfg.R2PublicBaseURL,
	})
	if err != nil {
		logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("Cloudflare R2 uploader initialized")

	wsHub := brackets.NewHub(logger)
	go wsHub.Run()
	logger.Info("WebSocket hub started")

	userRepo := repositories.NewPostgresUserRepository(dbConn)
	athleteRepo := repositories.NewPostgresAthleteRepository(dbConn)
	eventRepo := repositories.NewPostgresEventRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	scoreRepo := repositories.NewPostgresScoreRepository(dbConn)
	auditRepo := repositories.NewPostgresAuditLogRepository(dbConn)
	logger.Info("repositories initialized")

	authService := services.NewAuthService(userRepo)
	athleteService := services.NewAthleteService(athleteRepo, uploader, logger)
	eventService := services.NewEventService(dbConn, eventRepo, athleteRepo, matchRepo, scoreRepo)
	bracketService := services.NewBracketService(dbConn, eventRepo, matchRepo, scoreRepo, auditRepo, wsHub, logger)
	matchService := services.NewMatchService(dbConn, matchRepo, scoreRepo, auditRepo, eventRepo, wsHub, logger)
	logger.Info("services initialized")

	authHandler := handlers.NewAuthHandler(authService, cfg.JWTSecretKey)
	eventHandler := handlers.NewEventHandler(eventService, bracketService)
	matchHandler := handlers.NewMatchHandler(matchService)
	athleteHandler := handlers.NewAthleteHandler(athleteService)
	wsHandler := handlers.NewWebSocketHandler(wsHub, logger)

	router := chi.NewRouter()
	api.SetupRoutes(router, cfg.JWTSecretKey, authHandler, eventHandler, matchHandler, athleteHandler, wsHandler)
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
}
