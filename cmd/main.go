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

	"github.com/JavierHEM/tarreo-oficial/brackets"
	"github.com/JavierHEM/tarreo-oficial/config"
	"github.com/JavierHEM/tarreo-oficial/db"
	"github.com/JavierHEM/tarreo-oficial/handlers"
	"github.com/JavierHEM/tarreo-oficial/repositories"
	"github.com/JavierHEM/tarreo-oficial/routes"
	"github.com/JavierHEM/tarreo-oficial/services"
	"github.com/JavierHEM/tarreo-oficial/storage"
	"github.com/go-chi/chi/v5"
)

// schedulerInterval controls how often registration windows are checked
// against the wall clock.
const schedulerInterval = 30 * time.Second

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

	var uploader storage.FileUploader
	if cfg.R2Configured() {
		uploader, err = storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
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
	} else {
		logger.Warn("Cloudflare R2 not configured, team logo uploads disabled")
	}

	wsHub := brackets.NewHub(logger)
	go wsHub.Run()
	logger.Info("websocket hub started")

	profileRepo := repositories.NewPostgresProfileRepository(dbConn)
	gameRepo := repositories.NewPostgresGameRepository(dbConn)
	teamRepo := repositories.NewPostgresTeamRepository(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	registrationRepo := repositories.NewPostgresRegistrationRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	notificationRepo := repositories.NewPostgresNotificationRepository(dbConn)
	inviteRepo := repositories.NewPostgresInviteRepository(dbConn)

	authService := services.NewAuthService(profileRepo)
	gameService := services.NewGameService(gameRepo)
	teamService := services.NewTeamService(teamRepo, gameRepo, uploader, logger)
	notificationService := services.NewNotificationService(notificationRepo, logger)
	tournamentService := services.NewTournamentService(tournamentRepo, gameRepo, wsHub, logger)
	registrationService := services.NewRegistrationService(dbConn, registrationRepo, tournamentRepo, teamRepo, gameRepo, logger)
	bracketService := services.NewBracketService(dbConn, tournamentRepo, registrationRepo, matchRepo, wsHub, notificationService, logger)
	matchService := services.NewMatchService(dbConn, matchRepo, tournamentRepo, wsHub, notificationService, logger)
	inviteService := services.NewInviteService(inviteRepo, teamRepo, profileRepo, logger)
	dashboardService := services.NewDashboardService(profileRepo, teamRepo, tournamentRepo, matchRepo)
	logger.Info("services initialized")

	go func() {
		ticker := time.NewTicker(schedulerInterval)
		defer ticker.Stop()
		logger.Info("registration window scheduler started", slog.Duration("interval", schedulerInterval))

		tick := func() {
			if err := tournamentService.AutoCloseExpiredRegistrations(context.Background()); err != nil {
				logger.Error("scheduler: closing expired registrations failed", slog.Any("error", err))
			}
			if err := inviteService.PurgeExpiredInvitations(context.Background()); err != nil {
				logger.Error("scheduler: purging expired invitations failed", slog.Any("error", err))
			}
		}

		tick()
		for range ticker.C {
			tick()
		}
	}()

	router := chi.NewRouter()
	routes.SetupRoutes(router, routes.Handlers{
		Auth:         handlers.NewAuthHandler(authService, cfg.JWTSecretKey),
		Profile:      handlers.NewProfileHandler(authService),
		Team:         handlers.NewTeamHandler(teamService),
		Game:         handlers.NewGameHandler(gameService),
		Tournament:   handlers.NewTournamentHandler(tournamentService),
		Registration: handlers.NewRegistrationHandler(registrationService),
		Bracket:      handlers.NewBracketHandler(bracketService),
		Match:        handlers.NewMatchHandler(matchService),
		Invite:       handlers.NewInviteHandler(inviteService),
		Notification: handlers.NewNotificationHandler(notificationService),
		Dashboard:    handlers.NewDashboardHandler(dashboardService),
		WebSocket:    handlers.NewWebSocketHandler(wsHub, logger),
	}, []byte(cfg.JWTSecretKey))
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
