package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/talentia-hr/vacaciones-api/internal/handler"
	"github.com/talentia-hr/vacaciones-api/internal/repository"
	"github.com/talentia-hr/vacaciones-api/internal/service"
	"github.com/talentia-hr/vacaciones-api/pkg/cache"
	"github.com/talentia-hr/vacaciones-api/pkg/config"
	"github.com/talentia-hr/vacaciones-api/pkg/database"
	"github.com/talentia-hr/vacaciones-api/pkg/logger"
)

var version = "dev"

// @title API de Gestion de Vacaciones
// @version 1.0
// @description REST API for vacation request management.
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() { _ = db.Close() }()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		// Rate limiting degrades to fail-open without Redis, the API
		// itself stays up.
		log.Warn("redis unavailable, continuing without cache", zap.Error(err))
	}
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
	}

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	vacationRepo := repository.NewVacationRepository(db)
	settingRepo := repository.NewSettingRepository(db)
	reportRepo := repository.NewReportRepository(db)

	metricsService := service.NewMetricsService()
	authService := service.NewAuthService(userRepo, validate, log, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
	})
	settingService := service.NewSettingService(settingRepo, userRepo, validate, log)
	vacationService := service.NewVacationService(vacationRepo, settingService, userRepo, validate, log, service.VacationServiceConfig{})
	userService := service.NewUserService(userRepo, validate, log)
	reportService := service.NewReportService(reportRepo, log)

	router := handler.NewRouter(handler.RouterDeps{
		Config:   cfg,
		Logger:   log,
		DB:       db,
		Redis:    redisClient,
		Metrics:  metricsService,
		Auth:     authService,
		Users:    userRepo,
		Vacation: vacationService,
		Setting:  settingService,
		User:     userService,
		Report:   reportService,
		Version:  version,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("starting http server",
			zap.Int("port", cfg.Port),
			zap.String("env", cfg.Env),
			zap.String("version", version))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
	log.Info("server stopped")
}
