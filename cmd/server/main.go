// cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gustirama/shelfsense/internal/api"
	"github.com/gustirama/shelfsense/internal/cache"
	"github.com/gustirama/shelfsense/internal/config"
	"github.com/gustirama/shelfsense/internal/engine"
	"github.com/gustirama/shelfsense/internal/export"
	"github.com/gustirama/shelfsense/internal/forecast"
	"github.com/gustirama/shelfsense/internal/repository/postgres"
	"github.com/gustirama/shelfsense/internal/service"
	"github.com/gustirama/shelfsense/internal/simulation"
	"github.com/gustirama/shelfsense/pkg/logger"
)

func main() {
	cfg := config.Load()

	logger.SetLevel(cfg.Server.Mode)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	productRepo := postgres.NewProductRepository(db)
	inventoryRepo := postgres.NewInventoryRepository(db)
	saleRepo := postgres.NewSaleRepository(db)
	weatherRepo := postgres.NewWeatherRepository(db)
	forecastRepo := postgres.NewForecastRepository(db)
	alertRepo := postgres.NewAlertRepository(db)
	dashboardRepo := postgres.NewDashboardRepository(db)

	dashboardCache, err := cache.NewDashboardCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("dashboard cache unavailable, continuing without caching")
		dashboardCache = cache.NewNoopDashboardCache()
	}

	var reportStorage export.ObjectStorage
	if cfg.Export.UploadEnabled {
		storage, err := export.NewMinioStorage(cfg.Export)
		if err != nil {
			logger.Log.Warn().Err(err).Msg("report storage unavailable, keeping reports local only")
		} else {
			reportStorage = storage
		}
	}

	forecastClient := forecast.NewClient(cfg.Forecast)
	decisionEngine := engine.New(
		productRepo, inventoryRepo, saleRepo, weatherRepo, forecastRepo, alertRepo,
		forecastClient,
	)

	services := &api.Services{
		DecisionService:   service.NewDecisionService(decisionEngine, alertRepo, dashboardCache, cfg.Export.Dir, reportStorage),
		DashboardService:  service.NewDashboardService(dashboardRepo, inventoryRepo, saleRepo, weatherRepo, dashboardCache),
		SimulationService: simulation.NewService(productRepo, inventoryRepo, saleRepo, weatherRepo),
	}

	router := api.NewRouter(services, cfg.Server.AllowedOrigins)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
