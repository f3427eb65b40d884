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

	"artMarket/app/echo-server/router"
	"artMarket/business/recommend"
	"artMarket/internal/middleware"
	"artMarket/internal/repository/csvstore"
	psqlRepo "artMarket/internal/repository/postgres"
	redisRepo "artMarket/internal/repository/redis"
	"artMarket/internal/rest"
	"artMarket/pkg/config"
	"artMarket/pkg/database"
	redisdb "artMarket/pkg/database/redis"
	"artMarket/pkg/logger"
	"artMarket/pkg/metrics"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.App.Environment)
	logger.Info("Starting Art Market Recommender", "version", cfg.App.Version)

	metrics.Init()

	// Init repositories: postgres when configured, CSV exports otherwise.
	var (
		productRepo  recommend.ProductRepository
		prefRepo     recommend.PreferenceRepository
		purchaseRepo recommend.PurchaseRepository
	)
	if cfg.HasDatabase() {
		db, err := database.InitPostgres(cfg)
		if err != nil {
			logger.Fatal("Failed to connect to database", "error", err)
		}
		logger.Info("Database connected successfully")

		productRepo = psqlRepo.NewProductRepository(db)
		prefRepo = psqlRepo.NewPreferenceRepository(db)
		purchaseRepo = psqlRepo.NewPurchaseRepository(db)
	} else {
		store, err := csvstore.Open(cfg.Model.CSVDir)
		if err != nil {
			logger.Fatal("Failed to open CSV store", "error", err, "dir", cfg.Model.CSVDir)
		}
		logger.Info("Using CSV-backed store", "dir", cfg.Model.CSVDir)

		productRepo = store
		prefRepo = store
		purchaseRepo = store.Purchases()
	}

	// Optional redis cache for hot preference vectors.
	var prefCache recommend.PreferenceCache
	if cfg.HasRedis() {
		client, err := redisdb.NewRedisClient(cfg)
		if err != nil {
			logger.Fatal("Failed to connect to redis", "error", err)
		}
		defer redisdb.CloseRedisClient(client)

		prefCache = redisRepo.NewPreferenceCache(client)
		logger.Info("Redis preference cache enabled")
	}

	// Init core services.
	recoCfg := recommend.DefaultConfig()
	recoCfg.MinUsersForTraining = cfg.Training.MinUsersForTraining
	recoCfg.NumClusters = cfg.Training.NumClusters
	recoCfg.StrictTrainingData = cfg.Training.StrictData

	builder := recommend.NewVectorBuilder()
	engine := recommend.NewRecommendationEngine(builder, recoCfg)
	updater := recommend.NewPreferenceUpdater(productRepo, prefRepo, prefCache, builder, recoCfg)
	trainer := recommend.NewTrainer(prefRepo, purchaseRepo, builder, engine, recoCfg,
		cfg.Model.Path, cfg.Training.PruneStaleUsers)
	recoService := recommend.NewRecommenderService(productRepo, prefRepo, purchaseRepo,
		prefCache, builder, engine)

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 30*time.Second)
	if err := trainer.LoadFromDisk(startupCtx); err != nil {
		cancelStartup()
		logger.Fatal("Failed to load model snapshot", "error", err)
	}
	cancelStartup()

	// Init handlers.
	recoHandler := rest.NewRecommendationHandler(recoService)
	eventHandler := rest.NewEventHandler(updater)
	trainingHandler := rest.NewTrainingHandler(trainer)

	// Init echo.
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.HTTPErrorHandler = middleware.ErrorHandler

	e.Use(echomiddleware.Recover())
	e.Use(middleware.TraceMiddleware())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: []string{"http://localhost:3000", "http://localhost:8080"},
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, "X-API-Key"},
	}))

	e.GET("/health", recoHandler.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api/v1")
	router.SetRecommendationRoutes(api, recoHandler)
	router.SetEventRoutes(api, eventHandler, cfg.Auth.InternalAPIKey)
	router.SetTrainingRoutes(api, trainingHandler, cfg.Auth.InternalAPIKey)

	// Scheduled retraining.
	if cfg.Training.RetrainCron != "" {
		scheduler := cron.New()
		_, err := scheduler.AddFunc(cfg.Training.RetrainCron, func() {
			if err := trainer.TrainAsync(); err != nil {
				logger.Warn("scheduled retraining skipped", "error", err)
			}
		})
		if err != nil {
			logger.Fatal("Invalid retrain cron spec", "spec", cfg.Training.RetrainCron, "error", err)
		}
		scheduler.Start()
		defer scheduler.Stop()
		logger.Info("Scheduled retraining enabled", "spec", cfg.Training.RetrainCron)
	}

	// Goroutine server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server starting", "address", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	logger.Info("Server stopped")
}
