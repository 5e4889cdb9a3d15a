package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"finflow/internal/api"
	"finflow/internal/api/handlers"
	"finflow/internal/app"
	"finflow/internal/repository"
	"finflow/internal/service"
	"finflow/pkg/auth"
	"finflow/pkg/config"
	"finflow/pkg/logger"
	"finflow/pkg/postgres"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// @title Finflow API
// @version 1.0
// @description Bank statement ingestion, categorization and spending analytics.

// @contact.name API Support

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logger.Level); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()
	appLogger.Info("Starting finflow service")

	decimal.MarshalJSONWithoutQuotes = true

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := postgres.Migrate(ctx, db, appLogger); err != nil {
		appLogger.Fatal("Failed to apply migrations", zap.Error(err))
	}

	docRepo := repository.NewDocumentRepository(db, appLogger)
	txRepo := repository.NewTransactionRepository(db, appLogger)
	projRepo := repository.NewProjectionRepository(db, appLogger)

	store, closeStore, err := app.NewStore(ctx, &cfg.Storage, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize storage", zap.Error(err))
	}
	defer closeStore()

	bus, err := app.NewBus(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize event bus", zap.Error(err))
	}
	defer bus.Close()

	closeProjections, err := app.RegisterProjections(ctx, bus.Subscriber, db, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to register projections", zap.Error(err))
	}
	defer closeProjections()

	if err := bus.Subscriber.Start(ctx); err != nil {
		appLogger.Fatal("Failed to start consumers", zap.Error(err))
	}

	classifier, closeClassifier, err := service.NewClassifier(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize classifier", zap.Error(err))
	}
	defer closeClassifier()

	jwtManager := auth.NewJWTManager(cfg.JWT.SecretKey)

	categorizer := service.NewCategorizationService(
		service.DefaultCategoryRules(),
		classifier,
		cfg.Ingestion.ClassifierConcurrency,
		cfg.Ingestion.ClassifierTimeout,
		appLogger,
	)
	duplicates := service.NewDuplicateService(txRepo, appLogger)

	ingestion := service.NewIngestionService(
		docRepo,
		txRepo,
		store,
		service.NewPDFExtractor(appLogger),
		categorizer,
		duplicates,
		classifier,
		bus.Publisher,
		service.IngestionOptions{
			Workers:               cfg.Ingestion.Workers,
			QueueSize:             cfg.Ingestion.QueueSize,
			DuplicatePolicy:       service.ParseDuplicatePolicy(cfg.Ingestion.DuplicatePolicy),
			CategorizeConcurrency: cfg.Ingestion.ClassifierConcurrency,
			MaxFileSize:           cfg.Ingestion.MaxFileSize,
		},
		appLogger,
	)
	ingestion.Start(ctx)

	analytics := service.NewAnalyticsService(projRepo, appLogger)
	insights := service.NewInsightService(projRepo, appLogger)
	transactions := service.NewTransactionService(txRepo, duplicates, bus.Publisher, appLogger)

	router := api.SetupRouter(api.Handlers{
		Documents:    handlers.NewDocumentHandler(ingestion, appLogger),
		Transactions: handlers.NewTransactionHandler(transactions, analytics, appLogger),
		Analytics:    handlers.NewAnalyticsHandler(analytics, insights, appLogger),
	}, jwtManager, api.RouterConfig{
		BodyLimit:    cfg.Server.BodyLimit,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, appLogger)

	go func() {
		addr := ":" + cfg.Server.Port
		appLogger.Info("Server starting", zap.String("address", addr))
		if err := router.Listen(addr); err != nil {
			appLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	if err := router.Shutdown(); err != nil {
		appLogger.Error("Server shutdown error", zap.Error(err))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := ingestion.Stop(shutdownCtx); err != nil {
		appLogger.Error("Ingestion workers did not finish", zap.Error(err))
	}
	if err := bus.Subscriber.Stop(shutdownCtx); err != nil {
		appLogger.Error("Consumers did not stop cleanly", zap.Error(err))
	}
}
