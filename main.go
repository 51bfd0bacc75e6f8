package main

import (
	"context"
	"log"
	"net/http"

	"github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"github.com/smartsales-io/report-engine/pkg/adapters/datasource"
	"github.com/smartsales-io/report-engine/pkg/catalog"
	"github.com/smartsales-io/report-engine/pkg/config"
	"github.com/smartsales-io/report-engine/pkg/database"
	"github.com/smartsales-io/report-engine/pkg/handlers"
	"github.com/smartsales-io/report-engine/pkg/middleware"
	"github.com/smartsales-io/report-engine/pkg/nlu"
	"github.com/smartsales-io/report-engine/pkg/repositories"
	"github.com/smartsales-io/report-engine/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	db, err := database.NewConnection(ctx, &database.Config{
		URL:            cfg.Database.URL(),
		MaxConnections: cfg.Database.MaxConnections,
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	sqlDB := stdlib.OpenDBFromPool(db.Pool)
	if err := database.RunMigrations(sqlDB, cfg.MigrationsPath, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	cache := catalog.NewCache(repositories.NewCatalogRepository(db.Pool))
	classifier := nlu.NewNaiveBayesClassifier(cfg.ClassifierModelPath, logger)
	resolver := nlu.NewResolver(cache, classifier, logger)
	executor := datasource.NewPostgresExecutor(db.Pool)
	reportService := services.NewReportService(resolver, executor, logger)

	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg).RegisterRoutes(mux)
	handlers.NewReportsHandler(reportService, logger).RegisterRoutes(mux)

	handler := middleware.Recover(logger)(middleware.RequestLogger(logger)(mux))

	addr := cfg.BindAddr + ":" + cfg.Port
	logger.Info("Starting report engine",
		zap.String("addr", addr),
		zap.String("version", cfg.Version),
		zap.String("env", cfg.Env),
	)
	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "local" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
