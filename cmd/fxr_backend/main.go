package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"os"

	memorycache "github.com/SscSPs/fx_rates_app/internal/adapters/cache/memory"
	"github.com/SscSPs/fx_rates_app/internal/adapters/database/pgsql"
	"github.com/SscSPs/fx_rates_app/internal/adapters/provider/nbpapi"
	"github.com/SscSPs/fx_rates_app/internal/app/background"
	"github.com/SscSPs/fx_rates_app/internal/apperrors"
	"github.com/SscSPs/fx_rates_app/internal/core/services"
	"github.com/SscSPs/fx_rates_app/internal/events"
	"github.com/SscSPs/fx_rates_app/internal/handlers"
	"github.com/SscSPs/fx_rates_app/internal/metrics"
	"github.com/SscSPs/fx_rates_app/internal/middleware"
	"github.com/SscSPs/fx_rates_app/internal/platform/config"
	"github.com/SscSPs/fx_rates_app/pkg/database"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool (for application use)
	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer dbPool.Close()
	logger.Info("Database connection pool established.")

	if err := runMigrations(logger, cfg.DatabaseURL); err != nil {
		logger.Error("Failed to run migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Repository wiring: Postgres for the record store, trail and currency
	// registry; the cache backend is selected by configuration.
	repos := pgsql.NewRepositoryProvider(dbPool)
	if cfg.CacheBackendKind == "memory" {
		repos.CacheBackend = memorycache.NewCacheBackend()
	}
	logger.Info("Cache backend selected", slog.String("kind", cfg.CacheBackendKind))

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	m := metrics.NewMetrics(registry)

	bus := events.NewRatesUpdatedBus()
	provider := nbpapi.NewClient(cfg.ProviderName, cfg.ProviderBaseURL)
	container := services.NewServiceContainer(cfg, repos, provider, bus)

	// Warm the latest-rate cache before accepting traffic. A store with no
	// history inside the lookback window is tolerable at startup; the first
	// successful sync re-fires the refresher.
	if err := container.LatestRates.RefreshLatest(ctx); err != nil {
		if errors.Is(err, apperrors.ErrNoHistory) {
			logger.Warn("No rate history available at startup, cache starts empty")
		} else {
			logger.Error("Failed to warm latest-rate cache", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	runner := background.NewRunner(cfg, container.LatestRates, container.Reconciler, bus, m, logger)
	runner.Start(ctx)

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware (logging, metrics, recovery)
	r.Use(middleware.StructuredLoggingMiddleware(logger), middleware.HTTPMetrics(m), gin.Recovery())

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	metricsHandler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	handlers.RegisterRoutes(r, cfg, container, m, metricsHandler)

	logger.Info("Server starting", slog.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Error("Server failed to run", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// runMigrations applies all pending "up" migrations using a temporary
// database/sql connection compatible with the main pgx pool.
func runMigrations(logger *slog.Logger, databaseURL string) error {
	logger.Info("Running database migrations...")

	migrationDB, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := migrationDB.Close(); cerr != nil {
			logger.Error("Error closing migration DB connection", slog.String("error", cerr.Error()))
		}
	}()
	if err := migrationDB.Ping(); err != nil {
		return err
	}

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		return err
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return err
	}

	sourceErr, dbErr := m.Close()
	if sourceErr != nil {
		return sourceErr
	}
	if dbErr != nil {
		return dbErr
	}

	if err == migrate.ErrNoChange {
		logger.Info("No new migrations to apply.")
	} else {
		logger.Info("Database migrations applied successfully.")
	}
	return nil
}
