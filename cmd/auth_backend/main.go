package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/SscSPs/account_auth_service/internal/adapters/mail"
	portsrepo "github.com/SscSPs/account_auth_service/internal/core/ports/repositories"
	"github.com/SscSPs/account_auth_service/internal/core/services"
	"github.com/SscSPs/account_auth_service/internal/handlers"
	"github.com/SscSPs/account_auth_service/internal/middleware"
	"github.com/SscSPs/account_auth_service/internal/platform/config"
	"github.com/SscSPs/account_auth_service/internal/repositories/database/pgsql"
	"github.com/SscSPs/account_auth_service/internal/repositories/memory"
	"github.com/SscSPs/account_auth_service/internal/utils"
	"github.com/SscSPs/account_auth_service/pkg/database"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// @title Account Auth Service API
// @version 1.0
// @description Account registration, sessions and password recovery.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("Server exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	repos, closeRepos, err := newRepositories(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeRepos()

	mailer, err := mail.New(cfg, logger)
	if err != nil {
		return err
	}

	limiterStore, err := middleware.NewLimiterStore(ctx, cfg.RedisURL)
	if err != nil {
		return err
	}
	loginLimiter, err := middleware.NewLimiter(limiterStore, cfg.LoginRateLimit)
	if err != nil {
		return err
	}
	resetLimiter, err := middleware.NewLimiter(limiterStore, cfg.ResetRateLimit)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := middleware.NewMetrics(registry)

	posthogClient := utils.InitializePosthogClient(cfg.PosthogAPIKey, cfg.PosthogEndpoint, logger)
	defer posthogClient.Close()

	serviceContainer := services.NewServiceContainer(cfg, repos, mailer)

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware (logging, recovery)
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery(), metrics.Middleware())

	if err := r.SetTrustedProxies(nil); err != nil {
		return err
	}

	handlers.RegisterRoutes(r, cfg, serviceContainer, handlers.Dependencies{
		Metrics:      metrics,
		Posthog:      posthogClient,
		LoginLimiter: loginLimiter,
		ResetLimiter: resetLimiter,
		Health:       repos.Health,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down server", slog.Duration("timeout", cfg.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("Server stopped")
	return nil
}

// newRepositories connects to Postgres and applies migrations. Without a
// database URL it falls back to the in-memory store, which is only meant for
// local development.
func newRepositories(ctx context.Context, cfg *config.Config, logger *slog.Logger) (portsrepo.RepositoryProvider, func(), error) {
	if cfg.DatabaseURL == "" {
		if cfg.IsProduction {
			return portsrepo.RepositoryProvider{}, nil, errors.New("PGSQL_URL is required in production")
		}
		logger.Warn("PGSQL_URL not set, accounts are kept in memory and lost on restart")
		return portsrepo.RepositoryProvider{AccountRepo: memory.NewAccountRepository()}, func() {}, nil
	}

	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
	if err != nil {
		return portsrepo.RepositoryProvider{}, nil, err
	}
	logger.Info("Database connection pool established.")

	logger.Info("Running database migrations...")
	if err := database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, logger); err != nil {
		dbPool.Close()
		return portsrepo.RepositoryProvider{}, nil, err
	}

	return pgsql.NewRepositoryProvider(dbPool), func() { database.ClosePgxPool(dbPool) }, nil
}
