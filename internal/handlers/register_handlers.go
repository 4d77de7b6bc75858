package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/SscSPs/account_auth_service/cmd/docs"
	portsrepo "github.com/SscSPs/account_auth_service/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/account_auth_service/internal/core/ports/services"
	"github.com/SscSPs/account_auth_service/internal/middleware"
	"github.com/SscSPs/account_auth_service/internal/platform/config"
	"github.com/SscSPs/account_auth_service/internal/utils"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/ulule/limiter/v3"
)

// Dependencies are the optional collaborators of the HTTP layer. Any of them
// may be nil; a nil limiter lets every request through.
type Dependencies struct {
	Metrics      *middleware.Metrics
	Posthog      *utils.PosthogClientWrapper
	LoginLimiter *limiter.Limiter
	ResetLimiter *limiter.Limiter
	// Health is pinged by /health; nil means the store is always available.
	Health portsrepo.HealthChecker
}

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	deps Dependencies,
) {
	if len(cfg.CORSOrigins) > 0 {
		r.Use(corsMiddleware(cfg.CORSOrigins))
	}

	// Add health check route
	r.GET("/health", healthHandler(deps.Health))
	if deps.Metrics != nil {
		r.GET("/metrics", deps.Metrics.Handler())
	}

	setupAPIV1Routes(r, cfg, services, deps)

	// Swagger routes (typically public or conditionally available)
	setupSwaggerRoutes(r, cfg)
}

// setupAPIV1Routes configures the /api/v1/users group. Authentication is
// applied per route since register, login and the reset flow are public.
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	deps Dependencies,
) {
	users := r.Group("/api/v1/users", middleware.PosthogMiddleware(deps.Posthog))
	authenticated := middleware.AuthMiddleware(services.TokenService)
	cookies := newCookieWriter(cfg)

	authHandler := NewAuthHandler(services.Account, services.Session, cfg, deps.Metrics, deps.Posthog)
	registerAuthRoutes(users, authenticated, authHandler, middleware.RateLimit(deps.LoginLimiter))

	passwordHandler := NewPasswordHandler(services.Account, services.Session, deps.Metrics)
	registerPasswordRoutes(users, authenticated, passwordHandler, middleware.RateLimit(deps.ResetLimiter))

	registerAccountRoutes(users, authenticated, services.Account)

	googleHandler := NewGoogleOAuthHandler(services.GoogleOAuthHandler, services.Session, cookies, deps.Metrics)
	registerGoogleOAuthRoutes(users, googleHandler)
}

// healthHandler answers 503 while the database does not respond.
func healthHandler(checker portsrepo.HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if checker != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := checker.Ping(ctx); err != nil {
				middleware.GetLoggerFromContext(c).Error("Health check failed", slog.String("error", err.Error()))
				c.String(http.StatusServiceUnavailable, "UNAVAILABLE")
				return
			}
		}
		c.String(http.StatusOK, "OK")
	}
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

// corsMiddleware allows credentialed requests from the configured origins only.
func corsMiddleware(origins []string) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{middleware.RequestIDHeader, "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}
