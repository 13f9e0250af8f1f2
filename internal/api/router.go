package api

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/louis5103/auth-service/internal/api/handler"
	"github.com/louis5103/auth-service/internal/api/middleware"
	"github.com/louis5103/auth-service/internal/core/access"
	"github.com/louis5103/auth-service/internal/core/domain"
	"github.com/louis5103/auth-service/internal/core/service"
	"github.com/louis5103/auth-service/internal/core/token"
	mongodb "github.com/louis5103/auth-service/internal/infrastructure/db/mongo"
	redisdb "github.com/louis5103/auth-service/internal/infrastructure/db/redis"
)

// NewRouter builds the Echo instance: dependencies, the route-policy
// registry, the access guard, and all routes. Policy validation runs here so
// contradictory route metadata fails at startup, not per request.
func NewRouter(db *mongo.Database, rdb *redis.Client, tokens *token.Manager, log zerolog.Logger) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echoprometheus.NewMiddleware("auth"))

	// --- Dependencies ---
	accounts := mongodb.NewAccountRepository(db)
	revocations := redisdb.NewRevocationStore(rdb)
	authService := service.NewAuthService(accounts, revocations, tokens, log)
	authHandler := handler.NewAuthHandler(authService, log)

	// --- Route policies ---
	// Group defaults play the class-level role; per-route entries override
	// them (most specific scope wins).
	policies := access.NewRegistry()
	policies.SetDefault("/auth", access.Authenticated())
	policies.Set(http.MethodPost, "/auth/register", access.Public())
	policies.Set(http.MethodPost, "/auth/login", access.Public())
	policies.SetDefault("/admin", access.RequireRoles(domain.RoleAdmin))
	policies.Set(http.MethodGet, "/health", access.Public())
	policies.Set(http.MethodGet, "/health/ready", access.Public())
	policies.Set(http.MethodGet, "/metrics", access.Public())
	if err := policies.Validate(); err != nil {
		return nil, err
	}

	e.Use(middleware.Guard(policies, authService, log))

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/logout", authHandler.Logout)
	e.GET("/auth/profile", authHandler.Profile)

	// --- Admin routes ---
	e.GET("/admin/accounts/:id", authHandler.Account)

	// --- Health probes and metrics ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())

	return e, nil
}
