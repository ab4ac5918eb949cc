package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/learnhub/auditkeeper/internal/domain"
	"github.com/learnhub/auditkeeper/internal/middleware"
	"github.com/learnhub/auditkeeper/internal/security"
)

// RouterDeps holds all dependencies needed by the router.
type RouterDeps struct {
	Log         *logrus.Logger
	Pool        HealthPool
	Logs        domain.LogService
	Export      domain.ExportService
	Retention   domain.RetentionService
	Verifier    domain.IdentityVerifier
	CORSOrigins []string
	Version     string
	RateLimit   float64
	RateBurst   int
}

// maxBodySize bounds request bodies; only the purge request carries one.
const maxBodySize = 64 << 10

// privilegedCost is the extra rate-limit spend of export and purge requests.
const privilegedCost = 10

// setupMiddleware configures all middleware on the Gin engine and returns the
// rate limiter so routes can charge extra.
func setupMiddleware(ctx context.Context, r *gin.Engine, deps *RouterDeps) *middleware.RateLimiter {
	r.SetTrustedProxies(nil) //nolint:errcheck // nil always succeeds.
	r.Use(middleware.RequestID(deps.Log))
	r.Use(ginLogger(deps.Log))
	r.Use(gin.Recovery())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.MaxBodySize(maxBodySize))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     deps.CORSOrigins,
		AllowMethods:     []string{"GET", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Disposition", HeaderExportRowCount, HeaderExportTruncated, middleware.RequestIDHeader},
		MaxAge:           1 * time.Hour,
		AllowCredentials: false,
	}))
	limiter := middleware.NewRateLimiter(ctx, deps.RateLimit, deps.RateBurst)
	r.Use(limiter.Handler())
	r.Use(middleware.PrometheusMiddleware("/metrics"))

	// Metrics endpoint (unauthenticated, like health).
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return limiter
}

// registerRoutes sets up all API route handlers on the given router group.
func registerRoutes(ctx context.Context, api *gin.RouterGroup, deps *RouterDeps, limiter *middleware.RateLimiter) {
	log := deps.Log

	health := NewHealthHandler(deps.Pool, log, deps.Version)
	logs := NewLogHandler(deps.Logs, log)
	export := NewExportHandler(deps.Export, log)
	retention := NewRetentionHandler(deps.Retention, log)

	// Health and readiness are unauthenticated.
	api.GET("/health", health.Liveness)
	api.GET("/ready", health.Readiness)

	// All other API routes require authentication.
	guard := security.NewCredentialGuard(ctx, log)
	api.Use(middleware.BruteForceMiddleware(guard))
	api.Use(middleware.AuthMiddleware(middleware.NewCachedIdentityVerifier(ctx, deps.Verifier), log, guard))

	api.GET("/logs", logs.List)
	api.GET("/logs/summary", logs.Summary)
	api.GET("/logs/categories", logs.Categories)
	api.GET("/logs/export", limiter.Cost(privilegedCost), export.Export)
	api.DELETE("/logs", limiter.Cost(privilegedCost), retention.Purge)
}

// NewRouter creates and configures the Gin engine with all middleware and routes.
func NewRouter(ctx context.Context, deps *RouterDeps) http.Handler {
	r := gin.New()
	limiter := setupMiddleware(ctx, r, deps)
	registerRoutes(ctx, r.Group("/api/v1"), deps, limiter)

	return r
}
