package http

import (
	"time"

	"fintrack/internal/config"
	"fintrack/internal/http/handlers"
	"fintrack/internal/http/middleware"
	"fintrack/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

func RegisterRoutes(r *gin.Engine, db *pgxpool.Pool, version string, cfg *config.Config) {
	feed := ws.NewHub()
	h := handlers.NewHandler(db, feed)
	healthHandler := handlers.NewHealthHandler(db, version)

	apiRateLimit := 60
	apiRateWindow := time.Minute
	if cfg != nil {
		apiRateLimit = cfg.APIRateLimit
		apiRateWindow = cfg.APIRateWindow
	}

	// Health checks (no rate limiting)
	r.GET("/health", healthHandler.Health)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)

	// API v1 routes
	v1 := r.Group("/api/v1")
	v1.Use(middleware.RedisRateLimit(apiRateLimit, apiRateWindow))
	registerAPIRoutes(v1, h)

	// Legacy /api routes kept for older clients
	api := r.Group("/api")
	api.Use(middleware.RedisRateLimit(apiRateLimit, apiRateWindow))
	api.GET("/health", healthHandler.Health)
	registerAPIRoutes(api, h)

	// Live ledger change feed
	r.GET("/ws", h.WS(feed))
}

func registerAPIRoutes(api *gin.RouterGroup, h *handlers.Handler) {
	transactions := api.Group("/transactions")
	transactions.Use(middleware.JWT())
	{
		transactions.GET("", h.ListTransactions)
		transactions.POST("", h.CreateTransaction)
		transactions.GET("/summary", h.Summary)
		transactions.GET("/:id", h.GetTransaction)
		transactions.PATCH("/:id", h.UpdateTransaction)
		transactions.DELETE("/:id", h.DeleteTransaction)
	}
}
