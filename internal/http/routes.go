package http

import (
	"criptomain/internal/config"
	"criptomain/internal/http/handlers"
	"criptomain/internal/http/middleware"
	"criptomain/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

func RegisterRoutes(r *gin.Engine, db *pgxpool.Pool, cfg *config.Config, version string) {
	h := handlers.NewHandler(db, cfg.LockTimeout)
	healthHandler := handlers.NewHealthHandler(db, version)

	// Price feed: registrations reprice the token; push each change.
	hub := ws.NewHub()
	h.AuthService.OnPriceChange = hub.BroadcastPrice
	r.GET("/ws/price", h.PriceFeed(hub))

	// Health checks (no rate limiting)
	r.GET("/health", healthHandler.Health)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)

	// In-memory fallback keeps some protection when Redis is absent.
	apiRL := middleware.SimpleRateLimit(cfg.APIRateLimit, cfg.APIRateWindow)
	if cfg.RedisAddr != "" {
		apiRL = middleware.RedisRateLimit(cfg.APIRateLimit, cfg.APIRateWindow)
	}

	v1 := r.Group("/api/v1")
	v1.Use(apiRL)
	registerAPIRoutes(v1, h, db, cfg)

	// Legacy /api alias for older frontends
	api := r.Group("/api")
	api.Use(apiRL)
	registerAPIRoutes(api, h, db, cfg)
}

func registerAPIRoutes(api *gin.RouterGroup, h *handlers.Handler, db *pgxpool.Pool, cfg *config.Config) {
	// Auth
	api.POST("/auth/register", h.Register)
	api.POST("/auth/login", h.Login)
	api.GET("/auth/referral/:code", h.CheckReferralCode)

	// Game
	tapRL := middleware.TapRateLimit(cfg.TapRateLimit, cfg.TapRateWindow)
	api.GET("/game/state", middleware.JWT(), h.GameState)
	api.POST("/game/tap", middleware.JWT(), tapRL, h.RecordTap)

	// Withdrawals
	api.POST("/withdrawals", middleware.JWT(), h.RequestWithdrawal)
	api.GET("/withdrawals", middleware.JWT(), h.MyWithdrawals)

	// Price ledger
	api.GET("/price/history", h.PriceHistory)

	// Profile settings
	api.GET("/profile/settings", middleware.JWT(), h.GetSettings)
	api.PUT("/profile/settings", middleware.JWT(), h.UpdateSettings)
	api.GET("/profile/transactions", middleware.JWT(), h.MyTransactions)
	api.GET("/profile/referrals", middleware.JWT(), h.MyReferrals)

	// Admin surface; the capability check happens here, never in services.
	admin := api.Group("/admin", middleware.JWT(), middleware.Admin(db))
	admin.GET("/dashboard", h.AdminDashboard)
	admin.GET("/users", h.AdminUsers)
	admin.GET("/withdrawals", h.AdminWithdrawals)
	admin.GET("/withdrawals/:id", h.AdminWithdrawalDetail)
	admin.POST("/withdrawals/:id/process", h.AdminProcessWithdrawal)
	admin.GET("/referrals", h.AdminReferrals)
	admin.GET("/tokenomics", h.AdminTokenomics)
}
