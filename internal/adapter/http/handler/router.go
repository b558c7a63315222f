package handler

import (
	"wallet-remittance-engine/internal/adapter/http/middleware"
	redisStore "wallet-remittance-engine/internal/adapter/storage/redis"
	"wallet-remittance-engine/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	LedgerSvc       ports.LedgerService
	RemittanceSvc   ports.RemittanceService
	WebhookSvc      ports.WebhookService
	RateLimitStore  *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers  []ports.HealthChecker
	DefaultCurrency string
	Logger          zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Health check (deep — verifies PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// Swagger documentation
	swagger := r.Group("/swagger")
	{
		swagger.GET("", SwaggerUI)
		swagger.GET("/spec", SwaggerSpec)
	}

	// Rate limit rules
	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	// API v1 routes
	v1 := r.Group("/api/v1")

	// --- Wallet ledger ---
	walletHandler := NewWalletHandler(deps.LedgerSvc, deps.DefaultCurrency)
	wallets := v1.Group("/wallets")
	{
		wallets.POST("", rl("wallet_ops"), walletHandler.CreateAccount)
		wallets.GET("/:tenant_id/balance", rl("wallet_read"), walletHandler.GetBalance)
		wallets.POST("/:tenant_id/credit", rl("wallet_ops"), walletHandler.Credit)
		wallets.POST("/:tenant_id/debit", rl("wallet_ops"), walletHandler.Debit)
		wallets.GET("/:tenant_id/transactions", rl("wallet_read"), walletHandler.GetTransactionHistory)
	}

	// --- Remittance batches ---
	remittanceHandler := NewRemittanceHandler(deps.RemittanceSvc)
	remittances := v1.Group("/remittances")
	{
		remittances.POST("", rl("remittances"), remittanceHandler.CreateBatch)
		remittances.GET("", rl("wallet_read"), remittanceHandler.ListBatches)
		remittances.GET("/:batch_id", rl("wallet_read"), remittanceHandler.GetBatch)
		remittances.POST("/:batch_id/payout", rl("remittances"), remittanceHandler.InitiatePayout)
	}

	// --- Inbound payout provider webhooks ---
	webhookHandler := NewWebhookHandler(deps.WebhookSvc)
	webhooks := v1.Group("/webhooks")
	{
		webhooks.POST("/payout", rl("payout_webhook"), webhookHandler.HandlePayoutEvent)
	}

	return r
}
