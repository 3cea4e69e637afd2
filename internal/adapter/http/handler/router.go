package handler

import (
	"chain-wallet-gateway/internal/adapter/http/middleware"
	redisStore "chain-wallet-gateway/internal/adapter/storage/redis"
	"chain-wallet-gateway/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	TxSvc            ports.TransactionService
	WalletSvc        ports.WalletService
	MinConfirmations uint64
	RateLimitStore   *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers   []ports.HealthChecker
	Logger           zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Health check (deep — verifies PostgreSQL, Redis, and the chain node)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

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

	txHandler := NewTransactionHandler(deps.TxSvc, deps.MinConfirmations)
	walletHandler := NewWalletHandler(deps.WalletSvc)

	v1 := r.Group("/v1")

	transaction := v1.Group("/transaction")
	{
		transaction.POST("", rl("transaction_create"), txHandler.Create)
		transaction.GET("", rl("transaction_read"), txHandler.List)
		transaction.GET("/status/:tx_hash", rl("transaction_read"), txHandler.Status)
		transaction.GET("/:tx_hash", rl("transaction_read"), txHandler.Validate)
	}

	wallets := v1.Group("/wallets")
	{
		wallets.POST("", rl("wallets_create"), walletHandler.CreateBatch)
		wallets.GET("", rl("wallets_read"), walletHandler.List)
	}

	return r
}
