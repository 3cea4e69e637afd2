package main

import (
	"context"
	"fmt"
	"math/big"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chain-wallet-gateway/config"
	"chain-wallet-gateway/internal/adapter/chain"
	httpHandler "chain-wallet-gateway/internal/adapter/http/handler"
	pgStorage "chain-wallet-gateway/internal/adapter/storage/postgres"
	redisStorage "chain-wallet-gateway/internal/adapter/storage/redis"
	"chain-wallet-gateway/internal/core/ports"
	"chain-wallet-gateway/internal/service"
	"chain-wallet-gateway/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Msg("Starting Chain Wallet Gateway")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize PostgreSQL pool
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	log.Info().Msg("PostgreSQL connected")

	// Initialize Redis client
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")

	// Initialize chain gateway
	chainGw, err := chain.NewGateway(ctx, cfg.Chain, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to chain node")
	}
	defer chainGw.Close()

	// Initialize keystore signer
	signer, err := service.NewKeystoreSigner(cfg.Keystore.Path, cfg.Keystore.Passphrase, big.NewInt(cfg.Chain.ChainID), log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open keystore")
	}

	// Initialize repositories
	walletRepo := pgStorage.NewWalletRepo(pool)
	txRepo := pgStorage.NewTransactionRepo(pool)
	transactor := pgStorage.NewTransactor(pool)

	// Initialize Redis stores
	decimalsCache := redisStorage.NewDecimalsCache(rdb)
	rateLimitStore := redisStorage.NewRateLimitStore(rdb)

	// Initialize business services
	locker := service.NewAddressLocker()
	txSvc := service.NewTransactionService(chainGw, signer, txRepo, decimalsCache, locker, log)
	walletSvc := service.NewWalletService(signer, walletRepo, transactor, log)

	// Reconciler sweeps stale pending records against chain state
	reconciler := service.NewReconciler(
		txSvc,
		txRepo,
		cfg.Reconciler.Interval,
		cfg.Reconciler.MaxAge,
		cfg.Chain.MinConfirmations,
		log,
	)
	go reconciler.Run(ctx)

	// Initialize health checkers
	pgHealth := pgStorage.NewHealthCheck(pool)
	redisHealth := redisStorage.NewHealthCheck(rdb)
	chainHealth := chain.NewHealthCheck(chainGw)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		TxSvc:            txSvc,
		WalletSvc:        walletSvc,
		MinConfirmations: cfg.Chain.MinConfirmations,
		RateLimitStore:   rateLimitStore,
		HealthCheckers:   []ports.HealthChecker{pgHealth, redisHealth, chainHealth},
		Logger:           log,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown: signal cancels ctx, which also stops the reconciler
	<-ctx.Done()
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
