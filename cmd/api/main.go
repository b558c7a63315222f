package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wallet-remittance-engine/config"
	httpHandler "wallet-remittance-engine/internal/adapter/http/handler"
	"wallet-remittance-engine/internal/adapter/payout"
	pgStorage "wallet-remittance-engine/internal/adapter/storage/postgres"
	redisStorage "wallet-remittance-engine/internal/adapter/storage/redis"
	"wallet-remittance-engine/internal/core/ports"
	"wallet-remittance-engine/internal/scheduler"
	"wallet-remittance-engine/internal/service"
	"wallet-remittance-engine/pkg/logger"
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
		Msg("Starting Wallet Remittance Engine")

	feeRate, err := cfg.Remittance.FeeRateDecimal()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid remittance fee rate")
	}
	minNetPayable, err := cfg.Remittance.MinNetPayableDecimal()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid remittance minimum net payable")
	}

	ctx := context.Background()

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

	// Initialize repositories
	walletRepo := pgStorage.NewWalletRepo(pool)
	ledgerRepo := pgStorage.NewLedgerRepo(pool)
	shipmentRepo := pgStorage.NewShipmentRepo(pool)
	batchRepo := pgStorage.NewBatchRepo(pool)
	webhookRepo := pgStorage.NewWebhookEventRepo(pool)
	transactor := pgStorage.NewTransactor(pool)

	// Initialize Redis stores
	idempotencyCache := redisStorage.NewIdempotencyCache(rdb)
	replayStore := redisStorage.NewReplayStore(rdb)
	rateLimitStore := redisStorage.NewRateLimitStore(rdb)

	// Initialize core services
	sigSvc := service.NewHMACSignatureService()
	payoutGateway := payout.NewClient(cfg.Payout, cfg.Remittance.Currency, sigSvc, replayStore, log)

	// Initialize business services
	ledgerSvc := service.NewLedgerService(walletRepo, ledgerRepo, idempotencyCache, transactor, log)
	remittanceSvc := service.NewRemittanceService(
		shipmentRepo,
		batchRepo,
		walletRepo,
		ledgerRepo,
		payoutGateway,
		transactor,
		service.RemittanceConfig{
			FeeRate:       feeRate,
			MinNetPayable: minNetPayable,
			Currency:      cfg.Remittance.Currency,
		},
		log,
	)
	webhookSvc := service.NewPayoutWebhookService(
		batchRepo,
		webhookRepo,
		replayStore,
		sigSvc,
		transactor,
		cfg.Payout.WebhookSecret,
		log,
	)

	// Initialize health checkers
	pgHealth := pgStorage.NewHealthCheck(pool)
	redisHealth := redisStorage.NewHealthCheck(rdb)

	// Load OpenAPI spec for Swagger UI
	if specBytes, err := os.ReadFile("docs/api/openapi.yaml"); err == nil {
		httpHandler.SetSwaggerSpec(specBytes)
		log.Info().Msg("OpenAPI spec loaded for Swagger UI at /swagger")
	} else {
		log.Warn().Err(err).Msg("OpenAPI spec not found, Swagger UI will be unavailable")
	}

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		LedgerSvc:       ledgerSvc,
		RemittanceSvc:   remittanceSvc,
		WebhookSvc:      webhookSvc,
		RateLimitStore:  rateLimitStore,
		HealthCheckers:  []ports.HealthChecker{pgHealth, redisHealth},
		DefaultCurrency: cfg.Remittance.Currency,
		Logger:          log,
	})

	// Start the automatic remittance batch runs
	batchScheduler := scheduler.New(shipmentRepo, remittanceSvc, cfg.Remittance.Schedule, log)
	if err := batchScheduler.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start remittance scheduler")
	}

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

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	// Let any in-flight remittance sweep finish before the pool closes.
	<-batchScheduler.Stop().Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
