// File: cmd/app/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wathaci-webhooks/internal/config"
	"wathaci-webhooks/internal/infra/api"
	pg "wathaci-webhooks/internal/infra/db/postgres"
	"wathaci-webhooks/internal/infra/db/migrations"
	"wathaci-webhooks/internal/infra/logging"
	"wathaci-webhooks/internal/infra/metrics"
	"wathaci-webhooks/internal/infra/payment"
	red "wathaci-webhooks/internal/infra/redis"
	"wathaci-webhooks/internal/infra/sched"
	"wathaci-webhooks/internal/infra/security"
	"wathaci-webhooks/internal/infra/web"
	"wathaci-webhooks/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, unredacted ids)")
	migrate := flag.Bool("migrate", false, "apply pending database migrations before serving")
	mintFor := flag.String("mint-admin-token", "", "print an admin bearer token for the given subject and exit")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("[DEV MODE] Enabled")
	}

	auth := web.NewAuthManager(cfg.Admin.JWTSecret, cfg.Admin.TokenTTL)
	if *mintFor != "" {
		tok, err := auth.Mint(*mintFor)
		if err != nil {
			log.Fatalf("mint admin token: admin.jwt_secret must be set")
		}
		fmt.Println(tok)
		return
	}

	metrics.MustRegister()

	// ---- Postgres ----
	if *migrate {
		if err := migrations.Up(cfg.Database.URL); err != nil {
			logger.Fatal().Err(err).Msg("migrations")
		}
		logger.Info().Msg("migrations applied")
	}
	pool, err := pg.Connect(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis")
	}
	defer redisClient.Close()

	// ---- Encryption ----
	var sealer pg.PayloadSealer
	if key := cfg.Security.EncryptionKey; key != "" {
		s, err := security.NewPayloadSealer(key)
		if err != nil {
			logger.Fatal().Err(err).Msg("encryption")
		}
		sealer = s
	} else {
		logger.Warn().Msg("security.encryption_key not set; webhook payloads are stored in clear text")
	}

	// ---- Repositories ----
	paymentRepo := pg.NewPaymentRepo(pool)
	txRepo := pg.NewTransactionRepo(pool)
	subRepo := pg.NewSubscriptionRepo(pool)
	bookingRepo := pg.NewBookingRepo(pool)
	notifRepo := pg.NewNotificationRepo(pool)
	logRepo := pg.NewWebhookLogRepo(pool, sealer)

	// ---- Use cases ----
	money := usecase.MoneyFormat{LocalCurrency: cfg.Payment.LocalCurrency, LocalSymbol: cfg.Payment.LocalSymbol}
	ledgerUC := usecase.NewLedgerUseCase(paymentRepo, logger)
	reconUC := usecase.NewReconcileUseCase(subRepo, bookingRepo, txRepo, logger)
	notifUC := usecase.NewNotificationUseCase(notifRepo, red.NewPublisher(redisClient), money, logger)
	auditUC := usecase.NewAuditUseCase(logRepo, logger)
	webhookUC := usecase.NewWebhookUseCase(
		payment.NewLencoVerifier(cfg.Payment.Lenco.WebhookSecret),
		payment.NewLencoDecoder(),
		ledgerUC, reconUC, notifUC, auditUC,
		logger,
	)

	// ---- HTTP ----
	var admin http.Handler
	if cfg.Admin.JWTSecret != "" {
		admin = web.NewServer(auditUC, webhookUC, auth, logger).Routes()
	} else {
		logger.Warn().Msg("admin.jwt_secret not set; admin API disabled")
	}
	router := api.NewRouter(api.RouterConfig{
		WebhookPath:    cfg.Payment.Lenco.WebhookPath,
		RequestTimeout: cfg.HTTP.RequestTimeout,
		Checks: map[string]api.Pinger{
			"postgres": pool.Ping,
			"redis":    redisClient.Ping,
		},
	}, api.NewWebhookServer(webhookUC, cfg.HTTP.MaxBodyBytes, logger), admin, logger)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Str("path", cfg.Payment.Lenco.WebhookPath).Msg("webhook server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server error")
			cancel()
		}
	}()

	// ---- Scheduler ----
	scheduler := sched.NewScheduler(logger, time.Minute)
	sweeper := sched.NewStalePaymentSweeper(paymentRepo, red.NewLocker(redisClient), cfg.Scheduler.StaleAfter, logger)
	if err := scheduler.Add(cfg.Scheduler.StaleSweepCron, "stale_payment_sweep", sweeper.Sweep); err != nil {
		logger.Fatal().Err(err).Msg("schedule stale sweep")
	}
	if err := scheduler.Add("@every 30s", "db_pool_stats", pg.PoolStatsJob(pool)); err != nil {
		logger.Fatal().Err(err).Msg("schedule pool stats")
	}
	scheduler.Start()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigc:
		logger.Info().Msg("shutdown requested")
	case <-ctx.Done():
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), 15*time.Second)
	defer stop()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	scheduler.Stop(shutdownCtx)
	cancel()
}
