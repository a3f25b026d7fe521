package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"

	"clinic-credit-service/internal/config"
	"clinic-credit-service/internal/domain/ports/adapter"
	pg "clinic-credit-service/internal/infra/db/postgres"
	"clinic-credit-service/internal/infra/events"
	"clinic-credit-service/internal/infra/logging"
	"clinic-credit-service/internal/infra/metrics"
	"clinic-credit-service/internal/infra/notify"
	red "clinic-credit-service/internal/infra/redis"
	"clinic-credit-service/internal/infra/sched"
	"clinic-credit-service/internal/infra/token"
	"clinic-credit-service/internal/infra/web"
	"clinic-credit-service/internal/infra/worker"
	"clinic-credit-service/internal/usecase"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("developer mode enabled")
	}

	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	// ---- Migrations ----
	if err := runMigrations(cfg.Database.URL); err != nil {
		logger.Fatal().Err(err).Msg("migrations failed")
	}

	// ---- Postgres ----
	pool := pg.MustConnectPostgres(cfg.Database.URL)
	defer pool.Close()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connect failed")
	}
	defer redisClient.Close()
	rateLimiter := red.NewRateLimiter(redisClient, cfg.QR.IssueRateLimit, cfg.QR.IssueRateWin)
	nonceCache := red.NewNonceCache(redisClient)

	// ---- Repositories ----
	tm := pg.NewTxManager(pool)
	patientRepo := pg.NewPatientRepo(pool)
	clinicRepo := pg.NewClinicRepo(pool)
	planRepo := pg.NewPlanRepo(pool)
	userPlanRepo := pg.NewUserPlanRepo(pool)
	txRepo := pg.NewTransactionRepo(pool)
	nonceRepo := pg.NewNonceRepo(pool)
	notifLogRepo := pg.NewNotificationLogRepo(pool)

	// ---- Outbound adapters ----
	signer := token.NewJWTSigner(cfg.QR.SigningSecret)

	var publisher adapter.EventPublisher
	if cfg.Kafka.Enabled {
		publisher, err = events.NewKafkaPublisher(cfg.Kafka.BootstrapServers, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("kafka producer failed")
		}
	} else {
		logger.Info().Msg("kafka disabled, events are dropped")
		publisher = events.NewNoopPublisher()
	}
	defer publisher.Close()

	var notifier adapter.Notifier
	if cfg.Notifications.SMTP.Host != "" {
		notifier = notify.NewEmailNotifier(cfg.Notifications.SMTP, logger)
	} else {
		logger.Info().Msg("smtp not configured, notifications are dropped")
		notifier = notify.NewNoopNotifier()
	}

	// ---- Background dispatch ----
	dispatch := worker.NewPool(8)
	dispatch.Start(ctx)
	defer dispatch.Stop()

	// ---- Use cases ----
	patientUC := usecase.NewPatientUseCase(patientRepo, logger)
	clinicUC := usecase.NewClinicUseCase(clinicRepo, logger)
	planUC := usecase.NewPlanUseCase(planRepo, logger)
	userPlanUC := usecase.NewUserPlanUseCase(userPlanRepo, planRepo, patientRepo, logger)
	qrUC := usecase.NewQRTokenUseCase(userPlanRepo, signer, rateLimiter, logger)
	notifUC := usecase.NewNotificationUseCase(userPlanRepo, patientRepo, notifLogRepo, notifier, publisher, cfg.Notifications.LowBalanceThreshold, logger)
	redeemUC := usecase.NewRedemptionUseCase(tm, userPlanRepo, patientRepo, clinicRepo, nonceRepo, txRepo, signer, nonceCache, notifUC, publisher, dispatch, logger)
	txUC := usecase.NewTransactionUseCase(tm, txRepo, userPlanRepo, logger)
	statsUC := usecase.NewStatsUseCase(patientRepo, userPlanRepo, txRepo, logger)

	// ---- Schedulers ----
	expiryWorker := sched.NewExpiryWorker(cfg.Scheduler.ExpiryCheckEvery, userPlanUC, nonceRepo, logger)
	go func() { _ = expiryWorker.Run(ctx) }()
	notifyWorker := sched.NewNotificationWorker(cfg.Scheduler.NotifyCheckEvery, cfg.Notifications.ExpiryWarnDays, notifUC, logger)
	go func() { _ = notifyWorker.Run(ctx) }()

	// ---- HTTP ----
	auth := web.NewAuthManager(cfg.Auth.HMACSecret, cfg.Auth.SessionTTL)
	srv := web.NewServer(qrUC, redeemUC, txUC, userPlanUC, planUC, clinicUC, patientUC, statsUC, auth, cfg.Auth.AdminAPIKey, logger)
	srv.SetReadyCheck(func(ctx context.Context) error {
		if err := pool.Ping(ctx); err != nil {
			return err
		}
		return redisClient.Ping(ctx)
	})
	srv.SetRateLimiter(rateLimiter)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Str("version", version).Msg("http listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	cancel()
}

func runMigrations(dbURL string) error {
	m, err := migrate.New("file://migrations", dbURL)
	if err != nil {
		return err
	}
	defer m.Close()
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}
