package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"pacta-backend/internal/api"
	"pacta-backend/internal/config"
	"pacta-backend/internal/httpserver"
	"pacta-backend/internal/mqhandler"
	"pacta-backend/internal/realtime"
	"pacta-backend/internal/repository"
	"pacta-backend/internal/scheduler"
	"pacta-backend/internal/service"
	"pacta-backend/pkg/db"
	"pacta-backend/pkg/logger"
	"pacta-backend/pkg/mq"
	"pacta-backend/pkg/outbox"
	pkgredis "pacta-backend/pkg/redis"
	"pacta-backend/pkg/util"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	log := logger.NewLogger()
	defer log.Sync()

	log.Info("Starting pacta-backend...",
		zap.String("db_host", cfg.DB.Host),
		zap.Int("db_port", cfg.DB.Port),
		zap.String("mq_url", cfg.MQ.URL),
		zap.String("redis_addr", cfg.Redis.Addr),
	)

	// DB
	log.Info("Initializing database connection...")
	dbConn, err := db.NewConnection(cfg.DB, log)
	if err != nil {
		log.Fatal("Failed to init DB", zap.Error(err))
	}
	defer dbConn.Close()

	migrateCtx, migrateCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := repository.RunMigrations(migrateCtx, dbConn); err != nil {
		migrateCancel()
		log.Fatal("Failed to run migrations", zap.Error(err))
	}
	migrateCancel()
	log.Info("Database ready")

	// Redis
	rdb := pkgredis.NewRedisClient(cfg.Redis)
	defer rdb.Close()

	// MQ Publisher + DLQ
	publisher, err := mq.NewPublisher(cfg.MQ.URL)
	if err != nil {
		log.Fatal("Failed to init MQ publisher", zap.Error(err))
	}
	defer publisher.Close()

	if err := publisher.SetupDLQ("notification.requested"); err != nil {
		log.Fatal("Failed to set up DLQ", zap.Error(err))
	}

	// Repositories
	notificationRepo := repository.NewNotificationRepository(dbConn, log)
	userRepo := repository.NewUserRepository(dbConn)
	contractRepo := repository.NewContractRepository(dbConn)
	licenseRepo := repository.NewLicenseRepository(dbConn)
	outboxRepo := outbox.NewRepository(dbConn)

	// Services
	badgePublisher := realtime.NewPublisher(rdb, log)
	notificationService := service.NewNotificationService(notificationRepo, badgePublisher, publisher, log)
	authService := service.NewAuthService(userRepo, cfg.JWT.Secret)
	contractService := service.NewContractService(contractRepo)
	licenseService := service.NewLicenseService(licenseRepo)

	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	// Outbox dispatcher
	dispatcher := outbox.NewDispatcher(outboxRepo, publisher, log)
	go dispatcher.Start(rootCtx)

	// MQ consumer for notification.requested
	log.Info("Initializing MQ consumer...",
		zap.String("queue", "notification.requested.q"),
		zap.String("routing_key", "notification.requested"),
	)
	consumer, err := mq.NewConsumer(cfg.MQ.URL, "notification.requested.q", "notification.requested", log)
	if err != nil {
		log.Fatal("Failed to init consumer", zap.Error(err))
	}
	defer consumer.Close()

	deduper := util.NewDeduperWithLogger(rdb, 24*time.Hour, log)
	retryCounter := util.NewRetryCounter(rdb, 24*time.Hour)
	requestedHandler := mqhandler.NewNotificationRequestedHandler(
		notificationService, deduper, retryCounter, publisher, log)
	consumer.SetHandler(requestedHandler.Handle)

	go func() {
		if err := consumer.StartConsuming(); err != nil {
			log.Fatal("Consumer failed", zap.Error(err))
		}
	}()

	// Scheduled jobs
	scanner := scheduler.NewExpiryScanner(
		contractRepo, licenseRepo, publisher, cfg.Notification.ExpiryWindowDays, log)
	cronJobs := scheduler.StartJobs(scanner, notificationService, cfg.Notification.CleanupThresholdDays, log)

	// HTTP server
	authHandler := api.NewAuthHandler(authService, log)
	notificationHandler := api.NewNotificationHandler(notificationService, cfg.Notification.CleanupThresholdDays, log)
	contractHandler := api.NewContractHandler(contractService, log)
	licenseHandler := api.NewLicenseHandler(licenseService, log)

	router := httpserver.NewRouter(
		authHandler, notificationHandler, contractHandler, licenseHandler,
		cfg.JWT.Secret, dbConn)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router.Engine,
	}

	go func() {
		log.Info("HTTP server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	log.Info("pacta-backend is fully initialized and running")

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down pacta-backend gracefully...")

	cronCtx := cronJobs.Stop()
	<-cronCtx.Done()

	consumer.Stop()
	rootCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", zap.Error(err))
	} else {
		log.Info("HTTP server stopped")
	}

	log.Info("pacta-backend shutdown complete")
}
