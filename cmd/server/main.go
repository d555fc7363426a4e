package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"feeportal/internal/app"
	"feeportal/internal/config"
	"feeportal/internal/handler"
	"feeportal/internal/middleware"
	internalRedis "feeportal/internal/redis"
	"feeportal/internal/repository/postgres"
	"feeportal/internal/service"
	"feeportal/internal/sms"
	"feeportal/internal/storage"
)

func main() {
	// Load configuration.
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic FIRST (before database so we can instrument DB).
	var nrApp *newrelic.Application
	var err error
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			log.Printf("failed to initialize New Relic: %v", err)
		} else {
			log.Printf("New Relic enabled: app=%s (with DB instrumentation)", cfg.NewRelic.AppName)
		}
	}

	if cfg.PayHere.MerchantSecret == "" {
		log.Println("WARNING: MERCHANT_SECRET is not set; hash and notify endpoints will return configuration errors")
	}
	if !cfg.SMS.Enabled() {
		log.Println("SMS credentials missing; confirmation messages will be skipped")
	}

	db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Connected to PostgreSQL")

	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Connected to Redis")

	receiptStore, err := app.NewReceiptStore(ctx, cfg.Storage)
	if err != nil {
		log.Fatalf("failed to configure receipt storage: %v", err)
	}

	server, dispatcher := wireServer(db, redisClient, receiptStore, nrApp, cfg)
	dispatcher.Start()

	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("server forced to shutdown: %v", err)
	}

	// Webhooks have stopped arriving; flush pending SMS.
	if err := dispatcher.Stop(shutdownCtx); err != nil {
		log.Printf("notification queue not drained: %v", err)
	}

	if nrApp != nil {
		nrApp.Shutdown(5 * time.Second)
	}

	log.Println("Server exited")
}

// wireServer wires all dependencies and returns the HTTP server and the
// notification dispatcher it publishes to.
func wireServer(
	db *sql.DB,
	redisClient *redis.Client,
	receiptStore *storage.S3ReceiptStore,
	nrApp *newrelic.Application,
	cfg *config.Config,
) (*http.Server, *service.Dispatcher) {
	// Initialize Redis stores.
	statusStore := internalRedis.NewStatusStore(redisClient)
	claimStore := internalRedis.NewClaimStore(redisClient)
	orderCache := internalRedis.NewOrderCache(redisClient)
	responseStore := internalRedis.NewResponseStore(redisClient)

	// Initialize repositories.
	orderRepo := postgres.NewOrderRepository(db)
	ledgerRepo := postgres.NewLedgerRepository(db)

	// Notification pipeline.
	smsClient := sms.NewQuickSendClient(sms.Config{
		BaseURL:   cfg.SMS.BaseURL,
		UserEmail: cfg.SMS.UserEmail,
		APIKey:    cfg.SMS.APIKey,
		SenderID:  cfg.SMS.SenderID,
		Timeout:   cfg.SMS.Timeout,
	})
	smsLimiter := service.NewSMSLimiter(cfg.SMS.RatePerSec)
	notificationService := service.NewNotificationService(smsClient, claimStore, orderRepo, orderCache, smsLimiter)
	dispatcher := service.NewDispatcher(notificationService, cfg.SMS.QueueSize, cfg.SMS.Workers)

	// Initialize services.
	initiationService := service.NewInitiationService(service.InitiationConfig{
		MerchantSecret: cfg.PayHere.MerchantSecret,
		Sandbox:        cfg.PayHere.Sandbox,
		NotifyURL:      cfg.PayHere.NotifyURL,
	}, orderRepo, orderCache)
	reconcilerService := service.NewReconcilerService(cfg.PayHere.MerchantSecret, statusStore, dispatcher, cfg.PayHere.StickyTerminal)
	statusService := service.NewStatusService(statusStore)
	submissionService := service.NewSubmissionService(ledgerRepo, statusStore, dispatcher)
	receiptService := service.NewReceiptService(receiptStore, cfg.Storage.MaxBytes)

	// Initialize handlers.
	payhereHandler := handler.NewPayHereHandler(initiationService, reconcilerService, statusService)
	submissionHandler := handler.NewSubmissionHandler(submissionService, receiptService)

	router := app.NewRouter(app.RouterDeps{
		PayHereHandler:    payhereHandler,
		SubmissionHandler: submissionHandler,
		ResponseStore:     responseStore,
		StatusLimiter:     middleware.NewIPRateLimiter(cfg.RateLimit.StatusRPS, cfg.RateLimit.StatusBurst),
		AllowedOrigins:    cfg.CORS.AllowedOrigins,
		NewRelicApp:       nrApp,
	})

	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, dispatcher
}
