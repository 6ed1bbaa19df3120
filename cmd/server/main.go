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

	"taxipro/internal/app"
	"taxipro/internal/config"
	"taxipro/internal/handler"
	internalRedis "taxipro/internal/redis"
	"taxipro/internal/repository/postgres"
	"taxipro/internal/service"
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

	// Initialize database with New Relic instrumentation.
	db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Connected to PostgreSQL")

	// Initialize Redis with New Relic instrumentation.
	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Connected to Redis")

	// Wire dependencies.
	server, watchdog, billing := wireServer(db, redisClient, nrApp, cfg)

	// Background workers.
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()
	go watchdog.Run(workerCtx)
	go billing.Run(workerCtx)

	// Start server in goroutine.
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

	stopWorkers()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

// wireServer wires all dependencies and returns the HTTP server plus the
// background workers.
func wireServer(db *sql.DB, redisClient *redis.Client, nrApp *newrelic.Application, cfg *config.Config) (*http.Server, *service.WatchdogService, *service.BillingService) {
	// Initialize Redis stores.
	locationStore := internalRedis.NewLocationStore(redisClient)
	throttleStore := internalRedis.NewThrottleStore(redisClient)

	// Initialize repositories.
	uow := postgres.NewUnitOfWork(db)
	tripRepo := postgres.NewTripRepository(db)
	linkRepo := postgres.NewSharedLinkRepository(db)
	tariffRepo := postgres.NewTariffRepository(db)
	passengerRepo := postgres.NewPassengerRepository(db)
	driverRepo := postgres.NewDriverRepository(db)
	messageRepo := postgres.NewMessageRepository(db)
	auditRepo := postgres.NewAuditRepository(db)

	// Initialize services.
	audit := service.NewAuditLogger(auditRepo)
	notifier := service.NewLogNotifier()
	gateway := service.NewMockGateway()
	paymentService := service.NewPaymentService(uow, passengerRepo, gateway, audit)
	tripService := service.NewTripService(uow, tripRepo, tariffRepo, messageRepo,
		paymentService, audit, notifier, locationStore, cfg.Trip.ArrivalRadiusM)
	bookingService := service.NewBookingService(uow, tripRepo, tariffRepo, driverRepo,
		audit, notifier, cfg.Trip.ArrivalRadiusM)
	cancellationService := service.NewCancellationService(uow, tariffRepo, messageRepo,
		paymentService, audit, notifier, cfg.Trip.GracePeriod)
	linkService := service.NewSharedLinkService(tripRepo, linkRepo, locationStore, audit, cfg.Trip.LinkTTL)
	safetyService := service.NewSafetyService(tripRepo, throttleStore, notifier, audit, cfg.Trip.OpsRecipientID)
	watchdog := service.NewWatchdogService(tripRepo, linkRepo,
		cfg.Trip.WatchdogInterval, cfg.Trip.DisconnectTimeout, cfg.Trip.ReviewTimeout)
	billing := service.NewBillingService(driverRepo, gateway, notifier)

	// Initialize handlers.
	tripHandler := handler.NewTripHandler(tripService, safetyService)
	bookingHandler := handler.NewBookingHandler(bookingService)
	cancellationHandler := handler.NewCancellationHandler(cancellationService)
	linkHandler := handler.NewSharedLinkHandler(linkService)
	webhookHandler := handler.NewWebhookHandler(paymentService)

	// Create router.
	router := app.NewRouter(app.RouterDeps{
		BookingHandler:      bookingHandler,
		TripHandler:         tripHandler,
		CancellationHandler: cancellationHandler,
		SharedLinkHandler:   linkHandler,
		WebhookHandler:      webhookHandler,
		RedisClient:         redisClient,
		NewRelicApp:         nrApp,
	})

	// Create HTTP server.
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	return server, watchdog, billing
}
