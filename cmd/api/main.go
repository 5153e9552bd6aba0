package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/storefront-checkout/internal/api"
	"github.com/example/storefront-checkout/internal/apperror"
	"github.com/example/storefront-checkout/internal/auth"
	"github.com/example/storefront-checkout/internal/checkout"
	"github.com/example/storefront-checkout/internal/config"
	"github.com/example/storefront-checkout/internal/errhandler"
	"github.com/example/storefront-checkout/internal/events"
	"github.com/example/storefront-checkout/internal/infrastructure/kafka"
	"github.com/example/storefront-checkout/internal/infrastructure/store"
	"github.com/example/storefront-checkout/internal/notification"
	"github.com/example/storefront-checkout/internal/payment"
	"github.com/example/storefront-checkout/internal/retry"
	"github.com/example/storefront-checkout/internal/warranty"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[API] Invalid configuration: %v", err)
	}
	if err := cfg.ValidateAPI(); err != nil {
		log.Fatalf("[API] %v", err)
	}

	log.Println("[API] ========================================")
	log.Println("[API] Storefront - Checkout Service")
	log.Println("[API] ========================================")
	log.Printf("[API] Kafka: %v", cfg.KafkaBrokers)
	log.Printf("[API] Checkout topic: %s", cfg.CheckoutTopic)
	log.Printf("[API] Notification topic: %s", cfg.NotificationTopic)

	// Warranty policies
	repository := newWarrantyRepository(ctx, cfg.DatabaseURL)
	warranties := warranty.NewCache(repository)

	// Initialize Kafka producers
	checkoutProducer := kafka.NewProducer(cfg.KafkaBrokers, cfg.CheckoutTopic)
	defer checkoutProducer.Close()
	notificationProducer := kafka.NewProducer(cfg.KafkaBrokers, cfg.NotificationTopic)
	defer notificationProducer.Close()

	// Payment provider
	breaker := payment.DefaultBreakerSettings()
	breaker.ConsecutiveFailures = cfg.BreakerMaxFailures
	breaker.OpenTimeout = cfg.BreakerOpenTimeout
	provider := payment.NewStripeProvider(payment.NewStripeClient(cfg.StripeSecretKey), breaker)

	checkoutSvc := checkout.NewService(provider, checkout.Settings{
		SuccessURL:       cfg.SuccessURL,
		CancelURL:        cfg.CancelURL,
		AllowedCountries: cfg.AllowedCountries,
		Locale:           cfg.Locale,
		MerchantLabel:    cfg.MerchantLabel,
	})

	// Error handling and user notifications
	sink := notification.MultiSink{
		notification.LogSink{},
		notification.NewKafkaSink(notificationProducer),
	}
	errHandler := errhandler.NewHandler(retry.NewPolicy(), sink, apperror.NewHistory(apperror.DefaultHistorySize))

	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.JWTIssuer)

	// Initialize API
	handlers := api.NewHandlers(
		checkoutSvc,
		errHandler,
		events.NewPublisher(checkoutProducer),
		warranties,
		repository,
	)
	router := api.NewRouter(handlers, jwtService, api.RouterConfig{AllowedOrigin: cfg.AllowedOrigin})

	// Start HTTP server
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("[API] Server started on :%s", cfg.Port)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("[API] Server error: %v", err)
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[API] Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("[API] Shutdown error: %v", err)
	}
}

// newWarrantyRepository connects to PostgreSQL, or keeps policies in
// memory when no database is configured.
func newWarrantyRepository(ctx context.Context, databaseURL string) warranty.Repository {
	if databaseURL == "" {
		log.Println("[API] DATABASE_URL not set, warranty policies kept in memory")
		return store.NewWarrantyStore()
	}

	db, err := store.ConnectPostgres(databaseURL)
	if err != nil {
		log.Fatalf("[API] Failed to connect to PostgreSQL: %v", err)
	}
	log.Println("[API] Connected to PostgreSQL")

	repository := store.NewPostgresWarrantyStore(db)
	if err := repository.EnsureSchema(ctx); err != nil {
		log.Fatalf("[API] Failed to prepare warranty schema: %v", err)
	}
	return repository
}
