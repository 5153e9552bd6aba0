package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/example/storefront-checkout/internal/apperror"
	"github.com/example/storefront-checkout/internal/config"
	"github.com/example/storefront-checkout/internal/email"
	"github.com/example/storefront-checkout/internal/errhandler"
	"github.com/example/storefront-checkout/internal/infrastructure/kafka"
	"github.com/example/storefront-checkout/internal/notification"
	"github.com/example/storefront-checkout/internal/notifier"
	"github.com/example/storefront-checkout/internal/retry"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[Notifier] Invalid configuration: %v", err)
	}

	log.Println("[Notifier] ========================================")
	log.Println("[Notifier] Storefront - Payment Link Notifier")
	log.Println("[Notifier] ========================================")
	log.Printf("[Notifier] Kafka: %v", cfg.KafkaBrokers)
	log.Printf("[Notifier] Topic: %s", cfg.CheckoutTopic)
	log.Printf("[Notifier] Group: %s", cfg.NotifierConsumerGroup)
	log.Printf("[Notifier] SMTP: %s:%s", cfg.SMTPHost, cfg.SMTPPort)
	log.Printf("[Notifier] From: %s", cfg.SMTPFrom)

	// Delivery failures are reported on the notification topic
	notificationProducer := kafka.NewProducer(cfg.KafkaBrokers, cfg.NotificationTopic)
	defer notificationProducer.Close()
	sink := notification.MultiSink{
		notification.LogSink{},
		notification.NewKafkaSink(notificationProducer),
	}
	errHandler := errhandler.NewHandler(retry.NewPolicy(), sink, apperror.NewHistory(apperror.DefaultHistorySize))

	// Initialize email service
	emailSvc := email.NewService(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom, cfg.MerchantLabel)

	// Initialize notification handler
	handler := notifier.NewHandler(emailSvc, errHandler)

	// Initialize Kafka consumer
	consumer := kafka.NewConsumer(cfg.KafkaBrokers, cfg.CheckoutTopic, cfg.NotifierConsumerGroup)
	defer consumer.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		log.Println("[Notifier] Starting event consumer...")
		if err := consumer.Consume(ctx, handler.HandleEvent); err != nil && ctx.Err() == nil {
			log.Printf("[Notifier] Consumer error: %v", err)
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[Notifier] Shutting down...")
	cancel()
	<-done
}
