package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"stablebook/internal/notifier"
	"stablebook/pkg/client"
	"stablebook/pkg/config"
	"stablebook/pkg/kafka"
	kafka_config "stablebook/pkg/kafka/config"
	kafka_middleware "stablebook/pkg/kafka/middleware"
	"stablebook/pkg/metrics"
)

const ServiceName = "notifier"

func main() {
	cfg := config.Load(ServiceName)
	log := cfg.Log

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(log)

	var webhook notifier.Webhook
	if cfg.NotifyWebhookURL != "" {
		webhook = client.NewHttpClient(cfg.NotifyWebhookURL, cfg.NotifyTimeout)
		log.Info("Delivering notifications to webhook")
	} else {
		log.Warn("NOTIFY_WEBHOOK_URL not set, notifications will only be logged")
	}
	delivery := notifier.NewDelivery(webhook, log.Component("delivery"))

	consumer, err := kafka.NewConsumer(
		kafkaCfg,
		kafkaCfg.NotificationsTopic,
		kafkaCfg.NotifierGroupID,
		kafkaCfg.NotificationsDLQTopic,
		delivery.Handle,
		log,
	)
	if err != nil {
		log.Fatal("Failed to create Kafka consumer", "error", err)
	}
	if kafkaCfg.EnableMiddleware {
		consumer.Use(kafka_middleware.LoggingConsumerMiddleware(log.Component("kafka_consumer")))
		consumer.Use(kafka_middleware.MetricsConsumerMiddleware(metrics.Kafka()))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("Starting notifier", "topic", kafkaCfg.NotificationsTopic, "group_id", kafkaCfg.NotifierGroupID)
	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("Consumer stopped with error", "error", err)
	}

	if err := consumer.Close(); err != nil {
		log.Error("Failed to close consumer", "error", err)
	}
	log.Info("Notifier stopped")
}
