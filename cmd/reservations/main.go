package main

import (
	"context"

	"stablebook/internal/reservations/handler"
	"stablebook/internal/reservations/notify"
	"stablebook/internal/reservations/repository"
	"stablebook/internal/reservations/service"
	"stablebook/internal/reservations/validator"
	"stablebook/pkg/app"
	"stablebook/pkg/auth"
	"stablebook/pkg/config"
	"stablebook/pkg/kafka"
	kafka_config "stablebook/pkg/kafka/config"
	kafka_middleware "stablebook/pkg/kafka/middleware"
	"stablebook/pkg/metrics"
)

const ServiceName = "reservations"

func main() {
	cfg := config.Load(ServiceName)

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal("Invalid configuration", "error", err)
	}
	cfg.LogConfiguration()

	cfg.Log.Info("Starting Reservations service")
	cfg.SetMongo()

	serverApp := app.NewApplication(cfg)
	reservationService := initServices(cfg, serverApp)

	serverApp.SetApp(
		handler.NewReservationHandler(reservationService, cfg.Log.Component("reservation_handler")),
		auth.NewVerifier(cfg.JWTSecret),
	)
	serverApp.Run()
}

func initServices(cfg *config.Config, serverApp *app.Application) service.ReservationService {
	store := repository.NewMongoStore(cfg)
	reservationValidator := validator.NewReservationValidator(cfg.Log, cfg.MaxBatchSize)
	notifier := initNotifier(cfg, store, serverApp)

	reservationService := service.NewReservationService(
		store,
		reservationValidator,
		notifier,
		cfg,
	)

	cfg.Log.Info("Reservation service initialized", "database", cfg.MongoDatabaseName)
	return reservationService
}

// initNotifier wires the post-commit dispatcher to Kafka. With notifications
// disabled bookings still commit and nothing is published.
func initNotifier(cfg *config.Config, store *repository.Store, serverApp *app.Application) notify.Notifier {
	if !cfg.NotifyEnabled {
		cfg.Log.Warn("Reservation notifications disabled")
		return notify.Discard{}
	}

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log)

	producer, err := kafka.NewProducer(kafkaCfg, kafkaCfg.NotificationsTopic, kafkaCfg.NotificationsDLQTopic, cfg.Log.Component("kafka_producer"))
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	if kafkaCfg.EnableMiddleware {
		producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log.Component("kafka_producer")))
		producer.Use(kafka_middleware.MetricsProducerMiddleware(metrics.Kafka()))
	}

	dispatcher := notify.NewDispatcher(producer, store.Users, cfg.Log.Component("notification_dispatcher"), notify.Options{
		QueueSize: cfg.NotifyQueueSize,
		Workers:   cfg.NotifyWorkers,
		Timeout:   cfg.NotifyTimeout,
		Source:    ServiceName,
		Metrics:   metrics.Reservations(),
	})
	dispatcher.Start()

	serverApp.OnShutdown("notification_dispatcher", dispatcher.Stop)
	serverApp.OnShutdown("kafka_producer", func(context.Context) error {
		return producer.Close()
	})

	return dispatcher
}
