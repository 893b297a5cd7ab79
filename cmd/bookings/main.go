package main

import (
	"context"

	"eventhub/internal/bookings/handler"
	"eventhub/internal/bookings/notifier"
	"eventhub/internal/bookings/repository"
	"eventhub/internal/bookings/service"
	"eventhub/internal/bookings/validator"
	venuerepo "eventhub/internal/venues/repository"
	venues "eventhub/internal/venues/service"
	"eventhub/pkg/app"
	"eventhub/pkg/auth"
	"eventhub/pkg/config"
	"eventhub/pkg/kafka"
	kafka_config "eventhub/pkg/kafka/config"
	kafka_middleware "eventhub/pkg/kafka/middleware"
	"eventhub/pkg/middleware"
	"eventhub/pkg/model"
)

const ServiceName = "bookings"

func main() {
	cfg := config.Load(ServiceName)
	if cfg.JWTSecret == "" {
		cfg.Log.Fatal("JWT_SECRET must be set")
	}

	cfg.Log.Info("Starting Bookings service")
	checks := map[string]handler.Check{}

	bookingRepo, venueRepo := initRepositories(cfg, checks)
	directory := initDirectory(cfg, venueRepo, checks)

	sink, producer := initSink(cfg)
	dispatcher := notifier.NewDispatcher(sink, notifier.Options{
		Workers:   cfg.NotificationWorkers,
		QueueSize: cfg.NotificationQueueSize,
		Timeout:   cfg.NotificationTimeout,
	}, cfg.Log)
	dispatcher.Start()

	bookingService := service.NewBookingService(
		bookingRepo,
		directory,
		dispatcher,
		validator.NewBookingValidator(cfg.Log, cfg.PhoneRegion),
		cfg,
	)

	var store middleware.IdempotencyStore
	if cfg.Client.Redis != nil {
		store = middleware.NewRedisIdempotencyStore(cfg.Client.Redis, cfg.IdempotencyTTL)
	}

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(
		handler.NewHealthHandler(checks, cfg.Log),
		handler.NewBookingHandler(bookingService, cfg.Log),
		auth.NewJWTAuthenticator(cfg.JWTSecret),
		store,
	)
	serverApp.OnShutdown(dispatcher.Stop)
	if producer != nil {
		serverApp.OnShutdown(func(context.Context) error { return producer.Close() })
	}
	serverApp.Run()
}

func initRepositories(cfg *config.Config, checks map[string]handler.Check) (repository.BookingRepository, venuerepo.VenueRepository) {
	if cfg.StorageDriver == config.StorageMemory {
		var seed []model.Venue
		if cfg.VenueSeedFile != "" {
			loaded, err := venuerepo.LoadVenueSeed(cfg.VenueSeedFile)
			if err != nil {
				cfg.Log.Fatal("Failed to load venue seed", "path", cfg.VenueSeedFile, "error", err)
			}
			seed = loaded
		}
		cfg.Log.Warn("Using in-memory storage, data will not survive a restart", "seed_venues", len(seed))
		return repository.NewMemoryBookingRepository(), venuerepo.NewMemoryVenueRepository(seed...)
	}

	cfg.SetMongo()
	checks["database"] = func(ctx context.Context) error {
		return cfg.Client.Mongo.Client.Ping(ctx, nil)
	}
	cfg.Log.Info("Booking repository initialized", "database", cfg.MongoDatabaseName)
	return repository.NewMongoBookingRepository(cfg), venuerepo.NewMongoVenueRepository(cfg)
}

func initDirectory(cfg *config.Config, repo venuerepo.VenueRepository, checks map[string]handler.Check) venues.Directory {
	directory := venues.NewDirectory(repo)

	cfg.SetRedis()
	if cfg.Client.Redis == nil {
		return directory
	}
	checks["cache"] = func(ctx context.Context) error {
		return cfg.Client.Redis.Ping(ctx).Err()
	}
	return venues.NewCachedDirectory(directory, cfg.Client.Redis, cfg.VenueCacheTTL, cfg.Log)
}

// initSink falls back to logging events when the broker cannot be configured,
// so bookings keep working without notifications.
func initSink(cfg *config.Config) (notifier.Sink, *kafka.Producer) {
	if cfg.NotificationSink == config.SinkLog {
		return notifier.NewLogSink(cfg.Log), nil
	}

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Warn("Kafka unavailable, notifications will only be logged", "error", err)
		return notifier.NewLogSink(cfg.Log), nil
	}
	kafkaCfg.LogConfiguration(cfg.Log)

	producer, err := kafka.NewProducer(kafkaCfg, cfg.NotificationTopic, cfg.NotificationDLQTopic, cfg.Log)
	if err != nil {
		cfg.Log.Warn("Kafka unavailable, notifications will only be logged", "error", err)
		return notifier.NewLogSink(cfg.Log), nil
	}
	producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))

	cfg.Log.Info("Publishing booking notifications", "topic", cfg.NotificationTopic)
	return notifier.NewKafkaSink(producer), producer
}
