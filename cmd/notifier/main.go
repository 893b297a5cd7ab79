package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"eventhub/internal/notifications"
	venuerepo "eventhub/internal/venues/repository"
	venues "eventhub/internal/venues/service"
	"eventhub/pkg/config"
	"eventhub/pkg/kafka"
	kafka_config "eventhub/pkg/kafka/config"
	kafka_middleware "eventhub/pkg/kafka/middleware"
	"eventhub/pkg/model"
)

const ServiceName = "notifier"

func main() {
	cfg := config.Load(ServiceName)
	defer cfg.GracefulShutdown()

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log)

	handler := notifications.NewHandler(initDirectory(cfg), initMailer(cfg), cfg.Log)
	consumer, err := kafka.NewConsumer(
		kafkaCfg,
		cfg.NotificationTopic,
		cfg.NotificationGroupID,
		cfg.NotificationDLQTopic,
		handler.Handle,
		cfg.Log,
	)
	if err != nil {
		cfg.Log.Fatal("Failed to create kafka consumer", "error", err)
	}
	consumer.Use(kafka_middleware.RecoveryConsumerMiddleware(cfg.Log))
	consumer.Use(kafka_middleware.LoggingConsumerMiddleware(cfg.Log))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg.Log.Info("Notifier started",
		"topic", cfg.NotificationTopic,
		"group_id", cfg.NotificationGroupID,
		"dlq_topic", cfg.NotificationDLQTopic,
	)
	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		cfg.Log.Error("Kafka consumer stopped", "error", err)
	}

	if err := consumer.Close(); err != nil {
		cfg.Log.Error("Failed to close kafka consumer", "error", err)
	}
	cfg.Log.Info("Notifier stopped")
}

func initDirectory(cfg *config.Config) venues.Directory {
	var repo venuerepo.VenueRepository
	if cfg.StorageDriver == config.StorageMemory {
		seed, err := loadSeed(cfg)
		if err != nil {
			cfg.Log.Fatal("Failed to load venue seed", "path", cfg.VenueSeedFile, "error", err)
		}
		repo = venuerepo.NewMemoryVenueRepository(seed...)
	} else {
		cfg.SetMongo()
		repo = venuerepo.NewMongoVenueRepository(cfg)
	}

	directory := venues.NewDirectory(repo)
	cfg.SetRedis()
	if cfg.Client.Redis != nil {
		directory = venues.NewCachedDirectory(directory, cfg.Client.Redis, cfg.VenueCacheTTL, cfg.Log)
	}
	return directory
}

func loadSeed(cfg *config.Config) ([]model.Venue, error) {
	if cfg.VenueSeedFile == "" {
		return nil, nil
	}
	return venuerepo.LoadVenueSeed(cfg.VenueSeedFile)
}

func initMailer(cfg *config.Config) notifications.Mailer {
	if cfg.SMTPHost == "" {
		cfg.Log.Warn("SMTP host not configured, mail will only be logged")
		return notifications.NewLogMailer(cfg.Log)
	}
	return notifications.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom)
}
