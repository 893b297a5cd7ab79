package main

import (
	"context"
	"time"

	mongoMigration "eventhub/internal/migrations/mongo"
	"eventhub/pkg/config"
)

const JobName = "mongo-migration"

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	cfg := config.Load(JobName)
	if cfg.StorageDriver != config.StorageMongo {
		cfg.Log.Info("Storage driver is not mongo, nothing to migrate", "storage_driver", cfg.StorageDriver)
		return
	}
	cfg.SetMongo()

	cfg.Log.Info("Starting Mongo migration job")
	db := cfg.Client.Mongo.Client.Database(cfg.MongoDatabaseName)
	err := mongoMigration.RunMigration(ctx, db, cfg.Log)
	cfg.GracefulShutdown()
	if err != nil {
		cfg.Log.Fatal("Migration failed", "error", err)
	}
	cfg.Log.Info("Migration completed successfully")
}
