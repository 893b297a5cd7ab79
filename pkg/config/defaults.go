package config

import "time"

const (
	StorageMongo  = "mongo"
	StorageMemory = "memory"

	DefaultStorageDriver = StorageMongo

	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "eventhub"
	DefaultMongoConnTimeout  = 10 * time.Second
	DefaultMongoTransactions = false

	DefaultRedisDB       = 0
	DefaultVenueCacheTTL = 5 * time.Minute

	DefaultPort = "8080"

	DefaultRateLimitRequests = 60
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultPersistenceMaxRetries   = 3
	DefaultPersistenceRetryBackoff = 50 * time.Millisecond

	SinkKafka = "kafka"
	SinkLog   = "log"

	DefaultNotificationSink      = SinkKafka
	DefaultNotificationTopic     = "booking-notifications"
	DefaultNotificationDLQTopic  = "dlq-booking-notifications"
	DefaultNotificationGroupID   = "notifier-consumer-group"
	DefaultNotificationWorkers   = 4
	DefaultNotificationQueueSize = 256
	DefaultNotificationTimeout   = 3 * time.Second

	DefaultPhoneRegion = "IN"

	DefaultSMTPPort = "587"
	DefaultSMTPFrom = "no-reply@eventhub.local"

	DefaultPaginationLimit = 100
)

