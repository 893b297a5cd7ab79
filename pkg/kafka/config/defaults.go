package kafka_config

import "time"

const (
	DefaultBrokers = "localhost:9092"

	DefaultPublishAttempts     = 3
	DefaultPublishBatchTimeout = 10 * time.Millisecond
	DefaultPublishAcks         = AcksAll
	DefaultPublishCompression  = "snappy"

	// A fresh notifier group starts from the oldest retained event so mail
	// for bookings created before its first join is still sent.
	DefaultConsumeFrom             = "oldest"
	DefaultConsumeMaxWait          = 500 * time.Millisecond
	DefaultConsumeSessionTimeout   = 10 * time.Second
	DefaultConsumeRebalanceTimeout = 30 * time.Second

	// SMTP relays answer 4xx for seconds at a time; retries back off linearly.
	DefaultDeliveryRetries    = 4
	DefaultDeliveryRetryDelay = 2 * time.Second
)
