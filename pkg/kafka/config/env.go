package kafka_config

const (
	EnvBrokers = "KAFKA_BROKERS"

	// booking events publisher
	EnvPublishAttempts     = "KAFKA_PUBLISH_ATTEMPTS"
	EnvPublishBatchTimeout = "KAFKA_PUBLISH_BATCH_TIMEOUT"
	EnvPublishAcks         = "KAFKA_PUBLISH_ACKS"
	EnvPublishCompression  = "KAFKA_PUBLISH_COMPRESSION"

	// notifier consumer group
	EnvConsumeFrom             = "KAFKA_CONSUME_FROM"
	EnvConsumeMaxWait          = "KAFKA_CONSUME_MAX_WAIT"
	EnvConsumeSessionTimeout   = "KAFKA_CONSUME_SESSION_TIMEOUT"
	EnvConsumeRebalanceTimeout = "KAFKA_CONSUME_REBALANCE_TIMEOUT"
	EnvDeliveryRetries         = "KAFKA_DELIVERY_RETRIES"
	EnvDeliveryRetryDelay      = "KAFKA_DELIVERY_RETRY_DELAY"
)
