package kafka_config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"eventhub/pkg/logger"

	"github.com/segmentio/kafka-go"
)

const (
	AcksNone   = "none"
	AcksLeader = "leader"
	AcksAll    = "all"
)

// Config is shared by the booking service, which publishes booking events,
// and the notifier, which consumes them and mails the recipients.
type Config struct {
	Brokers  []string
	Producer ProducerConfig
	Consumer ConsumerConfig
}

type ProducerConfig struct {
	MaxAttempts  int
	BatchTimeout time.Duration
	Acks         string // none, leader or all
	Compression  string // none, gzip, snappy, lz4 or zstd
}

// ConsumerConfig covers the notifier group. Offsets are committed one
// message at a time after the handler or the dead-letter write succeeds.
type ConsumerConfig struct {
	StartOffset      int64 // kafka.FirstOffset or kafka.LastOffset
	MaxWait          time.Duration
	SessionTimeout   time.Duration
	RebalanceTimeout time.Duration
	MaxRetries       int
	RetryDelay       time.Duration
}

func Load() (*Config, error) {
	var brokers []string
	for _, b := range strings.Split(envStr(EnvBrokers, DefaultBrokers), ",") {
		brokers = append(brokers, strings.TrimSpace(b))
	}

	startOffset, err := parseStartOffset(envStr(EnvConsumeFrom, DefaultConsumeFrom))
	if err != nil {
		return nil, fmt.Errorf("kafka configuration: %w", err)
	}

	cfg := &Config{
		Brokers: brokers,
		Producer: ProducerConfig{
			MaxAttempts:  envInt(EnvPublishAttempts, DefaultPublishAttempts),
			BatchTimeout: envDuration(EnvPublishBatchTimeout, DefaultPublishBatchTimeout),
			Acks:         envStr(EnvPublishAcks, DefaultPublishAcks),
			Compression:  envStr(EnvPublishCompression, DefaultPublishCompression),
		},
		Consumer: ConsumerConfig{
			StartOffset:      startOffset,
			MaxWait:          envDuration(EnvConsumeMaxWait, DefaultConsumeMaxWait),
			SessionTimeout:   envDuration(EnvConsumeSessionTimeout, DefaultConsumeSessionTimeout),
			RebalanceTimeout: envDuration(EnvConsumeRebalanceTimeout, DefaultConsumeRebalanceTimeout),
			MaxRetries:       envInt(EnvDeliveryRetries, DefaultDeliveryRetries),
			RetryDelay:       envDuration(EnvDeliveryRetryDelay, DefaultDeliveryRetryDelay),
		},
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("kafka configuration: %w", err)
	}
	return cfg, nil
}

func parseStartOffset(v string) (int64, error) {
	switch v {
	case "oldest":
		return kafka.FirstOffset, nil
	case "newest":
		return kafka.LastOffset, nil
	}
	return 0, fmt.Errorf("%s must be oldest or newest, got %q", EnvConsumeFrom, v)
}

func (cfg *Config) Validate() error {
	var errs []error

	if len(cfg.Brokers) == 0 {
		errs = append(errs, errors.New("at least one broker is required"))
	}
	for i, b := range cfg.Brokers {
		if b == "" {
			errs = append(errs, fmt.Errorf("broker %d is empty", i))
		}
	}

	p := cfg.Producer
	if p.MaxAttempts <= 0 {
		errs = append(errs, fmt.Errorf("publish attempts must be positive, got %d", p.MaxAttempts))
	}
	if p.BatchTimeout <= 0 {
		errs = append(errs, fmt.Errorf("publish batch timeout must be positive, got %s", p.BatchTimeout))
	}
	switch p.Acks {
	case AcksNone, AcksLeader, AcksAll:
	default:
		errs = append(errs, fmt.Errorf("publish acks must be none, leader or all, got %q", p.Acks))
	}
	switch p.Compression {
	case "none", "gzip", "snappy", "lz4", "zstd":
	default:
		errs = append(errs, fmt.Errorf("publish compression %q is not supported", p.Compression))
	}

	c := cfg.Consumer
	if c.MaxWait <= 0 {
		errs = append(errs, fmt.Errorf("consume max wait must be positive, got %s", c.MaxWait))
	}
	if c.SessionTimeout <= 0 || c.RebalanceTimeout <= 0 {
		errs = append(errs, fmt.Errorf("consume session and rebalance timeouts must be positive, got %s and %s",
			c.SessionTimeout, c.RebalanceTimeout))
	}
	if c.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("delivery retries must not be negative, got %d", c.MaxRetries))
	}
	if c.RetryDelay < 0 {
		errs = append(errs, fmt.Errorf("delivery retry delay must not be negative, got %s", c.RetryDelay))
	}

	return errors.Join(errs...)
}

func (cfg *Config) LogConfiguration(log *logger.Logger) {
	log.Info("Kafka configuration loaded",
		"brokers", cfg.Brokers,
		"publish_attempts", cfg.Producer.MaxAttempts,
		"publish_acks", cfg.Producer.Acks,
		"publish_compression", cfg.Producer.Compression,
		"consume_start_offset", cfg.Consumer.StartOffset,
		"delivery_retries", cfg.Consumer.MaxRetries,
		"delivery_retry_delay", cfg.Consumer.RetryDelay,
	)
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return v
	}
	return def
}
