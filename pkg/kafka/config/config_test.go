package kafka_config

import (
	"strings"
	"testing"

	"github.com/segmentio/kafka-go"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(EnvBrokers, " broker-1:9092 , broker-2:9092")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if len(cfg.Brokers) != 2 || cfg.Brokers[0] != "broker-1:9092" || cfg.Brokers[1] != "broker-2:9092" {
		t.Errorf("unexpected brokers %v", cfg.Brokers)
	}
	if cfg.Producer.Acks != AcksAll {
		t.Errorf("Producer.Acks = %q, want %q", cfg.Producer.Acks, AcksAll)
	}
	if cfg.Consumer.StartOffset != kafka.FirstOffset {
		t.Errorf("Consumer.StartOffset = %d, want oldest", cfg.Consumer.StartOffset)
	}
	if cfg.Consumer.MaxRetries != DefaultDeliveryRetries || cfg.Consumer.RetryDelay != DefaultDeliveryRetryDelay {
		t.Errorf("delivery retries = %d every %s", cfg.Consumer.MaxRetries, cfg.Consumer.RetryDelay)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv(EnvConsumeFrom, "newest")
	t.Setenv(EnvDeliveryRetries, "0")
	t.Setenv(EnvPublishAcks, AcksLeader)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if cfg.Consumer.StartOffset != kafka.LastOffset {
		t.Errorf("Consumer.StartOffset = %d, want newest", cfg.Consumer.StartOffset)
	}
	if cfg.Consumer.MaxRetries != 0 {
		t.Errorf("Consumer.MaxRetries = %d, want 0", cfg.Consumer.MaxRetries)
	}
	if cfg.Producer.Acks != AcksLeader {
		t.Errorf("Producer.Acks = %q", cfg.Producer.Acks)
	}
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv(EnvPublishCompression, "brotli")
	t.Setenv(EnvPublishAcks, "7")
	t.Setenv(EnvDeliveryRetries, "-1")

	_, err := Load()
	if err == nil {
		t.Fatal("Load() expected an error")
	}
	for _, want := range []string{"compression", "acks", "delivery retries"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func TestLoad_UnknownStartOffset(t *testing.T) {
	t.Setenv(EnvConsumeFrom, "yesterday")

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), EnvConsumeFrom) {
		t.Errorf("Load() error = %v, want it to name %s", err, EnvConsumeFrom)
	}
}
