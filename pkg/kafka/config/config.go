package kafka_config

import (
	"fmt"
	"strings"
	"time"

	"equiprent/pkg/logger"

	"github.com/spf13/viper"
)

type Config struct {
	Brokers []string

	ProducerMaxAttempts  int
	ProducerBatchTimeout time.Duration
	ProducerRequireAcks  int    // -1 = all, 0 = none, 1 = leader only
	ProducerCompression  string // "none", "gzip", "snappy", "lz4", "zstd"
	ProducerAsync        bool

	ConsumerStartOffset       int64 // -1 = newest, -2 = oldest
	ConsumerMinBytes          int
	ConsumerMaxBytes          int
	ConsumerMaxWait           time.Duration
	ConsumerCommitInterval    time.Duration
	ConsumerHeartbeatInterval time.Duration
	ConsumerSessionTimeout    time.Duration
	ConsumerRebalanceTimeout  time.Duration
	ConsumerMaxRetries        int
	ConsumerRetryBackoff      time.Duration
}

// Load reads the Kafka settings from the environment.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	SetDefaults(v)

	cfg := FromViper(v)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault(EnvKafkaBrokers, DefaultKafkaBrokers)
	v.SetDefault(EnvKafkaProducerMaxAttempts, DefaultProducerMaxAttempts)
	v.SetDefault(EnvKafkaProducerBatchTimeout, DefaultProducerBatchTimeout)
	v.SetDefault(EnvKafkaProducerRequireAcks, DefaultProducerRequireAcks)
	v.SetDefault(EnvKafkaProducerCompression, DefaultProducerCompression)
	v.SetDefault(EnvKafkaProducerAsync, DefaultProducerAsync)
	v.SetDefault(EnvKafkaConsumerStartOffset, DefaultConsumerStartOffset)
	v.SetDefault(EnvKafkaConsumerMinBytes, DefaultConsumerMinBytes)
	v.SetDefault(EnvKafkaConsumerMaxBytes, DefaultConsumerMaxBytes)
	v.SetDefault(EnvKafkaConsumerMaxWait, DefaultConsumerMaxWait)
	v.SetDefault(EnvKafkaConsumerCommitInterval, DefaultConsumerCommitInterval)
	v.SetDefault(EnvKafkaConsumerHeartbeatInterval, DefaultConsumerHeartbeatInterval)
	v.SetDefault(EnvKafkaConsumerSessionTimeout, DefaultConsumerSessionTimeout)
	v.SetDefault(EnvKafkaConsumerRebalanceTimeout, DefaultConsumerRebalanceTimeout)
	v.SetDefault(EnvKafkaConsumerMaxRetries, DefaultConsumerMaxRetries)
	v.SetDefault(EnvKafkaConsumerRetryBackoff, DefaultConsumerRetryBackoff)
}

func FromViper(v *viper.Viper) *Config {
	var brokers []string
	for _, broker := range strings.Split(v.GetString(EnvKafkaBrokers), ",") {
		if broker = strings.TrimSpace(broker); broker != "" {
			brokers = append(brokers, broker)
		}
	}

	return &Config{
		Brokers: brokers,

		ProducerMaxAttempts:  v.GetInt(EnvKafkaProducerMaxAttempts),
		ProducerBatchTimeout: v.GetDuration(EnvKafkaProducerBatchTimeout),
		ProducerRequireAcks:  v.GetInt(EnvKafkaProducerRequireAcks),
		ProducerCompression:  v.GetString(EnvKafkaProducerCompression),
		ProducerAsync:        v.GetBool(EnvKafkaProducerAsync),

		ConsumerStartOffset:       v.GetInt64(EnvKafkaConsumerStartOffset),
		ConsumerMinBytes:          v.GetInt(EnvKafkaConsumerMinBytes),
		ConsumerMaxBytes:          v.GetInt(EnvKafkaConsumerMaxBytes),
		ConsumerMaxWait:           v.GetDuration(EnvKafkaConsumerMaxWait),
		ConsumerCommitInterval:    v.GetDuration(EnvKafkaConsumerCommitInterval),
		ConsumerHeartbeatInterval: v.GetDuration(EnvKafkaConsumerHeartbeatInterval),
		ConsumerSessionTimeout:    v.GetDuration(EnvKafkaConsumerSessionTimeout),
		ConsumerRebalanceTimeout:  v.GetDuration(EnvKafkaConsumerRebalanceTimeout),
		ConsumerMaxRetries:        v.GetInt(EnvKafkaConsumerMaxRetries),
		ConsumerRetryBackoff:      v.GetDuration(EnvKafkaConsumerRetryBackoff),
	}
}

func (cfg *Config) Validate() error {
	var errors []string

	if len(cfg.Brokers) == 0 {
		errors = append(errors, "At least one Kafka broker is required")
	}

	if cfg.ProducerMaxAttempts <= 0 {
		errors = append(errors, fmt.Sprintf("ProducerMaxAttempts must be positive, got: %d", cfg.ProducerMaxAttempts))
	}

	if cfg.ProducerBatchTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ProducerBatchTimeout must be positive, got: %s", cfg.ProducerBatchTimeout))
	}

	validCompressions := map[string]bool{"none": true, "gzip": true, "snappy": true, "lz4": true, "zstd": true}
	if !validCompressions[cfg.ProducerCompression] {
		errors = append(errors, fmt.Sprintf("ProducerCompression must be one of [none, gzip, snappy, lz4, zstd], got: %s", cfg.ProducerCompression))
	}

	if cfg.ProducerRequireAcks < -1 || cfg.ProducerRequireAcks > 1 {
		errors = append(errors, fmt.Sprintf("ProducerRequireAcks must be -1, 0, or 1, got: %d", cfg.ProducerRequireAcks))
	}

	if cfg.ConsumerStartOffset < -2 {
		errors = append(errors, fmt.Sprintf("ConsumerStartOffset must be -1 (newest), -2 (oldest), or >= 0, got: %d", cfg.ConsumerStartOffset))
	}

	if cfg.ConsumerMinBytes <= 0 || cfg.ConsumerMaxBytes < cfg.ConsumerMinBytes {
		errors = append(errors, fmt.Sprintf("Consumer byte limits must satisfy 0 < min <= max, got: %d-%d", cfg.ConsumerMinBytes, cfg.ConsumerMaxBytes))
	}

	positive := []struct {
		name  string
		value time.Duration
	}{
		{"ConsumerMaxWait", cfg.ConsumerMaxWait},
		{"ConsumerCommitInterval", cfg.ConsumerCommitInterval},
		{"ConsumerHeartbeatInterval", cfg.ConsumerHeartbeatInterval},
		{"ConsumerSessionTimeout", cfg.ConsumerSessionTimeout},
		{"ConsumerRebalanceTimeout", cfg.ConsumerRebalanceTimeout},
	}
	for _, p := range positive {
		if p.value <= 0 {
			errors = append(errors, fmt.Sprintf("%s must be positive, got: %s", p.name, p.value))
		}
	}

	if cfg.ConsumerMaxRetries < 0 {
		errors = append(errors, fmt.Sprintf("ConsumerMaxRetries cannot be negative, got: %d", cfg.ConsumerMaxRetries))
	}
	if cfg.ConsumerRetryBackoff < 0 {
		errors = append(errors, fmt.Sprintf("ConsumerRetryBackoff cannot be negative, got: %s", cfg.ConsumerRetryBackoff))
	}

	if len(errors) > 0 {
		errMsg := "Kafka configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration(log *logger.Logger) {
	log.Info("Kafka configuration loaded successfully",
		"brokers", cfg.Brokers,
		"producer_max_attempts", cfg.ProducerMaxAttempts,
		"producer_require_acks", cfg.ProducerRequireAcks,
		"producer_compression", cfg.ProducerCompression,
		"producer_async", cfg.ProducerAsync,
		"consumer_start_offset", cfg.ConsumerStartOffset,
		"consumer_max_retries", cfg.ConsumerMaxRetries,
		"consumer_retry_backoff", cfg.ConsumerRetryBackoff,
	)
}
