package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Load loads the configuration from environment variables and .env file.
// A missing .env file is not an error; the environment alone is enough.
func Load[T any](cfg T) error {
	_ = godotenv.Load()

	if err := env.Parse(cfg); err != nil {
		return err
	}

	return nil
}

// Config holds the configuration for the ingestor daemon.
type Config struct {
	App       AppConfig       `envPrefix:"APP_"`
	Listener  ListenerConfig  `envPrefix:"LISTENER_"`
	Kafka     KafkaConfig     `envPrefix:"KAFKA_"`
	Validator ValidatorConfig `envPrefix:"VALIDATOR_"`
}

// AppConfig represents the application configuration.
type AppConfig struct {
	Name        string `env:"NAME" envDefault:"trade-pulse-tracker"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
}

// ListenerConfig holds the configuration for the TCP connection manager.
type ListenerConfig struct {
	Host string `env:"HOST" envDefault:"0.0.0.0"`
	Port int    `env:"PORT" envDefault:"9000"`

	// MaxConnections is a soft limit; connections accepted beyond it are
	// closed immediately.
	MaxConnections int `env:"MAX_CONNECTIONS" envDefault:"100"`

	// IdleTimeout closes a connection that produced no data for the window.
	IdleTimeout time.Duration `env:"IDLE_TIMEOUT" envDefault:"5m"`

	// RestartDelay is the pause before re-binding after a post-bind
	// listener error.
	RestartDelay time.Duration `env:"RESTART_DELAY" envDefault:"5s"`

	// ReadBufferSize is the per-connection read chunk size in bytes.
	ReadBufferSize int `env:"READ_BUFFER_SIZE" envDefault:"4096"`
}

// KafkaConfig holds the configuration for the publish pipeline.
type KafkaConfig struct {
	Brokers []string `env:"BROKERS" envSeparator:"," envDefault:"localhost:9092"`
	Topic   string   `env:"TOPIC" envDefault:"price-ticks"`

	// RequiredAcks maps to the broker acknowledgment level:
	// 0 none, 1 leader, -1 all in-sync replicas.
	RequiredAcks int `env:"REQUIRED_ACKS" envDefault:"1"`

	// MaxRetries bounds per-record redelivery attempts after the first one.
	MaxRetries int `env:"MAX_RETRIES" envDefault:"5"`

	// RetryBackoff is the initial delay between attempts; it doubles per
	// attempt up to MaxRetryBackoff.
	RetryBackoff    time.Duration `env:"RETRY_BACKOFF" envDefault:"250ms"`
	MaxRetryBackoff time.Duration `env:"MAX_RETRY_BACKOFF" envDefault:"8s"`

	// PublishTimeout bounds a single delivery attempt.
	PublishTimeout time.Duration `env:"PUBLISH_TIMEOUT" envDefault:"5s"`

	// ConnectTimeout bounds the startup connectivity probe.
	ConnectTimeout time.Duration `env:"CONNECT_TIMEOUT" envDefault:"10s"`

	// ShutdownGrace bounds the wait for in-flight deliveries on shutdown.
	ShutdownGrace time.Duration `env:"SHUTDOWN_GRACE" envDefault:"10s"`
}

// ValidatorConfig holds the configuration for the validation engine.
type ValidatorConfig struct {
	// Strict turns price-deviation warnings into rejections.
	Strict bool `env:"STRICT" envDefault:"false"`

	// MaxPriceDeviation is the relative deviation from the last accepted
	// price that triggers the anomaly check, e.g. 0.1 for 10%.
	MaxPriceDeviation float64 `env:"MAX_PRICE_DEVIATION" envDefault:"0.1"`

	// MaxTimestampAge rejects records older than the window.
	MaxTimestampAge time.Duration `env:"MAX_TIMESTAMP_AGE" envDefault:"300s"`

	// MaxClockSkew tolerates event timestamps this far in the future.
	MaxClockSkew time.Duration `env:"MAX_CLOCK_SKEW" envDefault:"60s"`

	// PriceCeiling and VolumeCeiling are sanity bounds for obviously
	// corrupt records.
	PriceCeiling  float64 `env:"PRICE_CEILING" envDefault:"1000000"`
	VolumeCeiling float64 `env:"VOLUME_CEILING" envDefault:"1000000000000"`
}
