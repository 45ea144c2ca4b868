package config

import (
	"fmt"
	"os"
	"time"
)

// Config holds all application configuration
type Config struct {
	AWS        AWSConfig
	Database   DatabaseConfig
	Queue      QueueConfig
	Rates      RatesConfig
	Processors ProcessorsConfig
	Webhook    WebhookConfig
	Logging    LoggingConfig
}

// AWSConfig holds AWS-specific configuration
type AWSConfig struct {
	Region string
}

// DatabaseConfig holds DynamoDB configuration
type DatabaseConfig struct {
	TransferTableName string
	Endpoint          string // For local testing
}

// QueueConfig holds SQS configuration
type QueueConfig struct {
	PaymentEventsQueueURL string
	Endpoint              string // For local testing
}

// RatesConfig holds rate-source and quote-validity configuration
type RatesConfig struct {
	SourceURL       string        // Primary exchange-rate provider endpoint
	FetchTimeout    time.Duration // Bound on a single provider call
	PrimaryTTL      time.Duration // Validity of quotes from the primary source
	FallbackTTL     time.Duration // Shorter validity for static-table quotes
	DefaultLockTime time.Duration // Lock duration when the caller gives none
}

// ProcessorsConfig holds per-rail credentials. A rail with no key configured
// fails its liveness check and is skipped during selection.
type ProcessorsConfig struct {
	CardnetAPIKey   string
	SwiftwireAPIKey string
	PayvaultAPIKey  string
	AndespayAPIKey  string
}

// WebhookConfig holds webhook delivery configuration
type WebhookConfig struct {
	DeliveryURL string // Empty disables outbound delivery (events are logged only)
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		AWS: AWSConfig{
			Region: getEnv("AWS_REGION", "us-east-1"),
		},
		Database: DatabaseConfig{
			TransferTableName: getEnv("TRANSFER_TABLE", "transfers"),
			Endpoint:          getEnv("DYNAMODB_ENDPOINT", ""), // Empty for AWS, set for local
		},
		Queue: QueueConfig{
			PaymentEventsQueueURL: getEnv("PAYMENT_EVENTS_QUEUE_URL", ""),
			Endpoint:              getEnv("SQS_ENDPOINT", ""),
		},
		Rates: RatesConfig{
			SourceURL:       getEnv("RATE_SOURCE_URL", "https://api.exchangerate.host/latest"),
			FetchTimeout:    getDurationEnv("RATE_FETCH_TIMEOUT", 800*time.Millisecond),
			PrimaryTTL:      getDurationEnv("QUOTE_TTL", 10*time.Minute),
			FallbackTTL:     getDurationEnv("FALLBACK_QUOTE_TTL", 5*time.Minute),
			DefaultLockTime: getDurationEnv("DEFAULT_LOCK_DURATION", 10*time.Minute),
		},
		Processors: ProcessorsConfig{
			CardnetAPIKey:   getEnv("CARDNET_API_KEY", ""),
			SwiftwireAPIKey: getEnv("SWIFTWIRE_API_KEY", ""),
			PayvaultAPIKey:  getEnv("PAYVAULT_API_KEY", ""),
			AndespayAPIKey:  getEnv("ANDESPAY_API_KEY", ""),
		},
		Webhook: WebhookConfig{
			DeliveryURL: getEnv("WEBHOOK_DELIVERY_URL", ""),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "INFO"),
		},
	}

	// Validate required fields
	if cfg.Database.TransferTableName == "" {
		return nil, fmt.Errorf("TRANSFER_TABLE is required")
	}

	if cfg.Rates.FallbackTTL >= cfg.Rates.PrimaryTTL {
		return nil, fmt.Errorf("FALLBACK_QUOTE_TTL must be shorter than QUOTE_TTL")
	}

	return cfg, nil
}

// getEnv gets an environment variable with a default fallback
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDurationEnv gets a duration environment variable with a default fallback.
// Unparseable values fall back to the default rather than failing startup.
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}
