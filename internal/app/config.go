package app

import (
	"os"
	"strconv"
	"time"
)

// StorageDriver выбирает реализацию хранилища.
type StorageDriver string

const (
	StorageDriverMemory   StorageDriver = "memory"
	StorageDriverPostgres StorageDriver = "postgres"
)

// Config описывает настройки запуска приложения.
type Config struct {
	MetricsAddr string

	StorageDriver       StorageDriver
	PostgresDSN         string
	PostgresAutoMigrate bool

	// KafkaBrokers содержит список брокеров через запятую. Пустая строка
	// отключает публикацию событий, outbox продолжает накапливать записи.
	KafkaBrokers string

	CheckoutSuccessURL string
	CheckoutCancelURL  string

	OutboxPollInterval time.Duration
	OutboxBatchSize    int
	OutboxMaxAttempts  int
	OutboxRetryDelay   time.Duration
}

// DefaultConfig возвращает базовую конфигурацию для локального запуска.
func DefaultConfig() Config {
	return Config{
		MetricsAddr:         ":9090",
		StorageDriver:       StorageDriverMemory,
		PostgresAutoMigrate: true,
		CheckoutSuccessURL:  "http://localhost:3000/orders/{order_id}/success",
		CheckoutCancelURL:   "http://localhost:3000/orders/{order_id}/cancel",
		OutboxPollInterval:  time.Second,
		OutboxBatchSize:     100,
		OutboxMaxAttempts:   3,
		OutboxRetryDelay:    50 * time.Millisecond,
	}
}

// ConfigFromEnv строит конфигурацию из переменных окружения поверх значений
// по умолчанию. Непустой STOREFRONT_POSTGRES_DSN переключает драйвер на
// postgres, если драйвер не задан явно.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	if v := os.Getenv("STOREFRONT_METRICS_ADDR"); v != "" {
		cfg.MetricsAddr = v
	}
	if v := os.Getenv("STOREFRONT_POSTGRES_DSN"); v != "" {
		cfg.PostgresDSN = v
		cfg.StorageDriver = StorageDriverPostgres
	}
	if v := os.Getenv("STOREFRONT_STORAGE_DRIVER"); v != "" {
		cfg.StorageDriver = StorageDriver(v)
	}
	if v := os.Getenv("STOREFRONT_POSTGRES_AUTO_MIGRATE"); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			cfg.PostgresAutoMigrate = parsed
		}
	}
	if v := os.Getenv("STOREFRONT_KAFKA_BROKERS"); v != "" {
		cfg.KafkaBrokers = v
	}
	if v := os.Getenv("STOREFRONT_SUCCESS_URL"); v != "" {
		cfg.CheckoutSuccessURL = v
	}
	if v := os.Getenv("STOREFRONT_CANCEL_URL"); v != "" {
		cfg.CheckoutCancelURL = v
	}
	if v := os.Getenv("STOREFRONT_OUTBOX_POLL_INTERVAL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil && parsed > 0 {
			cfg.OutboxPollInterval = parsed
		}
	}
	if v := os.Getenv("STOREFRONT_OUTBOX_BATCH_SIZE"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			cfg.OutboxBatchSize = parsed
		}
	}
	if v := os.Getenv("STOREFRONT_OUTBOX_MAX_ATTEMPTS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			cfg.OutboxMaxAttempts = parsed
		}
	}
	if v := os.Getenv("STOREFRONT_OUTBOX_RETRY_DELAY"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil && parsed > 0 {
			cfg.OutboxRetryDelay = parsed
		}
	}

	return cfg
}
