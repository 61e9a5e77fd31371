package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/yungbote/marketplace-backend/internal/data/db"
	"github.com/yungbote/marketplace-backend/internal/observability"
)

type Config struct {
	Environment      string `env:"APP_ENV"              envDefault:"development"`
	Version          string `env:"APP_VERSION"`
	LogMode          string `env:"LOG_MODE"             envDefault:"development"`
	LogRedaction     bool   `env:"LOG_REDACTION_ENABLED" envDefault:"true"`
	LogRedactionSalt string `env:"LOG_REDACTION_SALT"`
	Port             string `env:"PORT"                 envDefault:"8080"`

	DBDriver         string        `env:"DB_DRIVER"         envDefault:"postgres"`
	PostgresHost     string        `env:"POSTGRES_HOST"     envDefault:"localhost"`
	PostgresPort     string        `env:"POSTGRES_PORT"     envDefault:"5432"`
	PostgresUser     string        `env:"POSTGRES_USER"     envDefault:"postgres"`
	PostgresPassword string        `env:"POSTGRES_PASSWORD"`
	PostgresName     string        `env:"POSTGRES_NAME"     envDefault:"marketplace"`
	SQLitePath       string        `env:"SQLITE_PATH"       envDefault:"marketplace.db"`
	DBLockTimeout    time.Duration `env:"DB_LOCK_TIMEOUT"   envDefault:"5s"`

	JWTSecretKey string `env:"JWT_SECRET_KEY"`

	RedisAddr          string        `env:"REDIS_ADDR"`
	RedisChannel       string        `env:"REDIS_CHANNEL"        envDefault:"marketplace.events"`
	OutboxPollInterval time.Duration `env:"OUTBOX_POLL_INTERVAL" envDefault:"1s"`
	OutboxBatchSize    int           `env:"OUTBOX_BATCH_SIZE"    envDefault:"100"`
	OutboxRetention    time.Duration `env:"OUTBOX_RETENTION"     envDefault:"168h"`

	OtelEnabled     bool    `env:"OTEL_ENABLED"                envDefault:"false"`
	OtelEndpoint    string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OtelHeaders     string  `env:"OTEL_EXPORTER_OTLP_HEADERS"`
	OtelInsecure    bool    `env:"OTEL_EXPORTER_OTLP_INSECURE" envDefault:"false"`
	OtelServiceName string  `env:"OTEL_SERVICE_NAME"           envDefault:"marketplace-backend"`
	OtelSampleRatio float64 `env:"OTEL_TRACES_SAMPLER_ARG"     envDefault:"1"`

	MetricsScrapeInterval time.Duration `env:"METRICS_SCRAPE_INTERVAL" envDefault:"15s"`
	CORSAllowedOrigins    []string      `env:"CORS_ALLOWED_ORIGINS"    envSeparator:","`
}

// LoadConfig parses the environment and validates the result.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.DBDriver = strings.ToLower(strings.TrimSpace(cfg.DBDriver))
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.DBDriver {
	case db.DriverPostgres, db.DriverSQLite:
	default:
		return fmt.Errorf("DB_DRIVER must be %q or %q, got %q", db.DriverPostgres, db.DriverSQLite, c.DBDriver)
	}
	if c.OutboxBatchSize <= 0 {
		return fmt.Errorf("OUTBOX_BATCH_SIZE must be positive, got %d", c.OutboxBatchSize)
	}
	if c.DBLockTimeout < 0 {
		return fmt.Errorf("DB_LOCK_TIMEOUT must not be negative")
	}
	if isProduction(c.Environment) && strings.TrimSpace(c.JWTSecretKey) == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required in %s", c.Environment)
	}
	return nil
}

func (c Config) Addr() string {
	return ":" + strings.TrimPrefix(strings.TrimSpace(c.Port), ":")
}

func (c Config) Postgres() db.PostgresConfig {
	return db.PostgresConfig{
		Host:     c.PostgresHost,
		Port:     c.PostgresPort,
		User:     c.PostgresUser,
		Password: c.PostgresPassword,
		Name:     c.PostgresName,
	}
}

func (c Config) Otel() observability.OtelConfig {
	return observability.OtelConfig{
		Enabled:     c.OtelEnabled,
		ServiceName: c.OtelServiceName,
		Environment: c.Environment,
		Version:     c.Version,
		Endpoint:    c.OtelEndpoint,
		Headers:     observability.ParseHeaders(c.OtelHeaders),
		Insecure:    c.OtelInsecure,
		SampleRatio: c.OtelSampleRatio,
	}
}

func isProduction(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "prod", "production":
		return true
	}
	return false
}
