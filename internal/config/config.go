package config

import (
	"fmt"

	pkgconfig "github.com/utafrali/reputation-service/pkg/config"
)

// Config holds all configuration for the reputation service and its push
// worker.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"REPUTATION_HTTP_PORT" envDefault:"8010"`

	// PostgreSQL
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"reputation"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"reputation_secret"`
	PostgresDB   string `env:"REPUTATION_DB_NAME" envDefault:"reputation_db"`
	PostgresSSL  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`

	// Database pool
	DBMaxConns            int32 `env:"DB_MAX_CONNS" envDefault:"25"`
	DBMinConns            int32 `env:"DB_MIN_CONNS" envDefault:"5"`
	DBMaxConnLifetimeMins int   `env:"DB_MAX_CONN_LIFETIME_MINUTES" envDefault:"60"`
	DBMaxConnIdleTimeMins int   `env:"DB_MAX_CONN_IDLE_TIME_MINUTES" envDefault:"30"`

	// Kafka
	KafkaBrokers  []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`
	ConsumerGroup string   `env:"PUSH_CONSUMER_GROUP" envDefault:"reputation-worker"`

	// Redis (worker idempotency store; empty host falls back to in-memory)
	RedisHost     string `env:"REDIS_HOST" envDefault:""`
	RedisPort     int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// Push subscribers. Empty URLs disable push entirely.
	PushURLs          []string `env:"PUSH_URLS" envSeparator:","`
	PushCredentialRef string   `env:"PUSH_CREDENTIAL_REF" envDefault:"default"`

	// Signing identity used for outbound pushes and accepted on inbound
	// writes.
	SigningAddress string `env:"SIGNING_ADDRESS" envDefault:""`
	SigningKey     string `env:"SIGNING_KEY" envDefault:""`

	// Inbound signature timestamp skew window, seconds.
	SignatureSkewSecs int `env:"SIGNATURE_SKEW_SECONDS" envDefault:"120"`

	// Per-IP rate limiting. Zero disables it.
	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"20"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"40"`

	// GeoIP enrichment of submissions.
	LocationEnabled bool `env:"LOCATION_ENABLED" envDefault:"false"`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`

	// Pprof debug endpoints (IP allowlist in CIDR notation)
	PprofAllowedCIDRs []string `env:"PPROF_ALLOWED_CIDRS" envDefault:"10.0.0.0/8,127.0.0.0/8,::1/128" envSeparator:","`

	// Slow query logging
	SlowQueryThresholdMs int `env:"LOG_SLOW_QUERY_MS" envDefault:"500"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load reputation config: %w", err)
	}
	if cfg.HTTPPort < 1 || cfg.HTTPPort > 65535 {
		return nil, fmt.Errorf("invalid HTTP port: %d", cfg.HTTPPort)
	}
	if cfg.PostgresHost == "" {
		return nil, fmt.Errorf("POSTGRES_HOST is required")
	}
	if len(cfg.KafkaBrokers) == 0 {
		return nil, fmt.Errorf("KAFKA_BROKERS is required")
	}
	if cfg.OTELSampleRate < 0 || cfg.OTELSampleRate > 1.0 {
		return nil, fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %f", cfg.OTELSampleRate)
	}
	if len(cfg.PushURLs) > 0 && (cfg.SigningAddress == "" || cfg.SigningKey == "") {
		return nil, fmt.Errorf("PUSH_URLS requires SIGNING_ADDRESS and SIGNING_KEY")
	}
	return cfg, nil
}

// PushEnabled reports whether push configuration is complete: at least one
// subscriber URL plus a signing credential.
func (c *Config) PushEnabled() bool {
	return len(c.PushURLs) > 0 && c.SigningAddress != "" && c.SigningKey != ""
}

// PostgresDSN returns the PostgreSQL connection string.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.PostgresUser, c.PostgresPass, c.PostgresHost, c.PostgresPort, c.PostgresDB, c.PostgresSSL,
	)
}
