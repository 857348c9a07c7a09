package config

import (
	"fmt"
	"net/url"
	"time"

	pkgconfig "github.com/apexplus/storefront/pkg/config"
	"github.com/apexplus/storefront/pkg/database"
)

// Config holds all configuration for the storefront service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"HTTP_PORT" envDefault:"8080"`

	// PostgreSQL
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"storefront"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"storefront_secret"`
	PostgresDB   string `env:"POSTGRES_DB" envDefault:"storefront"`
	PostgresSSL  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`

	// Redis
	RedisHost     string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort     int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// CartTTLHours is how long an idle session cart survives in Redis.
	CartTTLHours int `env:"CART_TTL_HOURS" envDefault:"24"`

	// Kafka
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// CheckoutDelayMs simulates payment processing time before the
	// checkout confirmation is returned.
	CheckoutDelayMs int `env:"CHECKOUT_DELAY_MS" envDefault:"1500"`

	// AI assistant backend
	AssistantURL       string `env:"ASSISTANT_URL" envDefault:"http://localhost:8090"`
	AssistantTimeoutMs int    `env:"ASSISTANT_TIMEOUT_MS" envDefault:"10000"`

	// Circuit breaker settings for the assistant backend
	CBMaxRequests  uint32  `env:"CB_MAX_REQUESTS" envDefault:"1"`
	CBInterval     int     `env:"CB_INTERVAL_SECONDS" envDefault:"60"`
	CBTimeout      int     `env:"CB_TIMEOUT_SECONDS" envDefault:"30"`
	CBFailureRatio float64 `env:"CB_FAILURE_RATIO" envDefault:"0.5"`
	CBMinRequests  uint32  `env:"CB_MIN_REQUESTS" envDefault:"5"`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"" envSeparator:","`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.PostgresHost == "" {
		return fmt.Errorf("POSTGRES_HOST is required")
	}
	if c.PostgresUser == "" {
		return fmt.Errorf("POSTGRES_USER is required")
	}
	if len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required")
	}
	if c.CartTTLHours < 1 {
		return fmt.Errorf("CART_TTL_HOURS must be at least 1, got %d", c.CartTTLHours)
	}
	if c.CheckoutDelayMs < 0 {
		return fmt.Errorf("CHECKOUT_DELAY_MS must not be negative, got %d", c.CheckoutDelayMs)
	}
	if c.AssistantURL == "" {
		return fmt.Errorf("ASSISTANT_URL is required")
	}
	if _, err := url.ParseRequestURI(c.AssistantURL); err != nil {
		return fmt.Errorf("invalid ASSISTANT_URL %q: %w", c.AssistantURL, err)
	}
	return nil
}

// Postgres returns the connection settings for the catalog database.
func (c *Config) Postgres() database.PostgresConfig {
	pg := database.DefaultPostgresConfig()
	pg.Host = c.PostgresHost
	pg.Port = c.PostgresPort
	pg.User = c.PostgresUser
	pg.Password = c.PostgresPass
	pg.DBName = c.PostgresDB
	pg.SSLMode = c.PostgresSSL
	return pg
}

// Redis returns the connection settings for the cart store.
func (c *Config) Redis() database.RedisConfig {
	return database.RedisConfig{
		Host:     c.RedisHost,
		Port:     c.RedisPort,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
	}
}

// CartTTL returns the cart expiry as a duration.
func (c *Config) CartTTL() time.Duration {
	return time.Duration(c.CartTTLHours) * time.Hour
}

// CheckoutDelay returns the simulated processing delay as a duration.
func (c *Config) CheckoutDelay() time.Duration {
	return time.Duration(c.CheckoutDelayMs) * time.Millisecond
}

// AssistantTimeout returns the assistant request timeout as a duration.
func (c *Config) AssistantTimeout() time.Duration {
	return time.Duration(c.AssistantTimeoutMs) * time.Millisecond
}
