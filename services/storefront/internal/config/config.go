package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/utafrali/EcommerceGo/pkg/config"
	"github.com/utafrali/EcommerceGo/pkg/validator"
)

// Active cart pointer backends.
const (
	ActiveCartStoreCookie = "cookie"
	ActiveCartStoreRedis  = "redis"
)

// Config holds all configuration for the storefront service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`

	// HTTP server
	HTTPPort           int      `env:"STOREFRONT_HTTP_PORT" envDefault:"8090"`
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"http://localhost:3000" envSeparator:","`

	// Commerce API
	CommerceAPIURL        string        `env:"COMMERCE_API_URL" envDefault:"http://localhost:8080/api/v1" validate:"required,http_url"`
	CommerceAPIToken      string        `env:"COMMERCE_API_TOKEN"`
	CommerceAPITimeout    time.Duration `env:"COMMERCE_API_TIMEOUT" envDefault:"15s"`
	CommerceAPIMaxRetries int           `env:"COMMERCE_API_MAX_RETRIES" envDefault:"0" validate:"gte=0,lte=5"`

	// Circuit breaker around the commerce API
	CBMaxRequests  uint32  `env:"CB_MAX_REQUESTS" envDefault:"1"`
	CBInterval     int     `env:"CB_INTERVAL_SECONDS" envDefault:"60"`
	CBTimeout      int     `env:"CB_TIMEOUT_SECONDS" envDefault:"30"`
	CBFailureRatio float64 `env:"CB_FAILURE_RATIO" envDefault:"0.5"`
	CBMinRequests  uint32  `env:"CB_MIN_REQUESTS" envDefault:"5"`

	// Session. SESSION_DURATION is in minutes and also bounds the active cart token.
	SessionDuration   time.Duration `env:"SESSION_DURATION" envDefault:"120"`
	SessionCookieName string        `env:"SESSION_COOKIE_NAME" envDefault:"storefront_session" validate:"required"`
	CookieSecure      bool          `env:"COOKIE_SECURE" envDefault:"false"`
	ActiveCartStore   string        `env:"ACTIVE_CART_STORE" envDefault:"cookie" validate:"oneof=cookie redis"`

	// Checkout submissions allowed per session per second; 0 disables the limit.
	CheckoutRPS   float64 `env:"CHECKOUT_RATE_LIMIT_RPS" envDefault:"1" validate:"gte=0"`
	CheckoutBurst int     `env:"CHECKOUT_RATE_LIMIT_BURST" envDefault:"5" validate:"gte=1"`

	// Region used when the request names none.
	DefaultRegion string `env:"DEFAULT_REGION" envDefault:"IT" validate:"alphanum,min=2,max=8"`

	// Redis
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`
	// RedisSlowThreshold logs commands slower than this; 0 disables.
	RedisSlowThreshold time.Duration `env:"REDIS_SLOW_THRESHOLD" envDefault:"50ms"`

	// Kafka
	KafkaBrokers  []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`
	EventsEnabled bool     `env:"EVENTS_ENABLED" envDefault:"false"`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`
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
	if err := validator.Validate(c); err != nil {
		return fmt.Errorf("invalid storefront config: %w", err)
	}
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.SessionDuration <= 0 {
		return fmt.Errorf("SESSION_DURATION must be positive, got %s", c.SessionDuration)
	}
	if c.CommerceAPITimeout <= 0 {
		return fmt.Errorf("COMMERCE_API_TIMEOUT must be positive, got %s", c.CommerceAPITimeout)
	}
	if c.EventsEnabled && len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required when EVENTS_ENABLED is set")
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1.0 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %f", c.OTELSampleRate)
	}
	return nil
}
