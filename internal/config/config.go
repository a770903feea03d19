package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/faycal55/respira/pkg/config"
	"github.com/faycal55/respira/pkg/database"
	"github.com/faycal55/respira/pkg/tracing"
)

const defaultJWTSecret = "change-this-to-a-secure-secret"

// Config holds all configuration for the API server.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	Version     string `env:"SERVICE_VERSION" envDefault:"dev"`

	// HTTP server
	HTTPPort int `env:"HTTP_PORT" envDefault:"8080"`

	// PostgreSQL
	PostgresHost string        `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int           `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string        `env:"POSTGRES_USER" envDefault:"respira"`
	PostgresPass string        `env:"POSTGRES_PASSWORD" envDefault:"respira"`
	PostgresDB   string        `env:"POSTGRES_DB" envDefault:"respira"`
	PostgresSSL  string        `env:"POSTGRES_SSL_MODE" envDefault:"disable"`
	SlowQuery    time.Duration `env:"POSTGRES_SLOW_QUERY" envDefault:"200ms"`

	// Redis holds idempotency keys of the support consumer.
	RedisURL string `env:"REDIS_URL"`

	// Kafka
	KafkaBrokers       []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`
	KafkaConsumerGroup string   `env:"KAFKA_CONSUMER_GROUP" envDefault:"respira-support"`

	// JWT
	JWTSecret        string        `env:"JWT_SECRET" envDefault:"change-this-to-a-secure-secret"`
	JWTAccessExpiry  string        `env:"JWT_ACCESS_TOKEN_EXPIRY" envDefault:"15m"`
	JWTRefreshExpiry string        `env:"JWT_REFRESH_TOKEN_EXPIRY" envDefault:"720h"`
	PasswordResetTTL time.Duration `env:"PASSWORD_RESET_TTL" envDefault:"1h"`

	// AI companion (OpenAI-compatible chat completions)
	AIBaseURL   string        `env:"AI_BASE_URL" envDefault:"https://api.openai.com/v1"`
	AIAPIKey    string        `env:"AI_API_KEY"`
	AITimeout   time.Duration `env:"AI_TIMEOUT" envDefault:"30s"`
	AIMaxTokens int           `env:"AI_MAX_TOKENS" envDefault:"600"`
	AIModels    []string      `env:"AI_MODELS" envDefault:"gpt-4o-mini,gpt-4o" envSeparator:","`

	// Speech (ElevenLabs-compatible TTS, Whisper-compatible STT)
	TTSBaseURL string `env:"TTS_BASE_URL" envDefault:"https://api.elevenlabs.io/v1"`
	TTSAPIKey  string `env:"TTS_API_KEY"`
	STTBaseURL string `env:"STT_BASE_URL" envDefault:"https://api.openai.com/v1"`
	STTAPIKey  string `env:"STT_API_KEY"`

	// Support mail
	SupportEmail string `env:"SUPPORT_EMAIL" envDefault:"service-client@respira-care.fr"`

	// Rate limiting of /functions, per user
	FunctionsRPS   float64 `env:"FUNCTIONS_RATE_LIMIT_RPS" envDefault:"1"`
	FunctionsBurst int     `env:"FUNCTIONS_RATE_LIMIT_BURST" envDefault:"5"`

	// Catalog responses
	CatalogMaxAge time.Duration `env:"CATALOG_MAX_AGE" envDefault:"1h"`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	// pprof is mounted only for these networks
	PprofAllowedCIDRs []string `env:"PPROF_ALLOWED_CIDRS" envDefault:"127.0.0.1/32,::1/128" envSeparator:","`

	// Tracing
	TracingEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	TracingEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	TracingSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load server config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if _, err := time.ParseDuration(c.JWTAccessExpiry); err != nil {
		return fmt.Errorf("invalid JWT_ACCESS_TOKEN_EXPIRY: %w", err)
	}
	if _, err := time.ParseDuration(c.JWTRefreshExpiry); err != nil {
		return fmt.Errorf("invalid JWT_REFRESH_TOKEN_EXPIRY: %w", err)
	}
	if c.FunctionsRPS <= 0 || c.FunctionsBurst < 1 {
		return fmt.Errorf("invalid functions rate limit: %v rps, burst %d", c.FunctionsRPS, c.FunctionsBurst)
	}

	// Outside development an explicit, strong JWT secret is required.
	if c.Environment != "development" {
		if c.JWTSecret == defaultJWTSecret {
			return fmt.Errorf("JWT_SECRET must be explicitly set via environment variable in %q mode", c.Environment)
		}
		if len(c.JWTSecret) < 32 {
			return fmt.Errorf("JWT_SECRET must be at least 32 characters long, got %d", len(c.JWTSecret))
		}
		if c.AIAPIKey == "" {
			return fmt.Errorf("AI_API_KEY is required in %q mode", c.Environment)
		}
	}
	return nil
}

// Postgres returns the pool configuration.
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

func (c *Config) Tracing() tracing.Config {
	return tracing.Config{
		Enabled:        c.TracingEnabled,
		ServiceName:    "respira-api",
		ServiceVersion: c.Version,
		Environment:    c.Environment,
		Endpoint:       c.TracingEndpoint,
		SampleRate:     c.TracingSampleRate,
	}
}
