package config

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort     string `mapstructure:"APP_PORT"`
	Env         string `mapstructure:"ENV"`
	LogLevel    string `mapstructure:"LOG_LEVEL"`
	ServiceName string `mapstructure:"SERVICE_NAME"`

	// Storage.
	DatabaseURL         string        `mapstructure:"DATABASE_URL"`
	DatabaseName        string        `mapstructure:"DATABASE_NAME"`
	PostgresURL         string        `mapstructure:"POSTGRES_URL"`
	CatalogBackend      string        `mapstructure:"CATALOG_BACKEND"`
	LedgerBackend       string        `mapstructure:"LEDGER_BACKEND"`
	StorageTimeout      time.Duration `mapstructure:"STORAGE_TIMEOUT"`
	StorageRetryBackoff time.Duration `mapstructure:"STORAGE_RETRY_BACKOFF"`

	// Redis configuration.
	RedisAddr           string        `mapstructure:"REDIS_ADDR"`
	RedisPassword       string        `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB        int           `mapstructure:"REDIS_CACHE_DB"`
	CatalogCacheEnabled bool          `mapstructure:"CATALOG_CACHE_ENABLED"`
	CatalogCacheTTL     time.Duration `mapstructure:"CATALOG_CACHE_TTL"`

	// Session tokens.
	JWTSecret   string        `mapstructure:"JWT_SECRET"`
	JWTJWKSURL  string        `mapstructure:"JWT_JWKS_URL"`
	JWTIssuer   string        `mapstructure:"JWT_ISSUER"`
	JWTAudience string        `mapstructure:"JWT_AUDIENCE"`
	JWTLeeway   time.Duration `mapstructure:"JWT_LEEWAY"`

	// Availability.
	SlotStrideMinutes int `mapstructure:"SLOT_STRIDE_MINUTES"`
	MaxRangeDays      int `mapstructure:"MAX_RANGE_DAYS"`

	// HTTP.
	MaxRequestsPerMin    int           `mapstructure:"MAX_REQUESTS_PER_MIN"`
	RateLimitBurst       int           `mapstructure:"RATE_LIMIT_BURST"`
	CORSAllowedOrigins   []string      `mapstructure:"CORS_ALLOWED_ORIGINS"`
	SlowRequestThreshold time.Duration `mapstructure:"SLOW_REQUEST_THRESHOLD"`

	HealthCheckSchedule string `mapstructure:"HEALTH_CHECK_SCHEDULE"`

	// Tracing.
	OTLPEndpoint string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTLPInsecure bool   `mapstructure:"OTEL_EXPORTER_OTLP_INSECURE"`
}

var AppConfig Config

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SERVICE_NAME", "clinicbook")
	v.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	v.SetDefault("DATABASE_NAME", "clinicbook")
	v.SetDefault("POSTGRES_URL", "")
	v.SetDefault("CATALOG_BACKEND", "mongo")
	v.SetDefault("LEDGER_BACKEND", "mongo")
	v.SetDefault("STORAGE_TIMEOUT", "5s")
	v.SetDefault("STORAGE_RETRY_BACKOFF", "50ms")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_CACHE_DB", 0)
	v.SetDefault("CATALOG_CACHE_ENABLED", false)
	v.SetDefault("CATALOG_CACHE_TTL", "60s")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_JWKS_URL", "")
	v.SetDefault("JWT_ISSUER", "")
	v.SetDefault("JWT_AUDIENCE", "")
	v.SetDefault("JWT_LEEWAY", "30s")
	v.SetDefault("SLOT_STRIDE_MINUTES", 15)
	v.SetDefault("MAX_RANGE_DAYS", 14)
	v.SetDefault("MAX_REQUESTS_PER_MIN", 200)
	v.SetDefault("RATE_LIMIT_BURST", 50)
	v.SetDefault("CORS_ALLOWED_ORIGINS", []string{"*"})
	v.SetDefault("SLOW_REQUEST_THRESHOLD", "200ms")
	v.SetDefault("HEALTH_CHECK_SCHEDULE", "@every 60s")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_INSECURE", false)
}

// Load reads config.yaml (if any) and the environment into a Config.
func Load(v *viper.Viper) (Config, error) {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, cfg.Validate()
}

// LoadConfig populates AppConfig or exits.
func LoadConfig() {
	cfg, err := Load(viper.GetViper())
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	AppConfig = cfg
}

// Validate rejects settings the engine cannot run with.
func (c Config) Validate() error {
	if c.SlotStrideMinutes <= 0 {
		return fmt.Errorf("SLOT_STRIDE_MINUTES must be positive, got %d", c.SlotStrideMinutes)
	}
	if c.MaxRangeDays <= 0 {
		return fmt.Errorf("MAX_RANGE_DAYS must be positive, got %d", c.MaxRangeDays)
	}
	if c.JWTSecret == "" && c.JWTJWKSURL == "" {
		return fmt.Errorf("one of JWT_SECRET or JWT_JWKS_URL is required")
	}
	switch c.CatalogBackend {
	case "mongo", "memory":
	default:
		return fmt.Errorf("unknown CATALOG_BACKEND %q", c.CatalogBackend)
	}
	switch c.LedgerBackend {
	case "mongo", "memory":
	case "postgres":
		if c.PostgresURL == "" {
			return fmt.Errorf("POSTGRES_URL is required when LEDGER_BACKEND=postgres")
		}
	default:
		return fmt.Errorf("unknown LEDGER_BACKEND %q", c.LedgerBackend)
	}
	if c.StorageTimeout <= 0 {
		return fmt.Errorf("STORAGE_TIMEOUT must be positive")
	}
	return nil
}

func (c Config) SlotStride() time.Duration {
	return time.Duration(c.SlotStrideMinutes) * time.Minute
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
