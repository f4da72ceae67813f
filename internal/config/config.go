package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	CORS      CORSConfig
	Redis     RedisConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	MQTT      MQTTConfig
	Jobs      JobsConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port     string
	Env      string
	LogLevel string
}

// DatabaseConfig holds PostgreSQL connection configuration.
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	PoolMin  int
	PoolMax  int
}

// CORSConfig holds CORS configuration.
type CORSConfig struct {
	Origins []string
}

// RedisConfig holds the active-alert cache connection. An empty Addr
// disables the cache.
type RedisConfig struct {
	Addr          string
	Password      string
	DB            int
	AlertCacheTTL time.Duration
}

// Enabled reports whether a redis address was configured.
func (r RedisConfig) Enabled() bool {
	return r.Addr != ""
}

// AuthConfig holds bearer token verification settings.
type AuthConfig struct {
	JWTSecret string
	JWTIssuer string
}

// RateLimitConfig holds the per-client limits for concern submission.
type RateLimitConfig struct {
	ConcernRPS   float64
	ConcernBurst int
}

// MQTTConfig holds the alert event broker settings. An empty Broker
// disables publishing.
type MQTTConfig struct {
	Broker      string
	ClientID    string
	TopicPrefix string
}

// Enabled reports whether a broker was configured.
func (m MQTTConfig) Enabled() bool {
	return m.Broker != ""
}

// JobsConfig holds background job intervals. A zero interval disables the job.
type JobsConfig struct {
	AlertExpiryInterval time.Duration
}

// Load reads configuration from a .env file (if present) and environment
// variables. It uses viper to read values and provides sensible defaults for development.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()

	// Set defaults for development
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_NAME", "saferoute")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_POOL_MIN", 2)
	v.SetDefault("DB_POOL_MAX", 10)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000,http://localhost:3001")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("ALERT_CACHE_TTL", "30s")
	v.SetDefault("JWT_ISSUER", "")
	v.SetDefault("CONCERN_RATE_LIMIT_RPS", 0.2)
	v.SetDefault("CONCERN_RATE_LIMIT_BURST", 5)
	v.SetDefault("MQTT_BROKER", "")
	v.SetDefault("MQTT_CLIENT_ID", "saferoute-api")
	v.SetDefault("MQTT_TOPIC_PREFIX", "saferoute")
	v.SetDefault("ALERT_EXPIRY_INTERVAL", "5m")

	// Bind environment variables
	v.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Port:     v.GetString("PORT"),
			Env:      v.GetString("ENV"),
			LogLevel: v.GetString("LOG_LEVEL"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			Name:     v.GetString("DB_NAME"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			SSLMode:  v.GetString("DB_SSLMODE"),
			PoolMin:  v.GetInt("DB_POOL_MIN"),
			PoolMax:  v.GetInt("DB_POOL_MAX"),
		},
		CORS: CORSConfig{
			Origins: parseOrigins(v.GetString("CORS_ORIGINS")),
		},
		Redis: RedisConfig{
			Addr:          v.GetString("REDIS_ADDR"),
			Password:      v.GetString("REDIS_PASSWORD"),
			DB:            v.GetInt("REDIS_DB"),
			AlertCacheTTL: v.GetDuration("ALERT_CACHE_TTL"),
		},
		Auth: AuthConfig{
			JWTSecret: v.GetString("JWT_SECRET"),
			JWTIssuer: v.GetString("JWT_ISSUER"),
		},
		RateLimit: RateLimitConfig{
			ConcernRPS:   v.GetFloat64("CONCERN_RATE_LIMIT_RPS"),
			ConcernBurst: v.GetInt("CONCERN_RATE_LIMIT_BURST"),
		},
		MQTT: MQTTConfig{
			Broker:      v.GetString("MQTT_BROKER"),
			ClientID:    v.GetString("MQTT_CLIENT_ID"),
			TopicPrefix: strings.Trim(v.GetString("MQTT_TOPIC_PREFIX"), "/"),
		},
		Jobs: JobsConfig{
			AlertExpiryInterval: v.GetDuration("ALERT_EXPIRY_INTERVAL"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration is present and valid.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	// Validate database config
	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}
	if c.Database.Port == "" {
		return fmt.Errorf("DB_PORT is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("DB_USER is required")
	}
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.Database.PoolMin < 0 {
		return fmt.Errorf("DB_POOL_MIN must be non-negative")
	}
	if c.Database.PoolMax < 1 {
		return fmt.Errorf("DB_POOL_MAX must be at least 1")
	}
	if c.Database.PoolMin > c.Database.PoolMax {
		return fmt.Errorf("DB_POOL_MIN must be less than or equal to DB_POOL_MAX")
	}

	if len(c.CORS.Origins) == 0 {
		return fmt.Errorf("CORS_ORIGINS is required")
	}

	if c.Redis.Enabled() && c.Redis.AlertCacheTTL <= 0 {
		return fmt.Errorf("ALERT_CACHE_TTL must be positive when REDIS_ADDR is set")
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if c.RateLimit.ConcernRPS <= 0 {
		return fmt.Errorf("CONCERN_RATE_LIMIT_RPS must be positive")
	}
	if c.RateLimit.ConcernBurst < 1 {
		return fmt.Errorf("CONCERN_RATE_LIMIT_BURST must be at least 1")
	}

	if c.MQTT.Enabled() && c.MQTT.TopicPrefix == "" {
		return fmt.Errorf("MQTT_TOPIC_PREFIX is required when MQTT_BROKER is set")
	}

	if c.Jobs.AlertExpiryInterval < 0 {
		return fmt.Errorf("ALERT_EXPIRY_INTERVAL must be non-negative")
	}

	return nil
}

// parseOrigins splits a comma-separated string of origins into a slice.
func parseOrigins(origins string) []string {
	if origins == "" {
		return []string{}
	}

	parts := strings.Split(origins, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
