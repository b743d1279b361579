package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration for the application
type Config struct {
	Environment Environment `ignored:"true"`

	// Server configuration
	ServerHost     string   `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	ServerPort     string   `envconfig:"SERVER_PORT" default:"8080"`
	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:8081,http://localhost:19006"`

	// Database configuration
	DBDriver      string `envconfig:"DB_DRIVER" default:"postgres"`
	DBHost        string `envconfig:"DB_HOST" default:"localhost"`
	DBPort        string `envconfig:"DB_PORT" default:"5432"`
	DBUser        string `envconfig:"DB_USER"`
	DBPassword    string `envconfig:"DB_PASSWORD"`
	DBName        string `envconfig:"DB_NAME" default:"larder"`
	DBSSLMode     string `envconfig:"DB_SSL_MODE" default:"disable"`
	SQLitePath    string `envconfig:"SQLITE_PATH" default:"larder.db"`
	MigrationsDir string `envconfig:"MIGRATIONS_DIR" default:"migrations"`

	// Redis configuration
	RedisHost     string `envconfig:"REDIS_HOST"`
	RedisPort     string `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
	RedisURL      string `envconfig:"REDIS_URL"`

	// JWT configuration. Tokens are issued by the external auth provider.
	JWTSecret string `envconfig:"JWT_SECRET"`
	JWTIssuer string `envconfig:"JWT_ISSUER"`

	// Recipe image storage
	S3Bucket    string        `envconfig:"S3_BUCKET_NAME"`
	AWSRegion   string        `envconfig:"AWS_REGION" default:"us-east-1"`
	ImageURLTTL time.Duration `envconfig:"IMAGE_URL_TTL" default:"15m"`

	// Public share-code endpoints
	ShareCodeRateLimit  int           `envconfig:"SHARE_CODE_RATE_LIMIT" default:"60"`
	ShareCodeRateWindow time.Duration `envconfig:"SHARE_CODE_RATE_WINDOW" default:"1m"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`
}

// secretFields maps Docker secret file names onto the fields they override.
var secretFields = map[string]func(*Config) *string{
	"db_user":        func(c *Config) *string { return &c.DBUser },
	"db_password":    func(c *Config) *string { return &c.DBPassword },
	"jwt_secret":     func(c *Config) *string { return &c.JWTSecret },
	"redis_password": func(c *Config) *string { return &c.RedisPassword },
	"redis_url":      func(c *Config) *string { return &c.RedisURL },
}

// LoadConfig creates a new Config instance with values from environment variables or secrets
func LoadConfig() (*Config, error) {
	env := GetEnvironment()

	if env == Development || env == Test {
		// .env is optional outside of deployed environments
		_ = godotenv.Load()
	}

	cfg := &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}
	cfg.Environment = env

	switch env {
	case CI:
		// CI uses environment variables only
	case Development, Test, Production:
		applySecrets(cfg)
	default:
		return nil, fmt.Errorf("unknown environment: %s", env)
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// applySecrets overrides sensitive fields with Docker secrets when present.
func applySecrets(cfg *Config) {
	for name, field := range secretFields {
		if value := readSecret(name); value != "" {
			*field(cfg) = value
		}
	}
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	data, err := os.ReadFile(filepath.Join(secretsDir, name))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// PostgresDSN builds the connection string for gorm's postgres driver.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

// Addr is the listen address of the HTTP server.
func (c *Config) Addr() string {
	return c.ServerHost + ":" + c.ServerPort
}

// RedisConfigured reports whether a Redis endpoint was provided.
func (c *Config) RedisConfigured() bool {
	return c.RedisURL != "" || c.RedisHost != ""
}
