package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// minProductionSecretLength is the shortest HS256 secret accepted in production.
const minProductionSecretLength = 32

// requirement checks one field and reports a problem, or "" when satisfied.
type requirement struct {
	field string
	check func(*Config) string
}

func required(field string, get func(*Config) string) requirement {
	return requirement{field: field, check: func(c *Config) string {
		if strings.TrimSpace(get(c)) == "" {
			return "is required"
		}
		return ""
	}}
}

var (
	baseRequirements = []requirement{
		required("SERVER_PORT", func(c *Config) string { return c.ServerPort }),
		required("JWT_SECRET", func(c *Config) string { return c.JWTSecret }),
		{field: "DB_DRIVER", check: func(c *Config) string {
			if c.DBDriver != "postgres" && c.DBDriver != "sqlite" {
				return "must be postgres or sqlite"
			}
			return ""
		}},
	}

	postgresRequirements = []requirement{
		required("DB_HOST", func(c *Config) string { return c.DBHost }),
		required("DB_PORT", func(c *Config) string { return c.DBPort }),
		required("DB_USER", func(c *Config) string { return c.DBUser }),
		required("DB_NAME", func(c *Config) string { return c.DBName }),
	}

	// Environment-specific requirements
	requirements = map[Environment][]requirement{
		Development: {},
		Test:        {},
		CI: {
			required("DB_PASSWORD", func(c *Config) string { return c.DBPassword }),
		},
		Production: {
			required("db_password", func(c *Config) string { return c.DBPassword }),
			required("S3_BUCKET_NAME", func(c *Config) string { return c.S3Bucket }),
			{field: "REDIS_URL", check: func(c *Config) string {
				if !c.RedisConfigured() {
					return "redis is required in production"
				}
				return ""
			}},
			{field: "jwt_secret", check: func(c *Config) string {
				if len(c.JWTSecret) < minProductionSecretLength {
					return fmt.Sprintf("must be at least %d characters", minProductionSecretLength)
				}
				return ""
			}},
			{field: "DB_DRIVER", check: func(c *Config) string {
				if c.DBDriver != "postgres" {
					return "sqlite is not supported in production"
				}
				return ""
			}},
		},
	}
)

// ValidateConfig checks if the configuration meets the requirements for its environment
func ValidateConfig(cfg *Config) error {
	env := cfg.Environment
	if env == "" {
		env = GetEnvironment()
	}

	checks := append([]requirement{}, baseRequirements...)
	if cfg.DBDriver == "postgres" {
		checks = append(checks, postgresRequirements...)
	}
	checks = append(checks, requirements[env]...)

	var errors []string
	for _, req := range checks {
		if msg := req.check(cfg); msg != "" {
			errors = append(errors, ValidationError{Field: req.field, Message: msg}.Error())
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(errors, "\n"))
	}

	return nil
}
