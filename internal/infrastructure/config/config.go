// Package config loads process-wide configuration from the environment. The
// resulting struct is immutable for the process lifetime: it is loaded once
// in main and passed down to constructors, never read from ambient state.
package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// insecureDevSecret is the fallback signing secret outside production.
// Production refuses to start without an explicit JWT_SECRET.
const insecureDevSecret = "dev-insecure-secret-do-not-use"

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Auth  AuthConfig
	Mongo MongoConfig
	Redis RedisConfig
}

// AuthConfig groups the signing, hashing, and secret-policy settings.
type AuthConfig struct {
	JWTSecret  string        `env:"JWT_SECRET"`
	AccessTTL  time.Duration `env:"ACCESS_TOKEN_TTL,  default=24h"`
	RefreshTTL time.Duration `env:"REFRESH_TOKEN_TTL, default=168h"`
	Issuer     string        `env:"JWT_ISSUER,        default=task-manager-api"`
	Audience   string        `env:"JWT_AUDIENCE,      default=task-manager-users"`
	BcryptCost int           `env:"BCRYPT_COST,       default=12"`

	PasswordMinLength      int  `env:"PASSWORD_MIN_LENGTH,         default=8"`
	PasswordRequireUpper   bool `env:"PASSWORD_REQUIRE_UPPERCASE,  default=true"`
	PasswordRequireLower   bool `env:"PASSWORD_REQUIRE_LOWERCASE,  default=true"`
	PasswordRequireDigit   bool `env:"PASSWORD_REQUIRE_DIGIT,      default=true"`
	PasswordRequireSpecial bool `env:"PASSWORD_REQUIRE_SPECIAL,    default=true"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=task_manager"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// Load reads configuration from environment variables using go-envconfig and
// validates it.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: load: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Auth.JWTSecret == "" {
		if c.IsProduction() {
			return errors.New("config: JWT_SECRET is required in production")
		}
		c.Auth.JWTSecret = insecureDevSecret
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
