package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort      string        `env:"SERVER_PORT"       envDefault:"8080"`
	MySQLDSN        string        `env:"MYSQL_DSN,required,notEmpty"`
	RedisAddr       string        `env:"REDIS_ADDR"        envDefault:"localhost:6379"`
	RedisDB         int           `env:"REDIS_DB"          envDefault:"0"`
	RedisPass       string        `env:"REDIS_PASSWORD"`
	JWTSecret       string        `env:"JWT_SECRET,required,notEmpty"`
	JWTLifetime     time.Duration `env:"JWT_LIFETIME,required,notEmpty"`
	JWTIssuer       string        `env:"JWT_ISSUER"        envDefault:"schoolhub"`
	SwaggerHost     string        `env:"SWAGGER_HOST"`
	ResetDB         bool          `env:"RESET_DB"          envDefault:"false"`
	StatsCacheTTL   time.Duration `env:"STATS_CACHE_TTL"   envDefault:"30s"`
	AccountCacheTTL time.Duration `env:"ACCOUNT_CACHE_TTL" envDefault:"5m"`
}

// Load builds Config from the environment. Missing required settings are an
// error; callers treat that as fatal at startup.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.JWTLifetime <= 0 {
		return errors.New("JWT_LIFETIME must be a positive duration")
	}
	return nil
}
