package config

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
)

var (
	ErrStoreNotConfigured = errors.New("database location is not configured")
	ErrMissingJWTSecret   = errors.New("JWT_SECRET is not configured")
)

type Config struct {
	DB_USERNAME string `env:"DB_USERNAME"`
	DB_PASSWORD string `env:"DB_PASSWORD"`
	DB_HOST     string `env:"DB_HOST"`
	DB_PORT     string `env:"DB_PORT" envDefault:"5432"`
	DB_NAME     string `env:"DB_NAME"`
	DISABLE_TLS string `env:"DISABLE_TLS"`

	SERVER_ADDR     string `env:"SERVER_ADDR" envDefault:"0.0.0.0:6060"`
	ALLOWED_HEADERS string `env:"ALLOWED_HEADERS" envDefault:"Content-Type,Authorization"`
	SECURE_COOKIES  bool   `env:"SECURE_COOKIES"`

	// Session tokens
	JWT_SECRET      string        `env:"JWT_SECRET"`
	JWT_ISSUER      string        `env:"JWT_ISSUER" envDefault:"devboard"`
	TOKEN_TTL       time.Duration `env:"TOKEN_TTL" envDefault:"24h"`
	RESET_TOKEN_TTL time.Duration `env:"RESET_TOKEN_TTL" envDefault:"1h"`

	// Redis backs token revocation when set, otherwise revocations live in memory
	REDIS_ADDR     string `env:"REDIS_ADDR"`
	REDIS_PASSWORD string `env:"REDIS_PASSWORD"`
	REDIS_DB       int    `env:"REDIS_DB"`

	// Otel
	OTEL_EXPORTER_OTLP_ENDPOINT string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTEL_SERVICE_NAME           string `env:"OTEL_SERVICE_NAME" envDefault:"devboard"`
}

// ReadConfig parses the process environment. A malformed value is logged and
// the field keeps its default.
func ReadConfig() *Config {
	conf, err := Parse()
	if err != nil {
		slog.Warn("Unable to fully parse environment", slog.Any("error", err))
	}

	return conf
}

// Parse reads the configuration from environment variables.
func Parse() (*Config, error) {
	conf := &Config{}
	if err := env.Parse(conf); err != nil {
		return conf, fmt.Errorf("parse environment variables: %w", err)
	}

	return conf, nil
}

// Validate reports configuration that makes the server unable to boot.
func (c *Config) Validate() error {
	if c.DB_HOST == "" || c.DB_NAME == "" {
		return ErrStoreNotConfigured
	}

	if c.JWT_SECRET == "" {
		return ErrMissingJWTSecret
	}

	return nil
}

// DSN returns the postgres connection string.
func (c *Config) DSN() string {
	str := fmt.Sprintf("postgresql://%v:%v@%v:%v/%v", c.DB_USERNAME, c.DB_PASSWORD, c.DB_HOST, c.DB_PORT, c.DB_NAME)
	if c.DISABLE_TLS == "true" {
		str = str + "?sslmode=disable"
	}

	return str
}
