package config

import (
	"fmt"
	"strings"
)

// Config defines the API service configuration. The database DSN is
// deliberately optional: without it the process still starts and serves
// non-store routes, and store-backed routes fail per request.
type Config struct {
	HTTP struct {
		Port string `yaml:"port" env:"PORT"`
		Host string `yaml:"host" env:"HOST"`
	} `yaml:"http"`
	Database struct {
		DSN string `yaml:"dsn" env:"DATABASE_URL"`
	} `yaml:"database"`
	CORS struct {
		AllowedOrigin string `yaml:"allowedOrigin" env:"CORS_ALLOWED_ORIGIN"`
	} `yaml:"cors"`
	Environment string `yaml:"environment" env:"ENVIRONMENT"`
}

// Load reads configuration from the optional YAML file and environment.
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.HTTP.Port = "8000"
	cfg.HTTP.Host = "0.0.0.0"
	cfg.CORS.AllowedOrigin = "*"
	cfg.Environment = "production"

	if err := loadInto(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// HTTPAddress returns the host:port listen address.
func (c *Config) HTTPAddress() string {
	port := strings.TrimSpace(c.HTTP.Port)
	if port == "" {
		port = "8000"
	}
	return fmt.Sprintf("%s:%s", strings.TrimSpace(c.HTTP.Host), port)
}

// Development reports whether the development environment flag is set.
// It gates stack traces in error responses.
func (c *Config) Development() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), "development")
}
