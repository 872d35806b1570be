// Package config loads Lambda settings from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the settings shared by the shortener and redirect Lambdas.
type Config struct {
	Bucket      string `env:"S3_BUCKET,required,notEmpty"`
	Region      string `env:"AWS_REGION"`
	Environment string `env:"ENVIRONMENT" envDefault:"dev"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// MaxAttempts bounds the key collision loop.
	MaxAttempts int `env:"SHORTENER_MAX_ATTEMPTS" envDefault:"10"`

	// ConditionalWrite makes the final put fail if the key appeared
	// between the existence probe and the write.
	ConditionalWrite bool `env:"SHORTENER_CONDITIONAL_WRITE" envDefault:"false"`

	// CacheTTL is how long a resolved redirect stays in a warm container.
	// Zero disables the cache.
	CacheTTL time.Duration `env:"REDIRECT_CACHE_TTL" envDefault:"5m"`
}

// Load parses the process environment.
func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.MaxAttempts < 1 {
		return fmt.Errorf("SHORTENER_MAX_ATTEMPTS must be at least 1, got %d", c.MaxAttempts)
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("REDIRECT_CACHE_TTL must not be negative, got %s", c.CacheTTL)
	}
	return nil
}
