package config

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds runtime configuration for the server.
type Config struct {
	Port            string        `env:"PORT" envDefault:"8000"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat       string        `env:"LOG_FORMAT" envDefault:"text"`
	SolverTimeLimit time.Duration `env:"SOLVER_TIME_LIMIT" envDefault:"30s"`
	MaxBodyBytes    int64         `env:"MAX_BODY_BYTES" envDefault:"1048576"`
	MaxConcurrent   int64         `env:"SOLVER_MAX_CONCURRENT" envDefault:"4"`
	Metrics         MetricsConfig
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (Config, error) {
	return parse(env.Options{})
}

// LoadFrom reads configuration from the given variables instead of the process environment.
func LoadFrom(vars map[string]string) (Config, error) {
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values that parse but cannot be used.
func (c Config) Validate() error {
	var errs []error
	if err := validPort(envPort, c.Port); err != nil {
		errs = append(errs, err)
	}
	if c.Metrics.Enabled {
		if err := validPort(envMetricsPort, c.Metrics.Port); err != nil {
			errs = append(errs, err)
		}
	}
	if c.SolverTimeLimit <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %s", envSolverTimeout, c.SolverTimeLimit))
	}
	if c.MaxBodyBytes <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %d", envMaxBodyBytes, c.MaxBodyBytes))
	}
	if c.MaxConcurrent < 0 {
		errs = append(errs, fmt.Errorf("%s must not be negative, got %d", envMaxConcurrent, c.MaxConcurrent))
	}
	return errors.Join(errs...)
}

func validPort(key, raw string) error {
	port, err := strconv.Atoi(raw)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("%s must be a port number, got %q", key, raw)
	}
	return nil
}
