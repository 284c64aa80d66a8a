package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/aretw0/routechain/internal/logging"
	"github.com/aretw0/routechain/pkg/script"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Defaults.
const (
	DefaultHTTPAddr     = ":8080"
	DefaultRedisStream  = "routechain:journal"
	DefaultRedisMaxLen  = 10000
	DefaultMetricsScope = "routechain"
)

// Config is the application configuration, usually read from routechain.yaml.
type Config struct {
	LogLevel string              `mapstructure:"log_level"`
	HTTP     HTTPConfig          `mapstructure:"http"`
	Redis    RedisConfig         `mapstructure:"redis"`
	Metrics  MetricsConfig       `mapstructure:"metrics"`
	Routes   []script.RouteSpec  `mapstructure:"routes"`
	Engines  []script.EngineSpec `mapstructure:"engines"`
}

// HTTPConfig configures the control surface.
type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

// RedisConfig configures the sequence journal. An empty Addr disables it.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Stream   string `mapstructure:"stream"`
	MaxLen   int64  `mapstructure:"max_len"`
}

// MetricsConfig configures the Prometheus collectors.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
}

// Default returns a configuration with every default applied and no routes.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads and validates a YAML (or JSON) configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes and validates a configuration document.
func Parse(data []byte) (*Config, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg := &Config{}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = DefaultHTTPAddr
	}
	if c.Redis.Stream == "" {
		c.Redis.Stream = DefaultRedisStream
	}
	if c.Redis.MaxLen == 0 {
		c.Redis.MaxLen = DefaultRedisMaxLen
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultMetricsScope
	}
}

// Validate checks settings and route scripts, reporting every problem found.
func (c *Config) Validate() error {
	var errs []error
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.Redis.MaxLen < 0 {
		errs = append(errs, fmt.Errorf("redis.max_len must not be negative, got %d", c.Redis.MaxLen))
	}
	if err := script.Validate(c.Routes, c.Engines); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
