package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/GriffinCanCode/webdesk/internal/domain/mode"
	"github.com/GriffinCanCode/webdesk/internal/shared/types"
)

var ErrInvalid = errors.New("invalid configuration")

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
	Desktop   DesktopConfig
	Catalog   CatalogConfig
	Popout    PopoutConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8000"`
	Host string `envconfig:"HOST" default:"0.0.0.0"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// DesktopConfig holds window manager defaults.
type DesktopConfig struct {
	ViewportWidth  int    `envconfig:"VIEWPORT_WIDTH" default:"1920"`
	ViewportHeight int    `envconfig:"VIEWPORT_HEIGHT" default:"1080"`
	SpawnStep      int    `envconfig:"SPAWN_STEP" default:"32"`
	SpawnCycle     int    `envconfig:"SPAWN_CYCLE" default:"8"`
	DefaultMode    string `envconfig:"DEFAULT_MODE" default:"normal"`
}

// Viewport returns the configured desktop size
func (d DesktopConfig) Viewport() types.Size {
	return types.Size{Width: d.ViewportWidth, Height: d.ViewportHeight}
}

// CatalogConfig holds dock catalog sources.
type CatalogConfig struct {
	Dir     string `envconfig:"CATALOG_DIR" default:""`
	Pattern string `envconfig:"CATALOG_PATTERN" default:"**/*.{yaml,yml,toml,json}"`
}

// PopoutConfig holds popout channel tuning.
type PopoutConfig struct {
	QueueSize    int           `envconfig:"POPOUT_QUEUE_SIZE" default:"256"`
	WriteTimeout time.Duration `envconfig:"POPOUT_WRITE_TIMEOUT" default:"5s"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Validate checks values envconfig cannot
func (c *Config) Validate() error {
	if c.Desktop.ViewportWidth <= 0 || c.Desktop.ViewportHeight <= 0 {
		return fmt.Errorf("%w: viewport %dx%d", ErrInvalid, c.Desktop.ViewportWidth, c.Desktop.ViewportHeight)
	}
	if _, err := mode.Parse(c.Desktop.DefaultMode); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if c.Popout.QueueSize <= 0 {
		return fmt.Errorf("%w: popout queue size %d", ErrInvalid, c.Popout.QueueSize)
	}
	return nil
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8000",
			Host: "0.0.0.0",
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
		Desktop: DesktopConfig{
			ViewportWidth:  1920,
			ViewportHeight: 1080,
			SpawnStep:      32,
			SpawnCycle:     8,
			DefaultMode:    "normal",
		},
		Catalog: CatalogConfig{
			Pattern: "**/*.{yaml,yml,toml,json}",
		},
		Popout: PopoutConfig{
			QueueSize:    256,
			WriteTimeout: 5 * time.Second,
		},
	}
}
