package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const (
	DefaultAddress        = ":8080"
	DefaultLogLevel       = "info"
	DefaultPlaceholder    = "content"
	DefaultMaxAge         = 60
	DefaultTimeoutSeconds = 10
	DefaultViewsDir       = "./views"
	DefaultViewExtension  = ".hbs"
)

var validate = validator.New()

// Config represents the main configuration structure
type Config struct {
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
	Render RenderConfig `yaml:"render"`
	Cache  CacheConfig  `yaml:"cache"`
	HTTP   HTTPConfig   `yaml:"http"`
}

type ServerConfig struct {
	Address string `yaml:"address" env:"RENDER_ADDRESS" validate:"required"`
}

type LogConfig struct {
	Level string `yaml:"level" env:"RENDER_LOG_LEVEL" validate:"oneof=debug info warn error"`
}

// RenderConfig holds the engine defaults. Layout is a URL or a local path,
// empty for no layout.
type RenderConfig struct {
	Layout        string   `yaml:"layout" env:"RENDER_LAYOUT"`
	Placeholder   string   `yaml:"placeholder" validate:"required"`
	PartialsDirs  []string `yaml:"partials_dirs"`
	ViewsDir      string   `yaml:"views_dir" env:"RENDER_VIEWS_DIR" validate:"required"`
	ViewExtension string   `yaml:"view_extension" validate:"required,startswith=."`
}

// CacheConfig holds the remote template store settings, in seconds and entries.
// MaxAge is a pointer so that an explicit 0 survives defaulting.
type CacheConfig struct {
	MaxAge               *int `yaml:"max_age" validate:"omitempty,gte=0"`
	StaleWhileRevalidate int  `yaml:"stale_while_revalidate" validate:"gte=0"`
	Size                 int  `yaml:"size" env:"RENDER_CACHE_SIZE" validate:"gte=0"`
}

type HTTPConfig struct {
	TimeoutSeconds int `yaml:"timeout" validate:"gte=0"`
}

// LoadConfig loads configuration from file path
func LoadConfig(configPath string, logger *zap.Logger) (*Config, error) {
	logger.Info("Loading configuration", zap.String("path", configPath))

	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer func() { _ = file.Close() }()

	return Parse(file)
}

// Parse decodes YAML from r, applies defaults and environment overrides and
// validates the result. An empty document yields the defaults.
func Parse(r io.Reader) (*Config, error) {
	var config Config
	if err := yaml.NewDecoder(r).Decode(&config); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode YAML config: %w", err)
	}

	config.applyDefaults()

	if err := cleanenv.ReadEnv(&config); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := validate.Struct(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &config, nil
}

// applyDefaults sets default values for missing configuration
func (c *Config) applyDefaults() {
	if c.Server.Address == "" {
		c.Server.Address = DefaultAddress
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Render.Placeholder == "" {
		c.Render.Placeholder = DefaultPlaceholder
	}
	if c.Render.ViewsDir == "" {
		c.Render.ViewsDir = DefaultViewsDir
	}
	if c.Render.ViewExtension == "" {
		c.Render.ViewExtension = DefaultViewExtension
	}
	if c.Cache.MaxAge == nil {
		maxAge := DefaultMaxAge
		c.Cache.MaxAge = &maxAge
	}
	if c.HTTP.TimeoutSeconds == 0 {
		c.HTTP.TimeoutSeconds = DefaultTimeoutSeconds
	}
}

// MaxAgeDuration returns the default freshness window of remote templates
func (c *CacheConfig) MaxAgeDuration() time.Duration {
	if c.MaxAge == nil {
		return DefaultMaxAge * time.Second
	}
	return time.Duration(*c.MaxAge) * time.Second
}

// StaleWhileRevalidateDuration returns the default stale window of remote templates
func (c *CacheConfig) StaleWhileRevalidateDuration() time.Duration {
	return time.Duration(c.StaleWhileRevalidate) * time.Second
}

// Timeout returns the per-fetch timeout
func (c *HTTPConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}
