package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment" default:"development"`
	Log         struct {
		Level  string `yaml:"level" default:"info"`
		Format string `yaml:"format" default:"json"`
		Output string `yaml:"output" default:"stdout"`
	} `yaml:"log"`
	Cache struct {
		Root          string `yaml:"root"`
		FreshnessDays int    `yaml:"freshness_days" default:"3"`
		ReadPolicy    string `yaml:"read_policy" default:"best-effort"`
	} `yaml:"cache"`
	Retry struct {
		MaxAttempts     int           `yaml:"max_attempts" default:"5"`
		InitialInterval time.Duration `yaml:"initial_interval" default:"500ms"`
		MaxInterval     time.Duration `yaml:"max_interval" default:"30s"`
		Multiplier      float64       `yaml:"multiplier" default:"2"`
	} `yaml:"retry"`
	Augmento struct {
		BaseURL   string        `yaml:"base_url" default:"https://api.augmento.ai/v0.1"`
		Timeout   time.Duration `yaml:"timeout" default:"30s"`
		PageSize  int           `yaml:"page_size" default:"1000"`
		PageDelay time.Duration `yaml:"page_delay" default:"2s"`
	} `yaml:"augmento"`
	Binance struct {
		BaseURL   string        `yaml:"base_url" default:"https://api.binance.com"`
		Timeout   time.Duration `yaml:"timeout" default:"30s"`
		Limit     int           `yaml:"limit" default:"1000"`
		PageDelay time.Duration `yaml:"page_delay" default:"2s"`
	} `yaml:"binance"`
	Load struct {
		Source  string `yaml:"source" default:"twitter"`
		Coin    string `yaml:"coin" default:"bitcoin"`
		Symbol  string `yaml:"symbol" default:"BTCUSDT"`
		BinSize int    `yaml:"bin_size" default:"3600"`
		Start   string `yaml:"start"`
		End     string `yaml:"end"`
	} `yaml:"load"`
	Schedule struct {
		Cron string `yaml:"cron"`
	} `yaml:"schedule"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Port    int    `yaml:"port" default:"9090"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	Events struct {
		Enabled     bool     `yaml:"enabled"`
		Brokers     []string `yaml:"brokers"`
		Topic       string   `yaml:"topic" default:"sentipull.cache"`
		Compression string   `yaml:"compression" default:"snappy"`
	} `yaml:"events"`
}

// Default returns a configuration holding only default values.
func Default() (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	return &c, nil
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	c, err := Default()
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return c, nil
}

// LoadWithEnv loads a .env file when present, then config from YAML, then
// overrides with environment variables. An empty path skips the YAML step.
func LoadWithEnv(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var (
		c   *Config
		err error
	)
	if path == "" {
		c, err = Default()
	} else {
		c, err = Load(path)
	}
	if err != nil {
		return nil, err
	}

	// Override with environment variables
	if v := os.Getenv("SENTIPULL_CACHE_ROOT"); v != "" {
		c.Cache.Root = v
	}
	if v := os.Getenv("AUGMENTO_BASE_URL"); v != "" {
		c.Augmento.BaseURL = v
	}
	if v := os.Getenv("BINANCE_BASE_URL"); v != "" {
		c.Binance.BaseURL = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Events.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Cache.Root == "" {
		return fmt.Errorf("cache.root is required")
	}
	if c.Cache.FreshnessDays < 0 {
		return fmt.Errorf("cache.freshness_days must be >= 0, got %d", c.Cache.FreshnessDays)
	}
	if c.Cache.ReadPolicy != "best-effort" && c.Cache.ReadPolicy != "strict" {
		return fmt.Errorf("cache.read_policy must be 'best-effort' or 'strict', got '%s'", c.Cache.ReadPolicy)
	}
	if c.Augmento.BaseURL == "" || c.Binance.BaseURL == "" {
		return fmt.Errorf("augmento.base_url and binance.base_url are required")
	}
	if c.Augmento.PageSize <= 0 {
		return fmt.Errorf("augmento.page_size must be > 0")
	}
	if c.Binance.Limit <= 0 || c.Binance.Limit > 1000 {
		return fmt.Errorf("binance.limit must be in (0, 1000], got %d", c.Binance.Limit)
	}
	if c.Events.Enabled && len(c.Events.Brokers) == 0 {
		return fmt.Errorf("events.brokers cannot be empty when events are enabled")
	}
	return nil
}
