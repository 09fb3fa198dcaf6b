package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/coinbit/exchange/internal/logger"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Feed      FeedConfig      `yaml:"feed"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Trading   TradingConfig   `yaml:"trading"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Reset     ResetConfig     `yaml:"reset"`
	Logger    logger.Config   `yaml:"logger"`
}

type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type FeedConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
}

type CatalogConfig struct {
	BaseURL           string        `yaml:"base_url"`
	SyncInterval      time.Duration `yaml:"sync_interval"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	Burst             int           `yaml:"burst"`
	EnableBreaker     bool          `yaml:"enable_breaker"`
	Timeout           time.Duration `yaml:"timeout"`
}

type SchedulerConfig struct {
	Interval time.Duration `yaml:"interval"`
}

type TradingConfig struct {
	CashMarket  string `yaml:"cash_market"`
	InitialCash string `yaml:"initial_cash"`
}

type RateLimitConfig struct {
	Enabled bool         `yaml:"enabled"`
	PerUser PerUserLimit `yaml:"per_user"`
}

type PerUserLimit struct {
	OrdersPerMinute int `yaml:"orders_per_minute"`
	Burst           int `yaml:"burst"`
}

type ResetConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Interval time.Duration `yaml:"interval"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// MustLoad loads the configuration or panics.
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(err)
	}
	return cfg
}
