package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App      AppConfig
	Log      LogConfig
	Redis    RedisConfig
	Supplier SupplierConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// RedisConfig holds redis connection settings for the shared token record
// and the cross-instance product cache
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// SupplierConfig holds dropship supplier platform settings
type SupplierConfig struct {
	Email             string
	APIKey            string
	APIBaseURL        string
	TimeoutSeconds    int
	MaxConcurrent     int
	MaxAttempts       int
	RetryBaseDelay    time.Duration
	RefreshBuffer     time.Duration
	StaleServeCeiling time.Duration
	ProductCacheTTL   time.Duration
	CategoryCacheTTL  time.Duration
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with LAUNCHLAB_ prefix (e.g. LAUNCHLAB_SUPPLIER_API_KEY)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("LAUNCHLAB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Supplier: SupplierConfig{
			Email:             v.GetString("supplier.email"),
			APIKey:            v.GetString("supplier.api_key"),
			APIBaseURL:        v.GetString("supplier.api_base_url"),
			TimeoutSeconds:    v.GetInt("supplier.timeout_seconds"),
			MaxConcurrent:     v.GetInt("supplier.max_concurrent"),
			MaxAttempts:       v.GetInt("supplier.max_attempts"),
			RetryBaseDelay:    v.GetDuration("supplier.retry_base_delay"),
			RefreshBuffer:     v.GetDuration("supplier.refresh_buffer"),
			StaleServeCeiling: v.GetDuration("supplier.stale_serve_ceiling"),
			ProductCacheTTL:   v.GetDuration("supplier.product_cache_ttl"),
			CategoryCacheTTL:  v.GetDuration("supplier.category_cache_ttl"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "launchlab-backend"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Supplier.TimeoutSeconds == 0 {
		cfg.Supplier.TimeoutSeconds = 30
	}
	if cfg.Supplier.MaxConcurrent == 0 {
		cfg.Supplier.MaxConcurrent = 3
	}
	if cfg.Supplier.MaxAttempts == 0 {
		cfg.Supplier.MaxAttempts = 3
	}
	if cfg.Supplier.RetryBaseDelay == 0 {
		cfg.Supplier.RetryBaseDelay = 1100 * time.Millisecond
	}
	if cfg.Supplier.RefreshBuffer == 0 {
		cfg.Supplier.RefreshBuffer = time.Hour
	}
	if cfg.Supplier.StaleServeCeiling == 0 {
		cfg.Supplier.StaleServeCeiling = 24 * time.Hour
	}
	if cfg.Supplier.ProductCacheTTL == 0 {
		cfg.Supplier.ProductCacheTTL = 24 * time.Hour
	}
	if cfg.Supplier.CategoryCacheTTL == 0 {
		cfg.Supplier.CategoryCacheTTL = 72 * time.Hour
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Supplier.MaxConcurrent < 1 {
		return fmt.Errorf("supplier.max_concurrent must be positive")
	}
	if c.Supplier.MaxAttempts < 1 {
		return fmt.Errorf("supplier.max_attempts must be positive")
	}

	if c.App.Env == "production" {
		if c.Supplier.Email == "" {
			return fmt.Errorf("supplier.email is required in production")
		}
		if c.Supplier.APIKey == "" {
			return fmt.Errorf("supplier.api_key is required in production")
		}
	}

	return nil
}
