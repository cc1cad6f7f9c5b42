// Package config loads the autocatalog command configuration from defaults,
// an optional config file, .env files, AUTOCATALOG_ environment variables
// and command flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/goliatone/go-auto-catalog/cache"
	"github.com/goliatone/go-auto-catalog/internal/logging"
)

// EnvPrefix namespaces environment variables, e.g. AUTOCATALOG_DATABASE or
// AUTOCATALOG_CACHE_TTL.
const EnvPrefix = "AUTOCATALOG"

// Keys understood by Load.
const (
	KeyDatabase          = "database"
	KeyLogLevel          = "log_level"
	KeyLogFormat         = "log_format"
	KeyReferentialChecks = "referential_checks"
	KeyCacheEnabled      = "cache.enabled"
	KeyCacheCapacity     = "cache.capacity"
	KeyCacheTTL          = "cache.ttl"
	KeyMetricsEnabled    = "metrics.enabled"
)

// DefaultDatabase is the catalog location used when none is configured.
const DefaultDatabase = "autocatalog.db"

// Config is the resolved command configuration.
type Config struct {
	Database          string        `mapstructure:"database"`
	LogLevel          string        `mapstructure:"log_level"`
	LogFormat         string        `mapstructure:"log_format"`
	ReferentialChecks bool          `mapstructure:"referential_checks"`
	Cache             CacheConfig   `mapstructure:"cache"`
	Metrics           MetricsConfig `mapstructure:"metrics"`
}

// CacheConfig controls query memoization.
type CacheConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Capacity int           `mapstructure:"capacity"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// MetricsConfig controls Prometheus collection.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// SetDefaults registers every key with its default value. Keys must be known
// to v for AutomaticEnv to resolve them during Unmarshal.
func SetDefaults(v *viper.Viper) {
	defaults := cache.DefaultConfig()

	v.SetDefault(KeyDatabase, DefaultDatabase)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, logging.FormatConsole)
	v.SetDefault(KeyReferentialChecks, false)
	v.SetDefault(KeyCacheEnabled, true)
	v.SetDefault(KeyCacheCapacity, defaults.Capacity)
	v.SetDefault(KeyCacheTTL, defaults.TTL)
	v.SetDefault(KeyMetricsEnabled, false)
}

// LoadEnvFiles loads the given .env files into the process environment.
// Missing files are ignored and variables already set are kept.
func LoadEnvFiles(paths ...string) {
	for _, path := range paths {
		_ = godotenv.Load(path)
	}
}

// Load resolves the configuration held by v. Flags should already be bound
// to v. configFile is optional; when set it must exist.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Database, validation.Required),
		validation.Field(&c.LogFormat, validation.In(logging.FormatConsole, logging.FormatJSON)),
		validation.Field(&c.Cache),
	)
}

// Validate checks the cache settings. They only matter when enabled.
func (c CacheConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	return validation.ValidateStruct(&c,
		validation.Field(&c.Capacity, validation.Min(1)),
		validation.Field(&c.TTL, validation.Min(time.Millisecond)),
	)
}

// CacheServiceConfig returns the cache tuning for c, starting from the
// package defaults.
func (c CacheConfig) CacheServiceConfig() cache.Config {
	cfg := cache.DefaultConfig()
	if c.Capacity > 0 {
		cfg.Capacity = c.Capacity
	}
	if c.TTL > 0 {
		cfg.TTL = c.TTL
	}
	return cfg
}

// IsValidationError reports whether err came from Validate.
func IsValidationError(err error) bool {
	var verrs validation.Errors
	return errors.As(err, &verrs)
}
