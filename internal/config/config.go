// Package config provides configuration management for the application.
// It handles loading, validation, and access to configuration values from
// YAML files and environment variables via Viper.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Default configuration values.
const (
	defaultFetchTimeout      = 30 * time.Second
	defaultFetchMaxRetries   = 3
	defaultFetchMaxRedirects = 10
	defaultFetchUserAgent    = "newsharvest/1.0 (+https://github.com/jonesrussell/newsharvest)"
	defaultFetchRatePerHost  = 1.0 // requests per second
	defaultFetchBurstPerHost = 2

	defaultIngestWorkers     = 4
	defaultIngestSourcesFile = "sources.yaml"

	// defaultScheduleSpec runs an ingestion pass every 15 minutes.
	defaultScheduleSpec = "*/15 * * * *"

	defaultDatabasePort    = "5432"
	defaultDatabaseSSLMode = "disable"
)

// Config represents the application configuration.
type Config struct {
	// Logger holds logging configuration.
	Logger LoggerConfig `mapstructure:"logger"`
	// Fetch holds HTTP fetcher configuration.
	Fetch FetchConfig `mapstructure:"fetch"`
	// Ingest holds ingestion pipeline configuration.
	Ingest IngestConfig `mapstructure:"ingest"`
	// Schedule holds the cron trigger configuration.
	Schedule ScheduleConfig `mapstructure:"schedule"`
	// Database holds PostgreSQL connection configuration.
	Database DatabaseConfig `mapstructure:"database"`
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level       string `mapstructure:"level"`
	Encoding    string `mapstructure:"encoding"`
	Development bool   `mapstructure:"development"`
}

// FetchConfig holds HTTP fetcher configuration.
type FetchConfig struct {
	// Timeout bounds a single HTTP request, including retry sleeps' base.
	Timeout time.Duration `mapstructure:"timeout"`
	// MaxRetries is the retry budget for transient failures.
	MaxRetries int `mapstructure:"max_retries"`
	// MaxRedirects caps redirect hops before TooManyRedirects.
	MaxRedirects int `mapstructure:"max_redirects"`
	// UserAgent is sent on every request.
	UserAgent string `mapstructure:"user_agent"`
	// RatePerHost is the politeness rate limit in requests per second.
	RatePerHost float64 `mapstructure:"rate_per_host"`
	// BurstPerHost is the rate limiter burst size.
	BurstPerHost int `mapstructure:"burst_per_host"`
}

// IngestConfig holds ingestion pipeline configuration.
type IngestConfig struct {
	// Workers is the bounded per-source candidate worker count.
	Workers int `mapstructure:"workers"`
	// SourcesFile is the path to the YAML source registry file.
	SourcesFile string `mapstructure:"sources_file"`
}

// ScheduleConfig holds the cron trigger configuration.
type ScheduleConfig struct {
	// Spec is a cron expression for repeated ingestion passes.
	Spec string `mapstructure:"spec"`
}

// DatabaseConfig holds PostgreSQL connection configuration.
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

// WithDefaults returns a copy of the config with default values applied for
// zero-value fields.
func (c Config) WithDefaults() Config {
	if c.Logger.Level == "" {
		c.Logger.Level = "info"
	}
	if c.Logger.Encoding == "" {
		c.Logger.Encoding = "console"
	}
	if c.Fetch.Timeout <= 0 {
		c.Fetch.Timeout = defaultFetchTimeout
	}
	if c.Fetch.MaxRetries <= 0 {
		c.Fetch.MaxRetries = defaultFetchMaxRetries
	}
	if c.Fetch.MaxRedirects <= 0 {
		c.Fetch.MaxRedirects = defaultFetchMaxRedirects
	}
	if c.Fetch.UserAgent == "" {
		c.Fetch.UserAgent = defaultFetchUserAgent
	}
	if c.Fetch.RatePerHost <= 0 {
		c.Fetch.RatePerHost = defaultFetchRatePerHost
	}
	if c.Fetch.BurstPerHost <= 0 {
		c.Fetch.BurstPerHost = defaultFetchBurstPerHost
	}
	if c.Ingest.Workers <= 0 {
		c.Ingest.Workers = defaultIngestWorkers
	}
	if c.Ingest.SourcesFile == "" {
		c.Ingest.SourcesFile = defaultIngestSourcesFile
	}
	if c.Schedule.Spec == "" {
		c.Schedule.Spec = defaultScheduleSpec
	}
	if c.Database.Port == "" {
		c.Database.Port = defaultDatabasePort
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = defaultDatabaseSSLMode
	}
	return c
}

// Validate checks the configuration for values the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.Database.Host == "" {
		return errors.New("database host is required")
	}
	if c.Database.User == "" {
		return errors.New("database user is required")
	}
	if c.Database.Name == "" {
		return errors.New("database name is required")
	}
	return nil
}

// Load unmarshals the application configuration from Viper and applies
// defaults. InitViper must have been called first.
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	cfg = cfg.WithDefaults()
	return &cfg, nil
}

// InitViper configures Viper to read the config file and environment
// variables. The config file is optional; environment variables use the
// NEWSHARVEST_ prefix with dots replaced by underscores
// (e.g., NEWSHARVEST_DATABASE_HOST).
func InitViper(cfgFile string) error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
	}

	viper.SetEnvPrefix("NEWSHARVEST")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Config file is optional; defaults and environment variables suffice.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return nil
}
