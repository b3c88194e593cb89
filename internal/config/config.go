// Package config loads and validates the feeder configuration from Viper
// (config file plus RECIPEFEED_* environment variables).
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds the complete application configuration.
type Config struct {
	API      APIConfig      `mapstructure:"api"`
	Feeder   FeederConfig   `mapstructure:"feeder"`
	Database DatabaseConfig `mapstructure:"database"`
	NATS     NATSConfig     `mapstructure:"nats"`
	Log      LogConfig      `mapstructure:"log"`
}

// APIConfig holds the HTTP shell configuration.
type APIConfig struct {
	Host         string        `mapstructure:"host"`
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// FeederConfig holds the recognized feeding run options. Defaults are
// applied at construction time via viper defaults; there are no ad hoc
// environment lookups in the feeding logic itself.
type FeederConfig struct {
	// TargetQueueCount is the number of missing recipes to aim for per cycle.
	TargetQueueCount int `mapstructure:"target_queue_count" yaml:"target_queue_count"`
	// MaxCycles bounds the number of cycles per invocation.
	MaxCycles int `mapstructure:"max_cycles" yaml:"max_cycles"`
	// MaxProcessingTime is the soft wall-clock budget per invocation,
	// checked between cycles only.
	MaxProcessingTime time.Duration `mapstructure:"max_processing_time" yaml:"max_processing_time"`
	// InnerScanBatchSize is the page size used while accumulating toward
	// the target.
	InnerScanBatchSize int `mapstructure:"inner_scan_batch_size" yaml:"inner_scan_batch_size"`
	// ChunkSize is the queue publish chunk size.
	ChunkSize int `mapstructure:"chunk_size" yaml:"chunk_size"`
	// CheckConcurrency is the existence check fan-out. Values below 2 keep
	// the checker sequential.
	CheckConcurrency int `mapstructure:"check_concurrency" yaml:"check_concurrency"`
}

// Validate checks the feeder configuration ranges.
func (f FeederConfig) Validate() error {
	if f.TargetQueueCount < 1 {
		return errors.New("feeder.target_queue_count must be at least 1")
	}
	if f.MaxCycles < 1 {
		return errors.New("feeder.max_cycles must be at least 1")
	}
	if f.MaxProcessingTime <= 0 {
		return errors.New("feeder.max_processing_time must be positive")
	}
	if f.InnerScanBatchSize < 1 {
		return errors.New("feeder.inner_scan_batch_size must be at least 1")
	}
	if f.ChunkSize < 1 {
		return errors.New("feeder.chunk_size must be at least 1")
	}
	if f.CheckConcurrency < 0 {
		return errors.New("feeder.check_concurrency cannot be negative")
	}
	return nil
}

// DatabaseConfig holds database configuration for the recipe store and the
// vector index (both live in the same PostgreSQL instance).
type DatabaseConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	Name           string `mapstructure:"name"`
	SSLMode        string `mapstructure:"sslmode"`
	MaxConnections int    `mapstructure:"max_connections"`
	MinConnections int    `mapstructure:"min_connections"`
}

// DSN returns the database connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// NATSConfig holds NATS configuration for the embedding work queue.
type NATSConfig struct {
	URL           string        `mapstructure:"url"`
	MaxReconnects int           `mapstructure:"max_reconnects"`
	ReconnectWait time.Duration `mapstructure:"reconnect_wait"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// New creates a new Config instance from Viper.
func New(v *viper.Viper) *Config {
	var config Config

	if err := v.Unmarshal(&config); err != nil {
		panic(fmt.Errorf("unable to decode config: %w", err))
	}

	if err := config.Validate(); err != nil {
		panic(fmt.Errorf("invalid configuration: %w", err))
	}

	return &config
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Database.User == "" {
		return errors.New("database.user is required")
	}

	if c.Database.Name == "" {
		return errors.New("database.name is required")
	}

	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return errors.New("database.port must be between 1 and 65535")
	}

	return c.Feeder.Validate()
}
