// Package config loads the application configuration from defaults,
// an optional YAML file, OBJFS_-prefixed environment variables, and
// runtime overrides, in increasing order of precedence.
package config

import "time"

// Config is the fully resolved application configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
	Health  HealthConfig  `mapstructure:"health" yaml:"health"`
	Debug   DebugConfig   `mapstructure:"debug" yaml:"debug"`
	Backend BackendConfig `mapstructure:"backend" yaml:"backend"`
	FS      FSConfig      `mapstructure:"fs" yaml:"fs"`
	Workers int           `mapstructure:"workers" yaml:"workers"`
}

// ServerConfig configures the ops HTTP server.
type ServerConfig struct {
	Host            string        `mapstructure:"host" yaml:"host"`
	Port            int           `mapstructure:"port" yaml:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// LoggingConfig configures the CLI logger.
type LoggingConfig struct {
	Level   string `mapstructure:"level" yaml:"level"`
	Profile string `mapstructure:"profile" yaml:"profile"`
}

// HealthConfig toggles health endpoints.
type HealthConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
}

// DebugConfig toggles debug facilities.
type DebugConfig struct {
	Enabled      bool `mapstructure:"enabled" yaml:"enabled"`
	PprofEnabled bool `mapstructure:"pprof_enabled" yaml:"pprof_enabled"`
}

// BackendConfig selects and configures the object-store backend.
type BackendConfig struct {
	// Driver is "s3" or "memory".
	Driver string `mapstructure:"driver" yaml:"driver"`

	Bucket          string `mapstructure:"bucket" yaml:"bucket"`
	Region          string `mapstructure:"region" yaml:"region"`
	Endpoint        string `mapstructure:"endpoint" yaml:"endpoint"`
	Profile         string `mapstructure:"profile" yaml:"profile"`
	AccessKeyID     string `mapstructure:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key" yaml:"secret_access_key"`
	ForcePathStyle  bool   `mapstructure:"force_path_style" yaml:"force_path_style"`
	FolderSuffix    string `mapstructure:"folder_suffix" yaml:"folder_suffix"`
	PageSize        int    `mapstructure:"page_size" yaml:"page_size"`
}

// FSConfig tunes the filesystem emulation layer.
type FSConfig struct {
	// BlockSize is the block size reported for files, in bytes.
	BlockSize int64 `mapstructure:"block_size" yaml:"block_size"`

	// MutationRate caps mutating backend calls per second during
	// recursive operations. Zero disables rate limiting.
	MutationRate float64 `mapstructure:"mutation_rate" yaml:"mutation_rate"`
}
