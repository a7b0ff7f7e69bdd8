// internal/config/config.go
package config

import (
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Default configuration values
const (
	DefaultCacheTTL          = 30 * time.Minute
	DefaultCacheMaxSize      = 1000
	DefaultSweepInterval     = 5 * time.Minute
	DefaultExtractionTimeout = 10 * time.Second
	DefaultBatchWindowSize   = 5
	DefaultListenAddress     = ":8080"
)

// EngineConfig is the top-level ClipSense configuration.
type EngineConfig struct {
	Cache      CacheConfig      `yaml:"cache" json:"cache"`
	Extraction ExtractionConfig `yaml:"extraction" json:"extraction"`
	Batch      BatchConfig      `yaml:"batch" json:"batch"`
	Learning   LearningConfig   `yaml:"learning" json:"learning"`
	Rules      RulesConfig      `yaml:"rules" json:"rules"`
	Server     ServerConfig     `yaml:"server" json:"server"`
	LogLevel   string           `yaml:"log_level" json:"log_level"`
}

// CacheConfig configures the detection result cache.
type CacheConfig struct {
	TTL           time.Duration `yaml:"ttl" json:"ttl"`
	MaxSize       int           `yaml:"max_size" json:"max_size"`
	SweepInterval time.Duration `yaml:"sweep_interval" json:"sweep_interval"`
}

// ExtractionConfig configures the metadata extraction chain.
type ExtractionConfig struct {
	StepTimeout time.Duration `yaml:"step_timeout" json:"step_timeout"`
	UserAgent   string        `yaml:"user_agent" json:"user_agent"`
}

// BatchConfig configures batch detection.
type BatchConfig struct {
	WindowSize int `yaml:"window_size" json:"window_size"`
}

// LearningConfig configures the decision history.
type LearningConfig struct {
	Enabled     bool   `yaml:"enabled" json:"enabled"`
	HistoryPath string `yaml:"history_path" json:"history_path"`
}

// RulesConfig points at optional platform rule files.
type RulesConfig struct {
	File string `yaml:"file" json:"file"`
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	ListenAddress string `yaml:"listen_address" json:"listen_address"`
}

// Default returns the configuration used when no file is given.
func Default() *EngineConfig {
	config := &EngineConfig{}
	applyDefaults(config)
	return config
}

// LoadFromFile loads configuration from a YAML file.
func LoadFromFile(filename string) (*EngineConfig, error) {
	if filename == "" {
		return nil, fmt.Errorf("configuration filename cannot be empty")
	}
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", filename)
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file: %v", err)
	}

	return LoadFromBytes(data)
}

// LoadFromBytes loads configuration from YAML bytes. Environment variables
// in the form $VAR or ${VAR} are expanded before parsing.
func LoadFromBytes(data []byte) (*EngineConfig, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("configuration data cannot be empty")
	}

	expanded := os.ExpandEnv(string(data))

	var config EngineConfig
	if err := yaml.Unmarshal([]byte(expanded), &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML configuration: %v", err)
	}

	applyDefaults(&config)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %v", err)
	}

	return &config, nil
}

// LoadFromReader loads configuration from an io.Reader.
func LoadFromReader(reader io.Reader) (*EngineConfig, error) {
	if reader == nil {
		return nil, fmt.Errorf("reader cannot be nil")
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read from reader: %v", err)
	}

	return LoadFromBytes(data)
}

// applyDefaults fills zero-valued fields with defaults.
func applyDefaults(config *EngineConfig) {
	if config.Cache.TTL == 0 {
		config.Cache.TTL = DefaultCacheTTL
	}
	if config.Cache.MaxSize == 0 {
		config.Cache.MaxSize = DefaultCacheMaxSize
	}
	if config.Cache.SweepInterval == 0 {
		config.Cache.SweepInterval = DefaultSweepInterval
	}
	if config.Extraction.StepTimeout == 0 {
		config.Extraction.StepTimeout = DefaultExtractionTimeout
	}
	if config.Batch.WindowSize == 0 {
		config.Batch.WindowSize = DefaultBatchWindowSize
	}
	if config.Server.ListenAddress == "" {
		config.Server.ListenAddress = DefaultListenAddress
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
}

// Validate checks the configuration for usable values.
func (c *EngineConfig) Validate() error {
	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl cannot be negative")
	}
	if c.Cache.MaxSize < 1 {
		return fmt.Errorf("cache.max_size must be at least 1")
	}
	if c.Extraction.StepTimeout < 0 {
		return fmt.Errorf("extraction.step_timeout cannot be negative")
	}
	if c.Batch.WindowSize < 1 {
		return fmt.Errorf("batch.window_size must be at least 1")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be one of debug, info, warn, error")
	}
	return nil
}
