package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/foxzi/planry/internal/plan"
	"github.com/foxzi/planry/internal/ratelimit"
)

// Config is the main configuration structure
type Config struct {
	API     APIConfig     `yaml:"api" envPrefix:"API_"`
	Planner PlannerConfig `yaml:"planner" envPrefix:"PLANNER_"`
	Storage StorageConfig `yaml:"storage" envPrefix:"STORAGE_"`
	Logging LoggingConfig `yaml:"logging" envPrefix:"LOGGING_"`
	Metrics MetricsConfig `yaml:"metrics" envPrefix:"METRICS_"`
}

// APIConfig contains HTTP API settings
type APIConfig struct {
	ListenAddr     string        `yaml:"listen_addr" env:"LISTEN_ADDR"`
	APIKey         string        `yaml:"api_key" env:"KEY"`
	APIKeyHash     string        `yaml:"api_key_hash" env:"KEY_HASH"` // bcrypt hash, alternative to api_key
	MaxHeaderBytes int           `yaml:"max_header_bytes"`
	ReadTimeout    time.Duration `yaml:"read_timeout" env:"READ_TIMEOUT"`
	WriteTimeout   time.Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT"`
	IdleTimeout    time.Duration `yaml:"idle_timeout" env:"IDLE_TIMEOUT"`
	AllowedIPs     []string      `yaml:"allowed_ips" env:"ALLOWED_IPS"`
	CORSOrigins    []string      `yaml:"cors_origins" env:"CORS_ORIGINS"`

	RateLimit ratelimit.Config `yaml:"rate_limit" envPrefix:"RATE_LIMIT_"`
}

// AuthRequired returns true if requests must carry an API key
func (c APIConfig) AuthRequired() bool {
	return c.APIKey != "" || c.APIKeyHash != ""
}

// PlannerConfig contains session settings. Zero values take the defaults;
// a negative max_sessions (-1) or session_ttl (-1s) turns the limit off.
type PlannerConfig struct {
	DefaultDuration int           `yaml:"default_duration" env:"DEFAULT_DURATION"` // weeks for new sessions
	SessionTTL      time.Duration `yaml:"session_ttl" env:"SESSION_TTL"`           // idle time before a session is dropped
	MaxSessions     int           `yaml:"max_sessions" env:"MAX_SESSIONS"`
	CleanupInterval time.Duration `yaml:"cleanup_interval" env:"CLEANUP_INTERVAL"`
}

// SessionLimit returns the session cap, 0 meaning unlimited
func (p PlannerConfig) SessionLimit() int {
	if p.MaxSessions < 0 {
		return 0
	}
	return p.MaxSessions
}

// SessionExpiry returns the idle TTL, 0 meaning sessions never expire
func (p PlannerConfig) SessionExpiry() time.Duration {
	if p.SessionTTL < 0 {
		return 0
	}
	return p.SessionTTL
}

// StorageConfig contains export archive settings
type StorageConfig struct {
	Path string `yaml:"path" env:"PATH"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `yaml:"level" env:"LEVEL"`   // debug, info, warn, error
	Format string `yaml:"format" env:"FORMAT"` // json, text
}

// MetricsConfig contains Prometheus metrics settings
type MetricsConfig struct {
	Enabled         bool          `yaml:"enabled" env:"ENABLED"`
	ListenAddr      string        `yaml:"listen_addr" env:"LISTEN_ADDR"`
	Path            string        `yaml:"path" env:"PATH"`
	CollectInterval time.Duration `yaml:"collect_interval"`
	AllowedIPs      []string      `yaml:"allowed_ips" env:"ALLOWED_IPS"`
}

// EnvPrefix prefixes every environment override
const EnvPrefix = "PLANRY_"

// Load loads configuration from a YAML file, then applies PLANRY_*
// environment overrides
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return finish(cfg)
}

// LoadEnv builds a configuration from defaults and environment variables only
func LoadEnv() (*Config, error) {
	return finish(&Config{})
}

func finish(cfg *Config) (*Config, error) {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setDefaults sets default values for configuration
func (c *Config) setDefaults() {
	if c.API.ListenAddr == "" {
		c.API.ListenAddr = ":8080"
	}
	if c.API.MaxHeaderBytes == 0 {
		c.API.MaxHeaderBytes = 1 << 20 // 1 MB
	}
	if c.API.ReadTimeout == 0 {
		c.API.ReadTimeout = 30 * time.Second
	}
	if c.API.WriteTimeout == 0 {
		c.API.WriteTimeout = 30 * time.Second
	}
	if c.API.IdleTimeout == 0 {
		c.API.IdleTimeout = 60 * time.Second
	}

	if c.Planner.DefaultDuration == 0 {
		c.Planner.DefaultDuration = plan.DefaultDuration
	}
	if c.Planner.SessionTTL == 0 {
		c.Planner.SessionTTL = 24 * time.Hour
	}
	if c.Planner.MaxSessions == 0 {
		c.Planner.MaxSessions = 1000
	}
	if c.Planner.CleanupInterval == 0 {
		c.Planner.CleanupInterval = 10 * time.Minute
	}

	if c.Storage.Path == "" {
		c.Storage.Path = "/var/lib/planry/archive.db"
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}

	if c.Metrics.ListenAddr == "" {
		c.Metrics.ListenAddr = ":9090"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Metrics.CollectInterval == 0 {
		c.Metrics.CollectInterval = 10 * time.Second
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.API.APIKey != "" && c.API.APIKeyHash != "" {
		return fmt.Errorf("api.api_key and api.api_key_hash are mutually exclusive")
	}

	if !plan.ValidDuration(c.Planner.DefaultDuration) {
		return fmt.Errorf("invalid planner.default_duration: %d (must be 4, 6 or 8)", c.Planner.DefaultDuration)
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("invalid logging.level: %s (must be debug, info, warn, or error)", c.Logging.Level)
	}

	validLogFormats := map[string]bool{"json": true, "text": true}
	if !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("invalid logging.format: %s (must be json or text)", c.Logging.Format)
	}

	return nil
}
