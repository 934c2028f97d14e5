// Package config loads and validates enricher configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Extract  ExtractConfig  `mapstructure:"extract"`
	DB       DBConfig       `mapstructure:"db"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// AuthConfig defines API authentication toggles.
type AuthConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	APIKey  string `mapstructure:"api_key"`
}

// PipelineConfig caps in-flight work per enrichment stage.
type PipelineConfig struct {
	ProbeConcurrency   int `mapstructure:"probe_concurrency"`
	RecheckConcurrency int `mapstructure:"recheck_concurrency"`
	FetchConcurrency   int `mapstructure:"fetch_concurrency"`
	ProgressEvery      int `mapstructure:"progress_every"`
}

// HTTPConfig configures outbound request timeouts, pacing, and retries.
type HTTPConfig struct {
	ProbeTimeoutSeconds   int     `mapstructure:"probe_timeout_seconds"`
	RecheckTimeoutSeconds int     `mapstructure:"recheck_timeout_seconds"`
	FetchTimeoutSeconds   int     `mapstructure:"fetch_timeout_seconds"`
	MaxRetries            int     `mapstructure:"max_retries"`
	BackoffInitialMs      int     `mapstructure:"backoff_initial_ms"`
	BackoffMaxMs          int     `mapstructure:"backoff_max_ms"`
	UserAgent             string  `mapstructure:"user_agent"`
	RequestsPerSecond     float64 `mapstructure:"requests_per_second"`
	Burst                 int     `mapstructure:"burst"`
}

// ExtractConfig governs contact extraction.
type ExtractConfig struct {
	SocialBlocklist []string `mapstructure:"social_blocklist"`
}

// DBConfig controls access to the relational database. An empty DSN keeps
// run history in memory only.
type DBConfig struct {
	DSN          string `mapstructure:"dsn"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("ENRICHER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("pipeline.probe_concurrency", 80)
	v.SetDefault("pipeline.recheck_concurrency", 25)
	v.SetDefault("pipeline.fetch_concurrency", 60)
	v.SetDefault("pipeline.progress_every", 100)
	v.SetDefault("http.probe_timeout_seconds", 5)
	v.SetDefault("http.recheck_timeout_seconds", 8)
	v.SetDefault("http.fetch_timeout_seconds", 10)
	v.SetDefault("http.max_retries", 3)
	v.SetDefault("http.backoff_initial_ms", 250)
	v.SetDefault("http.backoff_max_ms", 5000)
	v.SetDefault("http.user_agent", "contact-enricher/0.1")
	v.SetDefault("http.requests_per_second", 0)
	v.SetDefault("http.burst", 1)
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Pipeline.ProbeConcurrency <= 0 {
		return fmt.Errorf("pipeline.probe_concurrency must be > 0")
	}
	if c.Pipeline.RecheckConcurrency <= 0 {
		return fmt.Errorf("pipeline.recheck_concurrency must be > 0")
	}
	if c.Pipeline.FetchConcurrency <= 0 {
		return fmt.Errorf("pipeline.fetch_concurrency must be > 0")
	}
	if c.HTTP.ProbeTimeoutSeconds <= 0 || c.HTTP.FetchTimeoutSeconds <= 0 {
		return fmt.Errorf("http timeouts must be > 0")
	}
	if c.HTTP.MaxRetries < 0 {
		return fmt.Errorf("http.max_retries must be >= 0")
	}
	if c.Auth.Enabled && c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key must be set when auth is enabled")
	}
	return nil
}

// ProbeTimeout returns the HEAD probe timeout as a duration.
func (c Config) ProbeTimeout() time.Duration {
	return time.Duration(c.HTTP.ProbeTimeoutSeconds) * time.Second
}

// RecheckTimeout returns the GET recheck timeout as a duration.
func (c Config) RecheckTimeout() time.Duration {
	return time.Duration(c.HTTP.RecheckTimeoutSeconds) * time.Second
}

// FetchTimeout returns the content fetch timeout as a duration.
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.HTTP.FetchTimeoutSeconds) * time.Second
}

// BackoffInitial returns the first retry delay.
func (c Config) BackoffInitial() time.Duration {
	return time.Duration(c.HTTP.BackoffInitialMs) * time.Millisecond
}

// BackoffMax returns the retry delay ceiling.
func (c Config) BackoffMax() time.Duration {
	return time.Duration(c.HTTP.BackoffMaxMs) * time.Millisecond
}
