package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultRootURL is the country-level listing of the 2017 Chamber of Deputies election
const DefaultRootURL = "https://www.volby.cz/pls/ps2017nss/ps3?xjazyk=CZ"

// LayoutConfig overrides cell positions of the municipality results page.
// Nil fields keep the built-in layout.
type LayoutConfig struct {
	VotersCell     *int `json:"voters_cell"`
	EnvelopesCell  *int `json:"envelopes_cell"`
	ValidVotesCell *int `json:"valid_votes_cell"`
	HeaderRows     *int `json:"header_rows"`
}

// Config holds all runtime configuration parameters
type Config struct {
	RootURL           string       `json:"root_url"`
	ConcurrentWorkers int          `json:"concurrent_workers"`
	RequestTimeoutMs  int          `json:"request_timeout_ms"`
	RetryAttempts     int          `json:"retry_attempts"`
	RetryDelayMs      int          `json:"retry_delay_ms"`
	RequestDelayMs    int          `json:"request_delay_ms"`
	UserAgent         string       `json:"user_agent"`
	CachePath         string       `json:"cache_path"`
	CacheTTLHours     int          `json:"cache_ttl_hours"`
	MetricsPath       string       `json:"metrics_path"`
	LogLevel          string       `json:"log_level"`
	Layout            LayoutConfig `json:"layout"`
}

// LoadConfig reads and validates configuration from a JSON file.
// An empty path yields the defaults.
func LoadConfig(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open config file: %w", err)
		}
		defer file.Close()

		decoder := json.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for unspecified fields
func applyDefaults(cfg *Config) {
	if cfg.RootURL == "" {
		cfg.RootURL = DefaultRootURL
	}
	if cfg.ConcurrentWorkers == 0 {
		cfg.ConcurrentWorkers = 4
	}
	if cfg.RequestTimeoutMs == 0 {
		cfg.RequestTimeoutMs = 10000
	}
	if cfg.RetryAttempts == 0 {
		cfg.RetryAttempts = 3
	}
	if cfg.RetryDelayMs == 0 {
		cfg.RetryDelayMs = 2000
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "election-weaver/1.0"
	}
	if cfg.CacheTTLHours == 0 {
		cfg.CacheTTLHours = 24
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
}

// Validate checks that required fields are present and values are sensible
func (cfg *Config) Validate() error {
	parsed, err := url.Parse(cfg.RootURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("root_url must be an absolute URL")
	}
	if cfg.ConcurrentWorkers < 1 {
		return fmt.Errorf("concurrent_workers must be >= 1")
	}
	if cfg.RequestTimeoutMs < 1000 {
		return fmt.Errorf("request_timeout_ms must be >= 1000")
	}
	if cfg.RetryAttempts < 1 {
		return fmt.Errorf("retry_attempts must be >= 1")
	}
	if cfg.RetryDelayMs < 0 || cfg.RequestDelayMs < 0 {
		return fmt.Errorf("delays must be >= 0")
	}
	if cfg.CacheTTLHours < 1 {
		return fmt.Errorf("cache_ttl_hours must be >= 1")
	}
	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	for name, v := range map[string]*int{
		"voters_cell":      cfg.Layout.VotersCell,
		"envelopes_cell":   cfg.Layout.EnvelopesCell,
		"valid_votes_cell": cfg.Layout.ValidVotesCell,
		"header_rows":      cfg.Layout.HeaderRows,
	} {
		if v != nil && *v < 0 {
			return fmt.Errorf("layout.%s must be >= 0", name)
		}
	}
	return nil
}

// RequestTimeout returns the per-request timeout
func (cfg *Config) RequestTimeout() time.Duration {
	return time.Duration(cfg.RequestTimeoutMs) * time.Millisecond
}

// RetryDelay returns the pause between failed attempts
func (cfg *Config) RetryDelay() time.Duration {
	return time.Duration(cfg.RetryDelayMs) * time.Millisecond
}

// RequestDelay returns the pause between requests to the same host
func (cfg *Config) RequestDelay() time.Duration {
	return time.Duration(cfg.RequestDelayMs) * time.Millisecond
}

// CacheTTL returns how long cached pages stay valid
func (cfg *Config) CacheTTL() time.Duration {
	return time.Duration(cfg.CacheTTLHours) * time.Hour
}
