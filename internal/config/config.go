package config

import (
	"time"
)

// Config represents the complete application configuration, layered as
// built-in defaults, then the YAML config file, then HANDLECHECK_* variables.
type Config struct {
	Probe   ProbeConfig   `mapstructure:"probe"`
	Check   CheckConfig   `mapstructure:"check"`
	Domain  DomainConfig  `mapstructure:"domain"`
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Debug   DebugConfig   `mapstructure:"debug"`
}

// ProbeConfig controls the shared HTTP client used for profile pages.
type ProbeConfig struct {
	Timeout      time.Duration `mapstructure:"timeout"`
	UserAgent    string        `mapstructure:"user_agent"`
	MaxRedirects int           `mapstructure:"max_redirects"`
	MaxBodyBytes int64         `mapstructure:"max_body_bytes"`
}

// CheckConfig holds run defaults that flags may override.
type CheckConfig struct {
	// Preset names the TLD preset used when no custom list is given.
	Preset string `mapstructure:"preset"`
}

// DomainConfig contains domain checker configuration.
type DomainConfig struct {
	RDAPTimeout   time.Duration       `mapstructure:"rdap_timeout"`
	RDAPOverrides map[string][]string `mapstructure:"rdap_overrides"`
	BootstrapURL  string              `mapstructure:"bootstrap_url"`
	WhoisFallback WhoisFallbackConfig `mapstructure:"whois_fallback"`
	DNSFallback   DNSFallbackConfig   `mapstructure:"dns_fallback"`
}

// WhoisFallbackConfig configures RDAP fallback behavior.
type WhoisFallbackConfig struct {
	Enabled           bool              `mapstructure:"enabled"`
	TLDs              []string          `mapstructure:"tlds"`
	RequireExplicit   bool              `mapstructure:"require_explicit"`
	Timeout           time.Duration     `mapstructure:"timeout"`
	Servers           map[string]string `mapstructure:"servers"`
	AvailablePatterns []string          `mapstructure:"available_patterns"`
	TakenPatterns     []string          `mapstructure:"taken_patterns"`
}

// DNSFallbackConfig configures DNS-based fallback checks.
type DNSFallbackConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	// Level controls the minimum log level
	// Valid values: trace, debug, info, warn, error
	Level string `mapstructure:"level"`
}

// MetricsConfig contains Prometheus metrics configuration
type MetricsConfig struct {
	// Enabled starts a Prometheus exporter for the duration of the run
	Enabled bool `mapstructure:"enabled"`

	// Port is the exporter port; 0 picks a free one
	Port int `mapstructure:"port"`
}

// DebugConfig contains diagnostic capture configuration
type DebugConfig struct {
	// Enabled attaches page diagnostics to social results
	Enabled bool `mapstructure:"enabled"`

	// CaptureDir receives raw response bodies when debug is on.
	// Empty disables the dump.
	CaptureDir string `mapstructure:"capture_dir"`
}
