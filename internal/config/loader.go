// Package config loads handlecheck configuration through viper: built-in
// defaults, an optional YAML file and HANDLECHECK_* environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	gfconfig "github.com/fulmenhq/gofulmen/config"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/namelens/handlecheck/internal/appid"
	"github.com/namelens/handlecheck/internal/core"
	"github.com/namelens/handlecheck/internal/core/checker"
)

var (
	// appConfig holds the current application configuration
	appConfig *Config
	configMu  sync.RWMutex
)

var validLogLevels = map[string]bool{
	"trace": true, "debug": true, "info": true, "warn": true, "warning": true, "error": true,
}

// SetDefaults registers every known key on v. Keys must be registered for
// AutomaticEnv to reach them through AllSettings.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("probe.timeout", checker.DefaultProbeTimeout)
	v.SetDefault("probe.user_agent", checker.DefaultUserAgent)
	v.SetDefault("probe.max_redirects", checker.DefaultMaxRedirects)
	v.SetDefault("probe.max_body_bytes", checker.DefaultMaxBodyBytes)

	v.SetDefault("check.preset", core.DefaultPreset)

	v.SetDefault("domain.rdap_timeout", 10*time.Second)
	v.SetDefault("domain.rdap_overrides", checker.DefaultRDAPOverrides)
	v.SetDefault("domain.bootstrap_url", checker.DefaultBootstrapURL)

	v.SetDefault("domain.whois_fallback.enabled", true)
	v.SetDefault("domain.whois_fallback.tlds", []string{})
	v.SetDefault("domain.whois_fallback.require_explicit", false)
	v.SetDefault("domain.whois_fallback.timeout", 5*time.Second)
	v.SetDefault("domain.whois_fallback.servers", map[string]string{})
	v.SetDefault("domain.whois_fallback.available_patterns", []string{})
	v.SetDefault("domain.whois_fallback.taken_patterns", []string{})

	v.SetDefault("domain.dns_fallback.enabled", false)
	v.SetDefault("domain.dns_fallback.timeout", 3*time.Second)

	v.SetDefault("logging.level", "info")

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.port", 9090)

	v.SetDefault("debug.enabled", false)
	v.SetDefault("debug.capture_dir", "")
}

// NewViper returns a viper instance with defaults and environment binding
// configured for the application identity.
func NewViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	BindEnv(v)
	return v
}

// BindEnv maps HANDLECHECK_PROBE_TIMEOUT style variables onto dotted keys.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(appid.Get().EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
}

// AddConfigPaths points v at the standard config locations: the XDG app
// config dir, then ./config.
func AddConfigPaths(v *viper.Viper) {
	identity := appid.Get()
	if dir := gfconfig.GetAppConfigDir(identity.ConfigName); strings.TrimSpace(dir) != "" {
		v.AddConfigPath(dir)
	} else if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, "."+identity.ConfigName))
	}
	v.AddConfigPath("./config")
	v.SetConfigName("config")
	v.SetConfigType("yaml")
}

// Load decodes v's merged settings into a Config, validates it and stores it
// as the current configuration. Runtime overrides merge over the config file
// layer; environment variables still win.
func Load(v *viper.Viper, runtimeOverrides ...map[string]any) (*Config, error) {
	if v == nil {
		v = NewViper()
	}

	for _, overrides := range runtimeOverrides {
		if err := v.MergeConfigMap(overrides); err != nil {
			return nil, fmt.Errorf("failed to apply overrides: %w", err)
		}
	}

	// Unmarshal into typed config struct
	cfg := &Config{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}

	if err := decoder.Decode(v.AllSettings()); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	normalize(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	setConfig(cfg)

	return cfg, nil
}

// Validate rejects settings the checkers cannot run with.
func (c *Config) Validate() error {
	if c.Probe.Timeout <= 0 {
		return fmt.Errorf("probe.timeout must be positive, got %s", c.Probe.Timeout)
	}
	if c.Probe.MaxRedirects < 1 {
		return fmt.Errorf("probe.max_redirects must be at least 1, got %d", c.Probe.MaxRedirects)
	}
	if c.Probe.MaxBodyBytes <= 0 {
		return fmt.Errorf("probe.max_body_bytes must be positive, got %d", c.Probe.MaxBodyBytes)
	}
	if c.Domain.RDAPTimeout <= 0 {
		return fmt.Errorf("domain.rdap_timeout must be positive, got %s", c.Domain.RDAPTimeout)
	}
	if c.Domain.WhoisFallback.Timeout <= 0 {
		return fmt.Errorf("domain.whois_fallback.timeout must be positive, got %s", c.Domain.WhoisFallback.Timeout)
	}
	if c.Domain.DNSFallback.Timeout <= 0 {
		return fmt.Errorf("domain.dns_fallback.timeout must be positive, got %s", c.Domain.DNSFallback.Timeout)
	}
	if c.Metrics.Port < 0 || c.Metrics.Port > 65535 {
		return fmt.Errorf("metrics.port out of range: %d", c.Metrics.Port)
	}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level %q is not one of trace, debug, info, warn, error", c.Logging.Level)
	}
	if _, ok := core.FindPreset(c.Check.Preset); !ok {
		return fmt.Errorf("check.preset %q is not a known preset", c.Check.Preset)
	}
	return nil
}

// normalize trims and lowercases fields compared by value later.
func normalize(cfg *Config) {
	cfg.Logging.Level = strings.ToLower(strings.TrimSpace(cfg.Logging.Level))
	cfg.Check.Preset = strings.ToLower(strings.TrimSpace(cfg.Check.Preset))
	cfg.Debug.CaptureDir = strings.TrimSpace(cfg.Debug.CaptureDir)

	if len(cfg.Domain.RDAPOverrides) > 0 {
		overrides := make(map[string][]string, len(cfg.Domain.RDAPOverrides))
		for tld, servers := range cfg.Domain.RDAPOverrides {
			key := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(tld)), ".")
			if key == "" || len(servers) == 0 {
				continue
			}
			overrides[key] = servers
		}
		cfg.Domain.RDAPOverrides = overrides
	}
}

// GetConfig returns the current application configuration (thread-safe)
func GetConfig() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return appConfig
}

// setConfig updates the current configuration (thread-safe)
func setConfig(cfg *Config) {
	configMu.Lock()
	defer configMu.Unlock()
	appConfig = cfg
}

// DefaultConfigPath returns the XDG-compliant path to the user config file.
func DefaultConfigPath() string {
	configDir := gfconfig.GetAppConfigDir(appid.Get().ConfigName)
	if strings.TrimSpace(configDir) == "" {
		return ""
	}
	return filepath.Join(configDir, "config.yaml")
}
