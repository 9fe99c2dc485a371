package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/namelens/handlecheck/internal/core/checker"
)

func TestLoad(t *testing.T) {
	// Test basic config loading with defaults
	t.Run("LoadDefaults", func(t *testing.T) {
		cfg, err := Load(NewViper())
		require.NoError(t, err)
		require.NotNil(t, cfg)

		// Verify probe defaults
		assert.Equal(t, 10*time.Second, cfg.Probe.Timeout)
		assert.Equal(t, checker.DefaultUserAgent, cfg.Probe.UserAgent)
		assert.Equal(t, 5, cfg.Probe.MaxRedirects)
		assert.Equal(t, int64(5*1024*1024), cfg.Probe.MaxBodyBytes)

		// Verify check defaults
		assert.Equal(t, "startup", cfg.Check.Preset)

		// Verify domain defaults
		assert.Equal(t, 10*time.Second, cfg.Domain.RDAPTimeout)
		assert.Equal(t, checker.DefaultBootstrapURL, cfg.Domain.BootstrapURL)
		assert.Equal(t, checker.DefaultRDAPOverrides["dev"], cfg.Domain.RDAPOverrides["dev"])
		assert.True(t, cfg.Domain.WhoisFallback.Enabled)
		assert.False(t, cfg.Domain.WhoisFallback.RequireExplicit)
		assert.Equal(t, 5*time.Second, cfg.Domain.WhoisFallback.Timeout)
		assert.False(t, cfg.Domain.DNSFallback.Enabled)

		// Verify ambient defaults
		assert.Equal(t, "info", cfg.Logging.Level)
		assert.False(t, cfg.Metrics.Enabled)
		assert.Equal(t, 9090, cfg.Metrics.Port)
		assert.False(t, cfg.Debug.Enabled)
		assert.Empty(t, cfg.Debug.CaptureDir)

		assert.Same(t, cfg, GetConfig())
	})

	// Test runtime overrides
	t.Run("RuntimeOverrides", func(t *testing.T) {
		overrides := map[string]any{
			"probe": map[string]any{
				"timeout": "3s",
			},
			"logging": map[string]any{
				"level": "DEBUG",
			},
		}

		cfg, err := Load(NewViper(), overrides)
		require.NoError(t, err)

		assert.Equal(t, 3*time.Second, cfg.Probe.Timeout)
		assert.Equal(t, "debug", cfg.Logging.Level)
		assert.Equal(t, 5, cfg.Probe.MaxRedirects)
	})

	t.Run("EnvironmentVariables", func(t *testing.T) {
		t.Setenv("HANDLECHECK_PROBE_TIMEOUT", "7s")
		t.Setenv("HANDLECHECK_CHECK_PRESET", "country")
		t.Setenv("HANDLECHECK_DOMAIN_WHOIS_FALLBACK_TLDS", "io,ai")
		t.Setenv("HANDLECHECK_DOMAIN_DNS_FALLBACK_ENABLED", "true")
		t.Setenv("HANDLECHECK_METRICS_PORT", "0")

		cfg, err := Load(NewViper())
		require.NoError(t, err)

		assert.Equal(t, 7*time.Second, cfg.Probe.Timeout)
		assert.Equal(t, "country", cfg.Check.Preset)
		assert.Equal(t, []string{"io", "ai"}, cfg.Domain.WhoisFallback.TLDs)
		assert.True(t, cfg.Domain.DNSFallback.Enabled)
		assert.Equal(t, 0, cfg.Metrics.Port)
	})

	t.Run("ConfigFile", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.yaml")
		content := `
probe:
  max_redirects: 2
domain:
  rdap_overrides:
    XYZ:
      - https://rdap.example.xyz/
  whois_fallback:
    require_explicit: true
    tlds: [io]
debug:
  enabled: true
  capture_dir: " /tmp/handlecheck "
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		v := NewViper()
		v.SetConfigFile(path)
		require.NoError(t, v.ReadInConfig())

		cfg, err := Load(v)
		require.NoError(t, err)

		assert.Equal(t, 2, cfg.Probe.MaxRedirects)
		assert.Equal(t, []string{"https://rdap.example.xyz/"}, cfg.Domain.RDAPOverrides["xyz"])
		assert.True(t, cfg.Domain.WhoisFallback.RequireExplicit)
		assert.Equal(t, []string{"io"}, cfg.Domain.WhoisFallback.TLDs)
		assert.True(t, cfg.Debug.Enabled)
		assert.Equal(t, "/tmp/handlecheck", cfg.Debug.CaptureDir)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		overrides map[string]any
		wantErr   string
	}{
		{name: "zero probe timeout", overrides: map[string]any{"probe": map[string]any{"timeout": "0s"}}, wantErr: "probe.timeout"},
		{name: "zero redirects", overrides: map[string]any{"probe": map[string]any{"max_redirects": 0}}, wantErr: "probe.max_redirects"},
		{name: "negative redirects", overrides: map[string]any{"probe": map[string]any{"max_redirects": -1}}, wantErr: "probe.max_redirects"},
		{name: "negative rdap timeout", overrides: map[string]any{"domain": map[string]any{"rdap_timeout": "-1s"}}, wantErr: "domain.rdap_timeout"},
		{name: "bad log level", overrides: map[string]any{"logging": map[string]any{"level": "loud"}}, wantErr: "logging.level"},
		{name: "unknown preset", overrides: map[string]any{"check": map[string]any{"preset": "galaxy"}}, wantErr: "check.preset"},
		{name: "metrics port", overrides: map[string]any{"metrics": map[string]any{"port": 70000}}, wantErr: "metrics.port"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(NewViper(), tt.overrides)
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
