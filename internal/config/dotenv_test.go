package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDotEnvFeedsViper(t *testing.T) {
	const key = "HANDLECHECK_PROBE_TIMEOUT"
	_, wasSet := os.LookupEnv(key)
	require.False(t, wasSet, "test expects %s to be unset", key)
	t.Cleanup(func() { _ = os.Unsetenv(key) })

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(key+"=7s\n"), 0o600))

	require.NoError(t, LoadDotEnv(path))

	cfg, err := Load(NewViper())
	require.NoError(t, err)
	require.Equal(t, 7*time.Second, cfg.Probe.Timeout)
}

func TestLoadDotEnvKeepsExistingEnv(t *testing.T) {
	t.Setenv("HANDLECHECK_LOGGING_LEVEL", "warn")

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("HANDLECHECK_LOGGING_LEVEL=debug\n"), 0o600))

	require.NoError(t, LoadDotEnv(path))
	require.Equal(t, "warn", os.Getenv("HANDLECHECK_LOGGING_LEVEL"))
}

func TestLoadDotEnvMissingFile(t *testing.T) {
	require.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "absent.env")))
}
