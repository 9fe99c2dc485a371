package appid

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	identity := Get()
	require.Equal(t, "handlecheck", identity.BinaryName)
	require.Equal(t, "HANDLECHECK", identity.EnvPrefix)
	require.NotEmpty(t, identity.Description)
}

func TestEnvVar(t *testing.T) {
	identity := Get()
	require.Equal(t, "HANDLECHECK_PROBE_TIMEOUT", identity.EnvVar("probe.timeout"))
	require.Equal(t, "HANDLECHECK_DOMAIN_WHOIS_FALLBACK_ENABLED", identity.EnvVar("domain.whois_fallback.enabled"))
}
