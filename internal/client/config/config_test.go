package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()

	require.Equal(t, "http://localhost:8080", cfg.ServerBaseURL)
	require.Equal(t, "identgate", cfg.DeepLinkScheme)
	require.Equal(t, "magic-link", cfg.DeepLinkHost)
	require.Equal(t, 30*time.Second, cfg.ResendCooldown)
	require.NotEmpty(t, cfg.SessionFile)
}

func TestEnvOverridesDefaults(t *testing.T) {
	t.Setenv("IDENTITY_SERVICE_URL", "http://10.0.0.5:9090")
	t.Setenv("RESEND_COOLDOWN_SECONDS", "45")
	t.Setenv("SESSION_FILE", "/tmp/s.json")

	cfg := LoadConfig()

	require.Equal(t, "http://10.0.0.5:9090", cfg.ServerBaseURL)
	require.Equal(t, 45*time.Second, cfg.ResendCooldown)
	require.Equal(t, "/tmp/s.json", cfg.SessionFile)
}

func TestEnvInvalidCooldownKeepsDefault(t *testing.T) {
	t.Setenv("RESEND_COOLDOWN_SECONDS", "nope")

	cfg := LoadConfig()

	require.Equal(t, 30*time.Second, cfg.ResendCooldown)
}
