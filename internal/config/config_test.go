package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-auth-relay/internal/config"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("GOOGLE_CLIENT_ID", "client-id")
	t.Setenv("GOOGLE_CLIENT_SECRET", "client-secret")
	t.Setenv("GOOGLE_REDIRECT_URI", "http://localhost:3001/auth/callback")
	t.Setenv("STATE_SIGNING_SECRET", "signing-secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := config.Load()
	require.NoError(t, err)

	require.Equal(t, "3001", cfg.Port)
	require.Equal(t, ":3001", cfg.ListenAddr())
	require.Equal(t, "http://localhost:5173", cfg.FrontendURL)
	require.Equal(t, "https://accounts.google.com", cfg.IssuerURL)
	require.Equal(t, 10*time.Second, cfg.ProviderTimeout)
	require.Equal(t, 10*time.Minute, cfg.SweepInterval)
}

func TestLoadOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", ":9090")
	t.Setenv("SWEEP_INTERVAL", "1m")

	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.ListenAddr())
	require.Equal(t, time.Minute, cfg.SweepInterval)
}

// Secrets have no compiled-in fallback: a blank or absent value refuses
// to start the process.
func TestLoadRejectsMissingSecret(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("GOOGLE_CLIENT_SECRET", "")

	_, err := config.Load()
	require.Error(t, err)
}
