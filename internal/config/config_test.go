package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, ":3000", cfg.Server.Address)
	assert.Equal(t, "http://localhost:8000/api", cfg.API.BaseURL)
	assert.Equal(t, 5*time.Minute, cfg.API.Timeout)
	assert.Equal(t, "accessToken", cfg.Session.CookieName)
	assert.Equal(t, 24*time.Hour, cfg.Session.Lifetime)
	assert.False(t, cfg.Session.Secure)
	assert.Equal(t, int64(100*1024*1024), cfg.Upload.MaxBytes)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://api.example.com")
	t.Setenv("SERVER_ADDRESS", ":8080")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com", cfg.API.BaseURL)
	assert.Equal(t, ":8080", cfg.Server.Address)
}
