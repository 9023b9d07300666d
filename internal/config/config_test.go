package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("HOME", "/home/saki")
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8123/api", cfg.BaseURL)
	assert.Equal(t, "/api", cfg.BasePath())
	assert.Equal(t, "/home/saki/.authsession/token.json", cfg.StoreURL)
	assert.Equal(t, 7*24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 60*time.Second, cfg.Timeout)
	assert.Equal(t, "/user/login", cfg.LoginPath)
	assert.Equal(t, "/no-auth", cfg.NoAuthPath)
	assert.True(t, cfg.ClearOnUnauthenticated)
	assert.Empty(t, cfg.RedisURL)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("AUTHSESSION_BASE_URL", "https://api.example.com/v2/")
	t.Setenv("AUTHSESSION_REDIS_URL", "redis://localhost:6379/1")
	t.Setenv("AUTHSESSION_TOKEN_TTL", "1h")
	t.Setenv("AUTHSESSION_CLEAR_ON_UNAUTHENTICATED", "false")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/v2", cfg.BasePath())
	assert.Equal(t, "redis://localhost:6379/1", cfg.RedisURL)
	assert.Equal(t, time.Hour, cfg.TokenTTL)
	assert.False(t, cfg.ClearOnUnauthenticated)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr string
	}{
		{"non http base url", "AUTHSESSION_BASE_URL", "ftp://example.com", `AUTHSESSION_BASE_URL must be an http(s) URL, got "ftp://example.com"`},
		{"zero timeout", "AUTHSESSION_TIMEOUT", "0s", "AUTHSESSION_TIMEOUT must be positive"},
		{"relative login path", "AUTHSESSION_LOGIN_PATH", "login", "AUTHSESSION_LOGIN_PATH must start with /"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			require.Error(t, err)
			assert.Equal(t, tt.wantErr, err.Error())
		})
	}
}
