package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultValues(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, "4000", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 800, cfg.TopicCapacity)
	assert.Equal(t, 15*time.Second, cfg.KeepAliveInterval)
	assert.Equal(t, "web/static", cfg.AssetsDir)
	assert.Equal(t, "*", cfg.CORSAllowedOrigins)
	assert.Equal(t, int64(10000), cfg.MaxStreamConnections)
	assert.Equal(t, 32, cfg.MaxStreamConnectionsPerIP)
	assert.Equal(t, 10.0, cfg.StreamConnectionRate)
	assert.Equal(t, 20, cfg.StreamConnectionBurst)
}

func TestLoad_CustomValues(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("PORT", "9090")
	t.Setenv("TOPIC_CAPACITY", "64")
	t.Setenv("KEEPALIVE_INTERVAL", "5s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://example.com,https://example.org")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.AppEnv)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 64, cfg.TopicCapacity)
	assert.Equal(t, 5*time.Second, cfg.KeepAliveInterval)
	assert.Equal(t, "https://example.com,https://example.org", cfg.CORSAllowedOrigins)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		envVar  string
		value   string
		wantErr string
	}{
		{"zero topic capacity", "TOPIC_CAPACITY", "0", "TOPIC_CAPACITY must be at least 1"},
		{"negative topic capacity", "TOPIC_CAPACITY", "-1", "TOPIC_CAPACITY must be at least 1"},
		{"sub-second keepalive", "KEEPALIVE_INTERVAL", "100ms", "KEEPALIVE_INTERVAL must be at least 1s"},
		{"zero max connections", "MAX_STREAM_CONNECTIONS", "0", "MAX_STREAM_CONNECTIONS must be at least 1"},
		{"zero per-ip connections", "MAX_STREAM_CONNECTIONS_PER_IP", "0", "MAX_STREAM_CONNECTIONS_PER_IP must be at least 1"},
		{"zero connection rate", "STREAM_CONNECTION_RATE", "0", "STREAM_CONNECTION_RATE must be positive"},
		{"zero connection burst", "STREAM_CONNECTION_BURST", "0", "STREAM_CONNECTION_BURST must be at least 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.envVar, tt.value)

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
