package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTP.Port)
	assert.False(t, cfg.HTTP.EnableHTTPS)
	assert.Equal(t, "devsecret", cfg.JWT.Secret)
	assert.Equal(t, "avatars", cfg.Storage.Bucket)
	assert.Equal(t, "http://localhost:8080", cfg.Site.BaseURL)
}

func TestNewConfig_Overrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("LOG_LEVEL", "-4")
	t.Setenv("MINIO_BUCKET_NAME", "user-avatars")
	t.Setenv("SITE_BASE_URL", "https://example.com")

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.HTTP.Port)
	assert.Equal(t, -4, cfg.LogLevel)
	assert.Equal(t, "user-avatars", cfg.Storage.Bucket)
	assert.Equal(t, "https://example.com", cfg.Site.BaseURL)
}
