package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	long := strings.Repeat("s", 32)

	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"missing secret", Config{}, true},
		{"short secret in debug", Config{JWT: JWTConfig{Secret: "dev"}}, false},
		{"short secret in release", Config{Server: ServerConfig{Mode: "release"}, JWT: JWTConfig{Secret: "dev"}}, true},
		{"long secret in release", Config{Server: ServerConfig{Mode: "release"}, JWT: JWTConfig{Secret: long}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTTLDefaults(t *testing.T) {
	var jwt JWTConfig
	assert.Equal(t, time.Hour, jwt.AccessTTL())
	assert.Equal(t, 7*24*time.Hour, jwt.RefreshTTL())

	jwt = JWTConfig{AccessTTLMinutes: 15, RefreshTTLHours: 24}
	assert.Equal(t, 15*time.Minute, jwt.AccessTTL())
	assert.Equal(t, 24*time.Hour, jwt.RefreshTTL())
}

const testConfigYAML = `
server:
  port: "8080"
  mode: release
jwt:
  secret: short
  access_ttl_minutes: 30
cors:
  allowed_origins:
    - http://localhost:8081
rate_limit:
  max_requests: 10
`

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(testConfigYAML), 0644))

	audioDir := filepath.Join(dir, "audio")
	t.Setenv("STORAGE_LOCAL_PATH", audioDir)

	t.Run("release mode rejects a short secret", func(t *testing.T) {
		_, err := LoadConfig(dir)
		assert.Error(t, err)
	})

	t.Run("environment overrides the file", func(t *testing.T) {
		t.Setenv("JWT_SECRET", strings.Repeat("k", 40))
		t.Setenv("PORT", "9090")

		cfg, err := LoadConfig(dir)
		require.NoError(t, err)

		assert.Equal(t, "9090", cfg.Server.Port)
		assert.Equal(t, "release", cfg.Server.Mode)
		assert.Equal(t, 30*time.Minute, cfg.JWT.AccessTTL())
		assert.Equal(t, []string{"http://localhost:8081"}, cfg.CORS.AllowedOrigins)
		assert.Equal(t, 10, cfg.RateLimit.MaxRequests)
		assert.Equal(t, 1, cfg.RateLimit.WindowMinutes)
		assert.Equal(t, "local", cfg.Storage.Type)
		assert.DirExists(t, audioDir)
	})
}

func TestLoadConfigWithoutFile(t *testing.T) {
	t.Setenv("JWT_SECRET", "dev-secret")
	t.Setenv("STORAGE_LOCAL_PATH", filepath.Join(t.TempDir(), "audio"))

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.Mode)
	assert.Equal(t, 5*time.Second, cfg.Database.QueryTimeout())
}
