package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 15*time.Minute, cfg.Auth.AccessTTL)
	assert.Equal(t, "development-only-secret", cfg.Auth.JWTSecret)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_FileThenEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
env: production
server:
  addr: ":9090"
database:
  driver: pgx
  dsn: postgres://file/healthops
  statement_timeout: 2s
auth:
  jwt_secret: from-file
cache:
  notify_channel: healthops_invalidate
cors:
  allowed_origins: ["https://ops.example.com"]
`), 0o600))

	t.Setenv("HEALTHOPS_DATABASE_DSN", "postgres://env/healthops")
	t.Setenv("HEALTHOPS_RATE_LIMIT_BURST", "7")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "pgx", cfg.Database.Driver)
	assert.Equal(t, "postgres://env/healthops", cfg.Database.DSN)
	assert.Equal(t, 2*time.Second, cfg.Database.StatementTimeout)
	assert.Equal(t, "from-file", cfg.Auth.JWTSecret)
	assert.Equal(t, []string{"https://ops.example.com"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 7, cfg.RateLimit.Burst)
	assert.False(t, cfg.IsDevelopment())
}

func TestValidate(t *testing.T) {
	t.Setenv("HEALTHOPS_ENV", "production")
	t.Setenv("HEALTHOPS_ARCHIVE_DRIVER", "s3")
	t.Setenv("HEALTHOPS_CACHE_NOTIFY_CHANNEL", "inv")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "auth.jwt_secret")
	assert.Contains(t, err.Error(), "archive.bucket")
	assert.Contains(t, err.Error(), "cache.notify_channel")
}
