package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range env {
		t.Setenv(name, "")
	}
}

func TestLoad_DefaultsAndEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/tabdil")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("JWT_EXPIRES_IN", "2h")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":3090", cfg.Server.Addr)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, "postgres://localhost/tabdil", cfg.Database.URL)
	assert.True(t, cfg.Database.AutoMigrate)
	assert.Equal(t, 10, cfg.Database.MaxOpenConns)
	assert.Equal(t, 2*time.Hour, cfg.Auth.JWTExpiresIn)
	assert.Equal(t, int64(5<<20), cfg.Storage.MaxUploadBytes)
	assert.Equal(t, 1600, cfg.Storage.MaxDimension)
	assert.Empty(t, cfg.Storage.Bucket)
}

func TestLoad_FileIsOverriddenByEnvironment(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
server:
  addr: ":8080"
  log_level: debug
database:
  url: postgres://file/db
auth:
  jwt_secret: from-file
storage:
  bucket: media
  public_base_url: https://cdn.example.com
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	t.Setenv("APP_ADDR", ":9000")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, "from-file", cfg.Auth.JWTSecret)
	assert.Equal(t, "media", cfg.Storage.Bucket)
}

func TestLoad_RejectsInvalidConfig(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "s3cret")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "URL")

	t.Setenv("DATABASE_URL", "postgres://localhost/tabdil")
	t.Setenv("LOG_LEVEL", "loud")
	_, err = Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "oneof")
}

func TestLoad_BucketNeedsPublicURL(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/tabdil")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("S3_BUCKET", "media")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PublicBaseURL")
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
