package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.toml"))
	t.Setenv("DB_HOST", "test-host")
	t.Setenv("DB_MAX_OPEN_CONNS", "20")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("BLOB_MAX_UPLOAD_SIZE", "2MB")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "test-host", cfg.Database.Host)
	assert.Equal(t, 20, cfg.Database.MaxOpenConns)
	assert.True(t, cfg.MinIO.UseSSL)
	assert.Equal(t, int64(2000000), cfg.Blob.MaxUploadBytes())
	assert.Equal(t, 12*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "documents", cfg.Blob.Container)
}

func TestLoad_FileOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
port = "9090"

[database]
host = "file-host"
name = "docs"

[blob]
driver = "memory"
container = "archive"

[auth]
token_ttl = "30m"

[cors]
allowed_origins = ["https://a.example"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("DB_NAME", "env-db")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "file-host", cfg.Database.Host)
	// Environment wins over the file.
	assert.Equal(t, "env-db", cfg.Database.Name)
	assert.Equal(t, "memory", cfg.Blob.Driver)
	assert.Equal(t, "archive", cfg.Blob.Container)
	assert.Equal(t, 30*time.Minute, cfg.Auth.TokenTTL)
	assert.Equal(t, []string{"https://a.example"}, cfg.CORS.AllowedOrigins)
	// Untouched defaults survive the overlay.
	assert.Equal(t, "5432", cfg.Database.Port)
}

func TestLoad_Invalid(t *testing.T) {
	t.Run("malformed toml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.toml")
		require.NoError(t, os.WriteFile(path, []byte("port = "), 0o600))
		t.Setenv("CONFIG_FILE", path)

		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("bad upload size", func(t *testing.T) {
		t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.toml"))
		t.Setenv("BLOB_MAX_UPLOAD_SIZE", "lots")

		_, err := Load()
		assert.ErrorContains(t, err, "max upload size")
	})

	t.Run("unknown driver", func(t *testing.T) {
		t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.toml"))
		t.Setenv("BLOB_DRIVER", "ftp")

		_, err := Load()
		assert.ErrorContains(t, err, "unsupported blob driver")
	})
}

func TestGetEnv(t *testing.T) {
	key := "TEST_ENV_VAR"
	os.Setenv(key, "value")
	defer os.Unsetenv(key)

	assert.Equal(t, "value", getEnv(key, "default"))
	assert.Equal(t, "default", getEnv("NON_EXISTENT", "default"))
}

func TestGetEnvBool(t *testing.T) {
	key := "TEST_BOOL_VAR"

	os.Setenv(key, "true")
	assert.True(t, getEnvBool(key, false))

	os.Setenv(key, "false")
	assert.False(t, getEnvBool(key, true))

	os.Setenv(key, "invalid")
	assert.True(t, getEnvBool(key, true))

	os.Unsetenv(key)
	assert.True(t, getEnvBool(key, true))
}

func TestGetEnvInt(t *testing.T) {
	key := "TEST_INT_VAR"

	os.Setenv(key, "123")
	assert.Equal(t, 123, getEnvInt(key, 0))

	os.Setenv(key, "invalid")
	assert.Equal(t, 10, getEnvInt(key, 10))

	os.Unsetenv(key)
	assert.Equal(t, 10, getEnvInt(key, 10))
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitList(" a, ,b "))
	assert.Empty(t, splitList(""))
}
