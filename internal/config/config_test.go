package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	t.Setenv("DB_HOST", "test-host")
	t.Setenv("DB_MAX_OPEN_CONNS", "20")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("STORAGE_BACKEND", "Redis")
	t.Setenv("PROJECT_SOFT_CAP", "3")

	cfg := Load()

	assert.Equal(t, "test-host", cfg.Database.Host)
	assert.Equal(t, 20, cfg.Database.MaxOpenConns)
	assert.True(t, cfg.MinIO.UseSSL)
	assert.Equal(t, BackendRedis, cfg.Storage.Backend)
	assert.Equal(t, 3, cfg.Upload.ProjectSoftCap)
}

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"STORAGE_BACKEND", "STORAGE_KEY", "UPLOAD_TIMEOUT_SEC", "UPLOAD_BODY_LIMIT_MB", "PROJECT_SOFT_CAP", "APP_TIMEZONE"} {
		t.Setenv(k, "")
	}

	cfg := Load()

	assert.Equal(t, BackendFile, cfg.Storage.Backend)
	assert.Equal(t, "portfolio_files", cfg.Storage.Key)
	assert.Equal(t, 10, cfg.Upload.ProjectSoftCap)
	assert.Equal(t, 60*time.Second, cfg.UploadTimeout())
	assert.Equal(t, 64*1024*1024, cfg.BodyLimit())
	assert.Equal(t, time.UTC, cfg.Location())
}

func TestAppConfig_Helpers(t *testing.T) {
	cfg := &AppConfig{Timezone: "Not/AZone", Upload: UploadConfig{TimeoutSec: 0}}
	assert.Equal(t, time.UTC, cfg.Location())
	assert.Zero(t, cfg.UploadTimeout())
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
