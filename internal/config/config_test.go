package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("APP_NAME", "job-trail")
	t.Setenv("HTTP_PORT", "8080")
	t.Setenv("JWT_ACCESS_SECRET", "access")
	t.Setenv("JWT_REFRESH_SECRET", "refresh")
	t.Setenv(ConfigFileEnv, "")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "job-trail", cfg.App.AppName)
	assert.Equal(t, 10*time.Second, cfg.App.ShutdownTimeout)
	assert.Equal(t, 15*time.Minute, cfg.JWT.AccessExpiresIn)
	assert.Equal(t, 168*time.Hour, cfg.JWT.RefreshExpiresIn)
	assert.Equal(t, int32(10), cfg.Database.PoolMaxConns)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
	assert.Equal(t, "text", cfg.Log.Format)
	assert.False(t, cfg.Migrations.Auto)
}

func TestLoad_Admin(t *testing.T) {
	setRequired(t)
	t.Setenv("ADMIN_USERNAME", "")
	t.Setenv("ADMIN_EMAIL", "root@example.test")
	t.Setenv("ADMIN_PASSWORD", "change-me-now")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, AdminConfig{Username: "admin", Email: "root@example.test", Password: "change-me-now"}, cfg.Admin)
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("APP_NAME", "")
	t.Setenv("HTTP_PORT", "")
	t.Setenv("JWT_ACCESS_SECRET", "")
	t.Setenv("JWT_REFRESH_SECRET", "x")
	t.Setenv(ConfigFileEnv, "")

	_, err := Load()
	require.ErrorIs(t, err, errMissingRequiredEnv)
	assert.Contains(t, err.Error(), "APP_NAME")
	assert.Contains(t, err.Error(), "HTTP_PORT")
	assert.Contains(t, err.Error(), "JWT_ACCESS_SECRET")
	assert.NotContains(t, err.Error(), "JWT_REFRESH_SECRET")
}

func TestLoad_InvalidDuration(t *testing.T) {
	setRequired(t)
	t.Setenv("JWT_ACCESS_EXPIRES_IN", "soon")

	_, err := Load()
	require.ErrorIs(t, err, errInvalidValue)
	assert.Contains(t, err.Error(), "JWT_ACCESS_EXPIRES_IN")
}

func TestLoad_InvalidLogFormat(t *testing.T) {
	setRequired(t)
	t.Setenv("LOG_FORMAT", "xml")

	_, err := Load()
	require.ErrorIs(t, err, errInvalidValue)
}

func TestLoad_TOMLFileBelowEnv(t *testing.T) {
	setRequired(t)
	path := filepath.Join(t.TempDir(), "jobtrail.toml")
	content := `
[db]
host = "db.internal"
pool_max_conns = 25

[jwt]
access_expires_in = "5m"

[migrations]
auto = true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv(ConfigFileEnv, path)
	t.Setenv("DB_HOST", "")
	t.Setenv("JWT_ACCESS_EXPIRES_IN", "30m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Database.DBHost)
	assert.Equal(t, int32(25), cfg.Database.PoolMaxConns)
	assert.Equal(t, 30*time.Minute, cfg.JWT.AccessExpiresIn, "env wins over file")
	assert.True(t, cfg.Migrations.Auto)
}

func TestLoad_UnreadableFile(t *testing.T) {
	setRequired(t)
	t.Setenv(ConfigFileEnv, filepath.Join(t.TempDir(), "missing.toml"))

	_, err := Load()
	require.Error(t, err)
}

func TestDatabaseConfig_Configured(t *testing.T) {
	assert.False(t, DatabaseConfig{}.Configured())
	assert.True(t, DatabaseConfig{DBHost: "h", DBName: "n", DBUser: "u"}.Configured())
}
