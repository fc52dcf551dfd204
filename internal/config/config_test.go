package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate runs the test in an empty directory so stray .env files are not read.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func TestLoadDefaultsFromEnvironment(t *testing.T) {
	isolate(t)
	t.Setenv("S3_BUCKET_NAME", "bucket")
	t.Setenv("DB_USER", "webapp")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, DriverPostgres, cfg.DBDriver)
	assert.Equal(t, DefaultMaxFileSize, cfg.MaxFileSize)
	assert.Equal(t, 5*time.Second, cfg.DBTimeout)
	assert.Equal(t, "us-east-1", cfg.S3Region)
	assert.False(t, cfg.LocatorRawFallback)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "host=localhost port=5432 user=webapp password= dbname=webapp sslmode=disable", cfg.DatabaseDSN())
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("S3_BUCKET_NAME", "bucket")
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("DB_DSN", "file:test.db")
	t.Setenv("MAX_FILE_SIZE", "2048")
	t.Setenv("S3_TIMEOUT", "3s")
	t.Setenv("LOCATOR_RAW_FALLBACK", "true")
	t.Setenv("LOG_JSON", "true")
	t.Setenv("WS_ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.Equal(t, "file:test.db", cfg.DatabaseDSN())
	assert.Equal(t, int64(2048), cfg.MaxFileSize)
	assert.Equal(t, 3*time.Second, cfg.S3Timeout)
	assert.True(t, cfg.LocatorRawFallback)
	assert.True(t, cfg.Log.JSON)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.WSAllowedOrigins)
}

func TestLoadConfigFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("S3_BUCKET_NAME: from-file\nDB_USER: webapp\nSERVER_PORT: \"9090\"\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.S3BucketName)
	assert.Equal(t, "9090", cfg.ServerPort)

	t.Setenv("S3_BUCKET_NAME", "from-env")
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.S3BucketName)
}

func TestLoadMissingConfigFile(t *testing.T) {
	dir := isolate(t)

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		cfg := Default()
		cfg.S3BucketName = "bucket"
		cfg.DBUser = "webapp"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"no port", func(c *Config) { c.ServerPort = "" }, "SERVER_PORT is required"},
		{"no bucket", func(c *Config) { c.S3BucketName = "" }, "S3_BUCKET_NAME is required"},
		{"no region", func(c *Config) { c.S3Region = "" }, "S3_REGION is required"},
		{"no db user", func(c *Config) { c.DBUser = "" }, "DB_USER is required"},
		{"dsn replaces db fields", func(c *Config) { c.DBUser = ""; c.DSN = "postgres://x" }, ""},
		{"sqlite without dsn", func(c *Config) { c.DBDriver = DriverSQLite }, "DB_DSN is required for the sqlite driver"},
		{"unknown driver", func(c *Config) { c.DBDriver = "mysql" }, `unsupported DB_DRIVER "mysql"`},
		{"half credentials", func(c *Config) { c.S3AccessKeyID = "AKIA" }, "S3_ACCESS_KEY_ID and S3_SECRET_ACCESS_KEY must be set together"},
		{"zero max size", func(c *Config) { c.MaxFileSize = 0 }, "MAX_FILE_SIZE must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}
