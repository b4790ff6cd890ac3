package config_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/directory/config"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig(), cfg)
	assert.Equal(t, "marketplace", cfg.Database)
	assert.Equal(t, 10*time.Second, cfg.Mongo.ConnectTimeout)
}

func TestLoadYAMLThenEnv(t *testing.T) {
	path := writeFile(t, "directory.yaml", `
database: shop
collection: subs
log_level: debug
log_format: text
mongo:
  url: mongodb://yaml:27017
  retry_attempts: 5
  retry_interval: 2s
`)
	t.Setenv("MONGODB_URL", "mongodb://env:27017")
	t.Setenv("DIRECTORY_AUDIT_ENABLED", "true")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "shop", cfg.Database)
	assert.Equal(t, "subs", cfg.Collection)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "mongodb://env:27017", cfg.Mongo.ConnectionURL, "environment wins over yaml")
	assert.Equal(t, 5, cfg.Mongo.RetryAttempts)
	assert.Equal(t, 2*time.Second, cfg.Mongo.RetryInterval)
	assert.Equal(t, uint64(100), cfg.Mongo.MaxPoolSize, "unset keys keep defaults")
	assert.True(t, cfg.AuditEnabled)
}

func TestLoadEnvFile(t *testing.T) {
	path := writeFile(t, ".env.test", "DIRECTORY_TEST_ONLY_DATABASE=ignored\nDIRECTORY_METRICS_NAMESPACE=marketplace\n")
	t.Cleanup(func() {
		os.Unsetenv("DIRECTORY_TEST_ONLY_DATABASE")
		os.Unsetenv("DIRECTORY_METRICS_NAMESPACE")
	})

	cfg, err := config.Load("", path)
	require.NoError(t, err)
	assert.Equal(t, "marketplace", cfg.MetricsNamespace)
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing yaml", func(t *testing.T) {
		_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
	})

	t.Run("unknown yaml key", func(t *testing.T) {
		_, err := config.Load(writeFile(t, "bad.yaml", "databse: typo\n"))
		assert.ErrorIs(t, err, config.ErrParsingConfig)
	})

	t.Run("missing env file", func(t *testing.T) {
		_, err := config.Load("", filepath.Join(t.TempDir(), ".env.missing"))
		assert.ErrorIs(t, err, config.ErrParsingConfig)
	})

	t.Run("bad env value", func(t *testing.T) {
		t.Setenv("MONGODB_RETRY_ATTEMPTS", "many")
		_, err := config.Load("")
		assert.ErrorIs(t, err, config.ErrParsingConfig)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"empty url", func(c *config.Config) { c.Mongo.ConnectionURL = "" }},
		{"empty database", func(c *config.Config) { c.Database = " " }},
		{"bad level", func(c *config.Config) { c.LogLevel = "loud" }},
		{"bad format", func(c *config.Config) { c.LogFormat = "xml" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), config.ErrInvalidConfig)
		})
	}

	assert.NoError(t, config.DefaultConfig().Validate())
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.DefaultConfig()
	cfg.LogLevel = "warn"

	logger := cfg.Logger(&buf)
	logger.Info("hidden")
	logger.Warn("shown", "k", "v")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
}
