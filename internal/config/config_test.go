package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "/openapi.json", cfg.OpenAPI.Path)
	assert.Equal(t, "/docs", cfg.OpenAPI.DocsPath)
	assert.True(t, cfg.OpenAPI.IsEnabled())
	assert.True(t, cfg.OpenAPI.IsNullableRequestParameterEnabled())
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "amarodoc", cfg.JWT.Issuer)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "amarodoc.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":9090"
  shutdown-timeout: 3s
logging:
  level: debug
openapi:
  nullable-request-parameter-enabled: false
  docs-path: /reference
  specification-strings:
    info.title: Pets
metrics:
  enabled: false
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.False(t, cfg.OpenAPI.IsNullableRequestParameterEnabled())
	assert.True(t, cfg.OpenAPI.IsEnabled())
	assert.Equal(t, "/openapi.json", cfg.OpenAPI.Path)
	assert.Equal(t, "/reference", cfg.OpenAPI.DocsPath)
	assert.Equal(t, map[string]string{"info.title": "Pets"}, cfg.OpenAPI.SpecificationStrings)
	assert.False(t, cfg.Metrics.Enabled)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowOrigins, "sections left out keep their defaults")
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv(AddrEnv, "127.0.0.1:7000")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:7000", cfg.Server.Addr)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Parse([]byte("server:\n  port: 80\n"))
	assert.Error(t, err, "unknown keys are rejected")

	_, err = Parse([]byte("logging:\n  level: loud\n"))
	require.NoError(t, err)
	cfg, _ := Parse([]byte("logging:\n  level: loud\n"))
	assert.Error(t, cfg.Validate())

	cfg, err = Parse(nil)
	require.NoError(t, err)
	assert.NoError(t, cfg.Validate())
}

func TestLogger(t *testing.T) {
	logger, err := LoggingConfig{Level: "warn"}.Logger()
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(-1))

	_, err = LoggingConfig{Level: "loud"}.Logger()
	assert.Error(t, err)
}
