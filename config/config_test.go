package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/analytiq/config"
	"github.com/syssam/analytiq/serve"
)

const sampleYAML = `
basePath: /api/analytics
openapiPath: /openapi.json
docsPath: /docs
security:
  verboseAuthErrors: true
cache:
  provider: redis
  redisAddr: localhost:6379
  defaultTTL: 30s
endpoints:
  runQuery:
    roles: [analyst, admin]
  health:
    public: true
`

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestLoadParsesEndpointTable(t *testing.T) {
	path := writeTempConfig(t, sampleYAML)
	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/api/analytics", cfg.BasePath)
	assert.True(t, cfg.Security.VerboseAuthErrors)
	assert.Equal(t, "redis", cfg.Cache.Provider)
	assert.Equal(t, 30*time.Second, cfg.Cache.DefaultTTL)
	require.Contains(t, cfg.Endpoints, "runQuery")
	assert.ElementsMatch(t, []string{"analyst", "admin"}, cfg.Endpoints["runQuery"].Roles)
}

func TestGuardsForPublicEndpoint(t *testing.T) {
	path := writeTempConfig(t, sampleYAML)
	cfg, err := config.Load(path)
	require.NoError(t, err)

	guards := cfg.GuardsFor("health")
	require.Len(t, guards, 1)
	assert.Equal(t, serve.GuardPublic, guards[0].Kind)
}

func TestGuardsForUnknownEndpointDefaultsToRequireAuth(t *testing.T) {
	path := writeTempConfig(t, sampleYAML)
	cfg, err := config.Load(path)
	require.NoError(t, err)

	guards := cfg.GuardsFor("somethingElse")
	require.Len(t, guards, 1)
	assert.Equal(t, serve.GuardRequireAuth, guards[0].Kind)
}

func TestWatcherReloadsOnWrite(t *testing.T) {
	path := writeTempConfig(t, sampleYAML)
	w, err := config.NewWatcher(path, nil)
	require.NoError(t, err)
	defer w.Close()

	require.Contains(t, w.Current().Endpoints, "runQuery")

	updated := `
basePath: /api/analytics
endpoints:
  runQuery:
    roles: [superadmin]
`
	require.NoError(t, os.WriteFile(path, []byte(updated), 0o600))

	require.Eventually(t, func() bool {
		roles := w.Current().Endpoints["runQuery"].Roles
		return len(roles) == 1 && roles[0] == "superadmin"
	}, 2*time.Second, 20*time.Millisecond)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
