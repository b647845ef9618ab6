package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palantir/angellist-enrichment-connector/internal/config"
)

var envVars = []string{
	"ANGELLIST_BASE_URL", "ANGELLIST_ACCESS_TOKENS", "ANGELLIST_ACCESS_TOKENS_FILE", "ANGELLIST_SOURCE_API_NAME", "SOURCE_CREDENTIALS",
	"ANGELLIST_TIMEOUT", "ANGELLIST_RATE_LIMIT_RPS", "ANGELLIST_PAGE_DELAY", "ANGELLIST_ROLES_ENABLED",
	"WORKERS", "REQUEST_TIMEOUT", "RATE_LIMIT_RPS", "FAIL_FAST", "MAX_DEPTH", "LOG_LEVEL", "LOG_FORMAT",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, v := range envVars {
		t.Setenv(v, "")
	}
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)

	path := writeFile(t, "config.yaml", `
directory:
  base_url: http://127.0.0.1:9999
  access_tokens: [t1, t2]
  page_delay: 250ms
  roles_enabled: false
pipeline:
  workers: 8
  max_depth: 2
log:
  level: debug
`)
	t.Setenv("WORKERS", "3")
	t.Setenv("ANGELLIST_TIMEOUT", "5s")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://127.0.0.1:9999", cfg.Directory.BaseURL)
	assert.Equal(t, []string{"t1", "t2"}, cfg.Directory.AccessTokens)
	assert.Equal(t, 250*time.Millisecond, cfg.Directory.PageDelay)
	assert.Equal(t, 5*time.Second, cfg.Directory.Timeout)
	assert.False(t, cfg.Directory.RolesEnabled)
	assert.Equal(t, 3, cfg.Pipeline.Workers)
	assert.Equal(t, 2, cfg.Pipeline.MaxDepth)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_DefaultsWithEnvTokens(t *testing.T) {
	clearEnv(t)
	t.Setenv("ANGELLIST_ACCESS_TOKENS", " a , b ,,a")

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, cfg.Directory.AccessTokens)
	assert.True(t, cfg.Directory.RolesEnabled)
	assert.Equal(t, time.Second, cfg.Directory.PageDelay)
	assert.Equal(t, 1, cfg.Pipeline.MaxDepth)
	assert.Zero(t, cfg.Pipeline.RequestTimeout)
}

func TestLoad_TokensFile(t *testing.T) {
	clearEnv(t)
	tokens := writeFile(t, "tokens.txt", "# pool\nalpha\n\nbeta\n")
	t.Setenv("ANGELLIST_ACCESS_TOKENS_FILE", tokens)

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta"}, cfg.Directory.AccessTokens)
}

func TestLoad_SourceCredentials(t *testing.T) {
	clearEnv(t)
	t.Setenv("SOURCE_CREDENTIALS", writeFile(t, "sources.json", `{"Directory":{"AccessTokens":"s1,s2"}}`))
	t.Setenv("ANGELLIST_SOURCE_API_NAME", "Directory")

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, []string{"s1", "s2"}, cfg.Directory.AccessTokens)

	t.Setenv("ANGELLIST_ACCESS_TOKENS", "explicit")
	cfg, err = config.Load("")
	require.NoError(t, err)
	assert.Equal(t, []string{"explicit"}, cfg.Directory.AccessTokens)
}

func TestLoad_RequiresTokens(t *testing.T) {
	clearEnv(t)

	_, err := config.Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AccessTokens")
}

func TestLoad_RejectsBadValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("ANGELLIST_ACCESS_TOKENS", "a")

	t.Setenv("WORKERS", "many")
	_, err := config.Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "WORKERS")

	t.Setenv("WORKERS", "0")
	_, err = config.Load("")
	require.Error(t, err)

	t.Setenv("WORKERS", "")
	t.Setenv("REQUEST_TIMEOUT", "-1s")
	_, err = config.Load("")
	require.Error(t, err)

	t.Setenv("REQUEST_TIMEOUT", "")
	t.Setenv("LOG_FORMAT", "xml")
	_, err = config.Load("")
	require.Error(t, err)
}
