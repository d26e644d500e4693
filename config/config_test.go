package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ZaguanLabs/gotmemo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// isolate runs the test from an empty directory with an empty home, so no
// stray gotmemo.yaml or .env is picked up.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("HOME", t.TempDir())
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "", cfg.TargetLang)
	assert.Equal(t, "en", cfg.SourceLang)
	assert.Equal(t, "google", cfg.Provider)
	assert.Equal(t, 30*time.Second, cfg.FetchTimeout)
	assert.Equal(t, "sqlite", cfg.Store.Backend)
	assert.Equal(t, "gotmemo.db", cfg.Store.SQLite.Path)
	assert.Equal(t, "gotmemo:", cfg.Store.Redis.KeyPrefix)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	dir := isolate(t)
	path := writeFile(t, dir, "custom.yaml", `
target_lang: es_es
provider: openai
fetch_timeout: 5s
openai:
  api_key: sk-file
  model: gpt-4o
store:
  backend: redis
  redis:
    url: redis://cache:6379/1
server:
  cors_origins: ["https://app.example.com"]
log:
  format: json
`)
	t.Setenv("GOTMEMO_STORE_REDIS_KEY_PREFIX", "env:")
	t.Setenv("GOTMEMO_TARGET_LANG", "fr")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "fr", cfg.TargetLang, "environment should win over the file")
	assert.Equal(t, "openai", cfg.Provider)
	assert.Equal(t, 5*time.Second, cfg.FetchTimeout)
	assert.Equal(t, "gpt-4o", cfg.OpenAI.Model)
	assert.Equal(t, "redis", cfg.Store.Backend)
	assert.Equal(t, "redis://cache:6379/1", cfg.Store.Redis.URL)
	assert.Equal(t, "env:", cfg.Store.Redis.KeyPrefix)
	assert.Equal(t, []string{"https://app.example.com"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "sk-file", cfg.Credential())
}

func TestLoad_DiscoversFileInWorkingDir(t *testing.T) {
	dir := isolate(t)
	writeFile(t, dir, "gotmemo.yaml", "target_lang: de\nstore:\n  backend: memory\n")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "de", cfg.TargetLang)
	assert.Equal(t, "memory", cfg.Store.Backend)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := isolate(t)
	writeFile(t, dir, ".env", "GOTMEMO_API_KEY=from-dotenv\nGOTMEMO_SOURCE_LANG=de\n")
	t.Setenv("GOTMEMO_SOURCE_LANG", "it")
	t.Cleanup(func() { _ = os.Unsetenv("GOTMEMO_API_KEY") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.APIKey)
	assert.Equal(t, "it", cfg.SourceLang, ".env must not override the real environment")
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	isolate(t)

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidProvider(t *testing.T) {
	isolate(t)
	t.Setenv("GOTMEMO_PROVIDER", "babelfish")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid provider")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Provider: "mock",
			Store:    StoreConfig{Backend: "memory"},
			Log:      LogConfig{Format: "console"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"bad backend", func(c *Config) { c.Store.Backend = "mongo" }, "invalid store backend"},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, "invalid log format"},
		{"negative timeout", func(c *Config) { c.FetchTimeout = -time.Second }, "fetch_timeout"},
		{"sqlite without path", func(c *Config) { c.Store.Backend = "sqlite" }, "store.sqlite.path"},
		{"redis without url", func(c *Config) { c.Store.Backend = "redis" }, "store.redis.url"},
		{"postgres without dsn", func(c *Config) { c.Store.Backend = "postgres" }, "store.postgres.dsn"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestCredential(t *testing.T) {
	assert.Equal(t, "generic", (&Config{Provider: "openai", APIKey: "generic", OpenAI: OpenAIConfig{APIKey: "sk"}}).Credential())
	assert.Equal(t, "sk", (&Config{Provider: "openai", OpenAI: OpenAIConfig{APIKey: "sk"}}).Credential())
	assert.Equal(t, "mock", (&Config{Provider: "mock"}).Credential())
	assert.Equal(t, "", (&Config{Provider: "google"}).Credential())
}

func TestRequireTargetLang(t *testing.T) {
	assert.True(t, errors.Is((&Config{}).RequireTargetLang(), gotmemo.ErrMissingTargetLang))
	assert.NoError(t, (&Config{TargetLang: "es"}).RequireTargetLang())
}

func TestNormalize(t *testing.T) {
	cfg := &Config{TargetLang: " pt_br ", Provider: " Mock ", Store: StoreConfig{Backend: "SQLite"}, Log: LogConfig{Format: "JSON"}}
	cfg.Normalize()

	assert.Equal(t, "pt-BR", cfg.TargetLang)
	assert.Equal(t, "en", cfg.SourceLang)
	assert.Equal(t, "mock", cfg.Provider)
	assert.Equal(t, "sqlite", cfg.Store.Backend)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(LogConfig{Level: "warn", Format: "json"})
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))

	logger, err = NewLogger(LogConfig{Format: "console"})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel), "development logger defaults to debug")

	_, err = NewLogger(LogConfig{Level: "loud"})
	assert.Error(t, err)
}
