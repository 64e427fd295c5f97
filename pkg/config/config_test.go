package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeSettings(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.Equal(t, ProviderAnthropic, cfg.Provider)
	require.Equal(t, time.Hour, cfg.Session.TTL)
	require.Equal(t, "info", cfg.Log.Level)
}

func TestLoadSettingsFile(t *testing.T) {
	path := writeSettings(t, `
provider: openai
openai:
  model: gpt-4o-mini
  base_url: http://localhost:11434/v1
handlers:
  weather:
    model: gpt-4o
session:
  ttl: 30m
log:
  level: debug
  pretty: true
tools:
  tavily_api_key: tvly-test
mcp_servers:
  - name: maps
    endpoint: http://localhost:8931/mcp
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ProviderOpenAI, cfg.Provider)
	require.Equal(t, "gpt-4o-mini", cfg.OpenAI.Model)
	require.Equal(t, "gpt-4o", cfg.HandlerModel("weather"))
	require.Empty(t, cfg.HandlerModel("holiday"))
	require.Equal(t, 30*time.Minute, cfg.Session.TTL)
	require.Equal(t, "debug", cfg.Log.Level)
	require.True(t, cfg.Log.Pretty)
	require.Equal(t, "tvly-test", cfg.Tools.TavilyAPIKey)
	require.Len(t, cfg.MCP, 1)
	require.Equal(t, "maps", cfg.MCP[0].Name)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	path := writeSettings(t, "provider: anthropic\nlog:\n  level: info\n")
	t.Setenv("TRIPSCHOLAR_LOG_LEVEL", "warn")
	t.Setenv("TRIPSCHOLAR_MODEL", "claude-haiku-4-5")
	t.Setenv("ANTHROPIC_API_KEY", "sk-test")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "warn", cfg.Log.Level)
	require.Equal(t, "claude-haiku-4-5", cfg.Anthropic.Model)
	require.Equal(t, "sk-test", cfg.Anthropic.APIKey)
}

func TestLoadRejectsUnknownProvider(t *testing.T) {
	path := writeSettings(t, "provider: cohere\n")
	_, err := Load(path)
	require.ErrorContains(t, err, "unknown provider")
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := writeSettings(t, "provider: [unclosed\n")
	_, err := Load(path)
	require.Error(t, err)
}

func TestWatcherReloadsOnWrite(t *testing.T) {
	path := writeSettings(t, "provider: anthropic\n")

	changes := make(chan *Config, 4)
	w, err := NewWatcher(path,
		WithDebounce(20*time.Millisecond),
		OnChange(func(c *Config) { changes <- c }),
	)
	require.NoError(t, err)

	cfg, err := w.Start()
	require.NoError(t, err)
	defer w.Close()
	require.Equal(t, ProviderAnthropic, cfg.Provider)
	<-changes // initial load

	require.NoError(t, os.WriteFile(path, []byte("provider: openai\n"), 0o644))

	select {
	case next := <-changes:
		require.Equal(t, ProviderOpenAI, next.Provider)
	case <-time.After(2 * time.Second):
		t.Fatal("no reload after settings write")
	}
}
