// Package config loads the application settings: defaults, then the YAML
// settings file, then environment variables, highest last. A .env file next
// to the process is folded into the environment before the overrides apply.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Provider names accepted in the settings file.
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
)

type ProviderConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

// HandlerConfig carries per-handler overrides. An empty model falls through
// to the provider default.
type HandlerConfig struct {
	Model string `yaml:"model"`
}

type SessionConfig struct {
	TTL time.Duration `yaml:"ttl"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

type TelemetryConfig struct {
	// OTLPEndpoint enables tracing when non-empty, e.g. "localhost:4318".
	OTLPEndpoint string `yaml:"otlp_endpoint"`
}

type MCPServerConfig struct {
	Name     string `yaml:"name"`
	Endpoint string `yaml:"endpoint"`
}

type ToolsConfig struct {
	TavilyAPIKey        string `yaml:"tavily_api_key"`
	ScholarshipEndpoint string `yaml:"scholarship_endpoint"`
	DisableLiveSearch   bool   `yaml:"disable_live_search"`
}

type Config struct {
	Provider  string                   `yaml:"provider"`
	Anthropic ProviderConfig           `yaml:"anthropic"`
	OpenAI    ProviderConfig           `yaml:"openai"`
	Handlers  map[string]HandlerConfig `yaml:"handlers"`
	Session   SessionConfig            `yaml:"session"`
	Log       LogConfig                `yaml:"log"`
	Telemetry TelemetryConfig          `yaml:"telemetry"`
	Tools     ToolsConfig              `yaml:"tools"`
	MCP       []MCPServerConfig        `yaml:"mcp_servers"`
}

// Default returns the settings used when nothing is configured.
func Default() *Config {
	return &Config{
		Provider: ProviderAnthropic,
		Session:  SessionConfig{TTL: time.Hour},
		Log:      LogConfig{Level: "info"},
		Handlers: map[string]HandlerConfig{},
	}
}

// Load reads the settings file at path (optional), folds in .env, and
// applies environment overrides. A missing settings file is not an error;
// a malformed one is.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(raw, cfg); err != nil {
				return nil, fmt.Errorf("config: parse %s: %w", path, err)
			}
		case errors.Is(err, fs.ErrNotExist):
			// Defaults plus environment are enough to run.
		default:
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	applyEnv(cfg)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		cfg.Anthropic.APIKey = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.OpenAI.APIKey = v
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		cfg.OpenAI.BaseURL = v
	}
	if v := os.Getenv("TAVILY_API_KEY"); v != "" {
		cfg.Tools.TavilyAPIKey = v
	}
	if v := os.Getenv("TRIPSCHOLAR_PROVIDER"); v != "" {
		cfg.Provider = v
	}
	if v := os.Getenv("TRIPSCHOLAR_MODEL"); v != "" {
		switch cfg.Provider {
		case ProviderOpenAI:
			cfg.OpenAI.Model = v
		default:
			cfg.Anthropic.Model = v
		}
	}
	if v := os.Getenv("TRIPSCHOLAR_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); v != "" {
		cfg.Telemetry.OTLPEndpoint = v
	}
}

func (c *Config) validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Provider)) {
	case ProviderAnthropic, ProviderOpenAI:
		return nil
	default:
		return fmt.Errorf("config: unknown provider %q (want %s or %s)",
			c.Provider, ProviderAnthropic, ProviderOpenAI)
	}
}

// HandlerModel returns the model override for a handler name, or "".
func (c *Config) HandlerModel(name string) string {
	return c.Handlers[name].Model
}
