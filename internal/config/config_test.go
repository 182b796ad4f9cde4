package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaultsFromEnv(t *testing.T) {
	t.Setenv("DEEPSEEK_API_KEY", "sk-test")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Upstream.APIKey != "sk-test" {
		t.Fatalf("api key not expanded: %q", cfg.Upstream.APIKey)
	}
	if cfg.Upstream.BaseURL != DefaultBaseURL || cfg.Upstream.Model != DefaultModel {
		t.Fatalf("unexpected upstream defaults: %+v", cfg.Upstream)
	}
	if cfg.Upstream.Temperature != DefaultTemperature || cfg.Upstream.MaxTokens != DefaultMaxTokens {
		t.Fatalf("unexpected sampling defaults: %+v", cfg.Upstream)
	}
	if cfg.Upstream.Timeout != 0 {
		t.Fatalf("expected no upstream timeout by default, got %s", cfg.Upstream.Timeout)
	}
	if cfg.Server.Listen != DefaultListen || cfg.Server.MaxRequestBytes != DefaultMaxRequestBytes {
		t.Fatalf("unexpected server defaults: %+v", cfg.Server)
	}
	if cfg.Metrics.Listen != "" {
		t.Fatalf("metrics should be disabled by default")
	}
}

func TestLoadMissingAPIKey(t *testing.T) {
	t.Setenv("DEEPSEEK_API_KEY", "")
	os.Unsetenv("DEEPSEEK_API_KEY")

	_, err := Load("")
	if err == nil {
		t.Fatal("expected error without DEEPSEEK_API_KEY")
	}
	if !strings.Contains(err.Error(), "upstream.apiKey") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	t.Setenv("MY_KEY", "sk-file")
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `server:
  listen: "127.0.0.1:9000"
upstream:
  baseURL: "http://localhost:1234/v1"
  apiKey: "${MY_KEY}"
  model: "deepseek-reasoner"
  timeout: 45s
metrics:
  listen: ":9100"
logging:
  level: debug
  format: json
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Listen != "127.0.0.1:9000" {
		t.Fatalf("listen: %s", cfg.Server.Listen)
	}
	if cfg.Upstream.APIKey != "sk-file" || cfg.Upstream.Model != "deepseek-reasoner" {
		t.Fatalf("upstream: %+v", cfg.Upstream)
	}
	if cfg.Upstream.Timeout != 45*time.Second {
		t.Fatalf("timeout: %s", cfg.Upstream.Timeout)
	}
	if cfg.Metrics.Listen != ":9100" || cfg.Logging.Format != "json" {
		t.Fatalf("metrics/logging: %+v %+v", cfg.Metrics, cfg.Logging)
	}
	if secrets := cfg.Secrets(); len(secrets) != 1 || secrets[0] != "sk-file" {
		t.Fatalf("secrets: %v", secrets)
	}
}

func TestZeroSamplingValuesUseDefaults(t *testing.T) {
	cfg, err := LoadFromBytes([]byte(`upstream:
  apiKey: "sk-inline"
  temperature: 0
  maxTokens: 0
`))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Upstream.Temperature != DefaultTemperature || cfg.Upstream.MaxTokens != DefaultMaxTokens {
		t.Fatalf("zero values should fall back to defaults: %+v", cfg.Upstream)
	}
}

func TestLoadFileNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil || !strings.Contains(err.Error(), "read config") {
		t.Fatalf("expected read error, got %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{
			name:   "valid",
			mutate: func(c *Config) {},
		},
		{
			name:   "empty api key",
			mutate: func(c *Config) { c.Upstream.APIKey = " " },
			errMsg: "upstream.apiKey is required",
		},
		{
			name:   "bad scheme",
			mutate: func(c *Config) { c.Upstream.BaseURL = "ftp://example.com" },
			errMsg: "http(s) URL",
		},
		{
			name:   "temperature out of range",
			mutate: func(c *Config) { c.Upstream.Temperature = 3 },
			errMsg: "temperature",
		},
		{
			name:   "negative timeout",
			mutate: func(c *Config) { c.Upstream.Timeout = -time.Second },
			errMsg: "upstream.timeout",
		},
		{
			name:   "bad log format",
			mutate: func(c *Config) { c.Logging.Format = "xml" },
			errMsg: "logging.format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Upstream.APIKey = "sk-test"
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.errMsg) {
				t.Fatalf("expected error containing %q, got %v", tt.errMsg, err)
			}
		})
	}
}
