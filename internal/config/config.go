package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultListen          = ":8787"
	DefaultMaxRequestBytes = 1 << 20
	DefaultBaseURL         = "https://api.deepseek.com/v1"
	DefaultAPIKey          = "${DEEPSEEK_API_KEY}"
	DefaultModel           = "deepseek-chat"
	DefaultTemperature     = 0.7
	DefaultMaxTokens       = 1000
)

// Config is the process-wide configuration. It is read once at startup and
// never mutated afterwards.
type Config struct {
	Server   ServerSection   `yaml:"server"`
	Upstream UpstreamSection `yaml:"upstream"`
	Metrics  MetricsSection  `yaml:"metrics"`
	Logging  LoggingSection  `yaml:"logging"`
}

type ServerSection struct {
	Listen          string `yaml:"listen"`
	MaxRequestBytes int64  `yaml:"maxRequestBytes,omitempty"`
}

// UpstreamSection describes the chat-completion endpoint the resolver calls.
type UpstreamSection struct {
	BaseURL string `yaml:"baseURL"`
	APIKey  string `yaml:"apiKey"`
	Model   string `yaml:"model"`
	// Temperature and MaxTokens treat 0 as "use the default", so 0 cannot be
	// configured explicitly. The wire format omits zero values anyway.
	Temperature float32 `yaml:"temperature,omitempty"`
	MaxTokens   int     `yaml:"maxTokens,omitempty"`
	// Timeout 0 leaves the HTTP client without a deadline.
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

// MetricsSection configures the Prometheus listener. An empty Listen
// disables it.
type MetricsSection struct {
	Listen string `yaml:"listen,omitempty"`
}

type LoggingSection struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns a Config with every default applied and env references
// left unexpanded.
func Default() *Config {
	c := &Config{}
	c.ApplyDefaults()
	return c
}

// ApplyDefaults fills in missing fields with default values.
func (c *Config) ApplyDefaults() {
	if c.Server.Listen == "" {
		c.Server.Listen = DefaultListen
	}
	if c.Server.MaxRequestBytes == 0 {
		c.Server.MaxRequestBytes = DefaultMaxRequestBytes
	}
	if c.Upstream.BaseURL == "" {
		c.Upstream.BaseURL = DefaultBaseURL
	}
	if c.Upstream.APIKey == "" {
		c.Upstream.APIKey = DefaultAPIKey
	}
	if c.Upstream.Model == "" {
		c.Upstream.Model = DefaultModel
	}
	if c.Upstream.Temperature == 0 {
		c.Upstream.Temperature = DefaultTemperature
	}
	if c.Upstream.MaxTokens == 0 {
		c.Upstream.MaxTokens = DefaultMaxTokens
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "auto"
	}
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server.Listen) == "" {
		return fmt.Errorf("server.listen is required")
	}
	if c.Server.MaxRequestBytes < 0 {
		return fmt.Errorf("server.maxRequestBytes must be >= 0")
	}
	if strings.TrimSpace(c.Upstream.APIKey) == "" {
		return fmt.Errorf("upstream.apiKey is required")
	}
	u, err := url.Parse(c.Upstream.BaseURL)
	if err != nil {
		return fmt.Errorf("upstream.baseURL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("upstream.baseURL must be an http(s) URL, got %q", c.Upstream.BaseURL)
	}
	if c.Upstream.Model == "" {
		return fmt.Errorf("upstream.model is required")
	}
	if c.Upstream.Temperature < 0 || c.Upstream.Temperature > 2 {
		return fmt.Errorf("upstream.temperature must be within [0, 2]")
	}
	if c.Upstream.MaxTokens < 0 {
		return fmt.Errorf("upstream.maxTokens must be >= 0")
	}
	if c.Upstream.Timeout < 0 {
		return fmt.Errorf("upstream.timeout must be >= 0")
	}
	switch strings.ToLower(c.Logging.Format) {
	case "auto", "text", "json":
	default:
		return fmt.Errorf("logging.format must be auto, text or json, got %q", c.Logging.Format)
	}
	return nil
}

// Secrets returns the values that must never reach logs or clients.
func (c *Config) Secrets() []string {
	if c.Upstream.APIKey == "" {
		return nil
	}
	return []string{c.Upstream.APIKey}
}
