package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

var envPattern = regexp.MustCompile(`\$\{([A-Za-z0-9_]+)\}`)

// ExpandEnvStrict expands ${VAR} references and errors if any env var is missing.
func ExpandEnvStrict(input string) (string, error) {
	var missing string
	out := envPattern.ReplaceAllStringFunc(input, func(ref string) string {
		name := strings.TrimSuffix(strings.TrimPrefix(ref, "${"), "}")
		val, ok := os.LookupEnv(name)
		if !ok && missing == "" {
			missing = name
		}
		return val
	})
	if missing != "" {
		return "", fmt.Errorf("missing env var %s", missing)
	}
	return out, nil
}

// ExpandEnv expands ${VAR} references in every string field that may carry
// deployment-specific values.
func (c *Config) ExpandEnv() error {
	fields := []struct {
		name string
		ptr  *string
	}{
		{"server.listen", &c.Server.Listen},
		{"upstream.baseURL", &c.Upstream.BaseURL},
		{"upstream.apiKey", &c.Upstream.APIKey},
		{"upstream.model", &c.Upstream.Model},
		{"metrics.listen", &c.Metrics.Listen},
	}
	for _, f := range fields {
		v, err := ExpandEnvStrict(*f.ptr)
		if err != nil {
			return fmt.Errorf("%s: %w", f.name, err)
		}
		*f.ptr = v
	}
	return nil
}
