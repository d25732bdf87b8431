package config

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"
)

// DefaultProviderPath is used when LIVEDNS_CONFIG_PATH is unset.
const DefaultProviderPath = "configs/livedns.yaml"

// ProviderConfig holds the LiveDNS connection settings.
type ProviderConfig struct {
	APIKey  string        `yaml:"api_key"`
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"-"`

	RawTimeout string `yaml:"timeout"`
}

// LoadProviderConfig reads the LiveDNS configuration from the path specified
// by the LIVEDNS_CONFIG_PATH environment variable, defaulting to
// DefaultProviderPath. A missing default file yields an empty config; a
// missing file named through the environment is an error.
func LoadProviderConfig() (*ProviderConfig, error) {
	path := os.Getenv("LIVEDNS_CONFIG_PATH")
	if path == "" {
		if _, err := os.Stat(DefaultProviderPath); os.IsNotExist(err) {
			return &ProviderConfig{}, nil
		}
		path = DefaultProviderPath
	}
	return LoadProviderConfigFromPath(path)
}

// LoadProviderConfigFromPath reads the LiveDNS configuration from the given
// file path.
func LoadProviderConfigFromPath(path string) (*ProviderConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading provider config file: %w", err)
	}

	var cfg ProviderConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing provider config file: %w", err)
	}

	// Expand ${ENV_VAR} references in setting values.
	cfg.APIKey = os.ExpandEnv(cfg.APIKey)
	cfg.BaseURL = os.ExpandEnv(cfg.BaseURL)
	cfg.RawTimeout = os.ExpandEnv(cfg.RawTimeout)

	if cfg.RawTimeout != "" {
		d, err := time.ParseDuration(cfg.RawTimeout)
		if err != nil {
			return nil, fmt.Errorf("provider config: invalid timeout %q: %w", cfg.RawTimeout, err)
		}
		if d <= 0 {
			return nil, fmt.Errorf("provider config: timeout must be positive, got %s", d)
		}
		cfg.Timeout = d
	}

	return &cfg, nil
}
