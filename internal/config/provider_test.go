package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadProviderConfig(t *testing.T) {
	path := writeConfig(t, "livedns.yaml", `api_key: "testkey"
base_url: "https://api.test.example/v5"
timeout: 10s
`)

	cfg, err := LoadProviderConfigFromPath(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.APIKey != "testkey" {
		t.Errorf("expected api_key 'testkey', got %q", cfg.APIKey)
	}
	if cfg.BaseURL != "https://api.test.example/v5" {
		t.Errorf("expected base_url 'https://api.test.example/v5', got %q", cfg.BaseURL)
	}
	if cfg.Timeout != 10*time.Second {
		t.Errorf("expected timeout 10s, got %v", cfg.Timeout)
	}
}

func TestLoadProviderConfig_Defaults(t *testing.T) {
	path := writeConfig(t, "livedns.yaml", `api_key: "testkey"`)

	cfg, err := LoadProviderConfigFromPath(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.BaseURL != "" {
		t.Errorf("expected empty base_url, got %q", cfg.BaseURL)
	}
	if cfg.Timeout != 0 {
		t.Errorf("expected zero timeout, got %v", cfg.Timeout)
	}
}

func TestLoadProviderConfig_InvalidTimeout(t *testing.T) {
	for _, timeout := range []string{"soon", "-5s", "0s"} {
		t.Run(timeout, func(t *testing.T) {
			path := writeConfig(t, "livedns.yaml", "timeout: "+timeout+"\n")
			if _, err := LoadProviderConfigFromPath(path); err == nil {
				t.Fatalf("expected error for timeout %q, got nil", timeout)
			}
		})
	}
}

func TestLoadProviderConfig_EnvVarExpansion(t *testing.T) {
	t.Setenv("TEST_API_KEY", "key-from-env")
	t.Setenv("TEST_TIMEOUT", "45s")

	path := writeConfig(t, "livedns.yaml", `api_key: "${TEST_API_KEY}"
base_url: "https://api.test.example/v5"
timeout: "${TEST_TIMEOUT}"
`)

	cfg, err := LoadProviderConfigFromPath(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.APIKey != "key-from-env" {
		t.Errorf("expected api_key 'key-from-env', got %q", cfg.APIKey)
	}
	if cfg.Timeout != 45*time.Second {
		t.Errorf("expected timeout 45s, got %v", cfg.Timeout)
	}
	// Non-env values should remain unchanged.
	if cfg.BaseURL != "https://api.test.example/v5" {
		t.Errorf("expected base_url unchanged, got %q", cfg.BaseURL)
	}
}

func TestLoadProviderConfig_EnvVarUnset(t *testing.T) {
	path := writeConfig(t, "livedns.yaml", `api_key: "${UNSET_VAR_THAT_DOES_NOT_EXIST}"`)

	cfg, err := LoadProviderConfigFromPath(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Unset env var expands to empty string.
	if cfg.APIKey != "" {
		t.Errorf("expected api_key '' for unset env var, got %q", cfg.APIKey)
	}
}

func TestLoadProviderConfig_FromEnvPath(t *testing.T) {
	path := writeConfig(t, "custom.yaml", `api_key: "from-custom-path"`)
	t.Setenv("LIVEDNS_CONFIG_PATH", path)

	cfg, err := LoadProviderConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.APIKey != "from-custom-path" {
		t.Errorf("expected api_key 'from-custom-path', got %q", cfg.APIKey)
	}
}

func TestLoadProviderConfig_EnvPathMissing(t *testing.T) {
	t.Setenv("LIVEDNS_CONFIG_PATH", "/nonexistent/path/livedns.yaml")

	if _, err := LoadProviderConfig(); err == nil {
		t.Fatal("expected error for missing file named by LIVEDNS_CONFIG_PATH, got nil")
	}
}

func TestLoadProviderConfig_MissingFile(t *testing.T) {
	_, err := LoadProviderConfigFromPath("/nonexistent/path/livedns.yaml")
	if err == nil {
		t.Fatal("expected error for missing file, got nil")
	}
}
