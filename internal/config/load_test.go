package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTestConfig(t *testing.T, content string) string {
	t.Helper()
	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(cfgPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return cfgPath
}

func TestLoad_Valid(t *testing.T) {
	cfgPath := writeTestConfig(t, `
[server]
port = 8080

[tmdb]
api_key = "test-key"
`)

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.Server.Port)
	}
	if cfg.TMDB.APIKey != "test-key" {
		t.Errorf("expected api key test-key, got %s", cfg.TMDB.APIKey)
	}
}

func TestLoad_MissingEnvVar(t *testing.T) {
	os.Unsetenv("MISSING_KEY")
	cfgPath := writeTestConfig(t, `
[server]
port = 8080

[tmdb]
api_key = "${MISSING_KEY}"
`)

	_, err := Load(cfgPath)
	if err == nil {
		t.Fatal("expected error for missing env var")
	}
	if !strings.Contains(err.Error(), "MISSING_KEY") {
		t.Errorf("expected MISSING_KEY in error, got %v", err)
	}
}

func TestLoad_ValidationError(t *testing.T) {
	cfgPath := writeTestConfig(t, `
[server]
port = 99999

[tmdb]
api_key = "test-key"
`)

	_, err := Load(cfgPath)
	if err == nil {
		t.Fatal("expected error for invalid port")
	}
	if !strings.Contains(err.Error(), "server.port") {
		t.Errorf("expected server.port in error, got %v", err)
	}
}

func TestLoad_AppliesDefaults(t *testing.T) {
	cfgPath := writeTestConfig(t, `
[tmdb]
api_key = "test-key"
`)

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("expected default host 0.0.0.0, got %s", cfg.Server.Host)
	}
	if cfg.Server.Port != 8484 {
		t.Errorf("expected default port 8484, got %d", cfg.Server.Port)
	}
	if cfg.TMDB.Language != "en-US" {
		t.Errorf("expected default language en-US, got %s", cfg.TMDB.Language)
	}
	if cfg.Pool.Size != 30 {
		t.Errorf("expected default pool size 30, got %d", cfg.Pool.Size)
	}
	if cfg.Pool.MinThreshold != 5 {
		t.Errorf("expected default min threshold 5, got %d", cfg.Pool.MinThreshold)
	}
	if cfg.Pool.CacheTTLDays != 30 {
		t.Errorf("expected default cache TTL 30 days, got %d", cfg.Pool.CacheTTLDays)
	}
}

func TestLoadWithoutValidation(t *testing.T) {
	cfgPath := writeTestConfig(t, `
[server]
port = 99999
`)

	cfg, err := LoadWithoutValidation(cfgPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 99999 {
		t.Errorf("expected port 99999, got %d", cfg.Server.Port)
	}
}

func TestLoad_EnvVarDefault(t *testing.T) {
	os.Unsetenv("OPTIONAL_VAR")
	cfgPath := writeTestConfig(t, `
[server]
host = "${OPTIONAL_VAR:-localhost}"

[tmdb]
api_key = "test-key"
`)

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Host != "localhost" {
		t.Errorf("expected host localhost, got %s", cfg.Server.Host)
	}
}

func TestLoad_Durations(t *testing.T) {
	cfgPath := writeTestConfig(t, `
[tmdb]
api_key = "test-key"
rate_limit_interval = "100ms"
request_timeout = "30s"
`)

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := cfg.TMDB.RateLimitInterval.Std().Milliseconds(); got != 100 {
		t.Errorf("expected 100ms rate limit interval, got %dms", got)
	}
	if got := cfg.TMDB.RequestTimeout.Std().Seconds(); got != 30 {
		t.Errorf("expected 30s request timeout, got %vs", got)
	}
}
