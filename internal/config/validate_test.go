package config

import (
	"strings"
	"testing"
)

// validConfig returns a configuration that passes validation.
func validConfig() *Config {
	cfg := &Config{}
	cfg.TMDB.APIKey = "test-key"
	cfg.applyDefaults()
	return cfg
}

func findError(errs []string, substr string) bool {
	for _, e := range errs {
		if strings.Contains(e, substr) {
			return true
		}
	}
	return false
}

func TestValidate_Valid(t *testing.T) {
	if errs := validConfig().Validate(); len(errs) != 0 {
		t.Errorf("expected no errors, got %v", errs)
	}
}

func TestValidate_MissingAPIKey(t *testing.T) {
	cfg := validConfig()
	cfg.TMDB.APIKey = ""

	errs := cfg.Validate()
	if !findError(errs, "tmdb.api_key") {
		t.Errorf("expected tmdb.api_key error, got %v", errs)
	}
}

func TestValidate_BadPort(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Port = 99999

	errs := cfg.Validate()
	if !findError(errs, "server.port") {
		t.Errorf("expected server.port error, got %v", errs)
	}
}

func TestValidate_BadLogLevel(t *testing.T) {
	cfg := validConfig()
	cfg.Server.LogLevel = "verbose"

	errs := cfg.Validate()
	if !findError(errs, "server.log_level") {
		t.Errorf("expected server.log_level error, got %v", errs)
	}
}

func TestValidate_BadLanguage(t *testing.T) {
	cfg := validConfig()
	cfg.TMDB.Language = "not a language!"

	errs := cfg.Validate()
	if !findError(errs, "tmdb.language") {
		t.Errorf("expected tmdb.language error, got %v", errs)
	}
}

func TestValidate_LanguageTags(t *testing.T) {
	for _, tag := range []string{"en-US", "de-DE", "pt-BR", "ja"} {
		cfg := validConfig()
		cfg.TMDB.Language = tag
		if errs := cfg.Validate(); len(errs) != 0 {
			t.Errorf("tag %q: expected no errors, got %v", tag, errs)
		}
	}
}

func TestValidate_ThresholdAbovePoolSize(t *testing.T) {
	cfg := validConfig()
	cfg.Pool.Size = 10
	cfg.Pool.MinThreshold = 20

	errs := cfg.Validate()
	if !findError(errs, "pool.min_threshold") {
		t.Errorf("expected pool.min_threshold error, got %v", errs)
	}
}

func TestValidate_NegativeTTL(t *testing.T) {
	cfg := validConfig()
	cfg.Pool.CacheTTLDays = -1

	errs := cfg.Validate()
	if !findError(errs, "pool.cache_ttl_days") {
		t.Errorf("expected pool.cache_ttl_days error, got %v", errs)
	}
}
