// Package config handles TOML configuration loading with environment variable substitution.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the root configuration structure.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	TMDB     TMDBConfig     `toml:"tmdb"`
	Pool     PoolConfig     `toml:"pool"`
	Events   EventsConfig   `toml:"events"`

	// missing holds environment variables the file referenced but the
	// environment did not provide. Populated during load.
	missing []string
}

type ServerConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	LogLevel string `toml:"log_level"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type TMDBConfig struct {
	APIKey            string   `toml:"api_key"`
	BaseURL           string   `toml:"base_url"`
	Language          string   `toml:"language"`
	RateLimitInterval Duration `toml:"rate_limit_interval"`
	RequestTimeout    Duration `toml:"request_timeout"`
	BackoffBase       Duration `toml:"backoff_base"`
}

type PoolConfig struct {
	Size         int `toml:"size"`
	MinThreshold int `toml:"min_threshold"`
	MaxGenres    int `toml:"max_genres"`
	CacheTTLDays int `toml:"cache_ttl_days"`
}

type EventsConfig struct {
	RetentionDays int `toml:"retention_days"`
}

// Duration is a time.Duration that decodes from TOML strings like "250ms".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Load reads, parses, and validates the configuration file. Validation
// failures and unresolved environment variables come back as a
// *ConfigError.
func Load(path string) (*Config, error) {
	cfg, err := LoadWithoutValidation(path)
	if err != nil {
		return nil, err
	}

	cerr := &ConfigError{
		Path:    path,
		Missing: cfg.missing,
		Errors:  cfg.Validate(),
	}
	if cerr.HasErrors() {
		return nil, cerr
	}
	return cfg, nil
}

// LoadWithoutValidation reads and parses the configuration file, applying
// defaults but skipping validation. Tooling that inspects partial
// configurations uses this entry point.
func LoadWithoutValidation(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	content, missing := substituteEnvVars(string(data))

	var cfg Config
	if _, err := toml.Decode(content, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.missing = missing

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8484
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}
	if c.Database.Path == "" {
		c.Database.Path = "./data/reelroom.db"
	}
	if c.TMDB.BaseURL == "" {
		c.TMDB.BaseURL = "https://api.themoviedb.org"
	}
	if c.TMDB.Language == "" {
		c.TMDB.Language = "en-US"
	}
	if c.TMDB.RateLimitInterval == 0 {
		c.TMDB.RateLimitInterval = Duration(250 * time.Millisecond)
	}
	if c.TMDB.RequestTimeout == 0 {
		c.TMDB.RequestTimeout = Duration(10 * time.Second)
	}
	if c.TMDB.BackoffBase == 0 {
		c.TMDB.BackoffBase = Duration(time.Second)
	}
	if c.Pool.Size == 0 {
		c.Pool.Size = 30
	}
	if c.Pool.MinThreshold == 0 {
		c.Pool.MinThreshold = 5
	}
	if c.Pool.MaxGenres == 0 {
		c.Pool.MaxGenres = 3
	}
	if c.Pool.CacheTTLDays == 0 {
		c.Pool.CacheTTLDays = 30
	}
	if c.Events.RetentionDays == 0 {
		c.Events.RetentionDays = 90
	}
}

// envVarPattern matches ${VAR}, ${VAR:-default}, and ${VAR:?message}.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(:-([^}]*)|:\?([^}]*))?\}`)

// substituteEnvVars replaces environment variable references in the raw
// file content. References without a value and without a default are
// left in place and reported in the returned slice.
func substituteEnvVars(content string) (string, []string) {
	var missing []string

	out := envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		groups := envVarPattern.FindStringSubmatch(match)
		name := groups[1]

		value := os.Getenv(name)
		switch {
		case value != "":
			return value
		case strings.HasPrefix(groups[2], ":-"):
			return groups[3]
		case strings.HasPrefix(groups[2], ":?"):
			missing = append(missing, name+": "+groups[4])
			return match
		default:
			missing = append(missing, name)
			return match
		}
	})

	return out, missing
}
