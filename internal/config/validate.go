package config

import (
	"fmt"

	"golang.org/x/text/language"
)

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true, "": true,
}

// Validate checks the configuration for errors.
// Returns a slice of error messages (empty if valid).
func (c *Config) Validate() []string {
	var errs []string

	// Server validation
	if c.Server.Port != 0 && (c.Server.Port < 1 || c.Server.Port > 65535) {
		errs = append(errs, fmt.Sprintf("server.port: must be between 1 and 65535, got %d", c.Server.Port))
	}
	if !validLogLevels[c.Server.LogLevel] {
		errs = append(errs, fmt.Sprintf("server.log_level: must be one of debug, info, warn, error; got %q", c.Server.LogLevel))
	}

	// TMDB validation
	if c.TMDB.APIKey == "" {
		errs = append(errs, "tmdb.api_key: required")
	}
	if c.TMDB.Language != "" {
		if _, err := language.Parse(c.TMDB.Language); err != nil {
			errs = append(errs, fmt.Sprintf("tmdb.language: not a valid BCP 47 tag: %q", c.TMDB.Language))
		}
	}
	if c.TMDB.RateLimitInterval < 0 {
		errs = append(errs, "tmdb.rate_limit_interval: must not be negative")
	}
	if c.TMDB.RequestTimeout < 0 {
		errs = append(errs, "tmdb.request_timeout: must not be negative")
	}

	// Pool validation
	if c.Pool.Size < 0 {
		errs = append(errs, fmt.Sprintf("pool.size: must not be negative, got %d", c.Pool.Size))
	}
	if c.Pool.MinThreshold < 0 {
		errs = append(errs, fmt.Sprintf("pool.min_threshold: must not be negative, got %d", c.Pool.MinThreshold))
	}
	if c.Pool.MinThreshold > c.Pool.Size && c.Pool.Size > 0 {
		errs = append(errs, fmt.Sprintf("pool.min_threshold: must not exceed pool.size, got %d > %d", c.Pool.MinThreshold, c.Pool.Size))
	}
	if c.Pool.MaxGenres < 0 {
		errs = append(errs, fmt.Sprintf("pool.max_genres: must not be negative, got %d", c.Pool.MaxGenres))
	}
	if c.Pool.CacheTTLDays < 0 {
		errs = append(errs, fmt.Sprintf("pool.cache_ttl_days: must not be negative, got %d", c.Pool.CacheTTLDays))
	}

	// Events validation
	if c.Events.RetentionDays < 0 {
		errs = append(errs, fmt.Sprintf("events.retention_days: must not be negative, got %d", c.Events.RetentionDays))
	}

	return errs
}
