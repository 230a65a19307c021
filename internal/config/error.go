package config

import (
	"fmt"
	"strings"
)

// ConfigError collects everything wrong with a config load so the
// operator sees the full list at once instead of fixing one problem
// per restart.
type ConfigError struct {
	Path    string   // config file that was loaded
	Missing []string // ${VAR} references with no value
	Errors  []string // validation failures
}

func (e *ConfigError) Error() string {
	if len(e.Missing) == 0 && len(e.Errors) == 0 {
		return ""
	}

	var parts []string

	if len(e.Missing) > 0 {
		parts = append(parts, fmt.Sprintf("missing environment variables: %s", strings.Join(e.Missing, ", ")))
	}

	if len(e.Errors) > 0 {
		parts = append(parts, "validation failed:")
		for _, err := range e.Errors {
			parts = append(parts, fmt.Sprintf("  - %s", err))
		}
	}

	return strings.Join(parts, "\n")
}

// HasErrors reports whether the load produced any missing variables or
// validation failures.
func (e *ConfigError) HasErrors() bool {
	return len(e.Missing) > 0 || len(e.Errors) > 0
}
