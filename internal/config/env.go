package config

import (
	"fmt"
	"time"
)

// Environment variables that override the config file.
const (
	EnvAPIURL   = "PASSINTEL_API_URL"
	EnvTimeout  = "PASSINTEL_TIMEOUT"
	EnvLogLevel = "PASSINTEL_LOG_LEVEL"
	EnvLogFile  = "PASSINTEL_LOG_FILE"
)

// ApplyEnv overlays environment values onto cfg. Flags still take precedence
// over the result.
func ApplyEnv(cfg *FileConfig, getenv func(string) string) error {
	if v := getenv(EnvAPIURL); v != "" {
		cfg.API.URL = &v
	}
	if v := getenv(EnvTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s value %q: %w", EnvTimeout, v, err)
		}
		cfg.API.Timeout = &Duration{Duration: d}
	}
	if v := getenv(EnvLogLevel); v != "" {
		cfg.Log.Level = &v
	}
	if v := getenv(EnvLogFile); v != "" {
		cfg.Log.File = &v
	}
	return nil
}
