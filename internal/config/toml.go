// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	API       APIConfig       `toml:"api"`
	History   HistoryConfig   `toml:"history"`
	Log       LogConfig       `toml:"log"`
	DevServer DevServerConfig `toml:"devserver"`
}

// APIConfig maps analysis service settings.
type APIConfig struct {
	URL     *string   `toml:"url"`
	Timeout *Duration `toml:"timeout"`
}

// HistoryConfig maps history view settings.
type HistoryConfig struct {
	PageSize *int    `toml:"page-size"`
	Sort     *string `toml:"sort"`
}

// LogConfig maps logging settings.
type LogConfig struct {
	Level *string `toml:"level"`
	File  *string `toml:"file"`
}

// DevServerConfig maps settings of the local stand-in service.
type DevServerConfig struct {
	Addr       *string  `toml:"addr"`
	DB         *string  `toml:"db"`
	BreachFile *string  `toml:"breach-file"`
	Rate       *float64 `toml:"rate"`
	Burst      *int     `toml:"burst"`
}

// Duration decodes TOML strings such as "30s".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	d.Duration = parsed
	return nil
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}
