// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Trainer TrainerConfig `toml:"trainer"`
	Log     LogConfig     `toml:"log"`
}

// TrainerConfig maps trainer-related settings.
type TrainerConfig struct {
	Puzzles       *string `toml:"puzzles"`
	Store         *string `toml:"store"`
	Player        *string `toml:"player"`
	MyMovesOnly   *bool   `toml:"my-moves-only"`
	HintMs        *int    `toml:"hint-ms"`
	CacheSize     *int    `toml:"cache-size"`
	FilterWorkers *int    `toml:"filter-workers"`
	Watch         *bool   `toml:"watch"`
}

// LogConfig maps logging settings.
type LogConfig struct {
	Level *string `toml:"level"`
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
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}
