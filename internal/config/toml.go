// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Practice  PracticeConfig  `toml:"practice"`
	Dashboard DashboardConfig `toml:"dashboard"`
	Server    ServerConfig    `toml:"server"`
	Log       LogConfig       `toml:"log"`
}

// PracticeConfig maps practice-related settings.
type PracticeConfig struct {
	Mode       *string   `toml:"mode" validate:"omitempty,oneof=kumon endless buzzer"`
	Difficulty *string   `toml:"difficulty" validate:"omitempty,oneof=easy medium hard"`
	Ops        *[]string `toml:"ops" validate:"omitempty,min=1,dive,oneof=+ - * / x add sub mul div addition subtraction multiplication division"`
	Timer      *int      `toml:"timer" validate:"omitempty,gte=0,lte=3600"`
}

// DashboardConfig maps stats dashboard settings.
type DashboardConfig struct {
	Window *int `toml:"window" validate:"omitempty,gte=1,lte=365"`
}

// ServerConfig maps the local dashboard API settings.
type ServerConfig struct {
	Addr *string `toml:"addr" validate:"omitempty,hostname_port"`
}

// LogConfig maps logging settings.
type LogConfig struct {
	Level *string `toml:"level" validate:"omitempty,oneof=debug info warn error"`
	File  *string `toml:"file"`
}

var validate = validator.New()

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
	if err := cfg.Validate(); err != nil {
		return FileConfig{}, err
	}
	return cfg, nil
}

// Validate checks value ranges and enumerations.
func (c FileConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// DefaultTOML is written by the config command when no file exists.
const DefaultTOML = `# mathdrill configuration

[practice]
# kumon (20 questions), endless, or buzzer (60 seconds)
mode = "kumon"
difficulty = "medium"
ops = ["+", "-", "*", "/"]
# seconds, 0 = no timer
timer = 0

[dashboard]
window = 7

[server]
addr = "127.0.0.1:8787"

[log]
level = "info"
# file = "/path/to/mathdrill.log"
`

// EnsureFile writes DefaultTOML to path when it does not exist yet.
func EnsureFile(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("failed to stat config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("failed to create config dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(DefaultTOML), 0o644); err != nil {
		return false, fmt.Errorf("failed to write config: %w", err)
	}
	return true, nil
}

