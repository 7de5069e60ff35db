// Package config loads leappage configuration from defaults, a YAML file,
// LEAPPAGE_ environment variables and command-line flags.
package config

import "path/filepath"

// Config holds all configuration options.
type Config struct {
	ThemesDir    string         `koanf:"themes_dir"`
	Theme        string         `koanf:"theme"`
	Database     DatabaseConfig `koanf:"database"`
	Server       ServerConfig   `koanf:"server"`
	Scripts      ScriptsConfig  `koanf:"scripts"`
	LogLevel     string         `koanf:"log_level"`
	Verbose      bool           `koanf:"verbose"`
	OutputFormat string         `koanf:"output"`

	// Site holds free-form values handed to block controllers as
	// request.context["site"].
	Site map[string]any `koanf:"site"`

	// ProjectRoot is the directory relative paths were resolved against.
	ProjectRoot string `koanf:"-"`
	// File is the config file that was loaded, if any.
	File string `koanf:"-"`
}

// DatabaseConfig selects the page store.
type DatabaseConfig struct {
	Driver string `koanf:"driver"` // sqlite, postgres
	DSN    string `koanf:"dsn"`
}

// ServerConfig holds configuration for the HTTP server.
type ServerConfig struct {
	Port          int    `koanf:"port"`
	Watch         bool   `koanf:"watch"`
	SessionSecret string `koanf:"session_secret"`
}

// ScriptsConfig bounds block script execution.
type ScriptsConfig struct {
	MaxSteps uint64 `koanf:"max_steps"`
}

// ThemeDir returns the directory of the active theme.
func (c *Config) ThemeDir() string {
	return filepath.Join(c.ThemesDir, c.Theme)
}
