// Package config loads console settings from a TOML file with defaults
// for every field, and can watch the file for live changes.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config holds all console configuration.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Console ConsoleConfig `toml:"console"`
	Logging LoggingConfig `toml:"logging"`
}

// ServerConfig points at the pre-pull service.
type ServerConfig struct {
	URL            string `toml:"url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// ConsoleConfig holds TUI behavior settings.
type ConsoleConfig struct {
	PollIntervalSeconds int `toml:"poll_interval_seconds"`
	PageSize            int `toml:"page_size"`
	ToastSeconds        int `toml:"toast_seconds"`
}

// LoggingConfig holds diagnostic log settings. The TUI owns the terminal,
// so diagnostics go to a file.
type LoggingConfig struct {
	Path  string `toml:"path"`
	Level string `toml:"level"`
}

// Timeout returns the gateway request timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Server.TimeoutSeconds) * time.Second
}

// PollInterval returns the silent-refresh period.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Console.PollIntervalSeconds) * time.Second
}

// ToastDuration returns how long one toast stays visible.
func (c *Config) ToastDuration() time.Duration {
	return time.Duration(c.Console.ToastSeconds) * time.Second
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		Server: ServerConfig{
			URL:            "http://127.0.0.1:8080",
			TimeoutSeconds: 30,
		},
		Console: ConsoleConfig{
			PollIntervalSeconds: 5,
			PageSize:            10,
			ToastSeconds:        3,
		},
		Logging: LoggingConfig{
			Path:  filepath.Join(home, ".config", "pullconsole", "pullconsole.log"),
			Level: "info",
		},
	}
}

// Load reads configuration from a TOML file, falling back to defaults
// when the file is absent.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	cfg.Logging.Path = ExpandPath(cfg.Logging.Path)
	return cfg, cfg.validate()
}

func (c *Config) validate() error {
	if c.Server.URL == "" {
		return fmt.Errorf("server.url must not be empty")
	}
	if c.Server.TimeoutSeconds <= 0 {
		return fmt.Errorf("server.timeout_seconds must be positive")
	}
	if c.Console.PollIntervalSeconds <= 0 {
		return fmt.Errorf("console.poll_interval_seconds must be positive")
	}
	if c.Console.PageSize <= 0 {
		return fmt.Errorf("console.page_size must be positive")
	}
	return nil
}

// ExpandPath expands ~ to the user's home directory.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// DefaultConfigPath returns the default config file location.
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "pullconsole", "config.toml")
}
