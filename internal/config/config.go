package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/sirupsen/logrus"

	"github.com/arcanaland/scryfetch/internal/card"
)

// Config represents the application configuration
type Config struct {
	DefaultSize  string   `toml:"default_size"`
	OutputDir    string   `toml:"output_dir"`
	Resize       string   `toml:"resize"` // "WxH", empty for none
	Delay        Duration `toml:"delay"`
	Timeout      Duration `toml:"timeout"`
	UserAgent    string   `toml:"user_agent"`
	FaceFallback bool     `toml:"face_fallback"`
	LogLevel     string   `toml:"log_level"`
}

// Duration is a time.Duration stored as a string such as "100ms"
type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

// DefaultConfig returns the configuration written on first run
func DefaultConfig() *Config {
	return &Config{
		DefaultSize:  string(card.SizePNG),
		OutputDir:    "cards",
		Delay:        Duration{100 * time.Millisecond},
		Timeout:      Duration{30 * time.Second},
		UserAgent:    "scryfetch/1.0",
		FaceFallback: true,
		LogLevel:     "info",
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if _, err := card.ParseSize(c.DefaultSize); err != nil {
		return fmt.Errorf("default_size: %w", err)
	}
	if c.Resize != "" {
		if _, err := card.ParseResize(c.Resize); err != nil {
			return fmt.Errorf("resize: %w", err)
		}
	}
	if c.Delay.Duration < 0 {
		return fmt.Errorf("delay cannot be negative")
	}
	if c.Timeout.Duration < 0 {
		return fmt.Errorf("timeout cannot be negative")
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	return nil
}

// Size returns the configured default size tag
func (c *Config) Size() card.Size {
	s, err := card.ParseSize(c.DefaultSize)
	if err != nil {
		return card.SizePNG
	}
	return s
}

// GetXDGConfigHome returns XDG_CONFIG_HOME or default path
func GetXDGConfigHome() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return xdgConfig
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".config")
}

// GetConfigFilePath returns the path to the config file
func GetConfigFilePath() string {
	return filepath.Join(GetXDGConfigHome(), "scryfetch", "config.toml")
}

// LoadConfig loads the config file, creating it with defaults if missing
func LoadConfig() (*Config, error) {
	return LoadConfigFrom(GetConfigFilePath())
}

// LoadConfigFrom loads the config file at path
func LoadConfigFrom(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return createDefaultConfig(configPath)
	}

	// Unset keys keep their defaults
	config := DefaultConfig()
	if _, err := toml.DecodeFile(configPath, config); err != nil {
		return nil, fmt.Errorf("error decoding config file: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", configPath, err)
	}

	return config, nil
}

// createDefaultConfig creates a default config file
func createDefaultConfig(configPath string) (*Config, error) {
	config := DefaultConfig()
	if err := SaveConfigTo(configPath, config); err != nil {
		return nil, err
	}
	return config, nil
}

// SaveConfig writes config to the default location
func SaveConfig(config *Config) error {
	return SaveConfigTo(GetConfigFilePath(), config)
}

// SaveConfigTo writes config to configPath
func SaveConfigTo(configPath string, config *Config) error {
	// Ensure the config directory exists
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	file, err := os.Create(configPath)
	if err != nil {
		return fmt.Errorf("error creating config file: %w", err)
	}
	defer file.Close()

	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(config); err != nil {
		return fmt.Errorf("error encoding config: %w", err)
	}

	return nil
}

// SetDefaultSize validates size and stores it as the default
func SetDefaultSize(size string) error {
	s, err := card.ParseSize(size)
	if err != nil {
		return err
	}

	config, err := LoadConfig()
	if err != nil {
		return err
	}
	config.DefaultSize = string(s)
	return SaveConfig(config)
}
