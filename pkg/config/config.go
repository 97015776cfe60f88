/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the GhostShell configuration
type Config struct {
	DataDir  string   `yaml:"data_dir"`
	Port     int      `yaml:"port"`
	Bind     string   `yaml:"bind"`
	Security Security `yaml:"security"`
	Logging  Logging  `yaml:"logging"`
	Codec    Codec    `yaml:"codec"`
	Storage  Storage  `yaml:"storage"`
}

// Security contains security-related configuration
type Security struct {
	APIKey string `yaml:"api_key"`
}

// Logging contains logging configuration
type Logging struct {
	Level string `yaml:"level"`
}

// Codec contains embedding configuration
type Codec struct {
	Channels  string `yaml:"channels"`   // channel letters, "r" is the compatible default
	Format    string `yaml:"format"`     // lossless output format
	MaxPixels int    `yaml:"max_pixels"` // 0 disables the limit
}

// Storage contains retention settings for encoded images served by the API
type Storage struct {
	Retention time.Duration `yaml:"retention"` // 0 keeps images forever
	Sync      bool          `yaml:"sync"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		DataDir: "./data",
		Port:    8080,
		Bind:    "127.0.0.1",
		Security: Security{
			APIKey: "auto",
		},
		Logging: Logging{
			Level: "info",
		},
		Codec: Codec{
			Channels:  "r",
			Format:    "png",
			MaxPixels: 50_000_000,
		},
		Storage: Storage{
			Retention: 24 * time.Hour,
		},
	}
}

// LoadConfig loads configuration from the specified path
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

	// Validate path to prevent directory traversal
	if !filepath.IsAbs(configPath) {
		absPath, err := filepath.Abs(configPath)
		if err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}
		configPath = absPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveConfig saves the configuration to the specified path with secure permissions
func SaveConfig(config *Config, configPath string) error {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GenerateSecureKey generates a cryptographically secure random key
func GenerateSecureKey(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate secure key: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

// BootstrapConfig creates a new configuration with a generated API key
func BootstrapConfig(configPath string, dataDir string) (*Config, error) {
	config := DefaultConfig()
	if dataDir != "" {
		config.DataDir = dataDir
	}

	apiKey, err := GenerateSecureKey(32) // 256 bits
	if err != nil {
		return nil, fmt.Errorf("failed to generate API key: %w", err)
	}
	config.Security.APIKey = apiKey

	if err := SaveConfig(config, configPath); err != nil {
		return nil, fmt.Errorf("failed to save bootstrap config: %w", err)
	}

	return config, nil
}

// GetDefaultConfigPath returns the default configuration path for the current platform
func GetDefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./ghostshell.yaml"
	}

	// For Linux/macOS, use ~/.config/ghostshell/config.yaml
	configDir := filepath.Join(homeDir, ".config", "ghostshell")
	return filepath.Join(configDir, "config.yaml")
}

// ConfigExists checks if a configuration file exists
func ConfigExists(configPath string) bool {
	_, err := os.Stat(configPath)
	return !os.IsNotExist(err)
}

// ParseLevel maps a config level name to a slog level
func (l Logging) ParseLevel() (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(l.Level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level: %q", l.Level)
}

// NewLogger builds a text logger writing to w at the configured level
func (l Logging) NewLogger(w io.Writer) (*slog.Logger, error) {
	level, err := l.ParseLevel()
	if err != nil {
		return nil, err
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), nil
}
