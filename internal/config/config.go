// Package config loads process configuration from an optional TOML file
// with environment-variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
)

// Config is the full process configuration.
type Config struct {
	Server         ServerConfig         `toml:"server"`
	Database       DatabaseConfig       `toml:"database"`
	AfricasTalking AfricasTalkingConfig `toml:"africastalking"`
}

type ServerConfig struct {
	Port int `toml:"port"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

// AfricasTalkingConfig holds messaging API credentials. When empty, the
// server falls back to a log-only notifier.
type AfricasTalkingConfig struct {
	Username string `toml:"username"`
	APIKey   string `toml:"api_key"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server:   ServerConfig{Port: 8080},
		Database: DatabaseConfig{Path: "./data/kulapay.db"},
	}
}

// Load reads the TOML file at path (if path is non-empty) over the
// defaults, then applies environment overrides: PORT, DB_PATH,
// AT_USERNAME, AT_API_KEY.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to load config %s: %w", path, err)
		}
	}

	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		cfg.Server.Port = port
	}
	if v := os.Getenv("DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("AT_USERNAME"); v != "" {
		cfg.AfricasTalking.Username = v
	}
	if v := os.Getenv("AT_API_KEY"); v != "" {
		cfg.AfricasTalking.APIKey = v
	}

	return cfg, nil
}
