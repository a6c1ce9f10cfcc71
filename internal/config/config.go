package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full service configuration, loaded from a YAML file with
// environment overrides for secrets.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Provider ProviderConfig `yaml:"provider"`
	Database DatabaseConfig `yaml:"database"`
}

type ServerConfig struct {
	Port      string `yaml:"port"`
	JWTSecret string `yaml:"jwt_secret"`
}

// ProviderConfig configures the sports-data provider client: base URL,
// API key, retry/backoff policy and the proactive throttle threshold.
type ProviderConfig struct {
	BaseURL       string        `yaml:"base_url"`
	APIKey        string        `yaml:"api_key"`
	Timeout       time.Duration `yaml:"timeout"`
	Cooldown      time.Duration `yaml:"cooldown"`
	MaxRetries    int           `yaml:"max_retries"`
	ThrottleAfter int           `yaml:"throttle_after"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// Default returns the configuration used when no file is supplied.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8080",
		},
		Provider: ProviderConfig{
			Cooldown:      60 * time.Second,
			MaxRetries:    5,
			ThrottleAfter: 100,
		},
		Database: DatabaseConfig{
			Path: "settlement.db",
		},
	}
}

// Load reads the configuration file at path, falling back to defaults
// for anything unset. An empty path loads defaults only. SPORTSDB_API_KEY,
// JWT_SECRET and PORT environment variables override their file values.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if v := os.Getenv("SPORTSDB_API_KEY"); v != "" {
		cfg.Provider.APIKey = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.Server.JWTSecret = v
	}
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}

	if cfg.Provider.APIKey == "" {
		return nil, fmt.Errorf("provider api key is required (set provider.api_key or SPORTSDB_API_KEY)")
	}

	return cfg, nil
}
