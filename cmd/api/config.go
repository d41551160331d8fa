package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the API process configuration. Connection settings come from the
// environment; this file holds the bits that are awkward as env vars.
type Config struct {
	Content struct {
		CatalogPath string `yaml:"catalog_path"`
	} `yaml:"content"`
	Watchdog struct {
		Enabled      bool `yaml:"enabled"`
		GraceSeconds int  `yaml:"grace_seconds"`
	} `yaml:"watchdog"`
}

func defaultConfig() *Config {
	var cfg Config
	cfg.Content.CatalogPath = "data/players.json"
	cfg.Watchdog.GraceSeconds = 15
	return &cfg
}

func loadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := defaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
