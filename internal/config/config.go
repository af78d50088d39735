package config

import (
	"fmt"
	"time"
)

// Config holds server configuration
type Config struct {
	// Server settings
	Port int
	Host string

	// Target settings
	TargetDirectory string

	// Run history adapter settings
	AdapterType string // "github" or "fixture"
	GitHubToken string
	GitHubURL   string
	FixtureDir  string

	// Audit storage settings
	AuditDBPath string

	// Operational settings
	GracefulShutdownTimeout time.Duration
}

// Validate checks if configuration is valid
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}

	if c.TargetDirectory == "" {
		return fmt.Errorf("target directory is required")
	}

	if c.AdapterType != "github" && c.AdapterType != "fixture" {
		return fmt.Errorf("adapter type must be 'github' or 'fixture'")
	}

	if c.AdapterType == "github" && c.GitHubToken == "" {
		return fmt.Errorf("GitHub token required when adapter type is 'github'")
	}

	return nil
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	return Config{
		Port:                    8080,
		Host:                    "0.0.0.0",
		AdapterType:             "fixture",
		GitHubURL:               "https://api.github.com",
		GracefulShutdownTimeout: 30 * time.Second,
	}
}
