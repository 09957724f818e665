// Package config loads Breez client configuration from the environment and
// an optional YAML file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/breez-edu/breez/pkg/logger"
)

// Environment variables carrying the required Supabase connection
// parameters. Their absence is a configuration error surfaced by the
// signup path.
const (
	EnvSupabaseURL     = "BREEZ_SUPABASE_URL"
	EnvSupabaseAnonKey = "BREEZ_SUPABASE_ANON_KEY"
)

// DefaultBucket is the object storage bucket holding uploaded resources.
const DefaultBucket = "resources"

// Config holds the full client configuration.
type Config struct {
	Supabase SupabaseConfig       `yaml:"supabase"`
	Logging  logger.LoggingConfig `yaml:"logging"`
}

// SupabaseConfig holds backend connection parameters.
type SupabaseConfig struct {
	URL     string `yaml:"url"`
	AnonKey string `yaml:"anon_key"`
	Bucket  string `yaml:"bucket"`
}

// Configured reports whether both required connection parameters are set.
func (s SupabaseConfig) Configured() bool {
	return s.URL != "" && s.AnonKey != ""
}

// Load reads configuration from config/breez.yaml (when present) and the
// environment. Environment values override the file. A .env file in the
// working directory is honoured for local development.
func Load() (*Config, error) {
	return LoadFromPath(filepath.Join("config", "breez.yaml"))
}

// LoadFromPath loads configuration with an explicit YAML path.
func LoadFromPath(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Supabase: SupabaseConfig{Bucket: DefaultBucket},
		Logging:  logger.LoggingConfig{Level: "info", Format: "text", Output: "stderr"},
	}

	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if v := os.Getenv(EnvSupabaseURL); v != "" {
		cfg.Supabase.URL = v
	}
	if v := os.Getenv(EnvSupabaseAnonKey); v != "" {
		cfg.Supabase.AnonKey = v
	}
	if cfg.Supabase.Bucket == "" {
		cfg.Supabase.Bucket = DefaultBucket
	}

	return cfg, nil
}
