// Package config loads service settings from an optional YAML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Storage backends.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Config holds the service settings.
type Config struct {
	Addr        string `yaml:"addr"`
	Storage     string `yaml:"storage"`
	DatabaseURL string `yaml:"database_url"`
	Timezone    string `yaml:"timezone"`
	LogLevel    string `yaml:"log_level"`
}

// Default returns the settings used when nothing overrides them.
func Default() Config {
	return Config{
		Addr:     ":3333",
		Storage:  StoragePostgres,
		Timezone: "UTC",
		LogLevel: "info",
	}
}

// Load starts from Default, applies the YAML file at path if path is not
// empty, then applies environment overrides and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	overrides := map[string]*string{
		"ADDR":            &c.Addr,
		"STORAGE":         &c.Storage,
		"DATABASE_URL":    &c.DatabaseURL,
		"HABITS_TIMEZONE": &c.Timezone,
		"LOG_LEVEL":       &c.LogLevel,
	}
	for key, dst := range overrides {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch c.Storage {
	case StoragePostgres:
		if c.DatabaseURL == "" {
			return errors.New("config: database_url is required for postgres storage")
		}
	case StorageMemory:
	default:
		return fmt.Errorf("config: unknown storage %q", c.Storage)
	}
	if c.Addr == "" {
		return errors.New("config: addr must not be empty")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Location resolves Timezone.
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: timezone: %w", err)
	}
	return loc, nil
}

// Level resolves LogLevel.
func (c Config) Level() (zapcore.Level, error) {
	lvl, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return lvl, fmt.Errorf("config: log_level: %w", err)
	}
	return lvl, nil
}
