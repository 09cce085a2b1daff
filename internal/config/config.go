// Package config loads the dcmgroup YAML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config mirrors config.yaml.
type Config struct {
	DBPath    string          `yaml:"db_path"`
	Workers   int             `yaml:"workers"`
	LogLevel  string          `yaml:"log_level"`
	Heuristic string          `yaml:"heuristic"`
	Converter ConverterConfig `yaml:"converter"`
}

// ConverterConfig selects the external converter.
type ConverterConfig struct {
	Command string   `yaml:"command"`
	Args    []string `yaml:"args"`
}

// Home returns the default state directory, ~/.dcmgroup.
func Home() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".dcmgroup")
}

// Defaults returns a Config with every field filled.
func Defaults() Config {
	return Config{
		DBPath:    filepath.Join(Home(), "catalog.db"),
		Workers:   0,
		LogLevel:  "info",
		Converter: ConverterConfig{Command: "dcm2niix"},
	}
}

// WithDefaults fills empty fields from Defaults.
func (c Config) WithDefaults() Config {
	d := Defaults()
	if c.DBPath == "" {
		c.DBPath = d.DBPath
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
	if c.Converter.Command == "" {
		c.Converter.Command = d.Converter.Command
	}
	if c.Workers < 0 {
		c.Workers = 0
	}
	return c
}

// ReadConfig reads path. A missing file yields the defaults.
func ReadConfig(path string) (*Config, error) {
	file, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		cfg := Defaults()
		return &cfg, nil
	}
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(file, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg = cfg.WithDefaults()
	return &cfg, nil
}
