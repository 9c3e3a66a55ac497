// Package config provides centralized configuration management using Viper.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration values for estimatr.
type Config struct {
	Endpoint      string        `mapstructure:"endpoint" yaml:"endpoint"`             // Prediction service base URL
	ReferenceData string        `mapstructure:"reference_data" yaml:"reference_data"` // Path to the reference data file
	DataDir       string        `mapstructure:"data_dir" yaml:"data_dir"`
	LogLevel      string        `mapstructure:"log_level" yaml:"log_level"`
	LogFile       string        `mapstructure:"log_file" yaml:"log_file"`
	Timeout       time.Duration `mapstructure:"timeout" yaml:"timeout"` // 0 = wait for the transport
	History       bool          `mapstructure:"history" yaml:"history"`
	ServeAddr     string        `mapstructure:"serve_addr" yaml:"serve_addr"`
	Price         float64       `mapstructure:"price" yaml:"price"` // Fixed price returned by the stand-in server
}

// envKeys lists every key that can be overridden with an ESTIMATR_ variable.
var envKeys = []string{
	"endpoint",
	"reference_data",
	"data_dir",
	"log_level",
	"log_file",
	"timeout",
	"history",
	"serve_addr",
	"price",
}

// Load loads configuration with full precedence:
// CLI flags > ENV vars > project config > XDG global config > defaults
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigName("estimatr")

	v.SetDefault("endpoint", "http://localhost:8000")
	v.SetDefault("reference_data", filepath.Join("data", "reference.json"))
	v.SetDefault("data_dir", ".estimatr")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")
	v.SetDefault("timeout", "0s")
	v.SetDefault("history", true)
	v.SetDefault("serve_addr", "127.0.0.1:8000")
	v.SetDefault("price", 0.0)

	v.SetEnvPrefix("ESTIMATR")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Explicit ENV bindings for better bool/int/duration parsing
	for _, key := range envKeys {
		if err := v.BindEnv(key, "ESTIMATR_"+strings.ToUpper(key)); err != nil {
			return nil, fmt.Errorf("binding %s env: %w", key, err)
		}
	}

	globalPath := GlobalPath()
	if fileExists(globalPath) {
		v.SetConfigFile(globalPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading global config: %w", err)
		}
	}

	projectPath := ProjectPath()
	if fileExists(projectPath) {
		v.SetConfigFile(projectPath)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("merging project config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// Validate checks values that cannot be repaired with a default.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Endpoint) == "" {
		return errors.New("endpoint is required")
	}
	u, err := url.Parse(c.Endpoint)
	if err != nil {
		return fmt.Errorf("invalid endpoint %q: %w", c.Endpoint, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid endpoint %q: scheme must be http or https", c.Endpoint)
	}
	if c.Timeout < 0 {
		return errors.New("timeout must be >= 0 (0 means no timeout)")
	}
	if c.Price < 0 {
		return errors.New("price must be >= 0")
	}
	return nil
}

// Exists returns true if any config file exists (global or project).
func Exists() bool {
	return fileExists(GlobalPath()) || fileExists(ProjectPath())
}

// GlobalPath returns the XDG global config path.
// Returns ~/.config/estimatr/estimatr.yml or $XDG_CONFIG_HOME/estimatr/estimatr.yml.
func GlobalPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "estimatr", "estimatr.yml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "estimatr", "estimatr.yml")
}

// ProjectPath returns the project-local config path.
func ProjectPath() string {
	return "estimatr.yml"
}

// WriteGlobal writes the config to the XDG global location.
func WriteGlobal(cfg *Config) error {
	path := GlobalPath()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	return write(path, cfg)
}

// WriteProject writes the config to the project-local location.
func WriteProject(cfg *Config) error {
	return write(ProjectPath(), cfg)
}

func write(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// fileExists checks if a file exists.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
