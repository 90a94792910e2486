package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".webmark.yaml"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File represents the structure of the .webmark.yaml configuration file.
type File struct {
	// Settings are overrides for the run configuration. Zero values
	// leave the corresponding default untouched.
	Settings Config `yaml:"settings"`

	// Presets maps preset names to documentation site definitions.
	Presets map[string]Preset `yaml:"presets,omitempty"`
}

// LoadConfigFile loads configuration from a YAML file.
// Unknown keys are rejected: a typo in the config file fails the load
// instead of silently falling back to a default.
// If the file does not exist, it returns ErrConfigNotFound.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cf); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if cf.Presets == nil {
		cf.Presets = make(map[string]Preset)
	}
	return &cf, nil
}

// FindConfigFile searches for the configuration file in order:
// the explicit path if given, then the current directory, then the
// XDG config directory. Returns empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	xdgConfig := filepath.Join(XDGConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig
	}

	return ""
}

// Apply merges the file's settings into cfg. Only non-zero values
// override; flags already parsed into cfg keep their defaults where
// the file is silent.
func (cf *File) Apply(cfg *Config) {
	s := cf.Settings
	if s.SeedURL != "" {
		cfg.SeedURL = s.SeedURL
	}
	if s.LinkPattern != "" {
		cfg.LinkPattern = s.LinkPattern
	}
	if s.OutputDir != "" {
		cfg.OutputDir = s.OutputDir
	}
	if s.MaxRetries != 0 {
		cfg.MaxRetries = s.MaxRetries
	}
	if s.RetryBaseDelay != 0 {
		cfg.RetryBaseDelay = s.RetryBaseDelay
	}
	if s.MaxRecursionRetries != 0 {
		cfg.MaxRecursionRetries = s.MaxRecursionRetries
	}
	if s.RateLimitDelay != 0 {
		cfg.RateLimitDelay = s.RateLimitDelay
	}
	if s.MaxDepth != 0 {
		cfg.MaxDepth = s.MaxDepth
	}
	if s.Timeout != 0 {
		cfg.Timeout = s.Timeout
	}
	if s.SaveInterval != 0 {
		cfg.SaveInterval = s.SaveInterval
	}
	if s.UserAgent != "" {
		cfg.UserAgent = s.UserAgent
	}
	if s.MaxBodySize != 0 {
		cfg.MaxBodySize = s.MaxBodySize
	}
	if s.Cookie != "" {
		cfg.Cookie = s.Cookie
	}
	if len(s.Headers) > 0 {
		if cfg.Headers == nil {
			cfg.Headers = make(map[string]string)
		}
		for k, v := range s.Headers {
			cfg.Headers[k] = v
		}
	}
	if s.DownloadImages {
		cfg.DownloadImages = true
	}
}
