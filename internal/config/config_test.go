package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestNewConfig verifies that NewConfig returns a Config with all expected default values.
// This test ensures that defaults are documented through tests and that changes
// to defaults are intentional (tests will fail if defaults change unexpectedly).
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default MaxRetries is 3", func(t *testing.T) {
		t.Parallel()
		if cfg.MaxRetries != 3 {
			t.Errorf("expected MaxRetries to be 3, got %d", cfg.MaxRetries)
		}
	})

	t.Run("default RetryBaseDelay is 2 seconds", func(t *testing.T) {
		t.Parallel()
		if cfg.RetryBaseDelay != 2*time.Second {
			t.Errorf("expected RetryBaseDelay to be 2s, got %v", cfg.RetryBaseDelay)
		}
	})

	t.Run("default MaxRecursionRetries is 2", func(t *testing.T) {
		t.Parallel()
		if cfg.MaxRecursionRetries != 2 {
			t.Errorf("expected MaxRecursionRetries to be 2, got %d", cfg.MaxRecursionRetries)
		}
	})

	t.Run("default RateLimitDelay is 500ms", func(t *testing.T) {
		t.Parallel()
		if cfg.RateLimitDelay != 500*time.Millisecond {
			t.Errorf("expected RateLimitDelay to be 500ms, got %v", cfg.RateLimitDelay)
		}
	})

	t.Run("default MaxDepth is 50", func(t *testing.T) {
		t.Parallel()
		if cfg.MaxDepth != 50 {
			t.Errorf("expected MaxDepth to be 50, got %d", cfg.MaxDepth)
		}
	})

	t.Run("default Timeout is 30 seconds", func(t *testing.T) {
		t.Parallel()
		if cfg.Timeout != 30*time.Second {
			t.Errorf("expected Timeout to be 30s, got %v", cfg.Timeout)
		}
	})

	t.Run("default SaveInterval is 10", func(t *testing.T) {
		t.Parallel()
		if cfg.SaveInterval != 10 {
			t.Errorf("expected SaveInterval to be 10, got %d", cfg.SaveInterval)
		}
	})

	t.Run("default OutputDir is ./downloaded_docs", func(t *testing.T) {
		t.Parallel()
		if cfg.OutputDir != "./downloaded_docs" {
			t.Errorf("expected OutputDir to be './downloaded_docs', got %q", cfg.OutputDir)
		}
	})

	t.Run("default ForceRefresh is false", func(t *testing.T) {
		t.Parallel()
		if cfg.ForceRefresh {
			t.Error("expected ForceRefresh to be false")
		}
	})
}

// TestConfigValidate tests the Validate method with various configurations.
// Each test case is designed to test one specific validation rule.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	// validConfig returns a minimal valid configuration.
	// Tests can modify specific fields to test validation rules.
	validConfig := func() *Config {
		cfg := NewConfig()
		cfg.SeedURL = "https://example.com/docs/start"
		return cfg
	}

	t.Run("valid config returns nil", func(t *testing.T) {
		t.Parallel()
		if err := validConfig().Validate(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("empty seed URL returns ErrNoSeedURL", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.SeedURL = ""

		if err := cfg.Validate(); !errors.Is(err, ErrNoSeedURL) {
			t.Errorf("expected ErrNoSeedURL, got %v", err)
		}
	})

	t.Run("empty output dir returns ErrNoOutputDir", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.OutputDir = ""

		if err := cfg.Validate(); !errors.Is(err, ErrNoOutputDir) {
			t.Errorf("expected ErrNoOutputDir, got %v", err)
		}
	})

	t.Run("negative max retries returns ErrInvalidMaxRetries", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.MaxRetries = -1

		if err := cfg.Validate(); !errors.Is(err, ErrInvalidMaxRetries) {
			t.Errorf("expected ErrInvalidMaxRetries, got %v", err)
		}
	})

	t.Run("zero max retries is valid", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.MaxRetries = 0

		if err := cfg.Validate(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("negative retry delay returns ErrInvalidRetryDelay", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.RetryBaseDelay = -time.Second

		if err := cfg.Validate(); !errors.Is(err, ErrInvalidRetryDelay) {
			t.Errorf("expected ErrInvalidRetryDelay, got %v", err)
		}
	})

	t.Run("negative recursion retries returns ErrInvalidRecursionRetries", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.MaxRecursionRetries = -1

		if err := cfg.Validate(); !errors.Is(err, ErrInvalidRecursionRetries) {
			t.Errorf("expected ErrInvalidRecursionRetries, got %v", err)
		}
	})

	t.Run("negative rate limit returns ErrInvalidRateLimit", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.RateLimitDelay = -time.Millisecond

		if err := cfg.Validate(); !errors.Is(err, ErrInvalidRateLimit) {
			t.Errorf("expected ErrInvalidRateLimit, got %v", err)
		}
	})

	t.Run("zero max depth returns ErrInvalidMaxDepth", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.MaxDepth = 0

		if err := cfg.Validate(); !errors.Is(err, ErrInvalidMaxDepth) {
			t.Errorf("expected ErrInvalidMaxDepth, got %v", err)
		}
	})

	t.Run("zero timeout returns ErrInvalidTimeout", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.Timeout = 0

		if err := cfg.Validate(); !errors.Is(err, ErrInvalidTimeout) {
			t.Errorf("expected ErrInvalidTimeout, got %v", err)
		}
	})

	t.Run("zero save interval returns ErrInvalidSaveInterval", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.SaveInterval = 0

		if err := cfg.Validate(); !errors.Is(err, ErrInvalidSaveInterval) {
			t.Errorf("expected ErrInvalidSaveInterval, got %v", err)
		}
	})

	t.Run("negative max body size returns ErrInvalidMaxBodySize", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.MaxBodySize = -1

		if err := cfg.Validate(); !errors.Is(err, ErrInvalidMaxBodySize) {
			t.Errorf("expected ErrInvalidMaxBodySize, got %v", err)
		}
	})
}

// TestLoadConfigFile tests YAML config file loading, including the
// strict rejection of unknown keys.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("loads settings and presets", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "config.yaml")
		content := `settings:
  output_dir: ./docs
  max_retries: 5
  rate_limit_delay: 1s
  headers:
    Authorization: "Bearer token"
presets:
  mydocs:
    name: "My Docs"
    base_url: "https://example.com/docs/start"
    link_pattern: "/docs"
`
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}

		cf, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if cf.Settings.OutputDir != "./docs" {
			t.Errorf("expected output_dir './docs', got %q", cf.Settings.OutputDir)
		}
		if cf.Settings.MaxRetries != 5 {
			t.Errorf("expected max_retries 5, got %d", cf.Settings.MaxRetries)
		}
		if cf.Settings.RateLimitDelay != time.Second {
			t.Errorf("expected rate_limit_delay 1s, got %v", cf.Settings.RateLimitDelay)
		}
		if cf.Settings.Headers["Authorization"] != "Bearer token" {
			t.Errorf("expected Authorization header, got %v", cf.Settings.Headers)
		}
		preset, ok := cf.Presets["mydocs"]
		if !ok {
			t.Fatal("expected preset 'mydocs' to be loaded")
		}
		if preset.LinkPattern != "/docs" {
			t.Errorf("expected link_pattern '/docs', got %q", preset.LinkPattern)
		}
	})

	t.Run("rejects unknown keys", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "config.yaml")
		content := `settings:
  output_dirr: ./docs
`
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}

		if _, err := LoadConfigFile(path); err == nil {
			t.Error("expected error for unknown key 'output_dirr', got nil")
		}
	})

	t.Run("missing file returns ErrConfigNotFound", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfigFile(filepath.Join(t.TempDir(), "nope.yaml"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})
}

// TestFileApply verifies that Apply only overrides non-zero settings.
func TestFileApply(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()
	cf := &File{
		Settings: Config{
			OutputDir:  "./custom",
			MaxRetries: 7,
		},
	}
	cf.Apply(cfg)

	if cfg.OutputDir != "./custom" {
		t.Errorf("expected OutputDir './custom', got %q", cfg.OutputDir)
	}
	if cfg.MaxRetries != 7 {
		t.Errorf("expected MaxRetries 7, got %d", cfg.MaxRetries)
	}
	// Untouched settings keep their defaults.
	if cfg.MaxDepth != DefaultMaxDepth {
		t.Errorf("expected MaxDepth default %d, got %d", DefaultMaxDepth, cfg.MaxDepth)
	}
	if cfg.Timeout != DefaultTimeout {
		t.Errorf("expected Timeout default %v, got %v", DefaultTimeout, cfg.Timeout)
	}
}

// TestResolvePreset verifies preset lookup order: config file presets
// shadow built-ins of the same key.
func TestResolvePreset(t *testing.T) {
	t.Parallel()

	t.Run("builtin preset resolves", func(t *testing.T) {
		t.Parallel()

		preset, ok := ResolvePreset(nil, "uefn")
		if !ok {
			t.Fatal("expected builtin preset 'uefn' to resolve")
		}
		if preset.LinkPattern != "/documentation/en-us/uefn" {
			t.Errorf("unexpected link pattern %q", preset.LinkPattern)
		}
	})

	t.Run("file preset shadows builtin", func(t *testing.T) {
		t.Parallel()

		cf := &File{Presets: map[string]Preset{
			"uefn": {Name: "Custom", BaseURL: "https://example.com/", LinkPattern: "/x"},
		}}
		preset, ok := ResolvePreset(cf, "uefn")
		if !ok {
			t.Fatal("expected preset to resolve")
		}
		if preset.Name != "Custom" {
			t.Errorf("expected file preset to win, got %q", preset.Name)
		}
	})

	t.Run("unknown preset does not resolve", func(t *testing.T) {
		t.Parallel()

		if _, ok := ResolvePreset(nil, "definitely-not-a-preset"); ok {
			t.Error("expected unknown preset to not resolve")
		}
	})
}
