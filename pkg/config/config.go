package config

import (
	"fmt"
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the settings shared by widget trees and the drivers behind them.
type Config struct {
	// Browser launch and driver settings
	Browser BrowserConfig `yaml:"browser" json:"browser"`

	// Fill strategy defaults
	Fill FillConfig `yaml:"fill" json:"fill"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// BrowserConfig configures the driver a root browser is built on.
type BrowserConfig struct {
	// Engine selects the driver: "chromium", "firefox", "webkit" or "document"
	Engine string `yaml:"engine" json:"engine"`

	// Headless controls whether the browser runs without a visible window
	Headless bool `yaml:"headless" json:"headless"`

	// Viewport sets the initial viewport size
	ViewportWidth  int `yaml:"viewport_width" json:"viewport_width"`
	ViewportHeight int `yaml:"viewport_height" json:"viewport_height"`

	// Timeout is the driver default timeout for element operations
	Timeout time.Duration `yaml:"timeout" json:"timeout"`

	// ProductVersion is the version of the product under test, used by
	// version-dependent widget arguments
	ProductVersion string `yaml:"product_version" json:"product_version"`
}

// FillConfig configures the wait-based fill strategy.
type FillConfig struct {
	// WaitTimeout bounds how long a widget may take to appear before it is filled
	WaitTimeout time.Duration `yaml:"wait_timeout" json:"wait_timeout"`

	// PollInterval is the delay between displayed checks
	PollInterval time.Duration `yaml:"poll_interval" json:"poll_interval"`
}

// LoggingConfig defines logging configuration
type LoggingConfig struct {
	// Verbosity controls logging level: quiet, normal, verbose, debug
	Verbosity string `yaml:"verbosity" json:"verbosity"`
}

var validEngines = map[string]bool{
	"chromium": true,
	"firefox":  true,
	"webkit":   true,
	"document": true,
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if !validEngines[c.Browser.Engine] {
		return fmt.Errorf("invalid browser engine: %s (must be 'chromium', 'firefox', 'webkit' or 'document')", c.Browser.Engine)
	}

	if c.Browser.ViewportWidth < 0 || c.Browser.ViewportHeight < 0 {
		return fmt.Errorf("viewport dimensions cannot be negative")
	}

	if c.Browser.Timeout < 0 {
		return fmt.Errorf("browser timeout cannot be negative")
	}

	if c.Fill.WaitTimeout <= 0 {
		return fmt.Errorf("fill wait_timeout must be positive")
	}

	if c.Fill.PollInterval <= 0 {
		return fmt.Errorf("fill poll_interval must be positive")
	}

	if c.Fill.PollInterval > c.Fill.WaitTimeout {
		return fmt.Errorf("fill poll_interval (%s) exceeds wait_timeout (%s)", c.Fill.PollInterval, c.Fill.WaitTimeout)
	}

	// Set default verbosity if not specified
	if c.Logging.Verbosity == "" {
		c.Logging.Verbosity = "normal"
	}

	validLevels := map[string]bool{
		"quiet":   true,
		"normal":  true,
		"verbose": true,
		"debug":   true,
	}
	if !validLevels[c.Logging.Verbosity] {
		return fmt.Errorf("invalid logging verbosity: %s (must be 'quiet', 'normal', 'verbose', or 'debug')", c.Logging.Verbosity)
	}

	return nil
}

// DefaultConfig returns a default configuration suitable for most use cases
func DefaultConfig() *Config {
	return &Config{
		Browser: BrowserConfig{
			Engine:         "chromium",
			Headless:       true,
			ViewportWidth:  1280,
			ViewportHeight: 720,
			Timeout:        30 * time.Second,
		},
		Fill: FillConfig{
			WaitTimeout:  5 * time.Second,
			PollInterval: 100 * time.Millisecond,
		},
		Logging: LoggingConfig{
			Verbosity: "normal",
		},
	}
}

// Parse decodes YAML (or JSON, which YAML accepts) on top of the defaults and
// validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Load reads and parses a config file. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

var (
	// globalConfig is the process-wide configuration instance
	globalConfig *Config
	globalMu     sync.Mutex
)

// Initialize loads the global configuration.
// This should be called once at application startup.
func Initialize(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}

	globalMu.Lock()
	defer globalMu.Unlock()
	globalConfig = cfg
	return nil
}

// Global returns the global configuration.
// Panics if Initialize has not been called.
func Global() *Config {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalConfig == nil {
		panic("config not initialized: call config.Initialize first")
	}
	return globalConfig
}

// IsInitialized returns true if the global configuration has been initialized.
func IsInitialized() bool {
	globalMu.Lock()
	defer globalMu.Unlock()
	return globalConfig != nil
}

// Fill returns the global fill settings, or the defaults when the global
// configuration was never initialized.
func Fill() FillConfig {
	if !IsInitialized() {
		return DefaultConfig().Fill
	}
	return Global().Fill
}
