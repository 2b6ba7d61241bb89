package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetGlobal() {
	globalMu.Lock()
	globalConfig = nil
	globalMu.Unlock()
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "chromium", cfg.Browser.Engine)
	assert.Equal(t, 5*time.Second, cfg.Fill.WaitTimeout)
}

func TestParse(t *testing.T) {
	data := []byte(`
browser:
  engine: document
  product_version: "5.11"
fill:
  wait_timeout: 2s
  poll_interval: 50ms
logging:
  verbosity: debug
`)
	cfg, err := Parse(data)
	require.NoError(t, err)

	assert.Equal(t, "document", cfg.Browser.Engine)
	assert.Equal(t, "5.11", cfg.Browser.ProductVersion)
	assert.Equal(t, 2*time.Second, cfg.Fill.WaitTimeout)
	assert.Equal(t, 50*time.Millisecond, cfg.Fill.PollInterval)
	assert.Equal(t, "debug", cfg.Logging.Verbosity)

	// untouched keys keep their defaults
	assert.Equal(t, 1280, cfg.Browser.ViewportWidth)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{
			name:    "unknown engine",
			mutate:  func(c *Config) { c.Browser.Engine = "netscape" },
			wantErr: "invalid browser engine",
		},
		{
			name:    "negative viewport",
			mutate:  func(c *Config) { c.Browser.ViewportWidth = -1 },
			wantErr: "viewport dimensions",
		},
		{
			name:    "zero wait timeout",
			mutate:  func(c *Config) { c.Fill.WaitTimeout = 0 },
			wantErr: "wait_timeout",
		},
		{
			name: "poll slower than timeout",
			mutate: func(c *Config) {
				c.Fill.WaitTimeout = time.Second
				c.Fill.PollInterval = 2 * time.Second
			},
			wantErr: "exceeds wait_timeout",
		},
		{
			name:    "bad verbosity",
			mutate:  func(c *Config) { c.Logging.Verbosity = "loud" },
			wantErr: "invalid logging verbosity",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateDefaultsVerbosity(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Logging.Verbosity = ""
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "normal", cfg.Logging.Verbosity)
}

func TestInitialize(t *testing.T) {
	t.Run("initializes global config from file", func(t *testing.T) {
		resetGlobal()
		defer resetGlobal()

		configPath := filepath.Join(t.TempDir(), "widgetforge.yaml")
		require.NoError(t, os.WriteFile(configPath, []byte("fill:\n  wait_timeout: 9s\n"), 0600))

		require.NoError(t, Initialize(configPath))
		assert.True(t, IsInitialized())
		assert.Equal(t, 9*time.Second, Global().Fill.WaitTimeout)
		assert.Equal(t, 9*time.Second, Fill().WaitTimeout)
	})

	t.Run("missing file is an error", func(t *testing.T) {
		resetGlobal()
		defer resetGlobal()

		err := Initialize(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
		assert.False(t, IsInitialized())
	})

	t.Run("fill falls back to defaults when uninitialized", func(t *testing.T) {
		resetGlobal()
		assert.Equal(t, DefaultConfig().Fill, Fill())
	})

	t.Run("global panics when uninitialized", func(t *testing.T) {
		resetGlobal()
		assert.Panics(t, func() { Global() })
	})
}
