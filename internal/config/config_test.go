// internal/config/config_test.go
package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefault(t *testing.T) {
	cfg := NewDefault()

	// Spot-check the defaults that drive behavior.
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "dictscraper", cfg.Logger.ServiceName)
	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, 1280, cfg.Browser.WindowWidth)
	assert.Equal(t, 720, cfg.Browser.WindowHeight)
	assert.Contains(t, cfg.Portal.HomeURL, "datadictionary.ices.on.ca")
	assert.Equal(t, 30*time.Second, cfg.Portal.StepTimeout)
	assert.NotEmpty(t, cfg.Portal.Libraries)
}

func TestNew_OverridesFromViper(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.Set("browser.headless", false)
	v.Set("portal.libraries", []string{"DAD"})

	cfg, err := New(v)
	require.NoError(t, err)
	assert.False(t, cfg.Browser.Headless)
	assert.Equal(t, []string{"DAD"}, cfg.Portal.Libraries)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "missing home URL",
			mutate:  func(c *Config) { c.Portal.HomeURL = "" },
			wantErr: "portal.home_url",
		},
		{
			name:    "empty library registry",
			mutate:  func(c *Config) { c.Portal.Libraries = nil },
			wantErr: "portal.libraries",
		},
		{
			name:    "non-positive step timeout",
			mutate:  func(c *Config) { c.Portal.StepTimeout = 0 },
			wantErr: "portal.step_timeout",
		},
		{
			name:    "bad window size",
			mutate:  func(c *Config) { c.Browser.WindowHeight = -1 },
			wantErr: "browser.window_width",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefault()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestKnownLibrary(t *testing.T) {
	cfg := NewDefault()

	assert.True(t, cfg.KnownLibrary("DAD"))
	assert.True(t, cfg.KnownLibrary("OHIP"))
	assert.False(t, cfg.KnownLibrary("dad"), "library matching is case-sensitive")
	assert.False(t, cfg.KnownLibrary("NOPE"))
	assert.False(t, cfg.KnownLibrary(""))
}
