// internal/config/config.go
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds the entire application configuration. Values come from the
// config file, DICTSCRAPER_* environment variables and CLI flag overrides,
// with viper resolving the precedence.
type Config struct {
	Logger  LoggerConfig  `mapstructure:"logger" yaml:"logger"`
	Browser BrowserConfig `mapstructure:"browser" yaml:"browser"`
	Portal  PortalConfig  `mapstructure:"portal" yaml:"portal"`
	// Scrape gets its marching orders from CLI arguments, not the config file.
	Scrape ScrapeConfig `mapstructure:"-" yaml:"-"`
}

// LoggerConfig controls the global zap logger.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"`
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	// LogFile, when set, enables an additional rotating JSON file core.
	LogFile    string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize    int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge     int    `mapstructure:"max_age" yaml:"max_age"`
	Compress   bool   `mapstructure:"compress" yaml:"compress"`
}

// BrowserConfig controls the Chromium process driven by chromedp.
type BrowserConfig struct {
	Headless bool `mapstructure:"headless" yaml:"headless"`
	// SlowMo is an artificial delay before each browser action. It is only
	// applied in headed mode, where it makes the automation watchable.
	SlowMo       time.Duration `mapstructure:"slow_mo" yaml:"slow_mo"`
	NoSandbox    bool          `mapstructure:"no_sandbox" yaml:"no_sandbox"`
	WindowWidth  int           `mapstructure:"window_width" yaml:"window_width"`
	WindowHeight int           `mapstructure:"window_height" yaml:"window_height"`
}

// PortalConfig describes the ICES Data Dictionary portal: where it lives,
// which libraries it exposes and how long to wait on its pages. The ASP.NET
// frontend keeps rendering well after its load events fire, hence the
// explicit settle waits.
type PortalConfig struct {
	HomeURL   string   `mapstructure:"home_url" yaml:"home_url"`
	Libraries []string `mapstructure:"libraries" yaml:"libraries"`
	// StepTimeout bounds each individual navigation or extraction step.
	StepTimeout time.Duration `mapstructure:"step_timeout" yaml:"step_timeout"`
	// RenderWait is the settle time after a listing page load.
	RenderWait time.Duration `mapstructure:"render_wait" yaml:"render_wait"`
	// DetailWait is the settle time after opening a variable detail view,
	// the slowest page on the portal.
	DetailWait time.Duration `mapstructure:"detail_wait" yaml:"detail_wait"`
	// ExpandWait is the settle time after clicking a "more" expander.
	ExpandWait time.Duration `mapstructure:"expand_wait" yaml:"expand_wait"`
}

// ScrapeConfig holds the settings for a single scrape job, populated from
// CLI arguments and flags by the scrape command.
type ScrapeConfig struct {
	Library string
	Dataset string
	Date    string
	Output  string
	Headed  bool
}

// SetDefaults initializes default values for all configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "dictscraper")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 50)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 14)
	v.SetDefault("logger.compress", true)

	// -- Browser --
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.slow_mo", 100*time.Millisecond)
	v.SetDefault("browser.no_sandbox", true)
	v.SetDefault("browser.window_width", 1280)
	v.SetDefault("browser.window_height", 720)

	// -- Portal --
	v.SetDefault("portal.home_url", "https://datadictionary.ices.on.ca/Applications/DataDictionary/Default.aspx")
	v.SetDefault("portal.libraries", []string{
		"CAPE", "CCRS", "CIC", "DAD", "NACRS", "NRS",
		"ODB", "OHIP", "OMHRS", "RPDB", "SDS",
	})
	v.SetDefault("portal.step_timeout", 30*time.Second)
	v.SetDefault("portal.render_wait", 1*time.Second)
	v.SetDefault("portal.detail_wait", 5*time.Second)
	v.SetDefault("portal.expand_wait", 2*time.Second)
}

// New unmarshals a viper instance into a validated Config.
func New(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// NewDefault creates a configuration populated with default values only.
func NewDefault() *Config {
	v := viper.New()
	SetDefaults(v)

	cfg, err := New(v)
	if err != nil {
		// Defaults are maintained together with Validate; a failure here is
		// a programming error, not a runtime condition.
		panic(fmt.Sprintf("default config is invalid: %v", err))
	}
	return cfg
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if c.Portal.HomeURL == "" {
		return fmt.Errorf("portal.home_url is a required configuration field")
	}
	if len(c.Portal.Libraries) == 0 {
		return fmt.Errorf("portal.libraries must name at least one library")
	}
	if c.Portal.StepTimeout <= 0 {
		return fmt.Errorf("portal.step_timeout must be a positive duration")
	}
	if c.Browser.WindowWidth <= 0 || c.Browser.WindowHeight <= 0 {
		return fmt.Errorf("browser.window_width and browser.window_height must be positive")
	}
	return nil
}

// KnownLibrary reports whether name is one of the portal's library
// categories. The scrape command uses this to fail fast before any browser
// session is established.
func (c *Config) KnownLibrary(name string) bool {
	for _, lib := range c.Portal.Libraries {
		if lib == name {
			return true
		}
	}
	return false
}
