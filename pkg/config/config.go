// Package config holds the settings of a computer-use run.
//
// Values are resolved with the precedence
// CLI flags > environment variables > config file > defaults,
// where the defaults reproduce the stock run: open bing.com in a visible,
// sandboxed 1024x768 Chromium and ask computer-use-preview to check the
// latest OpenAI news.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/entrhq/cua-browser/pkg/security/domains"
)

// Default values
const (
	DefaultTask             = "Check the latest OpenAI news on bing.com."
	DefaultStartURL         = "https://bing.com"
	DefaultModel            = "computer-use-preview"
	DefaultDisplayWidth     = 1024
	DefaultDisplayHeight    = 768
	DefaultEnvironment      = "browser"
	DefaultReasoningSummary = "concise"
	DefaultTruncation       = "auto"
	DefaultVerbosity        = "normal"

	DefaultPageLoadWait = 2 * time.Second
	DefaultSettleDelay  = time.Second
	DefaultWaitAction   = 2 * time.Second
)

// ErrMissingAPIKey is returned by Validate when no API key was resolved.
var ErrMissingAPIKey = errors.New("API key is required (set OPENAI_API_KEY, use -api-key, or api_key in the config file)")

// Config represents the configuration of one run
type Config struct {
	// Task is the instruction sent to the model
	Task string `yaml:"task" json:"task"`

	// StartURL is opened before the first request
	StartURL string `yaml:"start_url" json:"start_url"`

	// Model and API endpoint
	Model   string `yaml:"model" json:"model"`
	APIKey  string `yaml:"api_key" json:"-"`
	BaseURL string `yaml:"base_url" json:"base_url"`

	// Computer tool settings. Display is also the browser viewport.
	Display          DisplayConfig `yaml:"display" json:"display"`
	Environment      string        `yaml:"environment" json:"environment"`
	ReasoningSummary string        `yaml:"reasoning_summary" json:"reasoning_summary"`
	Truncation       string        `yaml:"truncation" json:"truncation"`

	// AcknowledgeSafetyChecks echoes pending safety checks back as accepted
	AcknowledgeSafetyChecks bool `yaml:"acknowledge_safety_checks" json:"acknowledge_safety_checks"`

	// AllowedDomains are glob patterns over hostnames; empty allows all
	AllowedDomains []string `yaml:"allowed_domains" json:"allowed_domains"`

	Browser BrowserConfig `yaml:"browser" json:"browser"`
	Timing  TimingConfig  `yaml:"timing" json:"timing"`
	Logging LoggingConfig `yaml:"logging" json:"logging"`

	// ConfigFilePath is the file the config was loaded from, if any
	ConfigFilePath string `yaml:"-" json:"-"`
}

// DisplayConfig is the screen size advertised to the model
type DisplayConfig struct {
	Width  int `yaml:"width" json:"width"`
	Height int `yaml:"height" json:"height"`
}

// BrowserConfig controls how Chromium is launched
type BrowserConfig struct {
	Headless        bool     `yaml:"headless" json:"headless"`
	ChromiumSandbox bool     `yaml:"chromium_sandbox" json:"chromium_sandbox"`
	Args            []string `yaml:"args" json:"args"`
}

// TimingConfig holds the fixed pauses of a run
type TimingConfig struct {
	// PageLoadWait is slept after the start page loads
	PageLoadWait time.Duration `yaml:"page_load_wait" json:"page_load_wait"`
	// SettleDelay is slept between an action and its screenshot
	SettleDelay time.Duration `yaml:"settle_delay" json:"settle_delay"`
	// WaitAction is how long a "wait" action pauses
	WaitAction time.Duration `yaml:"wait_action" json:"wait_action"`
}

// LoggingConfig defines console output configuration
type LoggingConfig struct {
	Verbosity string `yaml:"verbosity" json:"verbosity"` // quiet, normal, verbose, debug
}

// Overrides carries values given on the command line. Empty strings and nil
// pointers leave the config unchanged.
type Overrides struct {
	Task      string
	StartURL  string
	Model     string
	APIKey    string
	BaseURL   string
	Headless  *bool
	Verbosity string
}

// DefaultConfig returns the stock configuration
func DefaultConfig() *Config {
	return &Config{
		Task:             DefaultTask,
		StartURL:         DefaultStartURL,
		Model:            DefaultModel,
		Display:          DisplayConfig{Width: DefaultDisplayWidth, Height: DefaultDisplayHeight},
		Environment:      DefaultEnvironment,
		ReasoningSummary: DefaultReasoningSummary,
		Truncation:       DefaultTruncation,

		AcknowledgeSafetyChecks: true,

		Browser: BrowserConfig{
			Headless:        false,
			ChromiumSandbox: true,
			Args:            []string{"--disable-extensions", "--disable-file-system"},
		},
		Timing: TimingConfig{
			PageLoadWait: DefaultPageLoadWait,
			SettleDelay:  DefaultSettleDelay,
			WaitAction:   DefaultWaitAction,
		},
		Logging: LoggingConfig{Verbosity: DefaultVerbosity},
	}
}

// Load resolves the full configuration: defaults, then the file at path (if
// any), then the environment, then overrides. The result is validated.
func Load(path string, overrides Overrides) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		var err error
		cfg, err = LoadFile(path)
		if err != nil {
			return nil, err
		}
	}

	cfg.ApplyEnv()
	cfg.Apply(overrides)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// LoadFile loads configuration from a YAML file on top of the defaults
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	cfg.ConfigFilePath = path

	return cfg, nil
}

// ApplyEnv overrides the API key and base URL from OPENAI_API_KEY and
// OPENAI_BASE_URL when those are set.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		c.BaseURL = v
	}
}

// Apply copies the non-empty overrides onto the config
func (c *Config) Apply(o Overrides) {
	if o.Task != "" {
		c.Task = o.Task
	}
	if o.StartURL != "" {
		c.StartURL = o.StartURL
	}
	if o.Model != "" {
		c.Model = o.Model
	}
	if o.APIKey != "" {
		c.APIKey = o.APIKey
	}
	if o.BaseURL != "" {
		c.BaseURL = o.BaseURL
	}
	if o.Headless != nil {
		c.Browser.Headless = *o.Headless
	}
	if o.Verbosity != "" {
		c.Logging.Verbosity = o.Verbosity
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Task) == "" {
		return fmt.Errorf("task description is required")
	}

	if strings.TrimSpace(c.StartURL) == "" {
		return fmt.Errorf("start_url is required")
	}

	if c.Model == "" {
		return fmt.Errorf("model is required")
	}

	if c.APIKey == "" {
		return ErrMissingAPIKey
	}

	if c.Display.Width <= 0 || c.Display.Height <= 0 {
		return fmt.Errorf("display dimensions must be positive, got %dx%d", c.Display.Width, c.Display.Height)
	}

	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}

	if c.Truncation != "auto" && c.Truncation != "disabled" {
		return fmt.Errorf("invalid truncation: %s (must be 'auto' or 'disabled')", c.Truncation)
	}

	if c.Timing.PageLoadWait < 0 {
		return fmt.Errorf("page_load_wait cannot be negative")
	}
	if c.Timing.SettleDelay < 0 {
		return fmt.Errorf("settle_delay cannot be negative")
	}
	if c.Timing.WaitAction < 0 {
		return fmt.Errorf("wait_action cannot be negative")
	}

	if c.Logging.Verbosity == "" {
		c.Logging.Verbosity = DefaultVerbosity
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

	if _, err := domains.NewGuard(c.AllowedDomains); err != nil {
		return fmt.Errorf("invalid allowed_domains: %w", err)
	}

	return nil
}
