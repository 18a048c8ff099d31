package config

import (
	"github.com/entrhq/cua-browser/pkg/browser"
	"github.com/entrhq/cua-browser/pkg/llm/openai"
)

// BuildProvider creates the Responses API provider from a resolved config.
func BuildProvider(c *Config) (*openai.Provider, error) {
	if c.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	opts := []openai.ProviderOption{
		openai.WithModel(c.Model),
		openai.WithDisplay(c.Display.Width, c.Display.Height),
		openai.WithEnvironment(c.Environment),
		openai.WithTruncation(c.Truncation),
		openai.WithReasoningSummary(c.ReasoningSummary),
	}
	if c.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(c.BaseURL))
	}

	return openai.NewProvider(c.APIKey, opts...)
}

// BrowserOptions returns launch options whose viewport matches the display
// advertised to the model.
func (c *Config) BrowserOptions() browser.Options {
	opts := browser.DefaultOptions()
	opts.Headless = c.Browser.Headless
	opts.ChromiumSandbox = c.Browser.ChromiumSandbox
	opts.Args = append([]string{}, c.Browser.Args...)
	opts.Env = map[string]string{}
	opts.Viewport = browser.Viewport{Width: c.Display.Width, Height: c.Display.Height}
	return opts
}
