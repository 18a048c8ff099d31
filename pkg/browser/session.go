package browser

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/cua-browser/pkg/computer"
	"github.com/entrhq/cua-browser/pkg/logging"
)

var _ computer.Page = (*Session)(nil)

var debugLog *logging.Logger

func init() {
	var err error
	debugLog, err = logging.NewLogger("browser")
	if err != nil {
		debugLog.Warnf("Failed to initialize browser logger, using stderr fallback: %v", err)
	}
}

// Launch installs (unless skipped) and starts the Playwright driver, launches
// Chromium and opens a single page with the configured viewport.
func Launch(opts Options) (*Session, error) {
	opts = withDefaults(opts)

	out := opts.DriverOutput
	if out == nil {
		out = io.Discard
	}
	runOpts := &playwright.RunOptions{
		Browsers: []string{"chromium"},
		Verbose:  false,
		Stdout:   out,
		Stderr:   out,
	}

	if !opts.SkipInstall {
		debugLog.Infof("installing playwright driver and chromium")
		if err := playwright.Install(runOpts); err != nil {
			return nil, fmt.Errorf("failed to install playwright: %w", err)
		}
	}

	pw, err := playwright.Run(runOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	browser, err := pw.Chromium.Launch(launchOptions(opts))
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	context, err := browser.NewContext(contextOptions(opts))
	if err != nil {
		_ = browser.Close()
		_ = pw.Stop()
		return nil, fmt.Errorf("failed to create context: %w", err)
	}

	page, err := context.NewPage()
	if err != nil {
		_ = context.Close()
		_ = browser.Close()
		_ = pw.Stop()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	page.SetDefaultTimeout(opts.Timeout)

	debugLog.Infof("browser launched (headless=%t, sandbox=%t, viewport=%dx%d, args=%v)",
		opts.Headless, opts.ChromiumSandbox, opts.Viewport.Width, opts.Viewport.Height, opts.Args)

	now := time.Now()
	return &Session{
		pw:         pw,
		Browser:    browser,
		Context:    context,
		Page:       page,
		Headless:   opts.Headless,
		CreatedAt:  now,
		LastUsedAt: now,
	}, nil
}

func withDefaults(opts Options) Options {
	if opts.Viewport.Width == 0 {
		opts.Viewport.Width = DefaultViewportWidth
	}
	if opts.Viewport.Height == 0 {
		opts.Viewport.Height = DefaultViewportHeight
	}
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Args == nil {
		opts.Args = append([]string(nil), DefaultArgs...)
	}
	return opts
}

func launchOptions(opts Options) playwright.BrowserTypeLaunchOptions {
	env := opts.Env
	if env == nil {
		env = map[string]string{}
	}
	return playwright.BrowserTypeLaunchOptions{
		Headless:        playwright.Bool(opts.Headless),
		ChromiumSandbox: playwright.Bool(opts.ChromiumSandbox),
		Env:             env,
		Args:            opts.Args,
	}
}

func contextOptions(opts Options) playwright.BrowserNewContextOptions {
	return playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  opts.Viewport.Width,
			Height: opts.Viewport.Height,
		},
	}
}

// UpdateLastUsed updates the LastUsedAt timestamp to the current time.
func (s *Session) UpdateLastUsed() {
	s.LastUsedAt = time.Now()
}

// Navigate navigates the session's page to the specified URL.
func (s *Session) Navigate(url string, opts NavigateOptions) error {
	s.UpdateLastUsed()

	if opts.WaitUntil == "" {
		opts.WaitUntil = DefaultWaitUntil
	}
	waitUntil := playwright.WaitUntilState(opts.WaitUntil)
	playwrightOpts := playwright.PageGotoOptions{
		WaitUntil: &waitUntil,
	}
	if opts.Timeout > 0 {
		playwrightOpts.Timeout = &opts.Timeout
	}

	if _, err := s.Page.Goto(url, playwrightOpts); err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	debugLog.Infof("navigated to %s", s.Page.URL())
	return nil
}

// URL returns the URL of the current page.
func (s *Session) URL() string {
	return s.Page.URL()
}

// Screenshot captures the visible viewport as PNG bytes.
func (s *Session) Screenshot() ([]byte, error) {
	s.UpdateLastUsed()

	data, err := s.Page.Screenshot(playwright.PageScreenshotOptions{
		Type: playwright.ScreenshotTypePng,
	})
	if err != nil {
		return nil, fmt.Errorf("screenshot failed: %w", err)
	}
	return data, nil
}

// Click presses and releases a mouse button at viewport coordinates.
func (s *Session) Click(x, y float64, button string) error {
	s.UpdateLastUsed()

	mouseButton := playwright.MouseButton(button)
	return s.Page.Mouse().Click(x, y, playwright.MouseClickOptions{
		Button: &mouseButton,
	})
}

// MoveMouse moves the pointer to viewport coordinates.
func (s *Session) MoveMouse(x, y float64) error {
	s.UpdateLastUsed()
	return s.Page.Mouse().Move(x, y)
}

// ScrollBy scrolls the window by the given pixel offsets.
func (s *Session) ScrollBy(dx, dy int64) error {
	s.UpdateLastUsed()

	_, err := s.Page.Evaluate("([dx, dy]) => window.scrollBy(dx, dy)", []int64{dx, dy})
	return err
}

// PressKey presses a single key, e.g. "Enter" or "ArrowDown".
func (s *Session) PressKey(key string) error {
	s.UpdateLastUsed()
	return s.Page.Keyboard().Press(key)
}

// TypeText types text into the focused element one character at a time.
func (s *Session) TypeText(text string) error {
	s.UpdateLastUsed()
	return s.Page.Keyboard().Type(text)
}

// Close closes the page, context and browser, then stops the driver.
// Errors are collected so every resource gets a chance to close.
func (s *Session) Close() error {
	var errs []error
	if s.Page != nil {
		if err := s.Page.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close page: %w", err))
		}
	}
	if s.Context != nil {
		if err := s.Context.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close context: %w", err))
		}
	}
	if s.Browser != nil {
		if err := s.Browser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close browser: %w", err))
		}
	}
	if s.pw != nil {
		if err := s.pw.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("stop playwright: %w", err))
		}
	}
	return errors.Join(errs...)
}
