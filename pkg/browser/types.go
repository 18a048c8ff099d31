package browser

import (
	"io"
	"time"

	"github.com/playwright-community/playwright-go"
)

// Session represents the running browser with its associated resources.
type Session struct {
	pw *playwright.Playwright

	// Browser is the Playwright browser instance
	Browser playwright.Browser

	// Context is the browser context (isolated session)
	Context playwright.BrowserContext

	// Page is the page the model sees and drives
	Page playwright.Page

	// Headless indicates if the browser is running in headless mode
	Headless bool

	// CreatedAt is the timestamp when the session was created
	CreatedAt time.Time

	// LastUsedAt is the timestamp of the last operation on this session
	LastUsedAt time.Time
}

// Options configures a new browser session.
type Options struct {
	// Headless controls whether the browser runs without a visible window
	Headless bool

	// ChromiumSandbox enables Chromium's own sandbox
	ChromiumSandbox bool

	// Args are extra command-line switches passed to Chromium
	Args []string

	// Env is the browser process environment. Nil means an empty environment.
	Env map[string]string

	// Viewport sets the page size in pixels
	Viewport Viewport

	// Timeout sets the default timeout for page operations (in milliseconds)
	Timeout float64

	// SkipInstall skips downloading the driver and Chromium
	SkipInstall bool

	// DriverOutput receives the driver's installer and process output.
	// Nil discards it.
	DriverOutput io.Writer
}

// Viewport represents the browser viewport dimensions.
type Viewport struct {
	Width  int
	Height int
}

// NavigateOptions configures page navigation behavior.
type NavigateOptions struct {
	// WaitUntil specifies when to consider navigation successful
	// Valid values: "load", "domcontentloaded", "networkidle", "commit"
	WaitUntil string

	// Timeout in milliseconds (0 means default)
	Timeout float64
}

// Default values for launch and navigation
const (
	DefaultTimeout        = 30000.0 // 30 seconds in milliseconds
	DefaultViewportWidth  = 1024
	DefaultViewportHeight = 768
	DefaultWaitUntil      = "load"
)

// DefaultArgs are the Chromium switches used when Options.Args is nil.
var DefaultArgs = []string{
	"--disable-extensions",
	"--disable-file-system",
}

// DefaultOptions returns the launch options of a headed, sandboxed 1024x768 browser.
func DefaultOptions() Options {
	return Options{
		Headless:        false,
		ChromiumSandbox: true,
		Args:            append([]string(nil), DefaultArgs...),
		Viewport: Viewport{
			Width:  DefaultViewportWidth,
			Height: DefaultViewportHeight,
		},
		Timeout: DefaultTimeout,
	}
}
