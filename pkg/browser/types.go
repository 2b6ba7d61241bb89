package browser

import (
	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/widgetforge/pkg/config"
)

// Session represents an active browser session with its associated resources.
type Session struct {
	// Name is the unique identifier for this session
	Name string

	// Engine is the browser type the session was launched with
	Engine string

	// Instance is the Playwright browser instance
	Instance playwright.Browser

	// Context is the browser context (isolated session)
	Context playwright.BrowserContext

	// Page is the current active page
	Page playwright.Page

	// Headless indicates if the browser is running in headless mode
	Headless bool

	// CurrentURL is the URL of the current page
	CurrentURL string
}

// SessionOptions configures a new browser session.
type SessionOptions struct {
	// Engine selects the browser type: chromium (default), firefox or webkit
	Engine string

	// Headless controls whether the browser runs without a visible window
	Headless bool

	// Viewport sets the initial viewport size
	Viewport *Viewport

	// Timeout sets the default timeout for operations (in milliseconds)
	Timeout float64
}

// SessionOptionsFromConfig maps browser settings onto session options.
func SessionOptionsFromConfig(cfg config.BrowserConfig) SessionOptions {
	opts := SessionOptions{
		Engine:   cfg.Engine,
		Headless: cfg.Headless,
		Timeout:  float64(cfg.Timeout.Milliseconds()),
	}
	if cfg.ViewportWidth > 0 && cfg.ViewportHeight > 0 {
		opts.Viewport = &Viewport{Width: cfg.ViewportWidth, Height: cfg.ViewportHeight}
	}
	return opts
}

// Viewport represents the browser viewport dimensions.
type Viewport struct {
	Width  int
	Height int
}

// NavigateOptions configures page navigation behavior.
type NavigateOptions struct {
	// WaitUntil specifies when to consider navigation successful
	// Valid values: "load", "domcontentloaded", "networkidle"
	WaitUntil string

	// Timeout in milliseconds (0 means default)
	Timeout float64
}

// Default values for sessions
const (
	DefaultTimeout        = 30000.0 // 30 seconds in milliseconds
	DefaultViewportWidth  = 1280
	DefaultViewportHeight = 720
	DefaultMaxSessions    = 5
	DefaultEngine         = "chromium"
)
