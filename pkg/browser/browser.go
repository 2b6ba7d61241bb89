package browser

import (
	"errors"
	"fmt"
	"time"

	"github.com/entrhq/widgetforge/pkg/config"
	"github.com/entrhq/widgetforge/pkg/locator"
	"github.com/entrhq/widgetforge/pkg/logging"
)

// Browser is the locator-level facade widgets talk to. It owns no element
// state; every lookup goes back to the driver.
type Browser struct {
	driver       Driver
	version      string
	logger       *logging.Logger
	waitTimeout  time.Duration
	pollInterval time.Duration
}

// Option configures a Browser.
type Option func(*Browser)

// WithProductVersion sets the version of the product under test.
func WithProductVersion(version string) Option {
	return func(b *Browser) {
		b.version = version
	}
}

// WithLogger sets the logger widget trees rooted at this browser inherit.
func WithLogger(logger *logging.Logger) Option {
	return func(b *Browser) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithWait overrides the default bound used by WaitForElement. Non-positive
// values keep the defaults.
func WithWait(timeout, interval time.Duration) Option {
	return func(b *Browser) {
		if timeout > 0 {
			b.waitTimeout = timeout
		}
		if interval > 0 {
			b.pollInterval = interval
		}
	}
}

// New wraps driver. Wait bounds default to the global fill settings.
func New(driver Driver, opts ...Option) *Browser {
	fill := config.Fill()
	b := &Browser{
		driver:       driver,
		logger:       logging.Nop(),
		waitTimeout:  fill.WaitTimeout,
		pollInterval: fill.PollInterval,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// FromConfig wraps driver with the product version from cfg.
func FromConfig(driver Driver, cfg *config.Config, logger *logging.Logger) *Browser {
	return New(driver,
		WithProductVersion(cfg.Browser.ProductVersion),
		WithLogger(logger),
		WithWait(cfg.Fill.WaitTimeout, cfg.Fill.PollInterval),
	)
}

// ProductVersion returns the version of the product under test, or "" when unknown.
func (b *Browser) ProductVersion() string { return b.version }

// Logger returns the root logger.
func (b *Browser) Logger() *logging.Logger { return b.logger }

// Driver returns the underlying driver.
func (b *Browser) Driver() Driver { return b.driver }

// Elements returns every element matching loc under parent. With
// checkVisibility only displayed elements are kept.
func (b *Browser) Elements(loc locator.Locator, parent Element, checkVisibility bool) ([]Element, error) {
	found, err := b.driver.Find(loc, parent)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", loc, err)
	}
	if !checkVisibility {
		return found, nil
	}

	visible := found[:0]
	for _, el := range found {
		shown, err := b.driver.IsDisplayed(el)
		if err != nil {
			return nil, err
		}
		if shown {
			visible = append(visible, el)
		}
	}
	return visible, nil
}

// Element returns the first element matching loc under parent.
func (b *Browser) Element(loc locator.Locator, parent Element) (Element, error) {
	found, err := b.Elements(loc, parent, false)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoSuchElement, loc)
	}
	return found[0], nil
}

// IsDisplayed reports whether the first element matching loc is displayed.
// A missing element is not displayed.
func (b *Browser) IsDisplayed(loc locator.Locator, parent Element) (bool, error) {
	el, err := b.Element(loc, parent)
	if errors.Is(err, ErrNoSuchElement) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return b.driver.IsDisplayed(el)
}

// WaitForElement polls until loc matches (and is displayed when visible is
// set). A zero timeout uses the browser default.
func (b *Browser) WaitForElement(loc locator.Locator, parent Element, visible bool, timeout time.Duration) (Element, error) {
	if timeout <= 0 {
		timeout = b.waitTimeout
	}

	var el Element
	err := Poll(timeout, b.pollInterval, func() (bool, error) {
		found, err := b.Elements(loc, parent, visible)
		if err != nil {
			return false, err
		}
		if len(found) == 0 {
			return false, nil
		}
		el = found[0]
		return true, nil
	})
	if err != nil {
		return nil, fmt.Errorf("wait for %s: %w", loc, err)
	}
	return el, nil
}

// Text returns the element text content.
func (b *Browser) Text(el Element) (string, error) { return b.driver.Text(el) }

// Attribute returns an attribute value and whether it is present.
func (b *Browser) Attribute(el Element, name string) (string, bool, error) {
	return b.driver.Attribute(el, name)
}

// TagName returns the lower-case tag name.
func (b *Browser) TagName(el Element) (string, error) { return b.driver.TagName(el) }

// Displayed reports whether an already resolved element is displayed.
func (b *Browser) Displayed(el Element) (bool, error) { return b.driver.IsDisplayed(el) }

func (b *Browser) Click(el Element) error {
	b.logger.Debugf("click %v", el)
	return b.driver.Click(el)
}

// FillText clears the element and types value.
func (b *Browser) FillText(el Element, value string) error {
	b.logger.Debugf("fill text %q", value)
	return b.driver.FillText(el, value)
}

func (b *Browser) Clear(el Element) error { return b.driver.Clear(el) }

func (b *Browser) InputValue(el Element) (string, error) { return b.driver.InputValue(el) }

func (b *Browser) IsChecked(el Element) (bool, error) { return b.driver.IsChecked(el) }

func (b *Browser) SetChecked(el Element, checked bool) error {
	b.logger.Debugf("set checked %t", checked)
	return b.driver.SetChecked(el, checked)
}

func (b *Browser) SelectOption(el Element, label string) error {
	b.logger.Debugf("select option %q", label)
	return b.driver.SelectOption(el, label)
}

func (b *Browser) SelectedOption(el Element) (string, error) { return b.driver.SelectedOption(el) }

func (b *Browser) SetInputFiles(el Element, paths ...string) error {
	b.logger.Debugf("set input files %v", paths)
	return b.driver.SetInputFiles(el, paths...)
}
