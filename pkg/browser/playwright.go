package browser

import (
	"errors"
	"fmt"

	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/widgetforge/pkg/locator"
)

// PlaywrightDriver drives a live page. Elements are playwright.Locator values
// pinned to a single match with Nth.
type PlaywrightDriver struct {
	page playwright.Page
}

// NewPlaywrightDriver returns a driver for page.
func NewPlaywrightDriver(page playwright.Page) *PlaywrightDriver {
	return &PlaywrightDriver{page: page}
}

func (d *PlaywrightDriver) locator(el Element) (playwright.Locator, error) {
	l, ok := el.(playwright.Locator)
	if !ok || l == nil {
		return nil, fmt.Errorf("not a playwright element: %T", el)
	}
	return l, nil
}

func (d *PlaywrightDriver) Find(loc locator.Locator, parent Element) ([]Element, error) {
	var l playwright.Locator
	if parent == nil {
		l = d.page.Locator(loc.String())
	} else {
		p, err := d.locator(parent)
		if err != nil {
			return nil, err
		}
		l = p.Locator(loc.String())
	}

	all, err := l.All()
	if err != nil {
		return nil, wrapPlaywright(err)
	}
	out := make([]Element, len(all))
	for i, m := range all {
		out[i] = m
	}
	return out, nil
}

func (d *PlaywrightDriver) IsDisplayed(el Element) (bool, error) {
	l, err := d.locator(el)
	if err != nil {
		return false, err
	}
	shown, err := l.IsVisible()
	return shown, wrapPlaywright(err)
}

func (d *PlaywrightDriver) Text(el Element) (string, error) {
	l, err := d.locator(el)
	if err != nil {
		return "", err
	}
	text, err := l.TextContent()
	return text, wrapPlaywright(err)
}

func (d *PlaywrightDriver) Attribute(el Element, name string) (string, bool, error) {
	l, err := d.locator(el)
	if err != nil {
		return "", false, err
	}
	v, err := l.Evaluate("(el, name) => el.getAttribute(name)", name)
	if err != nil {
		return "", false, wrapPlaywright(err)
	}
	if v == nil {
		return "", false, nil
	}
	return fmt.Sprint(v), true, nil
}

func (d *PlaywrightDriver) TagName(el Element) (string, error) {
	l, err := d.locator(el)
	if err != nil {
		return "", err
	}
	v, err := l.Evaluate("el => el.tagName.toLowerCase()", nil)
	if err != nil {
		return "", wrapPlaywright(err)
	}
	return fmt.Sprint(v), nil
}

func (d *PlaywrightDriver) Click(el Element) error {
	l, err := d.locator(el)
	if err != nil {
		return err
	}
	return wrapPlaywright(l.Click())
}

func (d *PlaywrightDriver) FillText(el Element, value string) error {
	l, err := d.locator(el)
	if err != nil {
		return err
	}
	return wrapPlaywright(l.Fill(value))
}

func (d *PlaywrightDriver) Clear(el Element) error {
	l, err := d.locator(el)
	if err != nil {
		return err
	}
	return wrapPlaywright(l.Clear())
}

func (d *PlaywrightDriver) InputValue(el Element) (string, error) {
	l, err := d.locator(el)
	if err != nil {
		return "", err
	}
	v, err := l.InputValue()
	return v, wrapPlaywright(err)
}

func (d *PlaywrightDriver) IsChecked(el Element) (bool, error) {
	l, err := d.locator(el)
	if err != nil {
		return false, err
	}
	checked, err := l.IsChecked()
	return checked, wrapPlaywright(err)
}

func (d *PlaywrightDriver) SetChecked(el Element, checked bool) error {
	l, err := d.locator(el)
	if err != nil {
		return err
	}
	return wrapPlaywright(l.SetChecked(checked))
}

func (d *PlaywrightDriver) SelectOption(el Element, label string) error {
	l, err := d.locator(el)
	if err != nil {
		return err
	}
	_, err = l.SelectOption(playwright.SelectOptionValues{Labels: &[]string{label}})
	return wrapPlaywright(err)
}

func (d *PlaywrightDriver) SelectedOption(el Element) (string, error) {
	l, err := d.locator(el)
	if err != nil {
		return "", err
	}
	v, err := l.Evaluate("el => el.selectedIndex >= 0 ? el.options[el.selectedIndex].text.trim() : ''", nil)
	if err != nil {
		return "", wrapPlaywright(err)
	}
	return fmt.Sprint(v), nil
}

func (d *PlaywrightDriver) SetInputFiles(el Element, paths ...string) error {
	l, err := d.locator(el)
	if err != nil {
		return err
	}
	return wrapPlaywright(l.SetInputFiles(paths))
}

// wrapPlaywright maps playwright timeouts onto ErrTimeout.
func wrapPlaywright(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, playwright.ErrTimeout) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return err
}
