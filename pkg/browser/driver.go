package browser

import (
	"errors"

	"github.com/entrhq/widgetforge/pkg/locator"
)

var (
	// ErrNoSuchElement is returned when a locator matches nothing.
	ErrNoSuchElement = errors.New("no such element")

	// ErrTimeout is returned when a bounded wait expires.
	ErrTimeout = errors.New("timed out")
)

// Element is an opaque handle owned by the Driver that produced it.
type Element any

// Driver is the element-level capability set a browser backend provides.
// A nil parent means the document root.
type Driver interface {
	// Find returns the elements matching loc under parent, in document order.
	// No match is not an error.
	Find(loc locator.Locator, parent Element) ([]Element, error)

	IsDisplayed(el Element) (bool, error)
	Text(el Element) (string, error)

	// Attribute returns the attribute value and whether it is present.
	Attribute(el Element, name string) (string, bool, error)
	TagName(el Element) (string, error)

	Click(el Element) error
	FillText(el Element, value string) error
	Clear(el Element) error
	InputValue(el Element) (string, error)

	IsChecked(el Element) (bool, error)
	SetChecked(el Element, checked bool) error

	// SelectOption selects the option whose visible text is label.
	SelectOption(el Element, label string) error
	SelectedOption(el Element) (string, error)

	SetInputFiles(el Element, paths ...string) error
}
