package widget

import "errors"

var (
	// ErrNotImplemented is returned by Read/Fill for widgets without a value.
	ErrNotImplemented = errors.New("not implemented")

	// ErrDoNotRead marks a widget that opts out of view reads.
	ErrDoNotRead = errors.New("widget opts out of read")

	// ErrFillFailed is returned when a fill completes but the widget does not
	// hold the requested value afterwards.
	ErrFillFailed = errors.New("fill did not apply")

	// ErrNoLocator is returned by Locator on widgets declared without one.
	ErrNoLocator = errors.New("widget has no locator")

	// ErrUnknownWidget is returned for names a view does not declare.
	ErrUnknownWidget = errors.New("unknown widget")

	// ErrNoVersionMatch is returned when a VersionPick has no entry for the
	// product version.
	ErrNoVersionMatch = errors.New("no value for product version")

	// Parametrized view argument errors.
	ErrTooManyParameters  = errors.New("too many parameters")
	ErrUnknownParameter   = errors.New("unknown parameter")
	ErrDuplicateParameter = errors.New("parameter given twice")
	ErrMissingParameter   = errors.New("missing parameter")
	ErrParametersRequired = errors.New("parametrized view must be called with parameters first")
	ErrNoEnumerator       = errors.New("parametrized view has no enumerator")
	ErrIndexOutOfRange    = errors.New("index out of range")

	// Conditional view errors.
	ErrDuplicateDefault  = errors.New("default variant already registered")
	ErrNoMatchingVariant = errors.New("no matching variant")
)
