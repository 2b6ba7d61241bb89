package widget

import (
	"errors"
	"fmt"

	"github.com/entrhq/widgetforge/pkg/browser"
	"github.com/entrhq/widgetforge/pkg/locator"
	"github.com/entrhq/widgetforge/pkg/logging"
)

// Widget is the smallest addressable piece of UI.
type Widget interface {
	// Parent returns the owning widget, or nil for the root.
	Parent() Widget
	Browser() *browser.Browser
	Logger() *logging.Logger
	Name() string
	IsDisplayed() (bool, error)
}

// Readable widgets report their current value.
type Readable interface {
	Read() (any, error)
}

// Fillable widgets apply a value and report whether anything changed.
type Fillable interface {
	Fill(value any) (bool, error)
}

type Clickable interface {
	Click() error
}

// Container widgets expose named children.
type Container interface {
	Widget(name string) (Widget, error)
}

// Flusher drops cached child widgets and derived state.
type Flusher interface {
	FlushWidgetCache()
}

// ElementProvider resolves the widget to a live element. Widgets without a
// locator return ErrNoLocator and are skipped when scoping children.
type ElementProvider interface {
	Element() (browser.Element, error)
}

type contexter interface {
	Context() map[string]any
}

// Read reads w, or fails with ErrNotImplemented.
func Read(w Widget) (any, error) {
	r, ok := w.(Readable)
	if !ok {
		return nil, fmt.Errorf("read %s: %w", w.Name(), ErrNotImplemented)
	}
	return r.Read()
}

// Fill fills w, or fails with ErrNotImplemented.
func Fill(w Widget, value any) (bool, error) {
	f, ok := w.(Fillable)
	if !ok {
		return false, fmt.Errorf("fill %s: %w", w.Name(), ErrNotImplemented)
	}
	return f.Fill(value)
}

// ContextOf returns the parametrization context of the nearest view at or
// above w.
func ContextOf(w Widget) map[string]any {
	for cur := w; cur != nil; cur = cur.Parent() {
		if c, ok := cur.(contexter); ok {
			return c.Context()
		}
	}
	return nil
}

// Element resolves w to a live element. The chain up to the nearest
// locatable ancestor is re-resolved on every call.
func Element(w Widget) (browser.Element, error) {
	if p, ok := w.(ElementProvider); ok {
		return p.Element()
	}
	return locate(w)
}

func locate(w Widget) (browser.Element, error) {
	l, ok := w.(locator.Locatable)
	if !ok {
		return nil, ErrNoLocator
	}
	loc, err := l.Locator()
	if err != nil {
		return nil, err
	}
	parent, err := ParentElement(w)
	if err != nil {
		return nil, err
	}
	return w.Browser().Element(loc, parent)
}

// ParentElement returns the element of the nearest locatable ancestor, or nil
// when every ancestor is transparent.
func ParentElement(w Widget) (browser.Element, error) {
	for p := w.Parent(); p != nil; p = p.Parent() {
		if _, ok := p.(ElementProvider); !ok {
			if _, ok := p.(locator.Locatable); !ok {
				continue
			}
		}
		el, err := Element(p)
		if errors.Is(err, ErrNoLocator) {
			continue
		}
		return el, err
	}
	return nil, nil
}

// Displayed reports whether w is visible. Widgets without a locator are
// always displayed; missing elements are not.
func Displayed(w Widget) (bool, error) {
	el, err := Element(w)
	switch {
	case errors.Is(err, ErrNoLocator):
		return true, nil
	case errors.Is(err, browser.ErrNoSuchElement):
		return false, nil
	case err != nil:
		return false, err
	}
	return w.Browser().Displayed(el)
}

// Base carries the state shared by every widget. Embed it and call Init from
// the widget constructor.
type Base struct {
	self   Widget
	parent Widget
	name   string
	loc    locator.Locator
	hasLoc bool
	logger *logging.Logger
}

// Init binds the widget into the tree. loc may be nil, anything
// locator.Resolve accepts, or a Resolvable evaluated against parent.
func (b *Base) Init(self, parent Widget, name string, loc any) error {
	b.self = self
	b.parent = parent
	b.name = name
	if loc == nil {
		return nil
	}
	v, err := ResolveArg(parent, loc)
	if err != nil {
		return fmt.Errorf("widget %s: %w", name, err)
	}
	l, err := locator.Resolve(v)
	if err != nil {
		return fmt.Errorf("widget %s: %w", name, err)
	}
	b.loc = l
	b.hasLoc = true
	return nil
}

func (b *Base) Parent() Widget { return b.parent }

func (b *Base) Name() string { return b.name }

func (b *Base) Browser() *browser.Browser { return b.parent.Browser() }

// Logger returns the parent logger named after this widget.
func (b *Base) Logger() *logging.Logger {
	if b.logger == nil {
		b.logger = b.parent.Logger().Named(b.name)
	}
	return b.logger
}

// Locator returns the widget's own locator or ErrNoLocator.
func (b *Base) Locator() (locator.Locator, error) {
	if !b.hasLoc {
		return locator.Locator{}, fmt.Errorf("%s: %w", b.name, ErrNoLocator)
	}
	return b.loc, nil
}

// Element looks the locator up inside the nearest locatable ancestor.
func (b *Base) Element() (browser.Element, error) {
	return locate(b.self)
}

func (b *Base) IsDisplayed() (bool, error) {
	return Displayed(b.self)
}

// Root anchors a widget tree on a browser.
type Root struct {
	browser *browser.Browser
}

// NewRoot returns the root widget for b.
func NewRoot(b *browser.Browser) *Root {
	return &Root{browser: b}
}

func (r *Root) Parent() Widget             { return nil }
func (r *Root) Browser() *browser.Browser  { return r.browser }
func (r *Root) Logger() *logging.Logger    { return r.browser.Logger() }
func (r *Root) Name() string               { return "" }
func (r *Root) IsDisplayed() (bool, error) { return true, nil }
func (r *Root) Context() map[string]any    { return map[string]any{} }
