package widget

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/entrhq/widgetforge/pkg/browser"
)

// Condition selects a ConditionalView variant.
type Condition interface {
	match(p *pass) (bool, error)
}

// Variant is a registrable target: *Descriptor for a bare widget or
// *ViewClass for a view.
type Variant interface {
	variantFactory() Factory
}

func (d *Descriptor) variantFactory() Factory { return d.factory }

func (c *ViewClass) variantFactory() Factory { return c.factory }

type equalsCondition struct {
	value any
}

// Equals matches when the reference widget reads value.
func Equals(value any) Condition {
	return equalsCondition{value: value}
}

func (c equalsCondition) match(p *pass) (bool, error) {
	if p.cv.reference == "" {
		return false, errors.New("equals condition needs a reference widget")
	}
	got, err := p.read(p.cv.reference)
	if err != nil {
		return false, err
	}
	return equalValues(got, c.value), nil
}

type predicateCondition struct {
	names []string
	fn    func(values ...any) bool
}

// When matches when fn returns true. fn receives the read values of the named
// widgets, in order. Names are paths relative to the owning view.
func When(names []string, fn func(values ...any) bool) Condition {
	return predicateCondition{names: names, fn: fn}
}

func (c predicateCondition) match(p *pass) (bool, error) {
	values := make([]any, len(c.names))
	for i, name := range c.names {
		v, err := p.read(name)
		if err != nil {
			return false, err
		}
		values[i] = v
	}
	return c.fn(values...), nil
}

func equalValues(a, b any) bool {
	if reflect.DeepEqual(a, b) {
		return true
	}
	// widgets read strings; let Equals(5) match "5"
	return fmt.Sprint(a) == fmt.Sprint(b)
}

type registration struct {
	cond Condition
	desc *Descriptor
}

// ConditionalView is a single widget slot that resolves, on every access,
// to the first registered variant whose condition holds.
type ConditionalView struct {
	reference string
	ignoreBad bool
	entries   []registration
	fallback  *registration
	desc      *Descriptor
}

// ConditionalOption configures a ConditionalView.
type ConditionalOption func(*ConditionalView)

// Reference names the widget Equals conditions compare against. The path is
// relative to the owning view; "parent" ascends.
func Reference(path string) ConditionalOption {
	return func(c *ConditionalView) { c.reference = path }
}

// IgnoreBadReference skips conditions whose widgets cannot be found.
func IgnoreBadReference() ConditionalOption {
	return func(c *ConditionalView) { c.ignoreBad = true }
}

// NewConditionalView declares a conditional view.
func NewConditionalView(opts ...ConditionalOption) *ConditionalView {
	c := &ConditionalView{}
	for _, opt := range opts {
		opt(c)
	}
	c.desc = &Descriptor{seq: nextSeq(), dynamic: c.resolve}
	return c
}

func (c *ConditionalView) descriptor() *Descriptor { return c.desc }

// Declare returns a fresh descriptor for c, ordered at the point of the call.
// Use it when c is built before the widgets it must follow.
func (c *ConditionalView) Declare() *Descriptor {
	return &Descriptor{seq: nextSeq(), dynamic: c.resolve}
}

type registerOptions struct {
	asDefault bool
}

// RegisterOption configures a registration.
type RegisterOption func(*registerOptions)

// AsDefault makes the variant the fallback when nothing matches.
func AsDefault() RegisterOption {
	return func(o *registerOptions) { o.asDefault = true }
}

// Register adds a variant. cond may be nil for a default-only registration.
func (c *ConditionalView) Register(cond Condition, variant Variant, opts ...RegisterOption) error {
	var o registerOptions
	for _, opt := range opts {
		opt(&o)
	}
	if variant == nil {
		return errors.New("conditional view: nil variant")
	}
	if cond == nil && !o.asDefault {
		return errors.New("conditional view: variant needs a condition or AsDefault")
	}

	reg := registration{
		cond: cond,
		desc: &Descriptor{factory: variant.variantFactory(), seq: nextSeq()},
	}
	if o.asDefault {
		if c.fallback != nil {
			return ErrDuplicateDefault
		}
		c.fallback = &reg
	}
	if cond != nil {
		c.entries = append(c.entries, reg)
	}
	return nil
}

// MustRegister is Register for package-level declarations.
func (c *ConditionalView) MustRegister(cond Condition, variant Variant, opts ...RegisterOption) *ConditionalView {
	if err := c.Register(cond, variant, opts...); err != nil {
		panic(err)
	}
	return c
}

// pass caches values read during one resolution.
type pass struct {
	cv     *ConditionalView
	owner  *View
	values map[string]any
}

func (p *pass) read(path string) (any, error) {
	if v, ok := p.values[path]; ok {
		return v, nil
	}
	w, err := Lookup(p.owner, path)
	if err != nil {
		return nil, err
	}
	v, err := Read(w)
	if err != nil {
		return nil, err
	}
	p.values[path] = v
	return v, nil
}

func isBadReference(err error) bool {
	return errors.Is(err, ErrUnknownWidget) || errors.Is(err, browser.ErrNoSuchElement)
}

func (c *ConditionalView) resolve(owner *View, name string) (Widget, error) {
	p := &pass{cv: c, owner: owner, values: make(map[string]any)}

	for i, reg := range c.entries {
		ok, err := reg.cond.match(p)
		if err != nil {
			if c.ignoreBad && isBadReference(err) {
				owner.Logger().Debugf("%s: condition %d skipped: %v", name, i, err)
				continue
			}
			return nil, fmt.Errorf("%s: condition %d: %w", name, i, err)
		}
		if ok {
			return owner.child(reg.desc, name)
		}
	}

	if c.fallback != nil {
		return owner.child(c.fallback.desc, name)
	}
	return nil, fmt.Errorf("%w for %s", ErrNoMatchingVariant, name)
}
