package widget

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/entrhq/widgetforge/pkg/browser"
	"github.com/entrhq/widgetforge/pkg/locator"
)

type field struct {
	name    string
	desc    *Descriptor
	include *ViewClass
	order   []uint64
}

// ViewClass is a declared view: an ordered set of named widget declarations
// plus the hooks and strategy shared by all its instances.
type ViewClass struct {
	name     string
	root     any
	fields   []*field
	byName   map[string]*field
	nested   map[string]*ViewClass
	strategy FillStrategy

	beforeFill func(v *View, values map[string]any) (bool, error)
	afterFill  func(v *View, changed bool) (bool, error)
	onAccess   func(v *View, name string, w Widget) error

	params    []string
	enumerate func(parent Widget) ([][]any, error)

	desc *Descriptor
}

// ViewOption configures a ViewClass.
type ViewOption func(*ViewClass)

// WithRoot sets the root locator. Resolvables (e.g. ParametrizedLocator)
// are evaluated against the view instance.
func WithRoot(loc any) ViewOption {
	return func(c *ViewClass) { c.root = loc }
}

// WithFields declares widgets. It may be given more than once.
func WithFields(fields Fields) ViewOption {
	return func(c *ViewClass) {
		for name, decl := range fields {
			if decl == nil {
				continue
			}
			d := decl.descriptor()
			c.addField(&field{name: name, desc: d, order: []uint64{d.seq}})
			if cls, ok := decl.(*ViewClass); ok {
				c.nested[name] = cls
			}
		}
	}
}

// Include splices the widgets of cls into this view at the point of the
// Include call. Included widgets live in a hidden instance of cls owned by
// the including view.
func Include(cls *ViewClass) ViewOption {
	at := nextSeq()
	return func(c *ViewClass) {
		for _, f := range cls.fields {
			order := append([]uint64{at}, f.order...)
			c.addField(&field{name: f.name, include: cls, order: order})
		}
	}
}

// WithFillStrategy sets the strategy instance shared by all instances.
func WithFillStrategy(s FillStrategy) ViewOption {
	return func(c *ViewClass) { c.strategy = s }
}

// BeforeFill runs after filtering and before the strategy. Returning true
// forces the fill to report a change.
func BeforeFill(fn func(v *View, values map[string]any) (bool, error)) ViewOption {
	return func(c *ViewClass) { c.beforeFill = fn }
}

// AfterFill receives the fill result and returns the final one.
func AfterFill(fn func(v *View, changed bool) (bool, error)) ViewOption {
	return func(c *ViewClass) { c.afterFill = fn }
}

// OnChildAccessed runs every time a child widget is accessed through
// View.Widget, e.g. to expand a collapsed panel.
func OnChildAccessed(fn func(v *View, name string, w Widget) error) ViewOption {
	return func(c *ViewClass) { c.onAccess = fn }
}

// Parameters turns the class into a parametrized template.
func Parameters(names ...string) ViewOption {
	return func(c *ViewClass) { c.params = append([]string(nil), names...) }
}

// Enumerate sets the enumerator listing one parameter tuple per occurrence.
func Enumerate(fn func(parent Widget) ([][]any, error)) ViewOption {
	return func(c *ViewClass) { c.enumerate = fn }
}

// DefineView collects declarations into a view class.
func DefineView(name string, opts ...ViewOption) *ViewClass {
	c := &ViewClass{
		name:   name,
		byName: make(map[string]*field),
		nested: make(map[string]*ViewClass),
	}
	for _, opt := range opts {
		opt(c)
	}
	sort.SliceStable(c.fields, func(i, j int) bool {
		return lessOrder(c.fields[i].order, c.fields[j].order)
	})
	c.desc = Declare(c.factory)
	return c
}

func lessOrder(a, b []uint64) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

func (c *ViewClass) addField(f *field) {
	if old, ok := c.byName[f.name]; ok {
		for i, existing := range c.fields {
			if existing == old {
				c.fields = append(c.fields[:i], c.fields[i+1:]...)
				break
			}
		}
	}
	c.byName[f.name] = f
	c.fields = append(c.fields, f)
}

func (c *ViewClass) descriptor() *Descriptor { return c.desc }

func (c *ViewClass) factory(parent Widget, name string) (Widget, error) {
	if len(c.params) > 0 {
		return newRequest(c, parent, name), nil
	}
	return c.New(parent, WithName(name))
}

func (c *ViewClass) Name() string { return c.name }

// WidgetNames lists declared widgets in declaration order.
func (c *ViewClass) WidgetNames() []string {
	names := make([]string, len(c.fields))
	for i, f := range c.fields {
		names[i] = f.name
	}
	return names
}

// Descriptor returns the descriptor declared under name.
func (c *ViewClass) Descriptor(name string) (*Descriptor, bool) {
	f, ok := c.byName[name]
	if !ok {
		return nil, false
	}
	if f.include != nil {
		return f.include.Descriptor(name)
	}
	return f.desc, true
}

// Nested returns the nested view class declared under name.
func (c *ViewClass) Nested(name string) (*ViewClass, bool) {
	cls, ok := c.nested[name]
	return cls, ok
}

// Parameters returns the declared parameter names.
func (c *ViewClass) Parameters() []string { return c.params }

// Declare returns a fresh descriptor for c, ordered at the point of the call.
func (c *ViewClass) Declare() *Descriptor { return Declare(c.factory) }

type newOptions struct {
	name    string
	context map[string]any
}

// NewOption configures a view instance.
type NewOption func(*newOptions)

// WithName names the instance. Defaults to the class name.
func WithName(name string) NewOption {
	return func(o *newOptions) { o.name = name }
}

// WithContext adds parametrization values on top of the parent context.
func WithContext(ctx map[string]any) NewOption {
	return func(o *newOptions) { o.context = ctx }
}

// New instantiates the class under parent.
func (c *ViewClass) New(parent Widget, opts ...NewOption) (*View, error) {
	o := newOptions{name: c.name}
	for _, opt := range opts {
		opt(&o)
	}

	v := &View{
		class:    c,
		context:  make(map[string]any),
		cache:    make(map[*Descriptor]Widget),
		includes: make(map[*ViewClass]*View),
	}
	for k, val := range ContextOf(parent) {
		v.context[k] = val
	}
	for k, val := range o.context {
		v.context[k] = val
	}
	if err := v.Base.Init(v, parent, o.name, nil); err != nil {
		return nil, err
	}

	if c.root != nil {
		root, err := ResolveArg(v, c.root)
		if err != nil {
			return nil, fmt.Errorf("view %s root: %w", o.name, err)
		}
		loc, err := locator.Resolve(root)
		if err != nil {
			return nil, fmt.Errorf("view %s root: %w", o.name, err)
		}
		v.loc = loc
		v.hasLoc = true
	}

	v.strategy = c.strategy
	if v.strategy == nil {
		if pv, ok := parent.(*View); ok && pv.strategy != nil && pv.strategy.RespectParent() {
			v.strategy = pv.strategy
		} else {
			v.strategy = &DefaultFillStrategy{}
		}
	}
	return v, nil
}

// Open instantiates the class at the root of b.
func (c *ViewClass) Open(b *browser.Browser, opts ...NewOption) (*View, error) {
	return c.New(NewRoot(b), opts...)
}

// View is a live instance of a ViewClass.
type View struct {
	Base
	class    *ViewClass
	context  map[string]any
	cache    map[*Descriptor]Widget
	includes map[*ViewClass]*View
	strategy FillStrategy
}

// Class returns the view's class.
func (v *View) Class() *ViewClass { return v.class }

// Context returns the parametrization context. Callers must not modify it.
func (v *View) Context() map[string]any { return v.context }

// FillStrategy returns the strategy this instance fills with.
func (v *View) FillStrategy() FillStrategy { return v.strategy }

// Widget returns the named child, constructing it on first access.
func (v *View) Widget(name string) (Widget, error) {
	f, ok := v.class.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s has no widget %q", ErrUnknownWidget, v.name, name)
	}

	var (
		w   Widget
		err error
	)
	if f.include != nil {
		var inc *View
		if inc, err = v.included(f.include); err == nil {
			w, err = inc.Widget(name)
		}
	} else {
		w, err = v.child(f.desc, name)
	}
	if err != nil {
		return nil, err
	}

	if v.class.onAccess != nil {
		if err := v.class.onAccess(v, name, w); err != nil {
			return nil, fmt.Errorf("%s: child %s accessed: %w", v.name, name, err)
		}
	}
	return w, nil
}

func (v *View) child(d *Descriptor, name string) (Widget, error) {
	if d.dynamic != nil {
		return d.dynamic(v, name)
	}
	if w, ok := v.cache[d]; ok {
		return w, nil
	}
	w, err := d.New(v, name)
	if err != nil {
		return nil, err
	}
	v.Logger().Debugf("instantiated %s", name)
	v.cache[d] = w
	return w, nil
}

func (v *View) included(cls *ViewClass) (*View, error) {
	if inc, ok := v.includes[cls]; ok {
		return inc, nil
	}
	inc, err := cls.New(v, WithName(cls.name))
	if err != nil {
		return nil, err
	}
	v.includes[cls] = inc
	return inc, nil
}

// WidgetNames lists child names in declaration order.
func (v *View) WidgetNames() []string { return v.class.WidgetNames() }

// Read reads every child in declaration order. Children that are not
// readable or opt out are skipped, as are missing ones and parametrized
// children that cannot list their occurrences.
func (v *View) Read() (any, error) {
	return v.ReadValues()
}

// ReadValues is Read with a concrete result type.
func (v *View) ReadValues() (map[string]any, error) {
	out := make(map[string]any)
	for _, f := range v.class.fields {
		w, err := v.Widget(f.name)
		if err != nil {
			if skippable(err) {
				v.Logger().Debugf("read skipped %s: %v", f.name, err)
				continue
			}
			return nil, err
		}
		val, err := Read(w)
		if err != nil {
			if skippable(err) || errors.Is(err, ErrDoNotRead) || errors.Is(err, ErrNoEnumerator) {
				v.Logger().Debugf("read skipped %s: %v", f.name, err)
				continue
			}
			return nil, fmt.Errorf("%s: read %s: %w", v.name, f.name, err)
		}
		out[f.name] = val
	}
	return out, nil
}

func skippable(err error) bool {
	return errors.Is(err, ErrNotImplemented) || errors.Is(err, browser.ErrNoSuchElement)
}

// Fill applies a map of widget values. Dotted keys address nested views,
// nil values are left untouched and unknown names are logged and dropped.
// Widgets are filled in declaration order.
func (v *View) Fill(value any) (bool, error) {
	values, err := asValueMap(value)
	if err != nil {
		return false, fmt.Errorf("%s: %w", v.name, err)
	}
	values = nestDotted(values)

	filtered := make(map[string]any, len(values))
	for name, val := range values {
		if val == nil {
			continue
		}
		if _, ok := v.class.byName[name]; !ok {
			v.Logger().Warnf("fill: %s has no widget %q, ignoring", v.name, name)
			continue
		}
		filtered[name] = val
	}

	var items []FillItem
	for _, f := range v.class.fields {
		if val, ok := filtered[f.name]; ok {
			items = append(items, FillItem{Name: f.name, Value: val})
		}
	}

	changed := false
	if v.class.beforeFill != nil {
		forced, err := v.class.beforeFill(v, filtered)
		if err != nil {
			return false, fmt.Errorf("%s: before fill: %w", v.name, err)
		}
		changed = forced
	}

	filled, err := v.strategy.Fill(v, items)
	if err != nil {
		return false, err
	}
	changed = changed || filled

	if v.class.afterFill != nil {
		if changed, err = v.class.afterFill(v, changed); err != nil {
			return false, fmt.Errorf("%s: after fill: %w", v.name, err)
		}
	}
	return changed, nil
}

func asValueMap(value any) (map[string]any, error) {
	switch m := value.(type) {
	case map[string]any:
		return m, nil
	case map[string]string:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[k] = val
		}
		return out, nil
	case nil:
		return map[string]any{}, nil
	}
	return nil, fmt.Errorf("view fill needs a map[string]any, got %T", value)
}

// nestDotted turns {"a.b": 1} into {"a": {"b": 1}}, merging with any map
// given under "a". Input maps are never modified.
func nestDotted(values map[string]any) map[string]any {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(map[string]any, len(values))
	for _, k := range keys {
		head, rest, dotted := strings.Cut(k, ".")
		switch {
		case dotted:
			mergeInto(out, head, map[string]any{rest: values[k]})
		default:
			if m, ok := values[k].(map[string]any); ok {
				mergeInto(out, k, m)
			} else {
				out[k] = values[k]
			}
		}
	}
	for k, val := range out {
		if m, ok := val.(map[string]any); ok {
			out[k] = nestDotted(m)
		}
	}
	return out
}

func mergeInto(out map[string]any, key string, m map[string]any) {
	sub, ok := out[key].(map[string]any)
	if !ok {
		sub = make(map[string]any, len(m))
		out[key] = sub
	}
	for k, val := range m {
		sub[k] = val
	}
}

// FlushWidgetCache drops every cached child, depth first.
func (v *View) FlushWidgetCache() {
	for _, w := range v.cache {
		if f, ok := w.(Flusher); ok {
			f.FlushWidgetCache()
		}
	}
	v.cache = make(map[*Descriptor]Widget)

	for _, inc := range v.includes {
		inc.FlushWidgetCache()
	}
	v.includes = make(map[*ViewClass]*View)
}
