package widget

import (
	"fmt"
	"sync"
)

// Factory constructs a widget bound to parent under name.
type Factory func(parent Widget, name string) (Widget, error)

var (
	seqMu sync.Mutex
	seq   uint64
)

func nextSeq() uint64 {
	seqMu.Lock()
	defer seqMu.Unlock()
	seq++
	return seq
}

// Descriptor is the declaration-time blueprint of a widget. It owns no live
// state; instances are built lazily and cached by the owning view, keyed by
// descriptor identity.
type Descriptor struct {
	factory Factory
	seq     uint64

	// dynamic descriptors are resolved on every access instead of cached
	dynamic func(owner *View, name string) (Widget, error)
}

// Declare records a new descriptor. Its sequence number fixes its position in
// declaration order.
func Declare(f Factory) *Descriptor {
	return &Descriptor{factory: f, seq: nextSeq()}
}

// Seq returns the creation sequence number.
func (d *Descriptor) Seq() uint64 { return d.seq }

// New constructs a widget from the descriptor. Views call this through their
// cache; direct calls build an uncached instance.
func (d *Descriptor) New(parent Widget, name string) (Widget, error) {
	if d.factory == nil {
		return nil, fmt.Errorf("descriptor for %s has no factory", name)
	}
	return d.factory(parent, name)
}

func (d *Descriptor) descriptor() *Descriptor { return d }

// Instantiate builds an uncached widget from any declaration. Conditional
// declarations resolve against parent, which must then be a *View.
func Instantiate(decl Declaration, parent Widget, name string) (Widget, error) {
	d := decl.descriptor()
	if d.dynamic == nil {
		return d.New(parent, name)
	}
	owner, ok := parent.(*View)
	if !ok {
		return nil, fmt.Errorf("%s: conditional widget needs a view parent, got %T", name, parent)
	}
	return d.dynamic(owner, name)
}

// Declaration is anything that can be listed in Fields: *Descriptor,
// *ViewClass or *ConditionalView.
type Declaration interface {
	descriptor() *Descriptor
}

// Fields maps widget names to declarations. Iteration order is irrelevant;
// views order fields by descriptor sequence.
type Fields map[string]Declaration
