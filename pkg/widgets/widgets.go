// Package widgets provides the basic widget kinds page models are built from.
package widgets

import (
	"fmt"
	"strings"

	"github.com/entrhq/widgetforge/pkg/widget"
)

// declare wraps the usual constructor boilerplate: allocate, bind, return.
func declare[T widget.Widget](loc any, alloc func() (T, *widget.Base)) *widget.Descriptor {
	return widget.Declare(func(parent widget.Widget, name string) (widget.Widget, error) {
		w, base := alloc()
		if err := base.Init(w, parent, name, loc); err != nil {
			return nil, err
		}
		return w, nil
	})
}

// normalizeSpace collapses runs of whitespace like XPath normalize-space.
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func verify(name string, want, got any) error {
	if fmt.Sprint(want) != fmt.Sprint(got) {
		return fmt.Errorf("%w: %s holds %v after filling %v", widget.ErrFillFailed, name, got, want)
	}
	return nil
}

// Text is a read-only element whose value is its normalized text.
type Text struct {
	widget.Base
}

// NewText declares a Text.
func NewText(loc any) *widget.Descriptor {
	return declare(loc, func() (*Text, *widget.Base) {
		t := &Text{}
		return t, &t.Base
	})
}

func (t *Text) Text() (string, error) {
	el, err := t.Element()
	if err != nil {
		return "", err
	}
	text, err := t.Browser().Text(el)
	if err != nil {
		return "", err
	}
	return normalizeSpace(text), nil
}

func (t *Text) Read() (any, error) { return t.Text() }

func (t *Text) Click() error {
	el, err := t.Element()
	if err != nil {
		return err
	}
	return t.Browser().Click(el)
}

// TextInput is an <input> or <textarea>.
type TextInput struct {
	widget.Base
}

// NewTextInput declares a TextInput.
func NewTextInput(loc any) *widget.Descriptor {
	return declare(loc, func() (*TextInput, *widget.Base) {
		t := &TextInput{}
		return t, &t.Base
	})
}

func (t *TextInput) Value() (string, error) {
	el, err := t.Element()
	if err != nil {
		return "", err
	}
	return t.Browser().InputValue(el)
}

func (t *TextInput) Read() (any, error) { return t.Value() }

// Fill replaces the value. Non-string values are formatted with fmt.Sprint.
func (t *TextInput) Fill(value any) (bool, error) {
	want := fmt.Sprint(value)
	current, err := t.Value()
	if err != nil {
		return false, err
	}
	if current == want {
		return false, nil
	}

	el, err := t.Element()
	if err != nil {
		return false, err
	}
	if err := t.Browser().FillText(el, want); err != nil {
		return false, err
	}

	got, err := t.Value()
	if err != nil {
		return false, err
	}
	if err := verify(t.Name(), want, got); err != nil {
		return false, err
	}
	return true, nil
}

// Checkbox reads and fills as a bool.
type Checkbox struct {
	widget.Base
}

// NewCheckbox declares a Checkbox.
func NewCheckbox(loc any) *widget.Descriptor {
	return declare(loc, func() (*Checkbox, *widget.Base) {
		c := &Checkbox{}
		return c, &c.Base
	})
}

func (c *Checkbox) Checked() (bool, error) {
	el, err := c.Element()
	if err != nil {
		return false, err
	}
	return c.Browser().IsChecked(el)
}

func (c *Checkbox) Read() (any, error) { return c.Checked() }

func (c *Checkbox) Fill(value any) (bool, error) {
	want, ok := value.(bool)
	if !ok {
		return false, fmt.Errorf("checkbox %s needs a bool, got %T", c.Name(), value)
	}
	current, err := c.Checked()
	if err != nil {
		return false, err
	}
	if current == want {
		return false, nil
	}

	el, err := c.Element()
	if err != nil {
		return false, err
	}
	if err := c.Browser().SetChecked(el, want); err != nil {
		return false, err
	}

	got, err := c.Checked()
	if err != nil {
		return false, err
	}
	if err := verify(c.Name(), want, got); err != nil {
		return false, err
	}
	return true, nil
}

// Select reads and fills the visible text of the selected option.
type Select struct {
	widget.Base
}

// NewSelect declares a Select.
func NewSelect(loc any) *widget.Descriptor {
	return declare(loc, func() (*Select, *widget.Base) {
		s := &Select{}
		return s, &s.Base
	})
}

func (s *Select) Selected() (string, error) {
	el, err := s.Element()
	if err != nil {
		return "", err
	}
	return s.Browser().SelectedOption(el)
}

func (s *Select) Read() (any, error) { return s.Selected() }

func (s *Select) Fill(value any) (bool, error) {
	want := fmt.Sprint(value)
	current, err := s.Selected()
	if err != nil {
		return false, err
	}
	if current == want {
		return false, nil
	}

	el, err := s.Element()
	if err != nil {
		return false, err
	}
	if err := s.Browser().SelectOption(el, want); err != nil {
		return false, err
	}

	got, err := s.Selected()
	if err != nil {
		return false, err
	}
	if err := verify(s.Name(), want, got); err != nil {
		return false, err
	}
	return true, nil
}

// FileInput uploads files. Its value cannot be read back reliably, so it
// opts out of view reads and every fill reports a change.
type FileInput struct {
	widget.Base
}

// NewFileInput declares a FileInput.
func NewFileInput(loc any) *widget.Descriptor {
	return declare(loc, func() (*FileInput, *widget.Base) {
		f := &FileInput{}
		return f, &f.Base
	})
}

func (f *FileInput) Read() (any, error) {
	return nil, fmt.Errorf("%s: %w", f.Name(), widget.ErrDoNotRead)
}

// Fill takes a path or a []string of paths.
func (f *FileInput) Fill(value any) (bool, error) {
	var paths []string
	switch v := value.(type) {
	case string:
		paths = []string{v}
	case []string:
		paths = v
	default:
		return false, fmt.Errorf("file input %s needs a path, got %T", f.Name(), value)
	}

	el, err := f.Element()
	if err != nil {
		return false, err
	}
	if err := f.Browser().SetInputFiles(el, paths...); err != nil {
		return false, err
	}
	return true, nil
}

// Button is clickable and has no value.
type Button struct {
	widget.Base
}

// NewButton declares a Button.
func NewButton(loc any) *widget.Descriptor {
	return declare(loc, func() (*Button, *widget.Base) {
		b := &Button{}
		return b, &b.Base
	})
}

func (b *Button) Click() error {
	el, err := b.Element()
	if err != nil {
		return err
	}
	return b.Browser().Click(el)
}

// Disabled reports the disabled attribute or aria-disabled="true".
func (b *Button) Disabled() (bool, error) {
	el, err := b.Element()
	if err != nil {
		return false, err
	}
	if _, ok, err := b.Browser().Attribute(el, "disabled"); err != nil || ok {
		return ok, err
	}
	aria, _, err := b.Browser().Attribute(el, "aria-disabled")
	return aria == "true", err
}

// Label returns the normalized button text.
func (b *Button) Label() (string, error) {
	el, err := b.Element()
	if err != nil {
		return "", err
	}
	text, err := b.Browser().Text(el)
	return normalizeSpace(text), err
}
