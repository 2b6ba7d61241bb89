package widgets_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/entrhq/widgetforge/pkg/browser"
	"github.com/entrhq/widgetforge/pkg/widget"
	"github.com/entrhq/widgetforge/pkg/widgets"
)

const page = `<html><body>
<h1 id="title">  Account
  settings </h1>
<input id="name" value="alice">
<textarea id="bio">hi</textarea>
<input id="agree" type="checkbox" checked>
<select id="color"><option>red</option><option selected>green</option></select>
<input id="avatar" type="file">
<button id="save">  Save </button>
<button id="off" disabled>Off</button>
<button id="aria" aria-disabled="true">Aria</button>
</body></html>`

func open(t *testing.T) (*widget.View, *browser.DocumentDriver) {
	t.Helper()
	d, err := browser.ParseDocument(page)
	require.NoError(t, err)
	V := widget.DefineView("Settings", widget.WithFields(widget.Fields{
		"title":  widgets.NewText("#title"),
		"name":   widgets.NewTextInput("#name"),
		"bio":    widgets.NewTextInput("#bio"),
		"agree":  widgets.NewCheckbox("#agree"),
		"color":  widgets.NewSelect("#color"),
		"avatar": widgets.NewFileInput("#avatar"),
		"save":   widgets.NewButton("#save"),
		"off":    widgets.NewButton("#off"),
		"aria":   widgets.NewButton("#aria"),
	}))
	v, err := V.Open(browser.New(d))
	require.NoError(t, err)
	return v, d
}

func child[T widget.Widget](t *testing.T, v *widget.View, name string) T {
	t.Helper()
	w, err := v.Widget(name)
	require.NoError(t, err)
	typed, ok := w.(T)
	require.True(t, ok, "%s is %T", name, w)
	return typed
}

func TestRead(t *testing.T) {
	v, _ := open(t)
	read, err := v.Read()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"title": "Account settings",
		"name":  "alice",
		"bio":   "hi",
		"agree": true,
		"color": "green",
	}, read)
}

func TestFill(t *testing.T) {
	tests := []struct {
		name    string
		widget  string
		value   any
		changed bool
		want    any
	}{
		{"text input", "name", "bob", true, "bob"},
		{"text input unchanged", "name", "alice", false, "alice"},
		{"text input formats values", "name", 42, true, "42"},
		{"textarea", "bio", "hello there", true, "hello there"},
		{"checkbox", "agree", false, true, false},
		{"checkbox unchanged", "agree", true, false, true},
		{"select", "color", "red", true, "red"},
		{"select unchanged", "color", "green", false, "green"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, _ := open(t)
			w, err := v.Widget(tt.widget)
			require.NoError(t, err)

			changed, err := widget.Fill(w, tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.changed, changed)

			got, err := widget.Read(w)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFillRejectsBadValues(t *testing.T) {
	v, _ := open(t)

	_, err := widget.Fill(child[*widgets.Checkbox](t, v, "agree"), "yes")
	assert.Error(t, err)

	_, err = widget.Fill(child[*widgets.Select](t, v, "color"), "purple")
	assert.ErrorIs(t, err, browser.ErrNoSuchElement)

	_, err = widget.Fill(child[*widgets.FileInput](t, v, "avatar"), 3)
	assert.Error(t, err)

	_, err = widget.Fill(child[*widgets.Text](t, v, "title"), "x")
	assert.ErrorIs(t, err, widget.ErrNotImplemented)

	_, err = widget.Read(child[*widgets.Button](t, v, "save"))
	assert.ErrorIs(t, err, widget.ErrNotImplemented)
}

func TestFillVerifiesResult(t *testing.T) {
	v, d := open(t)
	// a page script that rewrites the value after every change
	d.OnChange(func(n *html.Node) error {
		browser.SetAttribute(n, "value", "sanitized")
		return nil
	})

	_, err := widget.Fill(child[*widgets.TextInput](t, v, "name"), "bob")
	assert.ErrorIs(t, err, widget.ErrFillFailed)
}

func TestFileInput(t *testing.T) {
	v, d := open(t)
	f := child[*widgets.FileInput](t, v, "avatar")

	_, err := f.Read()
	assert.ErrorIs(t, err, widget.ErrDoNotRead)

	for _, value := range []any{"/tmp/a.png", []string{"/tmp/a.png", "/tmp/b.png"}} {
		changed, err := f.Fill(value)
		require.NoError(t, err)
		assert.True(t, changed, "file inputs always report a change")
	}

	el, err := f.Element()
	require.NoError(t, err)
	got, err := d.InputValue(el)
	require.NoError(t, err)
	assert.Contains(t, got, "b.png")
}

func TestButton(t *testing.T) {
	v, d := open(t)

	clicked := ""
	d.OnClick(func(n *html.Node) error {
		for _, a := range n.Attr {
			if a.Key == "id" {
				clicked = a.Val
			}
		}
		return nil
	})

	save := child[*widgets.Button](t, v, "save")
	require.NoError(t, save.Click())
	assert.Equal(t, "save", clicked)

	label, err := save.Label()
	require.NoError(t, err)
	assert.Equal(t, "Save", label)

	tests := []struct {
		name     string
		disabled bool
	}{
		{"save", false},
		{"off", true},
		{"aria", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := child[*widgets.Button](t, v, tt.name).Disabled()
			require.NoError(t, err)
			assert.Equal(t, tt.disabled, got)
		})
	}
}

func TestClickThroughView(t *testing.T) {
	v, d := open(t)
	failing := errors.New("page script failed")
	d.OnClick(func(*html.Node) error { return failing })

	assert.ErrorIs(t, child[*widgets.Text](t, v, "title").Click(), failing)
}
