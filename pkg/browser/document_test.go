package browser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/entrhq/widgetforge/pkg/locator"
)

const formPage = `<html><body>
<form id="login">
  <label for="user">User name</label>
  <input id="user" name="user" value="alice">
  <input id="token" type="hidden" value="s3cret">
  <input id="remember" type="checkbox" checked>
  <textarea id="notes">old notes</textarea>
  <select id="role">
    <option value="r">Reader</option>
    <option value="w" selected>Writer</option>
  </select>
  <input id="avatar" type="file">
  <button id="submit" data-testid="submit-btn">Log in</button>
  <div id="extra" style="display: none"><span class="inner">hidden text</span></div>
  <p hidden id="gone">gone</p>
</form>
</body></html>`

func parseForm(t *testing.T) *DocumentDriver {
	t.Helper()
	d, err := ParseDocument(formPage)
	require.NoError(t, err)
	return d
}

func find(t *testing.T, d *DocumentDriver, loc string) Element {
	t.Helper()
	found, err := d.Find(locator.MustResolve(loc), nil)
	require.NoError(t, err)
	require.NotEmpty(t, found, "no element for %s", loc)
	return found[0]
}

func TestDocumentFind(t *testing.T) {
	d := parseForm(t)

	tests := []struct {
		name  string
		loc   string
		count int
	}{
		{"css id", "#user", 1},
		{"css group", "input, textarea", 5},
		{"xpath", "//option", 2},
		{"text engine", `text="Log in"`, 1},
		{"test id engine", "data-testid=submit-btn", 1},
		{"label engine", `label="User name"`, 1},
		{"no match", "#missing", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found, err := d.Find(locator.MustResolve(tt.loc), nil)
			require.NoError(t, err)
			assert.Len(t, found, tt.count)
		})
	}
}

func TestDocumentFindUnderParent(t *testing.T) {
	d := parseForm(t)
	extra := find(t, d, "#extra")

	found, err := d.Find(locator.MustResolve(".//span"), extra)
	require.NoError(t, err)
	assert.Len(t, found, 1)

	found, err = d.Find(locator.MustResolve("span.inner"), extra)
	require.NoError(t, err)
	assert.Len(t, found, 1)

	// the context node itself never matches a css query
	found, err = d.Find(locator.MustResolve("div"), extra)
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestDocumentFindInvalidSelector(t *testing.T) {
	d := parseForm(t)
	_, err := d.Find(locator.Locator{Strategy: locator.CSS, Value: "[["}, nil)
	assert.Error(t, err)
	_, err = d.Find(locator.Locator{Strategy: locator.XPath, Value: "//["}, nil)
	assert.Error(t, err)
}

func TestDocumentIsDisplayed(t *testing.T) {
	d := parseForm(t)

	tests := []struct {
		loc  string
		want bool
	}{
		{"#user", true},
		{"#token", false},
		{"#extra", false},
		{"span.inner", false},
		{"#gone", false},
	}
	for _, tt := range tests {
		t.Run(tt.loc, func(t *testing.T) {
			shown, err := d.IsDisplayed(find(t, d, tt.loc))
			require.NoError(t, err)
			assert.Equal(t, tt.want, shown)
		})
	}

	t.Run("detached", func(t *testing.T) {
		n := find(t, d, "#user").(*html.Node)
		n.Parent.RemoveChild(n)
		shown, err := d.IsDisplayed(n)
		require.NoError(t, err)
		assert.False(t, shown)
	})
}

func TestDocumentInputs(t *testing.T) {
	d := parseForm(t)

	user := find(t, d, "#user")
	v, err := d.InputValue(user)
	require.NoError(t, err)
	assert.Equal(t, "alice", v)

	require.NoError(t, d.FillText(user, "bob"))
	v, _ = d.InputValue(user)
	assert.Equal(t, "bob", v)

	require.NoError(t, d.Clear(user))
	v, _ = d.InputValue(user)
	assert.Empty(t, v)

	notes := find(t, d, "#notes")
	require.NoError(t, d.FillText(notes, "new notes"))
	v, _ = d.InputValue(notes)
	assert.Equal(t, "new notes", v)

	assert.Error(t, d.FillText(find(t, d, "#submit"), "x"))
}

func TestDocumentCheckbox(t *testing.T) {
	d := parseForm(t)
	box := find(t, d, "#remember")

	checked, err := d.IsChecked(box)
	require.NoError(t, err)
	assert.True(t, checked)

	require.NoError(t, d.Click(box))
	checked, _ = d.IsChecked(box)
	assert.False(t, checked)

	require.NoError(t, d.SetChecked(box, true))
	checked, _ = d.IsChecked(box)
	assert.True(t, checked)
}

func TestDocumentSelect(t *testing.T) {
	d := parseForm(t)
	role := find(t, d, "#role")

	label, err := d.SelectedOption(role)
	require.NoError(t, err)
	assert.Equal(t, "Writer", label)

	require.NoError(t, d.SelectOption(role, "Reader"))
	label, _ = d.SelectedOption(role)
	assert.Equal(t, "Reader", label)
	v, _ := d.InputValue(role)
	assert.Equal(t, "r", v)

	err = d.SelectOption(role, "Admin")
	assert.ErrorIs(t, err, ErrNoSuchElement)
}

func TestDocumentAttributesAndFiles(t *testing.T) {
	d := parseForm(t)
	submit := find(t, d, "#submit")

	v, ok, err := d.Attribute(submit, "data-testid")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "submit-btn", v)

	_, ok, _ = d.Attribute(submit, "disabled")
	assert.False(t, ok)

	tag, _ := d.TagName(submit)
	assert.Equal(t, "button", tag)

	avatar := find(t, d, "#avatar")
	require.NoError(t, d.SetInputFiles(avatar, "/tmp/me.png"))
	v, _ = d.InputValue(avatar)
	assert.Equal(t, "me.png", v)
}

func TestDocumentHooks(t *testing.T) {
	d := parseForm(t)

	var clicked, changed []string
	d.OnClick(func(n *html.Node) error {
		clicked = append(clicked, attr(n, "id"))
		RemoveAttribute(find(t, d, "#extra").(*html.Node), "style")
		return nil
	})
	d.OnChange(func(n *html.Node) error {
		changed = append(changed, attr(n, "id"))
		return nil
	})

	require.NoError(t, d.Click(find(t, d, "#submit")))
	require.NoError(t, d.FillText(find(t, d, "#user"), "x"))

	assert.Equal(t, []string{"submit"}, clicked)
	assert.Equal(t, []string{"user"}, changed)

	shown, _ := d.IsDisplayed(find(t, d, "#extra"))
	assert.True(t, shown)
}

func TestDocumentRender(t *testing.T) {
	d := parseForm(t)
	require.NoError(t, d.FillText(find(t, d, "#user"), "carol"))
	out, err := d.Render()
	require.NoError(t, err)
	assert.Contains(t, out, `value="carol"`)
}

func TestDocumentRejectsForeignElements(t *testing.T) {
	d := parseForm(t)
	_, err := d.Text("not a node")
	assert.Error(t, err)
}
