package browser

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"

	"github.com/entrhq/widgetforge/pkg/locator"
)

// DocumentDriver is a Driver over an in-memory HTML document. Elements are
// *html.Node values. Interactions mutate the document the way a browser
// would update the corresponding DOM properties.
type DocumentDriver struct {
	doc      *html.Node
	onClick  func(n *html.Node) error
	onChange func(n *html.Node) error
}

// NewDocumentDriver parses r into a new document.
func NewDocumentDriver(r io.Reader) (*DocumentDriver, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return &DocumentDriver{doc: doc}, nil
}

// ParseDocument is NewDocumentDriver over a string.
func ParseDocument(s string) (*DocumentDriver, error) {
	return NewDocumentDriver(strings.NewReader(s))
}

// Document returns the root node.
func (d *DocumentDriver) Document() *html.Node { return d.doc }

// OnClick registers a hook run after every click. Hooks stand in for page
// scripts, e.g. revealing a section or appending a table row.
func (d *DocumentDriver) OnClick(fn func(n *html.Node) error) { d.onClick = fn }

// OnChange registers a hook run after every value, checked or selection change.
func (d *DocumentDriver) OnChange(fn func(n *html.Node) error) { d.onChange = fn }

// Render serializes the current document.
func (d *DocumentDriver) Render() (string, error) {
	var sb strings.Builder
	if err := html.Render(&sb, d.doc); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func (d *DocumentDriver) node(el Element) (*html.Node, error) {
	n, ok := el.(*html.Node)
	if !ok || n == nil {
		return nil, fmt.Errorf("not a document element: %T", el)
	}
	return n, nil
}

func (d *DocumentDriver) Find(loc locator.Locator, parent Element) ([]Element, error) {
	ctx := d.doc
	if parent != nil {
		n, err := d.node(parent)
		if err != nil {
			return nil, err
		}
		ctx = n
	}

	var nodes []*html.Node
	switch loc.Strategy {
	case locator.CSS:
		sel, err := cascadia.Compile(loc.Value)
		if err != nil {
			return nil, fmt.Errorf("invalid css selector %q: %w", loc.Value, err)
		}
		nodes = cascadia.QueryAll(ctx, sel)
	default:
		expr := loc.Value
		if loc.Strategy != locator.XPath {
			translated, ok := loc.XPath()
			if !ok {
				return nil, fmt.Errorf("%w: %s", locator.ErrUnsupportedEngine, loc.Strategy)
			}
			expr = translated
		}
		found, err := htmlquery.QueryAll(ctx, expr)
		if err != nil {
			return nil, fmt.Errorf("invalid xpath %q: %w", expr, err)
		}
		nodes = found
	}

	out := make([]Element, 0, len(nodes))
	for _, n := range nodes {
		if n.Type == html.ElementNode {
			out = append(out, n)
		}
	}
	return out, nil
}

// IsDisplayed follows the common CSS rules: the hidden attribute, inline
// display:none or visibility:hidden on the node or an ancestor, and
// <input type=hidden>. Detached nodes are not displayed.
func (d *DocumentDriver) IsDisplayed(el Element) (bool, error) {
	n, err := d.node(el)
	if err != nil {
		return false, err
	}
	if n.Data == "input" && strings.EqualFold(attr(n, "type"), "hidden") {
		return false, nil
	}
	for cur := n; cur != nil; cur = cur.Parent {
		if cur == d.doc {
			return true, nil
		}
		if cur.Type != html.ElementNode {
			continue
		}
		if _, ok := lookupAttr(cur, "hidden"); ok {
			return false, nil
		}
		style := strings.ReplaceAll(strings.ToLower(attr(cur, "style")), " ", "")
		if strings.Contains(style, "display:none") || strings.Contains(style, "visibility:hidden") {
			return false, nil
		}
	}
	return false, nil
}

func (d *DocumentDriver) Text(el Element) (string, error) {
	n, err := d.node(el)
	if err != nil {
		return "", err
	}
	return htmlquery.InnerText(n), nil
}

func (d *DocumentDriver) Attribute(el Element, name string) (string, bool, error) {
	n, err := d.node(el)
	if err != nil {
		return "", false, err
	}
	v, ok := lookupAttr(n, name)
	return v, ok, nil
}

func (d *DocumentDriver) TagName(el Element) (string, error) {
	n, err := d.node(el)
	if err != nil {
		return "", err
	}
	return strings.ToLower(n.Data), nil
}

// Click toggles checkboxes and selects radios before running the click hook.
func (d *DocumentDriver) Click(el Element) error {
	n, err := d.node(el)
	if err != nil {
		return err
	}
	if n.Data == "input" {
		switch strings.ToLower(attr(n, "type")) {
		case "checkbox":
			_, checked := lookupAttr(n, "checked")
			setChecked(n, !checked)
		case "radio":
			setChecked(n, true)
		}
	}
	if d.onClick != nil {
		return d.onClick(n)
	}
	return nil
}

func (d *DocumentDriver) FillText(el Element, value string) error {
	n, err := d.node(el)
	if err != nil {
		return err
	}
	switch n.Data {
	case "input":
		SetAttribute(n, "value", value)
	case "textarea":
		for c := n.FirstChild; c != nil; {
			next := c.NextSibling
			n.RemoveChild(c)
			c = next
		}
		n.AppendChild(&html.Node{Type: html.TextNode, Data: value})
	default:
		if _, editable := lookupAttr(n, "contenteditable"); !editable {
			return fmt.Errorf("element <%s> is not editable", n.Data)
		}
		for c := n.FirstChild; c != nil; {
			next := c.NextSibling
			n.RemoveChild(c)
			c = next
		}
		n.AppendChild(&html.Node{Type: html.TextNode, Data: value})
	}
	return d.changed(n)
}

func (d *DocumentDriver) Clear(el Element) error { return d.FillText(el, "") }

func (d *DocumentDriver) InputValue(el Element) (string, error) {
	n, err := d.node(el)
	if err != nil {
		return "", err
	}
	switch n.Data {
	case "textarea":
		return htmlquery.InnerText(n), nil
	case "select":
		if opt := selectedOption(n); opt != nil {
			if v, ok := lookupAttr(opt, "value"); ok {
				return v, nil
			}
			return strings.TrimSpace(htmlquery.InnerText(opt)), nil
		}
		return "", nil
	default:
		return attr(n, "value"), nil
	}
}

func (d *DocumentDriver) IsChecked(el Element) (bool, error) {
	n, err := d.node(el)
	if err != nil {
		return false, err
	}
	_, ok := lookupAttr(n, "checked")
	return ok, nil
}

func (d *DocumentDriver) SetChecked(el Element, checked bool) error {
	n, err := d.node(el)
	if err != nil {
		return err
	}
	setChecked(n, checked)
	return d.changed(n)
}

func (d *DocumentDriver) SelectOption(el Element, label string) error {
	n, err := d.node(el)
	if err != nil {
		return err
	}
	var target *html.Node
	options := htmlquery.Find(n, ".//option")
	for _, opt := range options {
		if strings.TrimSpace(htmlquery.InnerText(opt)) == label {
			target = opt
			break
		}
	}
	if target == nil {
		return fmt.Errorf("%w: option %q", ErrNoSuchElement, label)
	}
	for _, opt := range options {
		RemoveAttribute(opt, "selected")
	}
	SetAttribute(target, "selected", "")
	return d.changed(n)
}

func (d *DocumentDriver) SelectedOption(el Element) (string, error) {
	n, err := d.node(el)
	if err != nil {
		return "", err
	}
	if opt := selectedOption(n); opt != nil {
		return strings.TrimSpace(htmlquery.InnerText(opt)), nil
	}
	return "", nil
}

// SetInputFiles records the file base names in the value attribute.
func (d *DocumentDriver) SetInputFiles(el Element, paths ...string) error {
	n, err := d.node(el)
	if err != nil {
		return err
	}
	names := make([]string, len(paths))
	for i, p := range paths {
		names[i] = filepath.Base(p)
	}
	SetAttribute(n, "value", strings.Join(names, ", "))
	return d.changed(n)
}

func (d *DocumentDriver) changed(n *html.Node) error {
	if d.onChange != nil {
		return d.onChange(n)
	}
	return nil
}

func selectedOption(sel *html.Node) *html.Node {
	options := htmlquery.Find(sel, ".//option")
	for _, opt := range options {
		if _, ok := lookupAttr(opt, "selected"); ok {
			return opt
		}
	}
	if len(options) > 0 {
		return options[0]
	}
	return nil
}

func setChecked(n *html.Node, checked bool) {
	if checked {
		SetAttribute(n, "checked", "")
	} else {
		RemoveAttribute(n, "checked")
	}
}

func attr(n *html.Node, key string) string {
	v, _ := lookupAttr(n, key)
	return v
}

func lookupAttr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, key) {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttribute sets or replaces an attribute on n.
func SetAttribute(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, key) {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// RemoveAttribute deletes an attribute from n if present.
func RemoveAttribute(n *html.Node, key string) {
	kept := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, key) {
			continue
		}
		kept = append(kept, a)
	}
	n.Attr = kept
}
