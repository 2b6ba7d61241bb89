// Package table models HTML tables as widgets: headers, filtered row
// lookup and per-cell read/fill, including tables that merge cells with
// rowspan and colspan.
package table

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/entrhq/widgetforge/pkg/browser"
	"github.com/entrhq/widgetforge/pkg/locator"
	"github.com/entrhq/widgetforge/pkg/widget"
)

var (
	ErrRowNotFound     = errors.New("no matching row")
	ErrDuplicateKey    = errors.New("duplicate key")
	ErrCannotAddRow    = errors.New("table cannot add rows")
	ErrCellNotFillable = errors.New("cell has no fillable widget")
	ErrUnknownColumn   = errors.New("unknown column")
)

// Body rows are rows with data cells, plus empty rows whose slots are all
// covered by spans from above. Header rows hold only th cells.
const (
	headerRowXPath = `(./thead/tr|./tbody/tr[./th and not(./td)]|./tr[./th and not(./td)])[1]`
	bodyRowsXPath  = `./tbody/tr[./td or not(./th)]|./tr[./td or not(./th)]`
	cellsXPath     = `./*[self::td or self::th]`
	spansXPath     = `./tbody/tr[./td or not(./th)]/*[@rowspan or @colspan]|./tr[./td or not(./th)]/*[@rowspan or @colspan]`
)

var (
	headerRowLoc = locator.MustResolve(headerRowXPath)
	bodyRowsLoc  = locator.MustResolve(bodyRowsXPath)
	cellsLoc     = locator.MustResolve(cellsXPath)
	spansLoc     = locator.MustResolve(spansXPath)
)

func rowXPath(dom int) string {
	return fmt.Sprintf("(%s)[%d]", bodyRowsXPath, dom+1)
}

func cellXPath(dom int) string {
	return fmt.Sprintf("%s[%d]", cellsXPath, dom+1)
}

type options struct {
	columnWidgets map[any]widget.Declaration
	assoc         any
	addRow        func(t *Table) error
	ignoreTop     int
	ignoreBottom  int
}

// Option configures a table declaration.
type Option func(*options)

// WithColumnWidgets declares a widget inside every cell of a column. Keys
// are column indexes or header names.
func WithColumnWidgets(widgets map[any]widget.Declaration) Option {
	return func(o *options) { o.columnWidgets = widgets }
}

// WithAssocColumn makes Read and Fill use maps keyed by the given column.
func WithAssocColumn(col any) Option {
	return func(o *options) { o.assoc = col }
}

// WithAddRow sets the operation that appends an empty row, used when an
// associative or positional fill needs more rows than the table has.
func WithAddRow(fn func(t *Table) error) Option {
	return func(o *options) { o.addRow = fn }
}

// WithIgnoreTopRows hides the first n body rows, e.g. filter rows.
func WithIgnoreTopRows(n int) Option {
	return func(o *options) { o.ignoreTop = n }
}

// WithIgnoreBottomRows hides the last n body rows, e.g. totals.
func WithIgnoreBottomRows(n int) Option {
	return func(o *options) { o.ignoreBottom = n }
}

// Table is a table widget.
type Table struct {
	widget.Base
	opts *options

	headers []string
	spans   *bool
	grid    *grid
	rows    map[int]*Row
}

// New declares a table located by loc.
func New(loc any, opts ...Option) *widget.Descriptor {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	return widget.Declare(func(parent widget.Widget, name string) (widget.Widget, error) {
		t := &Table{opts: o, rows: make(map[int]*Row)}
		if err := t.Init(t, parent, name, loc); err != nil {
			return nil, err
		}
		return t, nil
	})
}

// Headers returns the header texts, one per grid column. A header cell with
// colspan n covers n columns. Untitled columns have an empty header.
func (t *Table) Headers() ([]string, error) {
	if t.headers != nil {
		return t.headers, nil
	}
	b := t.Browser()
	tableEl, err := t.Element()
	if err != nil {
		return nil, err
	}
	headerRow, err := b.Element(headerRowLoc, tableEl)
	if errors.Is(err, browser.ErrNoSuchElement) {
		t.headers = []string{}
		return t.headers, nil
	}
	if err != nil {
		return nil, err
	}
	cells, err := b.Elements(cellsLoc, headerRow, false)
	if err != nil {
		return nil, err
	}

	headers := []string{}
	for _, el := range cells {
		text, err := b.Text(el)
		if err != nil {
			return nil, err
		}
		span, err := colspanOf(b, el)
		if err != nil {
			return nil, err
		}
		for i := 0; i < span; i++ {
			headers = append(headers, normalizeSpace(text))
		}
	}
	t.headers = headers
	return headers, nil
}

var nonWord = regexp.MustCompile(`[^a-z0-9]+`)

// Attributize turns a header into an identifier: "Column 1" becomes
// "column_1".
func Attributize(header string) string {
	return strings.Trim(nonWord.ReplaceAllString(strings.ToLower(header), "_"), "_")
}

// ColumnIndex resolves an int index, a header text, an attributized header
// or a decimal index string to a column index.
func (t *Table) ColumnIndex(col any) (int, error) {
	headers, err := t.Headers()
	if err != nil {
		return 0, err
	}

	switch c := col.(type) {
	case int:
		if c < 0 || (len(headers) > 0 && c >= len(headers)) {
			return 0, fmt.Errorf("%w: index %d of %d", ErrUnknownColumn, c, len(headers))
		}
		return c, nil
	case string:
		for i, h := range headers {
			if h == c {
				return i, nil
			}
		}
		for i, h := range headers {
			if h != "" && Attributize(h) == c {
				return i, nil
			}
		}
		if i, err := strconv.Atoi(c); err == nil {
			return t.ColumnIndex(i)
		}
		return 0, fmt.Errorf("%w: %q", ErrUnknownColumn, c)
	}
	return 0, fmt.Errorf("%w: %v (%T)", ErrUnknownColumn, col, col)
}

// columnKey names a column in row reads: the header text, or the index for
// untitled columns.
func (t *Table) columnKey(col int) string {
	headers, _ := t.Headers()
	if col < len(headers) && headers[col] != "" {
		return headers[col]
	}
	return strconv.Itoa(col)
}

func (t *Table) columnWidget(col int) (widget.Declaration, error) {
	for key, decl := range t.opts.columnWidgets {
		idx, err := t.ColumnIndex(key)
		if err != nil {
			return nil, err
		}
		if idx == col {
			return decl, nil
		}
	}
	return nil, nil
}

// HasRowSpans reports whether any body cell carries a rowspan or colspan
// attribute. Computed once per instance.
func (t *Table) HasRowSpans() (bool, error) {
	if t.spans != nil {
		return *t.spans, nil
	}
	tableEl, err := t.Element()
	if err != nil {
		return false, err
	}
	found, err := t.Browser().Elements(spansLoc, tableEl, false)
	if err != nil {
		return false, err
	}
	spans := len(found) > 0
	t.spans = &spans
	return spans, nil
}

func (t *Table) domRowCount() (int, error) {
	tableEl, err := t.Element()
	if err != nil {
		return 0, err
	}
	rows, err := t.Browser().Elements(bodyRowsLoc, tableEl, false)
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

// RowCount returns the number of body rows, minus ignored ones.
func (t *Table) RowCount() (int, error) {
	n, err := t.domRowCount()
	if err != nil {
		return 0, err
	}
	n -= t.opts.ignoreTop + t.opts.ignoreBottom
	if n < 0 {
		n = 0
	}
	return n, nil
}

// RowAt returns the i-th row. Negative indexes count from the end.
func (t *Table) RowAt(i int) (*Row, error) {
	n, err := t.RowCount()
	if err != nil {
		return nil, err
	}
	if i < 0 {
		i += n
	}
	if i < 0 || i >= n {
		return nil, fmt.Errorf("%w: row %d of %d", widget.ErrIndexOutOfRange, i, n)
	}
	return t.rowByDOM(i + t.opts.ignoreTop)
}

func (t *Table) rowByDOM(dom int) (*Row, error) {
	if r, ok := t.rows[dom]; ok {
		return r, nil
	}
	r := &Row{table: t, index: dom - t.opts.ignoreTop, dom: dom, cells: make(map[int]*Cell)}
	if err := r.Init(r, t, fmt.Sprintf("row[%d]", r.index), rowXPath(dom)); err != nil {
		return nil, err
	}
	t.rows[dom] = r
	return r, nil
}

// AllRows returns every row in order.
func (t *Table) AllRows() ([]*Row, error) {
	n, err := t.RowCount()
	if err != nil {
		return nil, err
	}
	rows := make([]*Row, 0, n)
	for i := 0; i < n; i++ {
		r, err := t.RowAt(i)
		if err != nil {
			return nil, err
		}
		rows = append(rows, r)
	}
	return rows, nil
}

// Rows returns the rows matching every filter group. Filters on the same
// column or attribute form one group and are OR'd.
func (t *Table) Rows(filters ...Filter) ([]*Row, error) {
	groups, err := t.group(filters)
	if err != nil {
		return nil, err
	}
	all, err := t.AllRows()
	if err != nil {
		return nil, err
	}

	var out []*Row
	for _, r := range all {
		ok, err := r.matches(groups)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, r)
		}
	}
	return out, nil
}

// Row returns the first row matching filters.
func (t *Table) Row(filters ...Filter) (*Row, error) {
	rows, err := t.Rows(filters...)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w in %s for %v", ErrRowNotFound, t.Name(), filters)
	}
	return rows[0], nil
}

// RowByKey returns the row whose associative column reads key.
func (t *Table) RowByKey(key any) (*Row, error) {
	if t.opts.assoc == nil {
		return nil, fmt.Errorf("%s: RowByKey needs an associative column", t.Name())
	}
	return t.Row(Equals(t.opts.assoc, key))
}

// Read returns a list of row maps, or a map of row maps keyed by the
// associative column.
func (t *Table) Read() (any, error) {
	rows, err := t.AllRows()
	if err != nil {
		return nil, err
	}
	if t.opts.assoc == nil {
		out := make([]any, 0, len(rows))
		for _, r := range rows {
			v, err := r.Read()
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	}

	keyCol, err := t.ColumnIndex(t.opts.assoc)
	if err != nil {
		return nil, err
	}
	out := make(map[string]any, len(rows))
	for _, r := range rows {
		key, err := r.keyOf(keyCol)
		if err != nil {
			return nil, err
		}
		if _, dup := out[key]; dup {
			return nil, fmt.Errorf("%w %q in %s", ErrDuplicateKey, key, t.Name())
		}
		v, err := r.Read()
		if err != nil {
			return nil, err
		}
		out[key] = v
	}
	return out, nil
}

// Fill takes a list of row values, filled positionally, or for associative
// tables a map keyed by the key column. Missing rows are added with the
// add-row operation. Nil list entries leave their row alone.
func (t *Table) Fill(value any) (bool, error) {
	switch v := value.(type) {
	case map[string]any:
		if t.opts.assoc == nil {
			return false, fmt.Errorf("%s: map fill needs an associative column", t.Name())
		}
		return t.fillAssoc(v)
	case []map[string]any:
		list := make([]any, len(v))
		for i, m := range v {
			list[i] = m
		}
		return t.fillList(list)
	case []any:
		return t.fillList(v)
	}
	return false, fmt.Errorf("%s: table fill needs a list or map, got %T", t.Name(), value)
}

func (t *Table) fillList(values []any) (bool, error) {
	changed := false
	for i, val := range values {
		n, err := t.RowCount()
		if err != nil {
			return false, err
		}
		var r *Row
		switch {
		case i >= n:
			r, err = t.addRow()
			changed = true
		case val == nil:
			continue
		default:
			r, err = t.RowAt(i)
		}
		if err != nil {
			return false, err
		}
		if val == nil {
			continue
		}
		ch, err := r.Fill(val)
		if err != nil {
			return false, err
		}
		changed = changed || ch
	}
	return changed, nil
}

func (t *Table) fillAssoc(values map[string]any) (bool, error) {
	keyCol, err := t.ColumnIndex(t.opts.assoc)
	if err != nil {
		return false, err
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	changed := false
	for _, key := range keys {
		rowValues, err := asRowValues(values[key])
		if err != nil {
			return false, fmt.Errorf("%s[%s]: %w", t.Name(), key, err)
		}

		r, err := t.RowByKey(key)
		if errors.Is(err, ErrRowNotFound) {
			if r, err = t.addRow(); err != nil {
				return false, err
			}
			changed = true
			if !t.mentions(rowValues, keyCol) {
				rowValues[strconv.Itoa(keyCol)] = key
			}
		}
		if err != nil {
			return false, err
		}

		ch, err := r.Fill(rowValues)
		if err != nil {
			return false, err
		}
		changed = changed || ch
	}
	return changed, nil
}

func (t *Table) mentions(values map[string]any, col int) bool {
	for k := range values {
		if idx, err := t.ColumnIndex(k); err == nil && idx == col {
			return true
		}
	}
	return false
}

func (t *Table) addRow() (*Row, error) {
	if t.opts.addRow == nil {
		return nil, fmt.Errorf("%w: %s", ErrCannotAddRow, t.Name())
	}
	if err := t.opts.addRow(t); err != nil {
		return nil, fmt.Errorf("%s: add row: %w", t.Name(), err)
	}
	t.flushRows()
	t.Logger().Debugf("added a row")
	return t.RowAt(-1)
}

func (t *Table) flushRows() {
	t.spans = nil
	t.grid = nil
	t.rows = make(map[int]*Row)
}

// FlushWidgetCache drops rows, cells, headers and the merged-cell grid.
func (t *Table) FlushWidgetCache() {
	t.headers = nil
	t.flushRows()
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Span limits applied by browsers when building the table grid.
const (
	maxColspan = 1000
	maxRowspan = 65534
)

// colspanOf reads a colspan attribute. Missing, invalid or zero values count
// as 1; larger values are clamped to maxColspan.
func colspanOf(b *browser.Browser, el browser.Element) (int, error) {
	n, ok, err := spanAttr(b, el, "colspan")
	if err != nil || !ok || n < 1 {
		return 1, err
	}
	return min(n, maxColspan), nil
}

// rowspanOf reads a rowspan attribute. Zero means "to the last row" and is
// returned as 0; missing or invalid values count as 1 and larger values are
// clamped to maxRowspan.
func rowspanOf(b *browser.Browser, el browser.Element) (int, error) {
	n, ok, err := spanAttr(b, el, "rowspan")
	if err != nil || !ok || n < 0 {
		return 1, err
	}
	return min(n, maxRowspan), nil
}

func spanAttr(b *browser.Browser, el browser.Element, name string) (int, bool, error) {
	v, ok, err := b.Attribute(el, name)
	if err != nil || !ok {
		return 0, false, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, false, nil
	}
	return n, true, nil
}
