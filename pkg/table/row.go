package table

import (
	"fmt"
	"strconv"

	"github.com/entrhq/widgetforge/pkg/browser"
	"github.com/entrhq/widgetforge/pkg/widget"
)

// Row is a body row. Index counts visible rows; ignored top rows come before
// index 0.
type Row struct {
	widget.Base
	table *Table
	index int
	dom   int
	cells map[int]*Cell
}

// Index returns the row position among visible rows.
func (r *Row) Index() int { return r.index }

// Table returns the owning table.
func (r *Row) Table() *Table { return r.table }

// Cell returns the cell at column col (index or header name). In tables
// with merged cells every grid position covered by a spanning cell returns
// the same *Cell.
func (r *Row) Cell(col any) (*Cell, error) {
	idx, err := r.table.ColumnIndex(col)
	if err != nil {
		return nil, err
	}
	return r.cellAt(idx)
}

func (r *Row) cellAt(col int) (*Cell, error) {
	spans, err := r.table.HasRowSpans()
	if err != nil {
		return nil, err
	}
	if spans {
		g, err := r.table.buildGrid()
		if err != nil {
			return nil, err
		}
		c := g.at(r.dom, col)
		if c == nil {
			return nil, fmt.Errorf("%w: %s has no cell at column %d", browser.ErrNoSuchElement, r.Name(), col)
		}
		return c, nil
	}

	if c, ok := r.cells[col]; ok {
		return c, nil
	}
	c, err := r.newCell(col, col)
	if err != nil {
		return nil, err
	}
	r.cells[col] = c
	return c, nil
}

// newCell binds a cell located by its DOM position within this row and
// placed at grid column col.
func (r *Row) newCell(dom, col int) (*Cell, error) {
	c := &Cell{table: r.table, row: r, column: col}
	if err := c.Init(c, r, r.table.columnKey(col), cellXPath(dom)); err != nil {
		return nil, err
	}
	return c, nil
}

// Widget looks a cell up by column name, so rows work with widget.Lookup.
func (r *Row) Widget(name string) (widget.Widget, error) {
	c, err := r.Cell(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", widget.ErrUnknownWidget, err)
	}
	return c, nil
}

func (r *Row) width() (int, error) {
	headers, err := r.table.Headers()
	if err != nil {
		return 0, err
	}
	if len(headers) > 0 {
		return len(headers), nil
	}

	spans, err := r.table.HasRowSpans()
	if err != nil {
		return 0, err
	}
	if spans {
		g, err := r.table.buildGrid()
		if err != nil {
			return 0, err
		}
		return g.width(r.dom), nil
	}
	el, err := r.Element()
	if err != nil {
		return 0, err
	}
	cells, err := r.Browser().Elements(cellsLoc, el, false)
	if err != nil {
		return 0, err
	}
	return len(cells), nil
}

// Read maps column keys to cell reads. Untitled columns are keyed by index.
func (r *Row) Read() (any, error) {
	n, err := r.width()
	if err != nil {
		return nil, err
	}
	out := make(map[string]any, n)
	for col := 0; col < n; col++ {
		c, err := r.cellAt(col)
		if err != nil {
			return nil, err
		}
		v, err := c.Read()
		if err != nil {
			return nil, err
		}
		out[r.table.columnKey(col)] = v
	}
	return out, nil
}

// Fill takes a map keyed by column (index string, header or attributized
// header) or a positional list. Nil values are skipped. Columns past the end
// of the row fail with ErrUnknownColumn before anything is filled.
func (r *Row) Fill(value any) (bool, error) {
	values, err := asRowValues(value)
	if err != nil {
		return false, fmt.Errorf("%s: %w", r.Name(), err)
	}

	n, err := r.width()
	if err != nil {
		return false, err
	}
	cols := make(map[int]any, len(values))
	for key, v := range values {
		if v == nil {
			continue
		}
		idx, err := r.table.ColumnIndex(key)
		if err != nil {
			return false, fmt.Errorf("%s: %w", r.Name(), err)
		}
		if idx >= n {
			return false, fmt.Errorf("%s: %w: index %d of %d", r.Name(), ErrUnknownColumn, idx, n)
		}
		cols[idx] = v
	}

	changed := false
	for col := 0; col < n; col++ {
		v, ok := cols[col]
		if !ok {
			continue
		}
		c, err := r.cellAt(col)
		if err != nil {
			return false, err
		}
		ch, err := c.Fill(v)
		if err != nil {
			return false, fmt.Errorf("%s: %w", r.Name(), err)
		}
		changed = changed || ch
	}
	return changed, nil
}

// keyOf reads the cell at col as a string, the value filters and
// associative keys compare against.
func (r *Row) keyOf(col int) (string, error) {
	c, err := r.cellAt(col)
	if err != nil {
		return "", err
	}
	v, err := c.Read()
	if err != nil {
		return "", err
	}
	return fmt.Sprint(v), nil
}

// attribute reads an attribute of the row element.
func (r *Row) attribute(name string) (string, bool, error) {
	el, err := r.Element()
	if err != nil {
		return "", false, err
	}
	return r.Browser().Attribute(el, name)
}

func (r *Row) matches(groups []filterGroup) (bool, error) {
	for _, g := range groups {
		var (
			value string
			ok    = true
			err   error
		)
		if g.attr != "" {
			value, ok, err = r.attribute(g.attr)
		} else {
			value, err = r.keyOf(g.column)
		}
		if err != nil {
			return false, err
		}
		if !ok || !g.any(value) {
			return false, nil
		}
	}
	return true, nil
}

// asRowValues copies a row fill value into a map keyed by column.
func asRowValues(value any) (map[string]any, error) {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, val := range v {
			out[k] = val
		}
		return out, nil
	case map[string]string:
		out := make(map[string]any, len(v))
		for k, val := range v {
			out[k] = val
		}
		return out, nil
	case []any:
		out := make(map[string]any, len(v))
		for i, val := range v {
			out[strconv.Itoa(i)] = val
		}
		return out, nil
	case []string:
		out := make(map[string]any, len(v))
		for i, val := range v {
			out[strconv.Itoa(i)] = val
		}
		return out, nil
	}
	return nil, fmt.Errorf("row fill needs a map or list, got %T", value)
}

// Cell is one table cell. Cells covering several grid positions are shared
// by every position they cover.
type Cell struct {
	widget.Base
	table  *Table
	row    *Row
	column int
	inner  widget.Widget
}

// Column returns the grid column of the cell's origin.
func (c *Cell) Column() int { return c.column }

// Row returns the row the cell starts in.
func (c *Cell) Row() *Row { return c.row }

// Text returns the normalized cell text.
func (c *Cell) Text() (string, error) {
	el, err := c.Element()
	if err != nil {
		return "", err
	}
	text, err := c.Browser().Text(el)
	if err != nil {
		return "", err
	}
	return normalizeSpace(text), nil
}

// Embedded returns the column widget bound inside this cell, or nil when
// the column declares none.
func (c *Cell) Embedded() (widget.Widget, error) {
	if c.inner != nil {
		return c.inner, nil
	}
	decl, err := c.table.columnWidget(c.column)
	if err != nil || decl == nil {
		return nil, err
	}
	w, err := widget.Instantiate(decl, c, c.Name())
	if err != nil {
		return nil, err
	}
	c.inner = w
	return w, nil
}

// displayedWidget returns the embedded widget when it is currently shown.
func (c *Cell) displayedWidget() (widget.Widget, error) {
	w, err := c.Embedded()
	if err != nil || w == nil {
		return nil, err
	}
	shown, err := w.IsDisplayed()
	if err != nil || !shown {
		return nil, err
	}
	return w, nil
}

// Read prefers the displayed column widget and falls back to the text.
func (c *Cell) Read() (any, error) {
	w, err := c.displayedWidget()
	if err != nil {
		return nil, err
	}
	if w != nil {
		return widget.Read(w)
	}
	return c.Text()
}

// Fill fills the displayed column widget. A cell without one accepts only
// the value it already shows.
func (c *Cell) Fill(value any) (bool, error) {
	w, err := c.displayedWidget()
	if err != nil {
		return false, err
	}
	if w != nil {
		return widget.Fill(w, value)
	}

	text, err := c.Text()
	if err != nil {
		return false, err
	}
	if text == fmt.Sprint(value) {
		return false, nil
	}
	return false, fmt.Errorf("%w: %s holds %q, asked for %v", ErrCellNotFillable, c.Name(), text, value)
}

func (c *Cell) Click() error {
	el, err := c.Element()
	if err != nil {
		return err
	}
	return c.Browser().Click(el)
}

// FlushWidgetCache drops the embedded widget.
func (c *Cell) FlushWidgetCache() { c.inner = nil }
