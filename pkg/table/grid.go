package table

// origin is a DOM cell as found in pass one: its position among the cells
// of its row and the area it spans. A rowspan of 0 runs to the last row.
type origin struct {
	dom     int
	rowspan int
	colspan int
}

// grid maps (row, column) positions to cells. Rows are indexed by DOM body
// row, ignored rows included, since spans may start in them. Positions
// covered by a spanning cell reference its origin cell.
type grid struct {
	slots [][]*Cell
}

func (g *grid) at(row, col int) *Cell {
	if row < 0 || row >= len(g.slots) || col < 0 || col >= len(g.slots[row]) {
		return nil
	}
	return g.slots[row][col]
}

func (g *grid) set(row, col int, c *Cell) {
	for len(g.slots[row]) <= col {
		g.slots[row] = append(g.slots[row], nil)
	}
	g.slots[row][col] = c
}

func (g *grid) taken(row, col int) bool {
	return col < len(g.slots[row]) && g.slots[row][col] != nil
}

func (g *grid) width(row int) int {
	if row < 0 || row >= len(g.slots) {
		return 0
	}
	return len(g.slots[row])
}

// buildGrid reconstructs the logical grid of a table with merged cells.
//
// Pass one collects, per body row, the origin cells in DOM order with their
// spans. Pass two walks rows top to bottom, places each origin at the first
// column not already covered by a span from an earlier row, and records a
// reference to it at every other position it covers. Positions are not
// assigned during pass one because a row's layout depends on spans that
// start in the rows above it.
func (t *Table) buildGrid() (*grid, error) {
	if t.grid != nil {
		return t.grid, nil
	}
	b := t.Browser()
	tableEl, err := t.Element()
	if err != nil {
		return nil, err
	}
	rowEls, err := b.Elements(bodyRowsLoc, tableEl, false)
	if err != nil {
		return nil, err
	}

	raw := make([][]origin, len(rowEls))
	for r, rowEl := range rowEls {
		cellEls, err := b.Elements(cellsLoc, rowEl, false)
		if err != nil {
			return nil, err
		}
		for k, el := range cellEls {
			rs, err := rowspanOf(b, el)
			if err != nil {
				return nil, err
			}
			cs, err := colspanOf(b, el)
			if err != nil {
				return nil, err
			}
			raw[r] = append(raw[r], origin{dom: k, rowspan: rs, colspan: cs})
		}
	}

	g := &grid{slots: make([][]*Cell, len(rowEls))}
	refs := 0
	for r, cells := range raw {
		row, err := t.rowByDOM(r)
		if err != nil {
			return nil, err
		}
		col := 0
		for _, o := range cells {
			for g.taken(r, col) {
				col++
			}
			cell, err := row.newCell(o.dom, col)
			if err != nil {
				return nil, err
			}
			rowspan := o.rowspan
			if rowspan == 0 {
				rowspan = len(g.slots) - r
			}
			for dr := 0; dr < rowspan && r+dr < len(g.slots); dr++ {
				for dc := 0; dc < o.colspan; dc++ {
					g.set(r+dr, col+dc, cell)
					if dr > 0 || dc > 0 {
						refs++
					}
				}
			}
			col += o.colspan
		}
	}

	t.Logger().Debugf("built cell grid: %d rows, %d merged positions", len(rowEls), refs)
	t.grid = g
	return g, nil
}
