package table_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/entrhq/widgetforge/pkg/browser"
	"github.com/entrhq/widgetforge/pkg/table"
	"github.com/entrhq/widgetforge/pkg/widget"
	"github.com/entrhq/widgetforge/pkg/widgets"
)

const mergedTable = `<html><body>
<table id="m">
<thead><tr><th>A</th><th>B</th><th>C</th></tr></thead>
<tbody>
<tr><td>a0</td><td colspan="2" rowspan="2"><input value="x"></td></tr>
<tr><td>a1</td></tr>
<tr><td>a2</td><td>b2</td><td>c2</td></tr>
</tbody>
</table>
</body></html>`

func TestMergedCellRoundTrip(t *testing.T) {
	tbl, _ := openTable(t, mergedTable, table.New("#m", table.WithColumnWidgets(map[any]widget.Declaration{
		"B": widgets.NewTextInput("input"),
	})))

	spans, err := tbl.HasRowSpans()
	require.NoError(t, err)
	assert.True(t, spans)

	positions := [][2]int{{0, 1}, {0, 2}, {1, 1}, {1, 2}}
	cellAt := func(pos [2]int) *table.Cell {
		r, err := tbl.RowAt(pos[0])
		require.NoError(t, err)
		c, err := r.Cell(pos[1])
		require.NoError(t, err)
		return c
	}

	origin := cellAt(positions[0])
	for _, pos := range positions[1:] {
		assert.Same(t, origin, cellAt(pos), "position %v", pos)
	}

	for i, pos := range positions {
		value := fmt.Sprintf("v%d", i)
		changed, err := cellAt(pos).Fill(value)
		require.NoError(t, err)
		assert.True(t, changed)

		for _, other := range positions {
			got, err := cellAt(other).Read()
			require.NoError(t, err)
			assert.Equal(t, value, got, "filled through %v, read through %v", pos, other)
		}
	}

	r1, err := tbl.RowAt(1)
	require.NoError(t, err)
	read, err := r1.Read()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"A": "a1", "B": "v3", "C": "v3"}, read)

	r2, err := tbl.Row(table.Equals("C", "c2"))
	require.NoError(t, err)
	assert.Equal(t, 2, r2.Index())
	assert.Equal(t, "b2", cellText(t, r2, "B"))

	rows, err := tbl.Rows(table.Equals("C", "v3"))
	require.NoError(t, err)
	assert.Len(t, rows, 2, "both rows covered by the merged cell match")

	tbl.FlushWidgetCache()
	assert.NotSame(t, origin, cellAt(positions[0]))
}

const oversizedSpans = `<html><body>
<table id="o"><tbody>
<tr><td colspan="20000000">wide</td><td rowspan="0">tall</td></tr>
<tr><td>x</td></tr>
<tr><td colspan="0">y</td></tr>
</tbody></table>
</body></html>`

func TestSpansAreClamped(t *testing.T) {
	tbl, _ := openTable(t, oversizedSpans, table.New("#o"))

	text := func(row, col int) string {
		r, err := tbl.RowAt(row)
		require.NoError(t, err)
		return cellText(t, r, col)
	}

	assert.Equal(t, "wide", text(0, 0))
	assert.Equal(t, "wide", text(0, 999))
	assert.Equal(t, "tall", text(0, 1000), "colspan is capped at 1000")

	first, err := tbl.RowAt(0)
	require.NoError(t, err)
	tall, err := first.Cell(1000)
	require.NoError(t, err)
	for row := 1; row < 3; row++ {
		r, err := tbl.RowAt(row)
		require.NoError(t, err)
		c, err := r.Cell(1000)
		require.NoError(t, err)
		assert.Same(t, tall, c, "rowspan=0 reaches row %d", row)
	}

	assert.Equal(t, "x", text(1, 0))
	assert.Equal(t, "y", text(2, 0))
	last, err := tbl.RowAt(2)
	require.NoError(t, err)
	_, err = last.Cell(1)
	assert.Error(t, err, "colspan=0 covers a single column")

	_, err = first.Cell(1001)
	assert.Error(t, err)
}

// layout is a random partition of a rows x cols grid into rectangles. Only
// cells that actually span carry span attributes, so single-cell layouts
// take the positional path.
type layout struct {
	rows, cols int
	owner      [][]string
	origins    [][]span
}

type span struct {
	label   string
	rowspan int
	colspan int
}

func drawLayout(rt *rapid.T) layout {
	l := layout{
		rows: rapid.IntRange(1, 5).Draw(rt, "rows"),
		cols: rapid.IntRange(1, 5).Draw(rt, "cols"),
	}
	l.owner = make([][]string, l.rows)
	for r := range l.owner {
		l.owner[r] = make([]string, l.cols)
	}
	l.origins = make([][]span, l.rows)

	free := func(r0, c0, rs, cs int) bool {
		for r := r0; r < r0+rs; r++ {
			for c := c0; c < c0+cs; c++ {
				if r >= l.rows || c >= l.cols || l.owner[r][c] != "" {
					return false
				}
			}
		}
		return true
	}

	for r := 0; r < l.rows; r++ {
		for c := 0; c < l.cols; c++ {
			if l.owner[r][c] != "" {
				continue
			}
			maxCS := 1
			for free(r, c, 1, maxCS+1) {
				maxCS++
			}
			cs := rapid.IntRange(1, maxCS).Draw(rt, fmt.Sprintf("colspan %d,%d", r, c))
			maxRS := 1
			for free(r, c, maxRS+1, cs) {
				maxRS++
			}
			rs := rapid.IntRange(1, maxRS).Draw(rt, fmt.Sprintf("rowspan %d,%d", r, c))

			label := fmt.Sprintf("r%dc%d", r, c)
			for dr := 0; dr < rs; dr++ {
				for dc := 0; dc < cs; dc++ {
					l.owner[r+dr][c+dc] = label
				}
			}
			l.origins[r] = append(l.origins[r], span{label: label, rowspan: rs, colspan: cs})
		}
	}
	return l
}

func (l layout) html() string {
	var sb strings.Builder
	sb.WriteString(`<html><body><table id="g"><tbody>`)
	for _, cells := range l.origins {
		sb.WriteString("<tr>")
		for _, s := range cells {
			sb.WriteString("<td")
			if s.rowspan > 1 {
				fmt.Fprintf(&sb, ` rowspan="%d"`, s.rowspan)
			}
			if s.colspan > 1 {
				fmt.Fprintf(&sb, ` colspan="%d"`, s.colspan)
			}
			fmt.Fprintf(&sb, ">%s</td>", s.label)
		}
		sb.WriteString("</tr>")
	}
	sb.WriteString("</tbody></table></body></html>")
	return sb.String()
}

func TestProperty_Grid_SpansResolveToOrigin(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		l := drawLayout(rt)

		d, err := browser.ParseDocument(l.html())
		require.NoError(rt, err)
		v, err := widget.DefineView("Page", widget.WithFields(widget.Fields{
			"grid": table.New("#g"),
		})).Open(browser.New(d))
		require.NoError(rt, err)
		w, err := v.Widget("grid")
		require.NoError(rt, err)
		tbl := w.(*table.Table)

		n, err := tbl.RowCount()
		require.NoError(rt, err)
		require.Equal(rt, l.rows, n)

		byLabel := map[string]*table.Cell{}
		for r := 0; r < l.rows; r++ {
			row, err := tbl.RowAt(r)
			require.NoError(rt, err)
			for c := 0; c < l.cols; c++ {
				cell, err := row.Cell(c)
				require.NoError(rt, err, "cell %d,%d", r, c)
				text, err := cell.Text()
				require.NoError(rt, err)
				require.Equal(rt, l.owner[r][c], text, "cell %d,%d", r, c)

				if prev, ok := byLabel[text]; ok {
					require.Same(rt, prev, cell, "cell %d,%d", r, c)
				}
				byLabel[text] = cell
			}
		}
	})
}
