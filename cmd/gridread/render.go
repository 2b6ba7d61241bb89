package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"
	"gopkg.in/yaml.v3"

	"github.com/entrhq/widgetforge/pkg/table"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// renderYAML writes the table read: a list of row maps, or a map of row maps
// keyed by the associative column.
func renderYAML(w io.Writer, tbl *table.Table) error {
	value, err := tbl.Read()
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(value); err != nil {
		return fmt.Errorf("failed to encode table: %w", err)
	}
	return enc.Close()
}

// renderGrid draws the logical cell grid. A merged cell's text shows at every
// position it covers.
func renderGrid(w io.Writer, tbl *table.Table) error {
	headers, rows, err := gridText(tbl)
	if err != nil {
		return err
	}

	t := lgtable.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == lgtable.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Rows(rows...)
	if len(headers) > 0 {
		t = t.Headers(headers...)
	}

	_, err = fmt.Fprintln(w, t.Render())
	return err
}

// gridText reads every visible row as cell text. Untitled tables get index
// headers sized to the widest row.
func gridText(tbl *table.Table) ([]string, [][]string, error) {
	headers, err := tbl.Headers()
	if err != nil {
		return nil, nil, err
	}
	rows, err := tbl.AllRows()
	if err != nil {
		return nil, nil, err
	}

	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		n := len(headers)
		if n == 0 {
			read, err := r.Read()
			if err != nil {
				return nil, nil, err
			}
			n = len(read.(map[string]any))
		}
		line := make([]string, 0, n)
		for col := 0; col < n; col++ {
			c, err := r.Cell(col)
			if err != nil {
				return nil, nil, err
			}
			text, err := c.Text()
			if err != nil {
				return nil, nil, err
			}
			line = append(line, text)
		}
		out = append(out, line)
	}

	if len(headers) == 0 {
		n := 0
		for _, line := range out {
			n = max(n, len(line))
		}
		for i := 0; i < n; i++ {
			headers = append(headers, strconv.Itoa(i))
		}
	}
	return headers, out, nil
}
