// Package dashboard turns stream snapshots into rendered tables: column
// presets, locale formatting, highlight classes and the per-stream panel
// state machine.
package dashboard

import (
	"tablero/internal/domain"
	"tablero/internal/highlight"
)

// Column describes one table column.
type Column struct {
	Key    string
	Header string
	// Format renders a cell; nil uses FormatDefault. It receives the whole
	// row and its index so it can depend on sibling cells.
	Format func(v domain.Value, row domain.Row, index int) string
	// Class returns static class tokens for a cell, or "".
	Class func(v domain.Value, row domain.Row, index int) string
}

// Cell is one rendered cell. Span > 1 only occurs in footers.
type Cell struct {
	Text  string `json:"text"`
	Class string `json:"class,omitempty"`
	Span  int    `json:"span,omitempty"`
}

// Table is a fully rendered table: header, body and optional footer.
type Table struct {
	Header []string `json:"header"`
	Keys   []string `json:"keys"`
	Rows   [][]Cell `json:"rows"`
	Footer []Cell   `json:"footer,omitempty"`
}

// Empty reports whether the body has no rows.
func (t Table) Empty() bool { return len(t.Rows) == 0 }

// Render formats rows against columns and resolves every cell's class.
// footer, when non-nil, is called once to produce the final row.
func Render(columns []Column, rows []domain.Row, styles highlight.StyleMap, footer func() []Cell) Table {
	t := Table{
		Header: make([]string, len(columns)),
		Keys:   make([]string, len(columns)),
		Rows:   make([][]Cell, 0, len(rows)),
	}
	for i, col := range columns {
		t.Header[i] = col.Header
		t.Keys[i] = col.Key
	}

	for i, row := range rows {
		cells := make([]Cell, len(columns))
		for j, col := range columns {
			v := row.Get(col.Key)
			format := col.Format
			if format == nil {
				format = FormatDefault
			}
			cells[j] = Cell{
				Text:  format(v, row, i),
				Class: ResolveCellClass(styles, i, col, v, row),
			}
		}
		t.Rows = append(t.Rows, cells)
	}

	if footer != nil {
		t.Footer = footer()
	}
	return t
}
