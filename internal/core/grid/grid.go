// Package grid holds the in-memory row/column table backing an open file.
//
// A Grid has a single owner. It is not safe for concurrent use; the loader
// hands parsed rows to the owner, which appends them here.
package grid

// Grid is an ordered sequence of rows of string cells. Rows may be ragged;
// Width reports the widest row seen and missing cells read as "".
type Grid struct {
	rows  [][]string
	width int
}

// New returns an empty grid with the given minimum width.
func New(width int) *Grid {
	return &Grid{width: max(width, 0)}
}

// Len returns the number of rows.
func (g *Grid) Len() int { return len(g.rows) }

// Width returns the column count: the widest row seen, or the width the
// grid was created or widened to.
func (g *Grid) Width() int { return g.width }

// Widen raises the column count to at least w.
func (g *Grid) Widen(w int) {
	if w > g.width {
		g.width = w
	}
}

// Append adds rows to the end of the grid, widening it if needed.
func (g *Grid) Append(rows ...[]string) {
	for _, r := range rows {
		g.Widen(len(r))
		g.rows = append(g.rows, r)
	}
}

// Rows returns the underlying rows. Callers must not modify them.
func (g *Grid) Rows() [][]string { return g.rows }

// InBounds reports whether (r, c) addresses a cell inside the grid.
func (g *Grid) InBounds(r, c int) bool {
	return r >= 0 && r < len(g.rows) && c >= 0 && c < g.width
}

// Cell returns the value at (r, c), or "" for cells beyond a short row or
// outside the grid.
func (g *Grid) Cell(r, c int) string {
	if r < 0 || r >= len(g.rows) || c < 0 {
		return ""
	}
	row := g.rows[r]
	if c >= len(row) {
		return ""
	}
	return row[c]
}

// Set stores v at (r, c), padding a short row. It reports whether the
// stored value changed. Out of range cells are ignored.
func (g *Grid) Set(r, c int, v string) bool {
	if !g.InBounds(r, c) {
		return false
	}
	row := g.rows[r]
	if c >= len(row) {
		if v == "" {
			return false
		}
		row = pad(row, c+1)
	}
	if row[c] == v {
		return false
	}
	row[c] = v
	g.rows[r] = row
	return true
}

// Clear empties the cell at (r, c).
func (g *Grid) Clear(r, c int) bool { return g.Set(r, c, "") }

// AddRow appends a blank row of the current width.
func (g *Grid) AddRow() {
	g.rows = append(g.rows, make([]string, g.width))
}

// AddColumn appends a column filled with def in every row.
func (g *Grid) AddColumn(def string) {
	col := g.width
	g.width++
	for i, row := range g.rows {
		row = pad(row, col)
		g.rows[i] = append(row, def)
	}
}

// DeleteRow removes row r. Out of range is a no-op.
func (g *Grid) DeleteRow(r int) bool {
	if r < 0 || r >= len(g.rows) {
		return false
	}
	g.rows = append(g.rows[:r], g.rows[r+1:]...)
	return true
}

// DeleteColumn removes column c from every row and shrinks the width.
func (g *Grid) DeleteColumn(c int) bool {
	if c < 0 || c >= g.width {
		return false
	}
	for i, row := range g.rows {
		if c < len(row) {
			g.rows[i] = append(row[:c], row[c+1:]...)
		}
	}
	g.width--
	return true
}

// Column returns the values of column c for every row.
func (g *Grid) Column(c int) []string {
	out := make([]string, len(g.rows))
	for i := range g.rows {
		out[i] = g.Cell(i, c)
	}
	return out
}

// Project returns row r restricted to the given column indices, in order.
func (g *Grid) Project(r int, cols []int) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = g.Cell(r, c)
	}
	return out
}

func pad(row []string, n int) []string {
	for len(row) < n {
		row = append(row, "")
	}
	return row
}
