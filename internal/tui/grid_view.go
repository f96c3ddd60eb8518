package tui

import (
	"strconv"
	"strings"

	lipgloss "charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/colonyops/tabula/internal/core/styles"
)

const (
	minCellWidth = 3
	maxCellWidth = 32
	// cellChrome is the horizontal padding of a cell plus its separator.
	cellChrome = 3
	// gridChrome is the header line plus the rule below it.
	gridChrome = 2
)

// gridSource is the read side of a session used for rendering.
type gridSource interface {
	RowCount() int
	VisibleColumns() []string
	VisibleIndices() []int
	Cell(row, col int) string
}

// gridView holds the cursor and scroll offsets of the table. Columns are
// addressed by position among the visible columns.
type gridView struct {
	row, col       int
	rowOff, colOff int
	width, height  int
}

// SetSize sets the area available to the table.
func (g *gridView) SetSize(width, height int) {
	g.width = width
	g.height = height
}

// bodyRows is how many data rows fit below the header.
func (g *gridView) bodyRows() int {
	return max(g.height-gridChrome, 1)
}

// Move shifts the cursor and keeps it inside the table.
func (g *gridView) Move(dr, dc int, src gridSource) {
	g.row += dr
	g.col += dc
	g.Sync(src)
}

// MoveTo places the cursor.
func (g *gridView) MoveTo(row, col int, src gridSource) {
	g.row, g.col = row, col
	g.Sync(src)
}

// Page moves the cursor by whole screens.
func (g *gridView) Page(n int, src gridSource) {
	g.Move(n*g.bodyRows(), 0, src)
}

// Reset returns the cursor to the top left.
func (g *gridView) Reset() {
	g.row, g.col, g.rowOff, g.colOff = 0, 0, 0, 0
}

// Sync clamps the cursor to the data and scrolls it into view.
func (g *gridView) Sync(src gridSource) {
	rows := src.RowCount()
	cols := len(src.VisibleIndices())

	g.row = clamp(g.row, 0, rows-1)
	g.col = clamp(g.col, 0, cols-1)

	body := g.bodyRows()
	if g.row < g.rowOff {
		g.rowOff = g.row
	}
	if g.row >= g.rowOff+body {
		g.rowOff = g.row - body + 1
	}
	g.rowOff = clamp(g.rowOff, 0, max(rows-body, 0))

	if g.col < g.colOff {
		g.colOff = g.col
	}
	widths := g.columnWidths(src)
	for g.colOff < g.col && g.lastFitting(widths, src.RowCount()) < g.col {
		g.colOff++
	}
	g.colOff = clamp(g.colOff, 0, max(cols-1, 0))
}

// Cursor returns the cursor row and visible column position.
func (g *gridView) Cursor() (int, int) { return g.row, g.col }

// CursorColumn maps the cursor to an index into all columns, or -1.
func (g *gridView) CursorColumn(src gridSource) int {
	idx := src.VisibleIndices()
	if g.col < 0 || g.col >= len(idx) {
		return -1
	}
	return idx[g.col]
}

// columnWidths measures each visible column over the rows on screen.
func (g *gridView) columnWidths(src gridSource) []int {
	headers := src.VisibleColumns()
	idx := src.VisibleIndices()
	last := min(g.rowOff+g.bodyRows(), src.RowCount())

	widths := make([]int, len(idx))
	for i, c := range idx {
		w := ansi.StringWidth(sanitizeCell(headers[i]))
		for r := g.rowOff; r < last; r++ {
			w = max(w, ansi.StringWidth(sanitizeCell(src.Cell(r, c))))
		}
		widths[i] = clamp(w, minCellWidth, maxCellWidth)
	}
	return widths
}

func gutterWidth(rows int) int {
	return len(strconv.Itoa(max(rows, 1)))
}

// lastFitting returns the last visible column position, starting at colOff,
// that fits in the width. At least one column is always shown.
func (g *gridView) lastFitting(widths []int, rows int) int {
	used := gutterWidth(rows) + 1
	last := g.colOff
	for i := g.colOff; i < len(widths); i++ {
		used += widths[i] + cellChrome
		if used > g.width && i > g.colOff {
			break
		}
		last = i
	}
	return last
}

// View renders the visible part of the table.
func (g *gridView) View(src gridSource, marked []string) string {
	headers := src.VisibleColumns()
	if len(headers) == 0 {
		return styles.EmptyStateStyle.Render("all columns hidden, press v to choose columns")
	}

	idx := src.VisibleIndices()
	widths := g.columnWidths(src)
	lastCol := g.lastFitting(widths, src.RowCount())
	gutter := gutterWidth(src.RowCount())
	sep := styles.DividerStyle.Render("│")

	var b strings.Builder

	b.WriteString(styles.RowNumberStyle.Render(strings.Repeat(" ", gutter)))
	for i := g.colOff; i <= lastCol; i++ {
		style := styles.HeaderCellStyle
		if containsString(marked, headers[i]) {
			style = styles.MarkedHeaderStyle
		}
		b.WriteString(sep)
		b.WriteString(style.Render(fitCell(headers[i], widths[i])))
	}
	b.WriteByte('\n')

	ruleWidth := gutter + 1
	for i := g.colOff; i <= lastCol; i++ {
		ruleWidth += widths[i] + cellChrome
	}
	b.WriteString(styles.DividerStyle.Render(strings.Repeat("─", ruleWidth)))

	last := min(g.rowOff+g.bodyRows(), src.RowCount())
	for r := g.rowOff; r < last; r++ {
		b.WriteByte('\n')
		num := strconv.Itoa(r + 1)
		b.WriteString(styles.RowNumberStyle.Render(strings.Repeat(" ", gutter-len(num)) + num))
		for i := g.colOff; i <= lastCol; i++ {
			style := styles.CellStyle
			if r == g.row && i == g.col {
				style = styles.CursorCellStyle
			}
			b.WriteString(sep)
			b.WriteString(style.Render(fitCell(src.Cell(r, idx[i]), widths[i])))
		}
	}

	if src.RowCount() == 0 {
		b.WriteByte('\n')
		b.WriteString(styles.EmptyStateStyle.Render("no rows, press r to add one"))
	}

	return lipgloss.NewStyle().MaxWidth(g.width).Render(b.String())
}

// fitCell truncates or pads s to exactly w cells.
func fitCell(s string, w int) string {
	s = ansi.Truncate(sanitizeCell(s), w, "…")
	if pad := w - ansi.StringWidth(s); pad > 0 {
		s += strings.Repeat(" ", pad)
	}
	return s
}

var cellReplacer = strings.NewReplacer("\r\n", "⏎", "\n", "⏎", "\r", "⏎", "\t", " ")

func sanitizeCell(s string) string {
	return cellReplacer.Replace(s)
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return min(max(v, lo), hi)
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
