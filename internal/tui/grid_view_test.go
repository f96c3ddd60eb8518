package tui

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/tabula/pkg/tuitest"
)

// fakeGrid is a fixed table where every column is visible unless hidden.
type fakeGrid struct {
	headers []string
	rows    [][]string
	hidden  map[int]bool
}

func (f fakeGrid) RowCount() int { return len(f.rows) }

func (f fakeGrid) VisibleColumns() []string {
	var out []string
	for _, i := range f.VisibleIndices() {
		out = append(out, f.headers[i])
	}
	return out
}

func (f fakeGrid) VisibleIndices() []int {
	var out []int
	for i := range f.headers {
		if !f.hidden[i] {
			out = append(out, i)
		}
	}
	return out
}

func (f fakeGrid) Cell(r, c int) string {
	if r >= len(f.rows) || c >= len(f.rows[r]) {
		return ""
	}
	return f.rows[r][c]
}

func wideGrid(rows, cols int) fakeGrid {
	g := fakeGrid{}
	for c := range cols {
		g.headers = append(g.headers, fmt.Sprintf("col%02d", c))
	}
	for r := range rows {
		row := make([]string, cols)
		for c := range cols {
			row[c] = fmt.Sprintf("r%dc%d", r, c)
		}
		g.rows = append(g.rows, row)
	}
	return g
}

func TestGridView_Sync(t *testing.T) {
	src := wideGrid(100, 20)

	t.Run("clamps to data", func(t *testing.T) {
		g := gridView{width: 80, height: 12}
		g.Move(-5, -5, src)
		r, c := g.Cursor()
		assert.Equal(t, 0, r)
		assert.Equal(t, 0, c)

		g.Move(500, 500, src)
		r, c = g.Cursor()
		assert.Equal(t, 99, r)
		assert.Equal(t, 19, c)
	})

	t.Run("scrolls rows into view", func(t *testing.T) {
		g := gridView{width: 80, height: 12}
		g.MoveTo(25, 0, src)
		assert.Equal(t, 25-g.bodyRows()+1, g.rowOff)

		g.MoveTo(3, 0, src)
		assert.Equal(t, 3, g.rowOff)
	})

	t.Run("scrolls columns into view", func(t *testing.T) {
		g := gridView{width: 40, height: 12}
		g.MoveTo(0, 15, src)
		require.Greater(t, g.colOff, 0)
		assert.LessOrEqual(t, g.colOff, 15)
		assert.Equal(t, 15, g.lastFitting(g.columnWidths(src), src.RowCount()))
	})

	t.Run("page moves by body rows", func(t *testing.T) {
		g := gridView{width: 80, height: 12}
		g.Page(1, src)
		r, _ := g.Cursor()
		assert.Equal(t, g.bodyRows(), r)
	})

	t.Run("empty table", func(t *testing.T) {
		g := gridView{width: 80, height: 12}
		g.Move(3, 3, fakeGrid{})
		r, c := g.Cursor()
		assert.Equal(t, 0, r)
		assert.Equal(t, 0, c)
	})
}

func TestGridView_CursorColumn(t *testing.T) {
	src := wideGrid(3, 4)
	src.hidden = map[int]bool{1: true}

	g := gridView{width: 80, height: 12}
	g.MoveTo(0, 1, src)
	assert.Equal(t, 2, g.CursorColumn(src), "second visible column is column 2")
}

func TestGridView_View(t *testing.T) {
	src := fakeGrid{
		headers: []string{"name", "age", "city"},
		rows: [][]string{
			{"Alice", "30", "Paris"},
			{"Bob", "25"},
		},
		hidden: map[int]bool{1: true},
	}

	g := gridView{width: 80, height: 10}
	g.Sync(src)
	view := tuitest.StripANSI(g.View(src, nil))

	assert.Contains(t, view, "name")
	assert.Contains(t, view, "city")
	assert.NotContains(t, view, "age")
	assert.Contains(t, view, "Alice")
	assert.Contains(t, view, "Paris")

	lines := strings.Split(view, "\n")
	assert.Len(t, lines, 4, "header, rule, two rows")

	t.Run("all hidden", func(t *testing.T) {
		hidden := src
		hidden.hidden = map[int]bool{0: true, 1: true, 2: true}
		assert.Contains(t, tuitest.StripANSI(g.View(hidden, nil)), "all columns hidden")
	})

	t.Run("no rows", func(t *testing.T) {
		empty := fakeGrid{headers: []string{"a"}}
		assert.Contains(t, tuitest.StripANSI(g.View(empty, nil)), "no rows")
	})
}

func TestFitCell(t *testing.T) {
	assert.Equal(t, "ab ", fitCell("ab", 3))
	assert.Equal(t, "ab…", fitCell("abcdef", 3))
	assert.Equal(t, "a⏎b", fitCell("a\nb", 3))
}
