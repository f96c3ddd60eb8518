package session

import (
	"slices"
)

// Cell addresses a grid cell; Col indexes AllColumns.
type Cell struct {
	Row int
	Col int
}

// EditCell stores value at (row, col).
func (s *Session) EditCell(row, col int, value string) error {
	if err := s.editable(); err != nil {
		return err
	}
	if !s.grid.InBounds(row, col) {
		return ErrInvalidCell
	}
	if s.grid.Set(row, col, value) {
		s.markChanged("edit cell")
	}
	return nil
}

// AddRow appends a blank row.
func (s *Session) AddRow() error {
	if err := s.editable(); err != nil {
		return err
	}
	s.grid.AddRow()
	s.markChanged("add row")
	return nil
}

// AddColumn appends a visible column named header with every cell set to
// def. A duplicate or empty header is rejected without any change.
func (s *Session) AddColumn(header, def string) error {
	if err := s.editable(); err != nil {
		return err
	}
	if err := s.cols.OnColumnAdded(header); err != nil {
		return err
	}
	s.grid.AddColumn(def)
	s.markChanged("add column")
	return nil
}

// DeleteRows removes the given rows. Every index is checked before any row
// is removed; repeated indices are removed once.
func (s *Session) DeleteRows(rows ...int) error {
	if err := s.editable(); err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	for _, r := range rows {
		if r < 0 || r >= s.grid.Len() {
			return ErrInvalidCell
		}
	}

	sorted := slices.Clone(rows)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)
	for i := len(sorted) - 1; i >= 0; i-- {
		s.grid.DeleteRow(sorted[i])
	}
	s.markChanged("delete rows")
	return nil
}

// DeleteColumns removes the named columns from the grid and from the
// header lists. Names that do not exist are skipped.
func (s *Session) DeleteColumns(headers ...string) error {
	if err := s.editable(); err != nil {
		return err
	}

	deleted := false
	for _, h := range headers {
		idx := s.cols.Index(h)
		if idx < 0 {
			continue
		}
		s.grid.DeleteColumn(idx)
		s.cols.OnColumnDeleted(h)
		deleted = true
	}
	if deleted {
		s.markChanged("delete columns")
	}
	return nil
}

// ClearCells empties the given cells. Every position is checked first.
func (s *Session) ClearCells(cells ...Cell) error {
	if err := s.editable(); err != nil {
		return err
	}
	for _, c := range cells {
		if !s.grid.InBounds(c.Row, c.Col) {
			return ErrInvalidCell
		}
	}

	cleared := false
	for _, c := range cells {
		if s.grid.Clear(c.Row, c.Col) {
			cleared = true
		}
	}
	if cleared {
		s.markChanged("clear cells")
	}
	return nil
}

// ApplyVisibility shows exactly the selected headers. Unknown names are
// ignored. It reports whether the visible set changed; only a change marks
// the file changed.
func (s *Session) ApplyVisibility(selected []string) (bool, error) {
	if err := s.editable(); err != nil {
		return false, err
	}
	if !s.cols.ApplyVisibility(selected) {
		return false, nil
	}
	s.markChanged("apply visibility")
	return true, nil
}
