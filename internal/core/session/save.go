package session

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/colonyops/tabula/internal/core/csvio"
	"github.com/colonyops/tabula/internal/core/plot"
)

// CloseDecision tells Close what to do with unsaved changes.
type CloseDecision int

const (
	CloseSave CloseDecision = iota
	CloseDiscard
)

// WriteVisible writes the visible projection as CSV to w.
func (s *Session) WriteVisible(w io.Writer) error {
	return csvio.Write(w, s.cols.All(), s.grid.Rows(), s.cols.VisibleIndices())
}

// Save writes the visible projection to path, or to Path when path is
// empty. Hidden columns are left out of the file but kept in memory. On
// success the changed flag is cleared and path becomes the session path.
// A partially loaded file can only be saved to a different path.
func (s *Session) Save(path string) error {
	if err := s.editable(); err != nil {
		return err
	}
	return s.save(path)
}

func (s *Session) save(path string) error {
	if path == "" {
		path = s.path
	}
	if s.partial && samePath(path, s.path) {
		s.log.Warn().Ctx(s.ctx).Str("path", path).Msg("refusing to overwrite source of a partial load")
		return fmt.Errorf("%w: %s", ErrPartialLoad, path)
	}

	visible := len(s.cols.VisibleIndices())
	if visible == 0 {
		s.log.Warn().Ctx(s.ctx).Str("path", path).Msg("saving with no visible columns, file will be empty")
	}

	if err := csvio.WriteFileAtomic(path, s.WriteVisible); err != nil {
		s.log.Error().Ctx(s.ctx).Err(err).Str("path", path).Msg("save failed")
		return &SaveIOError{Path: path, Err: err}
	}

	s.path = path
	s.partial = false
	s.changed = false
	s.state = Ready
	s.log.Info().Ctx(s.ctx).
		Str("path", path).
		Int("rows", s.grid.Len()).
		Int("columns", visible).
		Msg("file saved")
	return nil
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return a == b
	}
	return absA == absB
}

// NeedsSaveDecision reports whether closing would lose changes.
func (s *Session) NeedsSaveDecision() bool {
	return s.Editable() && s.changed
}

// Close ends the session. With CloseSave unsaved changes are written to
// Path first; if that fails the session stays open in Modified and the
// *SaveIOError is returned. CloseDiscard drops them.
func (s *Session) Close(decision CloseDecision) error {
	if err := s.editable(); err != nil {
		return err
	}

	s.state = Closing
	if s.changed && decision == CloseSave {
		if err := s.save(""); err != nil {
			s.state = Modified
			return err
		}
	}

	s.log.Info().Ctx(s.ctx).Bool("discarded", s.changed).Msg("file closed")
	s.reset()
	return nil
}

// PlotData returns the named columns as a plot series.
func (s *Session) PlotData(xHeader, yHeader string) (plot.Series, error) {
	if err := s.editable(); err != nil {
		return plot.Series{}, err
	}

	x, err := s.Column(xHeader)
	if err != nil {
		return plot.Series{}, fmt.Errorf("%w: %q", err, xHeader)
	}
	y, err := s.Column(yHeader)
	if err != nil {
		return plot.Series{}, fmt.Errorf("%w: %q", err, yHeader)
	}

	return plot.Series{XLabel: xHeader, YLabel: yHeader, X: x, Y: y}, nil
}
