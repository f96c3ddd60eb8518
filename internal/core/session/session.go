// Package session owns the open file: its grid, its column visibility
// model, the changed flag, and the state machine that gates every edit.
//
//	NoFile -> Loading -> Ready <-> Modified -> Closing -> NoFile
//
// A Session belongs to a single goroutine. Background loads reach it only
// through ApplyBatch and FinishLoad, called by the owner.
package session

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/colonyops/tabula/internal/core/columns"
	"github.com/colonyops/tabula/internal/core/grid"
	"github.com/colonyops/tabula/internal/core/loader"
	"github.com/colonyops/tabula/internal/core/logging"
)

// State is the lifecycle position of a session.
type State int

const (
	NoFile State = iota
	Loading
	Ready
	Modified
	Closing
)

func (s State) String() string {
	switch s {
	case NoFile:
		return "no file"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Modified:
		return "modified"
	case Closing:
		return "closing"
	default:
		return "unknown"
	}
}

// Session is the editing state of at most one file.
type Session struct {
	loader   *loader.Loader
	observer Observer
	log      zerolog.Logger

	state    State
	id       string
	ctx      context.Context
	path     string
	load     *loader.Load
	progress loader.Progress
	partial  bool
	changed  bool

	grid *grid.Grid
	cols *columns.Model
}

// New returns a session in the NoFile state. A nil observer is allowed.
func New(l *loader.Loader, obs Observer) *Session {
	if obs == nil {
		obs = ObserverFuncs{}
	}
	s := &Session{
		loader:   l,
		observer: obs,
		log:      logging.Component("session"),
	}
	s.reset()
	return s
}

func (s *Session) reset() {
	s.state = NoFile
	s.id = ""
	s.ctx = context.Background()
	s.path = ""
	s.load = nil
	s.progress = loader.Progress{}
	s.partial = false
	s.changed = false
	s.grid = grid.New(0)
	s.cols = columns.New(nil)
}

func (s *Session) State() State { return s.state }

// ID is the identifier minted when the current file was opened.
func (s *Session) ID() string { return s.id }

// Context carries the session id and source for log events.
func (s *Session) Context() context.Context { return s.ctx }

// Path is the file the session was loaded from or last saved to.
func (s *Session) Path() string { return s.path }

// Changed reports the file changed flag.
func (s *Session) Changed() bool { return s.changed }

// Partial reports whether the last load stopped early. The grid then holds
// only the rows read before the failure.
func (s *Session) Partial() bool { return s.partial }

// Progress returns the most recent load progress.
func (s *Session) Progress() loader.Progress { return s.progress }

// Editable reports whether mutations are currently accepted.
func (s *Session) Editable() bool {
	return s.state == Ready || s.state == Modified
}

func (s *Session) RowCount() int { return s.grid.Len() }

func (s *Session) ColumnCount() int { return s.cols.Len() }

// Cell returns the value at (row, col) where col indexes AllColumns.
func (s *Session) Cell(row, col int) string { return s.grid.Cell(row, col) }

// Column returns every value in the named column.
func (s *Session) Column(header string) ([]string, error) {
	idx := s.cols.Index(header)
	if idx < 0 {
		return nil, ErrUnknownColumn
	}
	return s.grid.Column(idx), nil
}

// AllColumns returns every header in order.
func (s *Session) AllColumns() []string { return s.cols.All() }

// VisibleColumns returns the visible headers in AllColumns order.
func (s *Session) VisibleColumns() []string { return s.cols.Visible() }

// VisibleIndices returns the AllColumns positions of the visible headers.
func (s *Session) VisibleIndices() []int { return s.cols.VisibleIndices() }

// ColumnFlags returns a copy of the header to visible mapping.
func (s *Session) ColumnFlags() map[string]bool { return s.cols.Flags() }

// ColumnIndex returns the AllColumns position of header, or -1.
func (s *Session) ColumnIndex(header string) int { return s.cols.Index(header) }

// Stats summarises the session for status displays.
type Stats struct {
	State          State
	Source         string
	Rows           int
	Columns        int
	VisibleColumns int
	Changed        bool
	Partial        bool
	Progress       loader.Progress
}

func (s *Session) Stats() Stats {
	return Stats{
		State:          s.state,
		Source:         s.path,
		Rows:           s.grid.Len(),
		Columns:        s.cols.Len(),
		VisibleColumns: len(s.cols.VisibleIndices()),
		Changed:        s.changed,
		Partial:        s.partial,
		Progress:       s.progress,
	}
}

func (s *Session) editable() error {
	switch s.state {
	case Ready, Modified:
		return nil
	case Loading:
		return ErrLoadInProgress
	default:
		return ErrNoFile
	}
}

func (s *Session) markChanged(op string) {
	if !s.changed {
		s.log.Debug().Ctx(s.ctx).Str("op", op).Msg("file marked changed")
	}
	s.changed = true
	s.state = Modified
}
