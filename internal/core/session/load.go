package session

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/colonyops/tabula/internal/core/loader"
	"github.com/colonyops/tabula/internal/core/logging"
)

// BeginLoad starts loading path. It is accepted only in the NoFile state;
// an open file must be closed first. When the file cannot be opened the
// session stays in NoFile and the error wraps loader.ErrSourceUnavailable.
//
// The caller feeds every batch of the returned load to ApplyBatch and the
// Done result to FinishLoad, or uses Drain.
func (s *Session) BeginLoad(ctx context.Context, path string) (*loader.Load, error) {
	return s.BeginLoadSource(ctx, path, loader.FileOpener(path))
}

// BeginLoadSource is BeginLoad over an arbitrary source.
func (s *Session) BeginLoadSource(ctx context.Context, name string, open loader.Opener) (*loader.Load, error) {
	switch s.state {
	case NoFile:
	case Loading:
		return nil, ErrLoadInProgress
	default:
		return nil, ErrFileOpen
	}

	id := uuid.NewString()
	ctx = logging.WithSource(logging.WithSessionID(ctx, id), name)

	load, err := s.loader.BeginSource(ctx, name, open)
	if err != nil {
		s.log.Warn().Ctx(ctx).Err(err).Msg("open failed")
		return nil, err
	}

	s.reset()
	s.state = Loading
	s.id = id
	s.ctx = ctx
	s.path = name
	s.load = load
	return load, nil
}

// ApplyBatch applies one loader batch. Batches that arrive outside a load
// are dropped.
func (s *Session) ApplyBatch(b loader.Batch) {
	if s.state != Loading {
		s.log.Debug().Ctx(s.ctx).Stringer("state", s.state).Msg("dropping stray batch")
		return
	}

	if b.First {
		s.cols.Reset(headerNames(b.Header))
		s.grid.Widen(s.cols.Len())
	}

	if len(b.Rows) > 0 {
		s.grid.Append(b.Rows...)
		// rows wider than the header get synthesized headers
		for i := s.cols.Len(); i < s.grid.Width(); i++ {
			name := s.cols.UniqueName(fmt.Sprintf("column %d", i+1))
			_ = s.cols.OnColumnAdded(name)
		}
	}

	s.progress = b.Progress
	s.observer.OnLoadProgress(b.Progress.RowsRead, b.Progress.TotalRows)
}

// FinishLoad ends the current load with its Done result and returns it.
// Either way the session becomes Ready with the changed flag cleared; after
// a failure the rows read so far are kept and Partial reports true.
func (s *Session) FinishLoad(err error) error {
	if s.state != Loading {
		return err
	}

	s.load = nil
	s.state = Ready
	s.changed = false

	if err != nil {
		s.partial = true
		s.log.Error().Ctx(s.ctx).Err(err).Int("rows", s.grid.Len()).Msg("load failed, keeping partial grid")
		s.observer.OnLoadFailed(err)
		return err
	}

	s.log.Info().Ctx(s.ctx).
		Int("rows", s.grid.Len()).
		Int("columns", s.cols.Len()).
		Msg("file ready")
	s.observer.OnLoadComplete()
	return nil
}

// CancelLoad asks the running load to stop. FinishLoad still has to be
// called with its result.
func (s *Session) CancelLoad() {
	if s.load != nil {
		s.load.Cancel()
	}
}

// Drain applies every batch of load and finishes it. It blocks until the
// load completes and is meant for callers without an event loop.
func (s *Session) Drain(load *loader.Load) error {
	for b := range load.Batches {
		s.ApplyBatch(b)
	}
	return s.FinishLoad(<-load.Done)
}

// Open is BeginLoad followed by Drain.
func (s *Session) Open(ctx context.Context, path string) error {
	load, err := s.BeginLoad(ctx, path)
	if err != nil {
		return err
	}
	return s.Drain(load)
}

func headerNames(header []string) []string {
	names := make([]string, len(header))
	for i, h := range header {
		if h == "" {
			h = fmt.Sprintf("column %d", i+1)
		}
		names[i] = h
	}
	return names
}
