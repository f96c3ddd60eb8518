package tui

import (
	"context"
	"errors"
	"path/filepath"

	tea "charm.land/bubbletea/v2"

	"github.com/colonyops/tabula/internal/core/loader"
	"github.com/colonyops/tabula/internal/core/session"
	"github.com/colonyops/tabula/internal/tui/notify"
)

// loadBatchMsg carries one batch of the load it came from.
type loadBatchMsg struct {
	load  *loader.Load
	batch loader.Batch
}

// loadDoneMsg carries the final result of a load.
type loadDoneMsg struct {
	load *loader.Load
	err  error
}

// plotExportedMsg reports a finished chart export.
type plotExportedMsg struct {
	path string
	err  error
}

// listenForLoad reads the next event of load. The handler re-issues it
// after every batch until the done message arrives.
func listenForLoad(load *loader.Load) tea.Cmd {
	return func() tea.Msg {
		b, ok := <-load.Batches
		if ok {
			return loadBatchMsg{load: load, batch: b}
		}
		return loadDoneMsg{load: load, err: <-load.Done}
	}
}

// loadObserver turns session load events into notifications.
type loadObserver struct {
	bus  *notify.Bus
	sess *session.Session
}

var _ session.Observer = (*loadObserver)(nil)

func (o *loadObserver) OnLoadProgress(_, _ int) {}

func (o *loadObserver) OnLoadComplete() {
	if o.sess == nil {
		return
	}
	o.bus.Infof("loaded %s (%d rows, %d columns)",
		filepath.Base(o.sess.Path()), o.sess.RowCount(), o.sess.ColumnCount())
}

func (o *loadObserver) OnLoadFailed(err error) {
	rows := 0
	if o.sess != nil {
		rows = o.sess.RowCount()
	}

	var encErr *loader.InvalidEncodingError
	switch {
	case errors.Is(err, context.Canceled):
		o.bus.Infof("load cancelled after %d rows", rows)
	case errors.As(err, &encErr):
		o.bus.Errorf("invalid text at line %d, kept %d rows", encErr.Line, rows)
	default:
		o.bus.Errorf("load stopped after %d rows: %v", rows, err)
	}
}
