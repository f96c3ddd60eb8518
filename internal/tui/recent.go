package tui

import (
	"os"
	"path/filepath"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/colonyops/tabula/internal/core/history"
)

// recentEnabled reports whether opened files are remembered.
func (m Model) recentEnabled() bool {
	return m.opts.Recent != nil && m.cfg.Open.Recent > 0
}

// recentFiles returns remembered paths that still exist, newest first.
func (m Model) recentFiles() []string {
	if !m.recentEnabled() {
		return nil
	}
	entries, err := m.opts.Recent.List(m.ctx)
	if err != nil {
		m.log.Warn().Err(err).Msg("read recent files")
		return nil
	}

	var out []string
	for _, e := range entries {
		if len(out) == m.cfg.Open.Recent {
			break
		}
		if info, err := os.Stat(e.Path); err != nil || info.IsDir() {
			continue
		}
		out = append(out, e.Path)
	}
	return out
}

// recordRecent remembers the loaded file in the background.
func (m Model) recordRecent() tea.Cmd {
	if !m.recentEnabled() || m.sess.Path() == "" {
		return nil
	}

	path := m.sess.Path()
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	entry := history.Entry{
		Path:     path,
		Rows:     m.sess.RowCount(),
		Columns:  m.sess.ColumnCount(),
		OpenedAt: time.Now(),
	}
	store, limit, ctx, log := m.opts.Recent, m.cfg.Open.Recent, m.ctx, m.log

	return func() tea.Msg {
		if err := store.Record(ctx, entry, limit); err != nil {
			log.Warn().Err(err).Str("path", entry.Path).Msg("record recent file")
		}
		return nil
	}
}
