package tui

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"

	"github.com/colonyops/tabula/internal/core/columns"
	"github.com/colonyops/tabula/internal/core/config"
	"github.com/colonyops/tabula/internal/core/plot"
	"github.com/colonyops/tabula/internal/core/session"
)

// --- Window ---

func (m Model) handleWindowSize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.grid.SetSize(msg.Width, m.gridHeight())
	m.grid.Sync(m.sess)
	return m, nil
}

// gridHeight is the screen minus the title and status bars.
func (m Model) gridHeight() int {
	return max(m.height-2, 1)
}

// --- Ticks ---

func (m Model) handleToastTick(_ toastTickMsg) (tea.Model, tea.Cmd) {
	m.toastController.Tick(toastTickInterval)
	if m.toastController.HasToasts() {
		return m, scheduleToastTick()
	}
	m.toastController.SetTicking(false)
	return m, nil
}

func (m Model) handleSpinnerTick(msg spinner.TickMsg) (tea.Model, tea.Cmd) {
	if m.load == nil {
		return m, nil
	}
	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	return m, cmd
}

// --- Loading ---

// requestOpen opens path, closing the current file first. Unsaved changes
// go through the save prompt.
func (m Model) requestOpen(path string) (tea.Model, tea.Cmd) {
	if m.load != nil {
		return m, m.notifyWarn("%s is still loading", filepath.Base(m.load.Name))
	}
	if m.sess.NeedsSaveDecision() {
		m.pending = afterCloseOpen
		m.pendingPath = path
		m.savePrompt = NewSavePrompt(filepath.Base(m.sess.Path()))
		m.state = stateSavePrompt
		return m, nil
	}
	if m.sess.State() != session.NoFile {
		if err := m.sess.Close(session.CloseDiscard); err != nil {
			return m, m.notifyError("close failed: %v", err)
		}
		m.afterFileClosed()
	}
	return m.beginLoad(path)
}

func (m Model) beginLoad(path string) (tea.Model, tea.Cmd) {
	load, err := m.sess.BeginLoad(m.ctx, path)
	if err != nil {
		return m, m.notifyError("cannot open %s: %v", path, err)
	}

	m.load = load
	m.grid.Reset()
	m.marked = nil
	return m, tea.Batch(listenForLoad(load), m.spinner.Tick)
}

func (m Model) handleLoadBatch(msg loadBatchMsg) (tea.Model, tea.Cmd) {
	if msg.load != m.load {
		return m, nil
	}
	m.sess.ApplyBatch(msg.batch)
	m.grid.Sync(m.sess)
	return m, listenForLoad(msg.load)
}

func (m Model) handleLoadDone(msg loadDoneMsg) (tea.Model, tea.Cmd) {
	if msg.load != m.load {
		return m, nil
	}
	m.load = nil
	_ = m.sess.FinishLoad(msg.err)
	m.grid.Sync(m.sess)

	if m.closeAfterLoad {
		m.closeAfterLoad = false
		if err := m.sess.Close(session.CloseDiscard); err == nil {
			m.afterFileClosed()
		}
		return m, m.ensureToastTick()
	}

	cmds := []tea.Cmd{m.ensureToastTick()}
	if cmd := m.startWatcher(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	if msg.err == nil {
		if cmd := m.recordRecent(); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) startWatcher() tea.Cmd {
	m.stopWatcher()
	if !m.cfg.Watch {
		return nil
	}
	w, err := NewFileWatcher(m.sess.Path())
	if err != nil {
		m.log.Debug().Err(err).Str("path", m.sess.Path()).Msg("file watcher unavailable")
		return nil
	}
	m.watcher = w
	return w.Start()
}

func (m Model) handleFileChanged(msg fileChangedMsg) (tea.Model, tea.Cmd) {
	if m.watcher == nil || msg.path != m.watcher.Path() {
		return m, nil
	}
	var notice tea.Cmd
	if msg.removed {
		notice = m.notifyWarn("%s was removed or renamed on disk", filepath.Base(msg.path))
	} else {
		notice = m.notifyWarn("%s changed on disk", filepath.Base(msg.path))
	}
	return m, tea.Batch(notice, m.watcher.Start())
}

// --- Closing ---

// requestClose closes the open file, asking about unsaved changes first,
// and then runs next.
func (m Model) requestClose(next afterClose) (tea.Model, tea.Cmd) {
	if m.load != nil {
		if next == afterCloseQuit {
			return m.quit()
		}
		m.closeAfterLoad = true
		return m, m.notifyInfo("closing %s once it has loaded", filepath.Base(m.load.Name))
	}

	if m.sess.State() == session.NoFile {
		if next == afterCloseQuit {
			return m.quit()
		}
		return m, nil
	}

	if m.sess.NeedsSaveDecision() {
		m.pending = next
		m.savePrompt = NewSavePrompt(filepath.Base(m.sess.Path()))
		m.state = stateSavePrompt
		return m, nil
	}

	if err := m.sess.Close(session.CloseDiscard); err != nil {
		return m, m.notifyError("close failed: %v", err)
	}
	m.afterFileClosed()
	return m.runPending(next)
}

func (m Model) handleSavePromptKey(keyStr string) (tea.Model, tea.Cmd) {
	choice, done := m.savePrompt.HandleKey(keyStr)
	if !done {
		return m, nil
	}

	m.state = stateNormal
	next := m.pending
	m.pending = afterCloseNone

	var decision session.CloseDecision
	switch choice {
	case choiceCancel:
		m.pendingPath = ""
		return m, nil
	case choiceSave:
		decision = session.CloseSave
		m.markOwnWrite()
	case choiceDiscard:
		decision = session.CloseDiscard
	}

	if err := m.sess.Close(decision); err != nil {
		m.pendingPath = ""
		return m, m.notifyError("%v", err)
	}
	m.afterFileClosed()
	return m.runPending(next)
}

func (m Model) runPending(next afterClose) (tea.Model, tea.Cmd) {
	switch next {
	case afterCloseQuit:
		return m.quit()
	case afterCloseOpen:
		path := m.pendingPath
		m.pendingPath = ""
		return m.beginLoad(path)
	}
	return m, nil
}

func (m *Model) afterFileClosed() {
	m.stopWatcher()
	m.grid.Reset()
	m.marked = nil
}

func (m *Model) markOwnWrite() {
	if m.watcher != nil {
		m.watcher.MarkOwnWrite()
	}
}

// --- Keys ---

func (m Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	keyStr := msg.String()

	if key.Matches(msg, m.nav.ForceQuit) {
		if m.state == stateSavePrompt && m.pending == afterCloseQuit {
			return m.quit()
		}
		m.state = stateNormal
		return m.requestClose(afterCloseQuit)
	}

	switch m.state {
	case stateSavePrompt:
		return m.handleSavePromptKey(keyStr)
	case statePrompt:
		return m.handlePromptKey(msg)
	case stateColumns:
		return m.handleColumnsKey(msg)
	case stateFiles:
		return m.handleFilesKey(msg)
	case statePlot:
		return m.handlePlotKey(msg)
	case stateScroll:
		if m.scroll.HandleKey(keyStr) {
			m.scroll = nil
			m.state = stateNormal
		}
		return m, nil
	}

	if keyStr == "esc" && m.toastController.HasToasts() {
		m.toastController.Dismiss()
		return m, nil
	}

	if m.handleNavigation(msg) {
		return m, nil
	}

	action, ok := m.keys.Resolve(msg)
	if !ok {
		return m, nil
	}
	return m.dispatchAction(action)
}

func (m *Model) handleNavigation(msg tea.KeyPressMsg) bool {
	switch {
	case key.Matches(msg, m.nav.Up):
		m.grid.Move(-1, 0, m.sess)
	case key.Matches(msg, m.nav.Down):
		m.grid.Move(1, 0, m.sess)
	case key.Matches(msg, m.nav.Left):
		m.grid.Move(0, -1, m.sess)
	case key.Matches(msg, m.nav.Right):
		m.grid.Move(0, 1, m.sess)
	case key.Matches(msg, m.nav.PageUp):
		m.grid.Page(-1, m.sess)
	case key.Matches(msg, m.nav.PageDown):
		m.grid.Page(1, m.sess)
	case key.Matches(msg, m.nav.Top):
		_, c := m.grid.Cursor()
		m.grid.MoveTo(0, c, m.sess)
	case key.Matches(msg, m.nav.Bottom):
		_, c := m.grid.Cursor()
		m.grid.MoveTo(m.sess.RowCount()-1, c, m.sess)
	case key.Matches(msg, m.nav.LineStart):
		r, _ := m.grid.Cursor()
		m.grid.MoveTo(r, 0, m.sess)
	case key.Matches(msg, m.nav.LineEnd):
		r, _ := m.grid.Cursor()
		m.grid.MoveTo(r, len(m.sess.VisibleIndices())-1, m.sess)
	default:
		return false
	}
	return true
}

func (m Model) dispatchAction(action string) (tea.Model, tea.Cmd) {
	switch action {
	case config.ActionOpen:
		return m.openFilePicker()
	case config.ActionSave:
		return m.save("")
	case config.ActionSaveAs:
		if err := m.requireEditable(); err != nil {
			return m, m.notifyWarn("%v", err)
		}
		return m.openPrompt(promptSaveAs, "Save as", "Only visible columns are written", m.sess.Path())
	case config.ActionClose:
		return m.requestClose(afterCloseNone)
	case config.ActionQuit:
		return m.requestClose(afterCloseQuit)
	case config.ActionEdit:
		return m.editCell()
	case config.ActionAddRow:
		return m.addRow()
	case config.ActionAddColumn:
		if err := m.requireEditable(); err != nil {
			return m, m.notifyWarn("%v", err)
		}
		return m.openPrompt(promptColumnName, "Add column", "Header", "")
	case config.ActionDeleteRow:
		return m.deleteRow()
	case config.ActionDeleteColumn:
		return m.deleteColumn()
	case config.ActionClearCell:
		return m.clearCell()
	case config.ActionColumns:
		return m.openColumnPicker()
	case config.ActionMark:
		return m.toggleMark()
	case config.ActionPlot:
		return m.openPlotDialog()
	case config.ActionHelp:
		m.scroll = NewHelpModal(m.keys.HelpSections(), m.width, m.height)
		m.state = stateScroll
		return m, nil
	case config.ActionMessages:
		m.scroll = NewMessagesModal(m.bus.History(), m.width, m.height)
		m.state = stateScroll
		return m, nil
	}
	return m, nil
}

func (m Model) requireEditable() error {
	if m.sess.Editable() {
		return nil
	}
	if m.load != nil {
		return session.ErrLoadInProgress
	}
	return session.ErrNoFile
}

// currentCell returns the cursor position as a session cell.
func (m Model) currentCell() (session.Cell, bool) {
	r, _ := m.grid.Cursor()
	c := m.grid.CursorColumn(m.sess)
	if c < 0 || r < 0 || r >= m.sess.RowCount() {
		return session.Cell{}, false
	}
	return session.Cell{Row: r, Col: c}, true
}

// --- Editing ---

func (m Model) save(path string) (tea.Model, tea.Cmd) {
	if err := m.requireEditable(); err != nil {
		return m, m.notifyWarn("%v", err)
	}

	target := path
	if target == "" {
		target = m.sess.Path()
	}
	samePath := sameFile(target, m.sess.Path())
	if samePath {
		m.markOwnWrite()
	}

	if err := m.sess.Save(target); err != nil {
		return m, m.notifyError("%v", err)
	}

	cmds := []tea.Cmd{}
	if len(m.sess.VisibleIndices()) == 0 {
		cmds = append(cmds, m.notifyWarn("saved %s with no columns", filepath.Base(target)))
	} else {
		cmds = append(cmds, m.notifyInfo("saved %s", filepath.Base(target)))
	}
	if !samePath {
		if cmd := m.startWatcher(); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return m, tea.Batch(cmds...)
}

func sameFile(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return a == b
	}
	return absA == absB
}

func (m Model) editCell() (tea.Model, tea.Cmd) {
	if err := m.requireEditable(); err != nil {
		return m, m.notifyWarn("%v", err)
	}
	cell, ok := m.currentCell()
	if !ok {
		return m, nil
	}
	header := m.sess.AllColumns()[cell.Col]
	label := fmt.Sprintf("Row %d, %s", cell.Row+1, header)
	return m.openPrompt(promptEditCell, "Edit cell", label, m.sess.Cell(cell.Row, cell.Col))
}

func (m Model) addRow() (tea.Model, tea.Cmd) {
	if err := m.sess.AddRow(); err != nil {
		return m, m.notifyWarn("%v", err)
	}
	_, c := m.grid.Cursor()
	m.grid.MoveTo(m.sess.RowCount()-1, c, m.sess)
	return m, nil
}

func (m Model) deleteRow() (tea.Model, tea.Cmd) {
	if err := m.requireEditable(); err != nil {
		return m, m.notifyWarn("%v", err)
	}
	r, _ := m.grid.Cursor()
	if r >= m.sess.RowCount() {
		return m, nil
	}
	if err := m.sess.DeleteRows(r); err != nil {
		return m, m.notifyError("%v", err)
	}
	m.grid.Sync(m.sess)
	return m, nil
}

func (m Model) deleteColumn() (tea.Model, tea.Cmd) {
	if err := m.requireEditable(); err != nil {
		return m, m.notifyWarn("%v", err)
	}
	c := m.grid.CursorColumn(m.sess)
	if c < 0 {
		return m, nil
	}
	header := m.sess.AllColumns()[c]
	if err := m.sess.DeleteColumns(header); err != nil {
		return m, m.notifyError("%v", err)
	}
	m.unmark(header)
	m.grid.Sync(m.sess)
	return m, m.notifyInfo("deleted column %s", header)
}

func (m Model) clearCell() (tea.Model, tea.Cmd) {
	if err := m.requireEditable(); err != nil {
		return m, m.notifyWarn("%v", err)
	}
	cell, ok := m.currentCell()
	if !ok {
		return m, nil
	}
	if err := m.sess.ClearCells(cell); err != nil {
		return m, m.notifyError("%v", err)
	}
	return m, nil
}

// --- Prompts ---

func (m Model) openPrompt(purpose promptPurpose, title, label, value string) (tea.Model, tea.Cmd) {
	m.prompt = NewInputPrompt(purpose, title, label, value, m.width)
	m.state = statePrompt
	return m, nil
}

func (m Model) handlePromptKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)

	if m.prompt.Cancelled() {
		m.state = stateNormal
		return m, nil
	}
	if !m.prompt.Submitted() {
		return m, cmd
	}

	value := m.prompt.Value()
	switch m.prompt.purpose {
	case promptEditCell:
		m.state = stateNormal
		cell, ok := m.currentCell()
		if !ok {
			return m, nil
		}
		if err := m.sess.EditCell(cell.Row, cell.Col, value); err != nil {
			return m, m.notifyError("%v", err)
		}
		return m, nil

	case promptColumnName:
		header := strings.TrimSpace(value)
		switch {
		case header == "":
			m.prompt.Reject(columns.ErrEmptyHeader.Error())
			return m, nil
		case m.sess.ColumnIndex(header) >= 0:
			m.prompt.Reject(fmt.Sprintf("column %q already exists", header))
			return m, nil
		}
		next := NewInputPrompt(promptColumnDefault, "Add column", "Default value for "+header, "", m.width)
		next.column = header
		m.prompt = next
		return m, nil

	case promptColumnDefault:
		header := m.prompt.column
		if err := m.sess.AddColumn(header, value); err != nil {
			if errors.Is(err, columns.ErrDuplicateHeader) || errors.Is(err, columns.ErrEmptyHeader) {
				m.prompt.Reject(err.Error())
				return m, nil
			}
			m.state = stateNormal
			return m, m.notifyError("%v", err)
		}
		m.state = stateNormal
		r, _ := m.grid.Cursor()
		m.grid.MoveTo(r, len(m.sess.VisibleIndices())-1, m.sess)
		return m, nil

	case promptSaveAs:
		path := strings.TrimSpace(value)
		if path == "" {
			m.prompt.Reject("path cannot be empty")
			return m, nil
		}
		m.state = stateNormal
		return m.save(path)

	case promptOpenPath:
		path := strings.TrimSpace(value)
		if path == "" {
			m.prompt.Reject("path cannot be empty")
			return m, nil
		}
		m.state = stateNormal
		return m.requestOpen(path)
	}

	m.state = stateNormal
	return m, nil
}

// --- Pickers ---

func (m Model) openFilePicker() (tea.Model, tea.Cmd) {
	if m.load != nil {
		return m, m.notifyWarn("%s is still loading", filepath.Base(m.load.Name))
	}
	files, truncated, err := discoverFiles(m.opts.FS, m.cfg.Open.Patterns, m.cfg.Open.MaxFiles)
	if err != nil {
		m.log.Warn().Err(err).Msg("file discovery failed")
		return m.openPrompt(promptOpenPath, "Open file", "Path", "")
	}
	m.files = NewFilePicker(m.recentFiles(), files, truncated, m.width, m.height)
	m.state = stateFiles
	return m, nil
}

func (m Model) handleFilesKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	cmd := m.files.Update(msg)

	switch {
	case m.files.Cancelled():
		m.files = nil
		m.state = stateNormal
		return m, nil
	case m.files.WantsTypedPath():
		m.files = nil
		return m.openPrompt(promptOpenPath, "Open file", "Path", "")
	case m.files.Chosen() != "":
		path := m.files.Chosen()
		m.files = nil
		m.state = stateNormal
		return m.requestOpen(path)
	}
	return m, cmd
}

func (m Model) openColumnPicker() (tea.Model, tea.Cmd) {
	if err := m.requireEditable(); err != nil {
		return m, m.notifyWarn("%v", err)
	}
	m.columns = NewColumnPicker(m.sess.AllColumns(), m.sess.ColumnFlags(), m.width, m.height)
	m.state = stateColumns
	return m, nil
}

func (m Model) handleColumnsKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	cmd := m.columns.Update(msg)

	switch {
	case m.columns.Cancelled():
		m.columns = nil
		m.state = stateNormal
		return m, nil
	case m.columns.Applied():
		selected := m.columns.Selected()
		m.columns = nil
		m.state = stateNormal

		changed, err := m.sess.ApplyVisibility(selected)
		if err != nil {
			return m, m.notifyError("%v", err)
		}
		m.grid.Sync(m.sess)
		if changed && len(selected) == 0 {
			return m, m.notifyWarn("all columns hidden, saving will write an empty file")
		}
		return m, nil
	}
	return m, cmd
}

// --- Plotting ---

func (m Model) toggleMark() (tea.Model, tea.Cmd) {
	if err := m.requireEditable(); err != nil {
		return m, m.notifyWarn("%v", err)
	}
	c := m.grid.CursorColumn(m.sess)
	if c < 0 {
		return m, nil
	}
	header := m.sess.AllColumns()[c]
	if containsString(m.marked, header) {
		m.unmark(header)
		return m, nil
	}

	m.marked = append(m.marked, header)
	if len(m.marked) > 2 {
		m.marked = m.marked[len(m.marked)-2:]
	}
	return m, nil
}

func (m *Model) unmark(header string) {
	out := m.marked[:0]
	for _, h := range m.marked {
		if h != header {
			out = append(out, h)
		}
	}
	m.marked = out
}

func (m Model) openPlotDialog() (tea.Model, tea.Cmd) {
	if err := m.requireEditable(); err != nil {
		return m, m.notifyWarn("%v", err)
	}
	if len(m.marked) != 2 {
		return m, m.notifyWarn("mark two columns to plot (%d marked)", len(m.marked))
	}

	kind, err := plot.ParseKind(m.cfg.Plot.Kind)
	if err != nil {
		return m, m.notifyError("%v", err)
	}
	m.plotDialog = NewPlotDialog(m.marked[0], m.marked[1], m.cfg.Plot.Title, kind, plot.DefaultPath(m.sess.Path()), m.width)
	m.state = statePlot
	return m, nil
}

func (m Model) handlePlotKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	cmd := m.plotDialog.Update(msg)

	if m.plotDialog.Cancelled() {
		m.plotDialog = nil
		m.state = stateNormal
		return m, nil
	}
	if !m.plotDialog.Submitted() {
		return m, cmd
	}

	out := m.plotDialog.Output()
	if out == "" {
		m.plotDialog.Reject()
		return m, m.notifyWarn("choose an output file")
	}

	x, y := m.plotDialog.Columns()
	series, err := m.sess.PlotData(x, y)
	if err != nil {
		m.plotDialog = nil
		m.state = stateNormal
		return m, m.notifyError("plot: %v", err)
	}

	opts := m.plotDialog.Options()
	m.plotDialog = nil
	m.state = stateNormal

	exporter := m.exporter
	return m, func() tea.Msg {
		return plotExportedMsg{path: out, err: exporter.Export(out, series, opts)}
	}
}

func (m Model) handlePlotExported(msg plotExportedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		return m, m.notifyError("plot export failed: %v", msg.err)
	}
	return m, m.notifyInfo("chart written to %s", msg.path)
}
