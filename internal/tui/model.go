package tui

import (
	"context"
	"io/fs"
	"os"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"github.com/rs/zerolog"

	"github.com/colonyops/tabula/internal/core/config"
	"github.com/colonyops/tabula/internal/core/history"
	"github.com/colonyops/tabula/internal/core/loader"
	"github.com/colonyops/tabula/internal/core/logging"
	"github.com/colonyops/tabula/internal/core/notify"
	"github.com/colonyops/tabula/internal/core/plot"
	"github.com/colonyops/tabula/internal/core/session"
	tuinotify "github.com/colonyops/tabula/internal/tui/notify"
)

// uiState is the input mode of the model.
type uiState int

const (
	stateNormal uiState = iota
	statePrompt
	stateSavePrompt
	stateColumns
	stateFiles
	statePlot
	stateScroll
)

// afterClose is what happens once a close completes.
type afterClose int

const (
	afterCloseNone afterClose = iota
	afterCloseQuit
	afterCloseOpen
)

// Options configures the TUI.
type Options struct {
	// Path is opened on startup when set.
	Path string
	// FS is searched by the open dialog. Defaults to the working directory.
	FS fs.FS
	// Context is the parent of every load. Defaults to context.Background.
	Context context.Context
	// Recent remembers loaded files for the open dialog. Nil disables it.
	Recent history.Store
}

// Model is the main TUI model.
type Model struct {
	cfg      *config.Config
	opts     Options
	ctx      context.Context
	log      zerolog.Logger
	sess     *session.Session
	keys     *KeyResolver
	nav      navKeys
	bus      *tuinotify.Bus
	exporter *plot.Exporter

	toastController *ToastController
	toastView       *ToastView
	spinner         spinner.Model

	grid    gridView
	load    *loader.Load
	watcher *FileWatcher
	marked  []string

	state      uiState
	prompt     InputPrompt
	savePrompt ChoiceModal
	columns    *ColumnPicker
	files      *FilePicker
	plotDialog *PlotDialog
	scroll     *ScrollModal

	pending        afterClose
	pendingPath    string
	closeAfterLoad bool

	width    int
	height   int
	quitting bool
}

// New creates a new TUI model.
func New(cfg *config.Config, opts Options) Model {
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.FS == nil {
		opts.FS = os.DirFS(".")
	}

	bus := tuinotify.NewBus()
	toastCtrl := NewToastController()
	bus.Subscribe(func(n notify.Notification) {
		toastCtrl.Push(n)
	})

	obs := &loadObserver{bus: bus}
	sess := session.New(loader.New(cfg.Loader.Options()), obs)
	obs.sess = sess

	s := spinner.New()
	s.Spinner = spinner.Dot

	return Model{
		cfg:             cfg,
		opts:            opts,
		ctx:             opts.Context,
		log:             logging.Component("tui"),
		sess:            sess,
		keys:            NewKeyResolver(cfg.Keybindings),
		nav:             defaultNavKeys(),
		bus:             bus,
		exporter:        plot.NewExporter(),
		toastController: toastCtrl,
		toastView:       NewToastView(toastCtrl),
		spinner:         s,
		width:           80,
		height:          24,
	}
}

// Session returns the edit session driven by the model.
func (m Model) Session() *session.Session { return m.sess }

// Init starts the initial load, if any.
func (m Model) Init() tea.Cmd {
	if m.opts.Path == "" {
		return nil
	}
	return func() tea.Msg { return openFileMsg{path: m.opts.Path} }
}

// openFileMsg asks the model to open path, prompting to save first when
// needed.
type openFileMsg struct {
	path string
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	// Window
	case tea.WindowSizeMsg:
		return m.handleWindowSize(msg)

	// Loading
	case openFileMsg:
		return m.requestOpen(msg.path)
	case loadBatchMsg:
		return m.handleLoadBatch(msg)
	case loadDoneMsg:
		return m.handleLoadDone(msg)

	// Background results
	case plotExportedMsg:
		return m.handlePlotExported(msg)
	case fileChangedMsg:
		return m.handleFileChanged(msg)

	// Ticks
	case toastTickMsg:
		return m.handleToastTick(msg)
	case spinner.TickMsg:
		return m.handleSpinnerTick(msg)

	// Input
	case tea.KeyPressMsg:
		return m.handleKey(msg)
	}

	return m.handleFallthrough(msg)
}

// handleFallthrough forwards unhandled messages to the focused input.
func (m Model) handleFallthrough(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.state {
	case statePrompt:
		m.prompt, cmd = m.prompt.Update(msg)
	case stateColumns:
		cmd = m.columns.Update(msg)
	case stateFiles:
		cmd = m.files.Update(msg)
	case statePlot:
		cmd = m.plotDialog.Update(msg)
	}
	return m, cmd
}

// quit stops background work and exits.
func (m Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	if m.load != nil {
		m.sess.CancelLoad()
	}
	m.stopWatcher()
	return m, tea.Quit
}

// ensureToastTick returns a tick command when toasts are showing and no
// tick is scheduled.
func (m *Model) ensureToastTick() tea.Cmd {
	if m.toastController.HasToasts() && !m.toastController.Ticking() {
		m.toastController.SetTicking(true)
		return scheduleToastTick()
	}
	return nil
}

func (m *Model) notifyError(format string, args ...any) tea.Cmd {
	m.bus.Errorf(format, args...)
	return m.ensureToastTick()
}

func (m *Model) notifyWarn(format string, args ...any) tea.Cmd {
	m.bus.Warnf(format, args...)
	return m.ensureToastTick()
}

func (m *Model) notifyInfo(format string, args ...any) tea.Cmd {
	m.bus.Infof(format, args...)
	return m.ensureToastTick()
}

func (m *Model) stopWatcher() {
	if m.watcher != nil {
		_ = m.watcher.Close()
		m.watcher = nil
	}
}
