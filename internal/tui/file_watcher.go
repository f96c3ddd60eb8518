package tui

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// fileChangedMsg is sent when the open file changes on disk.
type fileChangedMsg struct {
	path    string
	removed bool
}

// FileWatcher reports external changes to a single file. It watches the
// parent directory so that editors which replace the file are still seen.
type FileWatcher struct {
	watcher     *fsnotify.Watcher
	path        string
	debounceDur time.Duration
	quiet       time.Duration

	mu        sync.Mutex
	lastWrite time.Time
}

// NewFileWatcher starts watching path.
func NewFileWatcher(path string) (*FileWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		_ = watcher.Close()
		return nil, err
	}

	return &FileWatcher{
		watcher:     watcher,
		path:        abs,
		debounceDur: 100 * time.Millisecond,
		quiet:       time.Second,
	}, nil
}

// Path returns the watched file.
func (w *FileWatcher) Path() string { return w.path }

// MarkOwnWrite suppresses events caused by our own save.
func (w *FileWatcher) MarkOwnWrite() {
	w.mu.Lock()
	w.lastWrite = time.Now()
	w.mu.Unlock()
}

func (w *FileWatcher) ownWrite() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return time.Since(w.lastWrite) < w.quiet
}

// Start returns a command that blocks until the file changes. The handler
// must call Start again to keep watching.
func (w *FileWatcher) Start() tea.Cmd {
	return func() tea.Msg {
		for {
			select {
			case event, ok := <-w.watcher.Events:
				if !ok {
					return nil
				}
				if !w.relevant(event) {
					continue
				}

				time.Sleep(w.debounceDur)

				removed := event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
				drained := false
				for !drained {
					select {
					case ev, ok := <-w.watcher.Events:
						if !ok {
							return nil
						}
						if w.relevant(ev) {
							removed = ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename)
						}
					default:
						drained = true
					}
				}

				if w.ownWrite() {
					continue
				}
				return fileChangedMsg{path: w.path, removed: removed}

			case err, ok := <-w.watcher.Errors:
				if !ok {
					return nil
				}
				log.Debug().Err(err).Str("path", w.path).Msg("file watcher error")
			}
		}
	}
}

func (w *FileWatcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	if strings.HasSuffix(event.Name, ".tmp") {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
		event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
}

// Close stops the watcher. Any pending Start command returns nil.
func (w *FileWatcher) Close() error {
	return w.watcher.Close()
}
