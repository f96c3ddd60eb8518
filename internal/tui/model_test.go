package tui

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/tabula/internal/core/config"
	"github.com/colonyops/tabula/internal/core/session"
	"github.com/colonyops/tabula/internal/store/jsonfile"
	"github.com/colonyops/tabula/pkg/tuitest"
)

const peopleCSV = "name,age\nAlice,30\nBob,25\n"

type harness struct {
	t     *testing.T
	m     Model
	dir   string
	quits int
}

func newHarness(t *testing.T, files map[string]string, open string) *harness {
	t.Helper()
	return newHarnessWith(t, files, open, nil)
}

func newHarnessWith(t *testing.T, files map[string]string, open string, configure func(*Options)) *harness {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}

	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Watch = false
	cfg.Loader.BatchSize = 1

	opts := Options{FS: os.DirFS(dir)}
	if open != "" {
		opts.Path = filepath.Join(dir, open)
	}
	if configure != nil {
		configure(&opts)
	}

	h := &harness{t: t, m: New(cfg, opts), dir: dir}
	h.send(tuitest.WindowSize(120, 40))
	h.run(h.m.Init())
	return h
}

// send delivers msg and then runs every command it produces.
func (h *harness) send(msg tea.Msg) {
	next, cmd := h.m.Update(msg)
	h.m = next.(Model)
	h.run(cmd)
}

// run executes cmd and feeds its messages back until no work remains.
// Timer driven messages are dropped.
func (h *harness) run(cmd tea.Cmd) {
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case nil, spinner.TickMsg, toastTickMsg:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case tea.QuitMsg:
			h.quits++
		default:
			next, cmd := h.m.Update(msg)
			h.m = next.(Model)
			queue = append(queue, cmd)
		}
	}
}

func (h *harness) press(keys ...string) {
	for _, k := range keys {
		h.send(tuitest.Key(k))
	}
}

func (h *harness) typeText(s string) {
	for _, msg := range tuitest.Type(s) {
		h.send(msg)
	}
}

func (h *harness) path(name string) string { return filepath.Join(h.dir, name) }

func (h *harness) lastToast() string {
	toasts := h.m.toastController.Toasts()
	if len(toasts) == 0 {
		return ""
	}
	return toasts[len(toasts)-1].notification.Message
}

func (h *harness) read(name string) string {
	data, err := os.ReadFile(h.path(name))
	require.NoError(h.t, err)
	return string(data)
}

func TestModel_OpenOnStart(t *testing.T) {
	h := newHarness(t, map[string]string{"people.csv": peopleCSV}, "people.csv")
	sess := h.m.Session()

	assert.Equal(t, session.Ready, sess.State())
	assert.Equal(t, 2, sess.RowCount())
	assert.Equal(t, []string{"name", "age"}, sess.AllColumns())
	assert.Contains(t, h.lastToast(), "loaded people.csv")

	view := tuitest.StripANSI(h.m.View().Content)
	assert.Contains(t, view, "Alice")
	assert.Contains(t, view, "2 rows")
}

func TestModel_OpenMissingFile(t *testing.T) {
	h := newHarness(t, nil, "missing.csv")

	assert.Equal(t, session.NoFile, h.m.Session().State())
	assert.Contains(t, h.lastToast(), "cannot open")
	assert.Contains(t, tuitest.StripANSI(h.m.View().Content), "No file open")
}

func TestModel_HideColumnThenSave(t *testing.T) {
	h := newHarness(t, map[string]string{"people.csv": peopleCSV}, "people.csv")

	h.press("v", "down", "space", "enter")
	assert.Equal(t, stateNormal, h.m.state)
	assert.Equal(t, []string{"name"}, h.m.Session().VisibleColumns())
	assert.True(t, h.m.Session().Changed())

	h.press("ctrl+s")
	assert.Equal(t, "name\nAlice\nBob\n", h.read("people.csv"))
	assert.False(t, h.m.Session().Changed())
	assert.Equal(t, []string{"name", "age"}, h.m.Session().AllColumns(), "hidden column kept in memory")
}

func TestModel_EditCell(t *testing.T) {
	h := newHarness(t, map[string]string{"people.csv": peopleCSV}, "people.csv")

	h.press("e")
	require.Equal(t, statePrompt, h.m.state)
	h.press("ctrl+u")
	h.typeText("Zed")
	h.press("enter")

	assert.Equal(t, stateNormal, h.m.state)
	assert.Equal(t, "Zed", h.m.Session().Cell(0, 0))
	assert.Equal(t, session.Modified, h.m.Session().State())
}

func TestModel_RowAndCellEdits(t *testing.T) {
	h := newHarness(t, map[string]string{"people.csv": peopleCSV}, "people.csv")
	sess := h.m.Session()

	h.press("r")
	assert.Equal(t, 3, sess.RowCount())
	r, _ := h.m.grid.Cursor()
	assert.Equal(t, 2, r, "cursor follows the new row")

	h.press("g", "right", "x")
	assert.Equal(t, "", sess.Cell(0, 1))

	h.press("D")
	assert.Equal(t, 2, sess.RowCount())
	assert.Equal(t, "Bob", sess.Cell(0, 0))

	h.press("X")
	assert.Equal(t, []string{"name"}, sess.AllColumns())
}

func TestModel_AddColumn(t *testing.T) {
	h := newHarness(t, map[string]string{"people.csv": peopleCSV}, "people.csv")

	t.Run("duplicate header keeps prompt open", func(t *testing.T) {
		h.press("c")
		h.typeText("name")
		h.press("enter")

		assert.Equal(t, statePrompt, h.m.state)
		assert.Equal(t, promptColumnName, h.m.prompt.purpose)
		assert.Contains(t, tuitest.StripANSI(h.m.prompt.View()), "already exists")
		h.press("esc")
	})

	t.Run("header then default", func(t *testing.T) {
		h.press("c")
		h.typeText("city")
		h.press("enter")
		require.Equal(t, promptColumnDefault, h.m.prompt.purpose)
		h.typeText("Paris")
		h.press("enter")

		sess := h.m.Session()
		assert.Equal(t, stateNormal, h.m.state)
		assert.Equal(t, []string{"name", "age", "city"}, sess.AllColumns())
		col, err := sess.Column("city")
		require.NoError(t, err)
		assert.Equal(t, []string{"Paris", "Paris"}, col)
		assert.Equal(t, 2, h.m.grid.CursorColumn(sess))
	})
}

func TestModel_SaveAs(t *testing.T) {
	h := newHarness(t, map[string]string{"people.csv": peopleCSV}, "people.csv")

	h.press("S")
	require.Equal(t, statePrompt, h.m.state)
	h.press("ctrl+u")
	h.typeText(h.path("copy.csv"))
	h.press("enter")

	assert.Equal(t, peopleCSV, h.read("copy.csv"))
	assert.Equal(t, h.path("copy.csv"), h.m.Session().Path())
}

func TestModel_Quit(t *testing.T) {
	t.Run("no file quits at once", func(t *testing.T) {
		h := newHarness(t, nil, "")
		h.press("q")
		assert.Equal(t, 1, h.quits)
	})

	t.Run("unchanged file quits at once", func(t *testing.T) {
		h := newHarness(t, map[string]string{"people.csv": peopleCSV}, "people.csv")
		h.press("q")
		assert.Equal(t, 1, h.quits)
	})

	t.Run("changed file asks first", func(t *testing.T) {
		h := newHarness(t, map[string]string{"people.csv": peopleCSV}, "people.csv")
		h.press("r", "q")
		require.Equal(t, stateSavePrompt, h.m.state)
		assert.Equal(t, 0, h.quits)

		h.press("d")
		assert.Equal(t, 1, h.quits)
		assert.Equal(t, peopleCSV, h.read("people.csv"), "discard leaves the file alone")
	})

	t.Run("cancel keeps the session", func(t *testing.T) {
		h := newHarness(t, map[string]string{"people.csv": peopleCSV}, "people.csv")
		h.press("r", "q", "esc")

		assert.Equal(t, 0, h.quits)
		assert.Equal(t, stateNormal, h.m.state)
		assert.Equal(t, session.Modified, h.m.Session().State())
	})
}

func TestModel_CloseWithSave(t *testing.T) {
	h := newHarness(t, map[string]string{"people.csv": peopleCSV}, "people.csv")

	h.press("r", "w")
	require.Equal(t, stateSavePrompt, h.m.state)
	h.press("enter")

	assert.Equal(t, session.NoFile, h.m.Session().State())
	assert.Equal(t, peopleCSV+",\n", h.read("people.csv"))
}

func TestModel_OpenOverModified(t *testing.T) {
	h := newHarness(t, map[string]string{
		"people.csv": peopleCSV,
		"other.csv":  "x,y\n1,2\n",
	}, "people.csv")

	h.press("r", "o")
	require.Equal(t, stateFiles, h.m.state)

	h.press("enter")
	require.Equal(t, stateSavePrompt, h.m.state, "other.csv sorts first and needs a save decision")

	h.press("d")
	sess := h.m.Session()
	assert.Equal(t, session.Ready, sess.State())
	assert.Equal(t, []string{"x", "y"}, sess.AllColumns())
	assert.Equal(t, "other.csv", filepath.Base(sess.Path()))
}

func TestModel_SavePartialLoad(t *testing.T) {
	body := "name,age\nAlice,30\nBob,25\n\"Carol"
	h := newHarness(t, map[string]string{"cut.csv": body}, "cut.csv")
	require.True(t, h.m.Session().Partial())
	require.Equal(t, 2, h.m.Session().RowCount())

	h.press("r", "ctrl+s")

	assert.Equal(t, body, h.read("cut.csv"))
	assert.Contains(t, h.lastToast(), "partly loaded")
	assert.True(t, h.m.Session().Changed())
}

func TestModel_CloseWhileLoading(t *testing.T) {
	h := newHarness(t, map[string]string{"people.csv": peopleCSV}, "")

	next, loadCmd := h.m.beginLoad(h.path("people.csv"))
	h.m = next.(Model)
	require.NotNil(t, h.m.load)

	next, cmd := h.m.requestClose(afterCloseNone)
	h.m = next.(Model)
	h.run(cmd)
	assert.True(t, h.m.closeAfterLoad)

	h.run(loadCmd)

	assert.Nil(t, h.m.load)
	assert.Equal(t, session.NoFile, h.m.Session().State())

	var messages []string
	for _, n := range h.m.bus.History() {
		messages = append(messages, n.Message)
	}
	assert.Contains(t, messages, "loaded people.csv (2 rows, 2 columns)", "load runs to completion")
}

func TestModel_RecentFiles(t *testing.T) {
	store := jsonfile.NewRecentStore(filepath.Join(t.TempDir(), "recent.json"))
	h := newHarnessWith(t, map[string]string{"people.csv": peopleCSV}, "people.csv", func(o *Options) {
		o.Recent = store
	})

	entries, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, h.path("people.csv"), entries[0].Path)
	assert.Equal(t, 2, entries[0].Rows)
	assert.Equal(t, 2, entries[0].Columns)

	h.press("o")
	require.Equal(t, stateFiles, h.m.state)
	first, ok := h.m.files.list.Items()[0].(fileItem)
	require.True(t, ok)
	assert.Equal(t, fileItem{path: h.path("people.csv"), recent: true}, first)
}

func TestModel_Plot(t *testing.T) {
	t.Run("requires two marked columns", func(t *testing.T) {
		h := newHarness(t, map[string]string{"people.csv": peopleCSV}, "people.csv")
		h.press("m", "p")

		assert.Equal(t, stateNormal, h.m.state)
		assert.Contains(t, h.lastToast(), "mark two columns")
	})

	t.Run("exports chart", func(t *testing.T) {
		h := newHarness(t, map[string]string{"people.csv": peopleCSV}, "people.csv")
		h.press("m", "right", "m")
		assert.Equal(t, []string{"name", "age"}, h.m.marked)

		h.press("p")
		require.Equal(t, statePlot, h.m.state)
		h.press("enter")

		assert.Equal(t, stateNormal, h.m.state)
		assert.FileExists(t, h.path("people-plot.xlsx"))
		assert.Contains(t, h.lastToast(), "chart written")
	})

	t.Run("unmark", func(t *testing.T) {
		h := newHarness(t, map[string]string{"people.csv": peopleCSV}, "people.csv")
		h.press("m", "m")
		assert.Empty(t, h.m.marked)
	})
}

func TestModel_NoFileWarnings(t *testing.T) {
	h := newHarness(t, nil, "")

	h.press("e")
	assert.Equal(t, stateNormal, h.m.state)
	assert.Contains(t, h.lastToast(), "no file open")

	h.press("ctrl+s")
	assert.Contains(t, h.lastToast(), "no file open")
}

func TestModel_HelpAndMessages(t *testing.T) {
	h := newHarness(t, map[string]string{"people.csv": peopleCSV}, "people.csv")

	h.press("?")
	require.Equal(t, stateScroll, h.m.state)
	assert.Contains(t, tuitest.StripANSI(h.m.View().Content), "Help")
	h.press("esc")
	assert.Equal(t, stateNormal, h.m.state)

	h.press("N")
	require.Equal(t, stateScroll, h.m.state)
	assert.Contains(t, tuitest.StripANSI(h.m.View().Content), "loaded people.csv")
}
