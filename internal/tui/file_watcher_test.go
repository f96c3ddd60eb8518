package tui

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCmd(t *testing.T, cmd tea.Cmd, timeout time.Duration) (tea.Msg, bool) {
	t.Helper()
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()
	select {
	case msg := <-ch:
		return msg, true
	case <-time.After(timeout):
		return nil, false
	}
}

func TestFileWatcher(t *testing.T) {
	t.Run("reports external write", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "people.csv")
		require.NoError(t, os.WriteFile(path, []byte("name\n"), 0o644))

		w, err := NewFileWatcher(path)
		require.NoError(t, err)
		t.Cleanup(func() { _ = w.Close() })

		cmd := w.Start()
		require.NoError(t, os.WriteFile(path, []byte("name\nAlice\n"), 0o644))

		msg, ok := runCmd(t, cmd, 3*time.Second)
		require.True(t, ok, "timed out waiting for change")
		changed, isChange := msg.(fileChangedMsg)
		require.True(t, isChange)
		assert.Equal(t, w.Path(), changed.path)
	})

	t.Run("ignores siblings and own writes", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "people.csv")
		require.NoError(t, os.WriteFile(path, []byte("name\n"), 0o644))

		w, err := NewFileWatcher(path)
		require.NoError(t, err)

		cmd := w.Start()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "other.csv"), []byte("x\n"), 0o644))
		require.NoError(t, os.WriteFile(path+".tmp", []byte("x\n"), 0o644))
		w.MarkOwnWrite()
		require.NoError(t, os.WriteFile(path, []byte("name\nBob\n"), 0o644))

		_, ok := runCmd(t, cmd, 500*time.Millisecond)
		assert.False(t, ok, "no message expected")

		require.NoError(t, w.Close())
	})

	t.Run("close ends the command", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "people.csv")
		require.NoError(t, os.WriteFile(path, []byte("name\n"), 0o644))

		w, err := NewFileWatcher(path)
		require.NoError(t, err)

		cmd := w.Start()
		require.NoError(t, w.Close())

		msg, ok := runCmd(t, cmd, 2*time.Second)
		require.True(t, ok)
		assert.Nil(t, msg)
	})
}
