package tui

import (
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/tabula/pkg/tuitest"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"people.csv":          {Data: []byte("name\n")},
		"notes.txt":           {Data: []byte("x")},
		"data/sales.csv":      {Data: []byte("a,b\n")},
		"data/deep/trend.csv": {Data: []byte("x,y\n")},
	}
}

func TestDiscoverFiles(t *testing.T) {
	t.Run("dedups across patterns", func(t *testing.T) {
		files, truncated, err := discoverFiles(testFS(), []string{"*.csv", "**/*.csv"}, 0)
		require.NoError(t, err)
		assert.False(t, truncated)
		assert.Equal(t, []string{"data/deep/trend.csv", "data/sales.csv", "people.csv"}, files)
	})

	t.Run("limit truncates", func(t *testing.T) {
		files, truncated, err := discoverFiles(testFS(), []string{"**/*.csv"}, 2)
		require.NoError(t, err)
		assert.True(t, truncated)
		assert.Len(t, files, 2)
	})

	t.Run("bad pattern", func(t *testing.T) {
		_, _, err := discoverFiles(testFS(), []string{"[a"}, 0)
		assert.Error(t, err)
	})
}

func TestFilePicker(t *testing.T) {
	files := []string{"a.csv", "b.csv"}

	t.Run("enter chooses highlighted", func(t *testing.T) {
		p := NewFilePicker(nil, files, false, 80, 40)
		p.Update(tuitest.Key("down"))
		p.Update(tuitest.Key("enter"))
		assert.Equal(t, "b.csv", p.Chosen())
	})

	t.Run("tab asks for a typed path", func(t *testing.T) {
		p := NewFilePicker(nil, files, false, 80, 40)
		p.Update(tuitest.Key("tab"))
		assert.True(t, p.WantsTypedPath())
	})

	t.Run("empty list", func(t *testing.T) {
		p := NewFilePicker(nil, nil, false, 80, 40)
		p.Update(tuitest.Key("enter"))
		assert.Empty(t, p.Chosen())
		assert.Contains(t, p.View(), "no matching files")
	})

	t.Run("recent files come first without duplicates", func(t *testing.T) {
		abs, err := filepath.Abs("b.csv")
		require.NoError(t, err)

		p := NewFilePicker([]string{abs}, files, false, 80, 40)
		require.Len(t, p.list.Items(), 2)
		assert.Contains(t, tuitest.StripANSI(p.View()), "recent")

		p.Update(tuitest.Key("enter"))
		assert.Equal(t, abs, p.Chosen())
	})
}
