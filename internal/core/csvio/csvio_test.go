package csvio

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrite(t *testing.T) {
	tests := []struct {
		name    string
		headers []string
		rows    [][]string
		visible []int
		want    string
	}{
		{
			name:    "hidden column is dropped",
			headers: []string{"name", "age"},
			rows:    [][]string{{"Alice", "30"}, {"Bob", "25"}},
			visible: []int{0},
			want:    "name\nAlice\nBob\n",
		},
		{
			name:    "all columns",
			headers: []string{"name", "age"},
			rows:    [][]string{{"Alice", "30"}},
			visible: []int{0, 1},
			want:    "name,age\nAlice,30\n",
		},
		{
			name:    "short rows are padded",
			headers: []string{"a", "b", "c"},
			rows:    [][]string{{"1"}},
			visible: []int{0, 2},
			want:    "a,c\n1,\n",
		},
		{
			name:    "quoting",
			headers: []string{"text"},
			rows:    [][]string{{"x, y"}, {"say \"hi\""}, {"two\nlines"}},
			visible: []int{0},
			want:    "text\n\"x, y\"\n\"say \"\"hi\"\"\"\n\"two\nlines\"\n",
		},
		{
			name:    "lone empty field is quoted",
			headers: []string{"a", "b"},
			rows:    [][]string{{"", "1"}, {"x", "2"}},
			visible: []int{0},
			want:    "a\n\"\"\nx\n",
		},
		{
			name:    "no visible columns",
			headers: []string{"a"},
			rows:    [][]string{{"1"}},
			visible: nil,
			want:    "",
		},
		{
			name:    "header only",
			headers: []string{"a", "b"},
			visible: []int{1},
			want:    "b\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Write(&buf, tt.headers, tt.rows, tt.visible))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestWrite_ReadsBack(t *testing.T) {
	headers := []string{"id", "note", "blank"}
	rows := [][]string{
		{"1", "plain", ""},
		{"2", "comma, inside", ""},
		{"3", "multi\nline", ""},
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, headers, rows, []int{0, 1, 2}))

	got, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, append([][]string{headers}, rows...), got)
}

func TestWrite_SingleEmptyColumnReadsBack(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, []string{"a"}, [][]string{{""}, {""}}, []int{0}))

	got, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a"}, {""}, {""}}, got)
}

func TestWriteFileAtomic(t *testing.T) {
	t.Run("replaces the target", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.csv")
		require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))

		err := WriteFileAtomic(path, func(w io.Writer) error {
			_, err := io.WriteString(w, "new")
			return err
		})
		require.NoError(t, err)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "new", string(data))
		assert.NoFileExists(t, path+".tmp")
	})

	t.Run("failed write keeps the original", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.csv")
		require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))

		boom := errors.New("boom")
		err := WriteFileAtomic(path, func(w io.Writer) error {
			_, _ = io.WriteString(w, "partial")
			return boom
		})
		require.ErrorIs(t, err, boom)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "old", string(data))
		assert.NoFileExists(t, path+".tmp")
	})

	t.Run("keeps the target's permissions", func(t *testing.T) {
		if runtime.GOOS == "windows" {
			t.Skip("unix permission bits")
		}
		path := filepath.Join(t.TempDir(), "out.csv")
		require.NoError(t, os.WriteFile(path, []byte("old"), 0o600))
		require.NoError(t, os.Chmod(path, 0o600))

		require.NoError(t, WriteFileAtomic(path, func(w io.Writer) error {
			_, err := io.WriteString(w, "new")
			return err
		}))

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	})

	t.Run("missing directory", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nope", "out.csv")
		err := WriteFileAtomic(path, func(io.Writer) error { return nil })
		require.Error(t, err)
	})
}
