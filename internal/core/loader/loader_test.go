package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stringOpener(s string) Opener {
	return func() (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader(s)), nil
	}
}

// sequenceOpener returns a different reader on each call, repeating the last.
func sequenceOpener(readers ...func() io.Reader) Opener {
	var calls atomic.Int32
	return func() (io.ReadCloser, error) {
		i := int(calls.Add(1)) - 1
		if i >= len(readers) {
			i = len(readers) - 1
		}
		return io.NopCloser(readers[i]()), nil
	}
}

type truncatedReader struct {
	data []byte
	err  error
}

func (r *truncatedReader) Read(p []byte) (int, error) {
	if len(r.data) == 0 {
		return 0, r.err
	}
	n := copy(p, r.data)
	r.data = r.data[n:]
	return n, nil
}

func collect(t *testing.T, load *Load) ([]Batch, error) {
	t.Helper()

	var batches []Batch
	for b := range load.Batches {
		batches = append(batches, b)
	}

	select {
	case err := <-load.Done:
		return batches, err
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for load to finish")
		return nil, nil
	}
}

func rows(batches []Batch) [][]string {
	var out [][]string
	for _, b := range batches {
		out = append(out, b.Rows...)
	}
	return out
}

func csvWithRows(n int) string {
	var sb strings.Builder
	sb.WriteString("id,name\n")
	for i := range n {
		fmt.Fprintf(&sb, "%d,row-%d\n", i+1, i+1)
	}
	return sb.String()
}

func TestBeginSource_DeliversAllRows(t *testing.T) {
	for _, n := range []int{0, 1, 7, 600} {
		t.Run(fmt.Sprintf("%d rows", n), func(t *testing.T) {
			l := New(Options{BatchSize: 50})

			load, err := l.BeginSource(context.Background(), "mem", stringOpener(csvWithRows(n)))
			require.NoError(t, err)

			batches, err := collect(t, load)
			require.NoError(t, err)
			require.NotEmpty(t, batches)

			first := batches[0]
			assert.True(t, first.First)
			assert.Equal(t, []string{"id", "name"}, first.Header)
			assert.Empty(t, first.Rows, "header batch carries no rows")
			assert.Equal(t, Progress{RowsRead: 0, TotalRows: n}, first.Progress)

			last := batches[len(batches)-1]
			assert.Equal(t, n, last.Progress.RowsRead)
			assert.Len(t, rows(batches), n)
		})
	}
}

func TestBeginSource_ProgressIsMonotonic(t *testing.T) {
	l := New(Options{BatchSize: 1})

	load, err := l.BeginSource(context.Background(), "mem", stringOpener(csvWithRows(25)))
	require.NoError(t, err)

	batches, err := collect(t, load)
	require.NoError(t, err)

	prev := -1
	for _, b := range batches {
		assert.GreaterOrEqual(t, b.Progress.RowsRead, prev)
		assert.LessOrEqual(t, b.Progress.RowsRead, b.Progress.TotalRows)
		assert.Equal(t, 25, b.Progress.TotalRows)
		prev = b.Progress.RowsRead
	}
	assert.Len(t, batches, 26, "header batch plus one batch per row")
}

func TestBeginSource_EmptySource(t *testing.T) {
	l := New(Options{})

	load, err := l.BeginSource(context.Background(), "mem", stringOpener(""))
	require.NoError(t, err)

	batches, err := collect(t, load)
	require.NoError(t, err)
	require.Len(t, batches, 1)
	assert.Empty(t, batches[0].Header)
	assert.Equal(t, Progress{}, batches[0].Progress)
}

func TestBegin_SourceUnavailable(t *testing.T) {
	l := New(Options{})

	t.Run("missing file", func(t *testing.T) {
		load, err := l.Begin(context.Background(), filepath.Join(t.TempDir(), "missing.csv"))
		require.ErrorIs(t, err, ErrSourceUnavailable)
		assert.Nil(t, load)
	})

	t.Run("directory", func(t *testing.T) {
		_, err := l.Begin(context.Background(), t.TempDir())
		require.ErrorIs(t, err, ErrSourceUnavailable)
	})
}

func TestBegin_ReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "people.csv")
	require.NoError(t, os.WriteFile(path, []byte("name,age\nAlice,30\nBob,25\n"), 0o644))

	load, err := New(Options{}).Begin(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, path, load.Name)

	batches, err := collect(t, load)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Alice", "30"}, {"Bob", "25"}}, rows(batches))
}

func TestBeginSource_TruncatedStream(t *testing.T) {
	full := csvWithRows(10)
	lines := strings.SplitAfter(full, "\n")
	// header, five complete rows, then half of the sixth
	partial := strings.Join(lines[:6], "") + "6,ro"
	truncated := func() io.Reader {
		return &truncatedReader{data: []byte(partial), err: io.ErrUnexpectedEOF}
	}

	tests := []struct {
		name      string
		open      Opener
		wantTotal int
	}{
		{
			name:      "source truncated after the pre-scan",
			open:      sequenceOpener(func() io.Reader { return strings.NewReader(full) }, truncated),
			wantTotal: 10,
		},
		{
			name:      "source truncated on every read",
			open:      sequenceOpener(truncated),
			wantTotal: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			load, err := New(Options{BatchSize: 2}).BeginSource(context.Background(), "mem", tt.open)
			require.NoError(t, err)

			batches, err := collect(t, load)

			var loadErr *LoadIOError
			require.ErrorAs(t, err, &loadErr)
			assert.Equal(t, 5, loadErr.RowsRead)
			assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
			require.NotEmpty(t, batches)
			assert.Equal(t, []string{"id", "name"}, batches[0].Header)
			assert.Len(t, rows(batches), 5)
			assert.Equal(t, tt.wantTotal, batches[0].Progress.TotalRows)
		})
	}
}

func TestBegin_FileEndsInsideQuotedField(t *testing.T) {
	full := csvWithRows(10)
	lines := strings.SplitAfter(full, "\n")
	path := filepath.Join(t.TempDir(), "cut.csv")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines[:6], "")+`6,"ro`), 0o644))

	load, err := New(Options{}).Begin(context.Background(), path)
	require.NoError(t, err)

	batches, err := collect(t, load)

	var loadErr *LoadIOError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, 5, loadErr.RowsRead)
	require.NotEmpty(t, batches)
	assert.Equal(t, []string{"id", "name"}, batches[0].Header)
	assert.Equal(t, []string{"5", "row-5"}, rows(batches)[4])
	assert.Len(t, rows(batches), 5)

	last := batches[len(batches)-1].Progress
	assert.LessOrEqual(t, last.RowsRead, last.TotalRows)
}

func TestBeginSource_InvalidEncoding(t *testing.T) {
	data := "a,b\n1,2\n3,\xff\xfe\n5,6\n"

	load, err := New(Options{}).BeginSource(context.Background(), "mem", stringOpener(data))
	require.NoError(t, err)

	batches, err := collect(t, load)

	var loadErr *LoadIOError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, 1, loadErr.RowsRead)

	var encErr *InvalidEncodingError
	require.ErrorAs(t, err, &encErr)
	assert.Equal(t, 3, encErr.Line)
	assert.Equal(t, 1, encErr.Field)
	assert.Equal(t, [][]string{{"1", "2"}}, rows(batches))
}

func TestBeginSource_Dialect(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantHeader []string
		wantRows   [][]string
	}{
		{
			name:       "ragged rows are kept as read",
			input:      "a,b\n1\n2,3,4\n",
			wantHeader: []string{"a", "b"},
			wantRows:   [][]string{{"1"}, {"2", "3", "4"}},
		},
		{
			name:       "quoted fields embed commas and newlines",
			input:      "a,b\n\"x, y\",\"line1\nline2\"\n",
			wantHeader: []string{"a", "b"},
			wantRows:   [][]string{{"x, y", "line1\nline2"}},
		},
		{
			name:       "utf-8 byte order mark is dropped",
			input:      "\xef\xbb\xbfname,age\nAlice,30\n",
			wantHeader: []string{"name", "age"},
			wantRows:   [][]string{{"Alice", "30"}},
		},
		{
			name:       "crlf line endings",
			input:      "a,b\r\n1,2\r\n",
			wantHeader: []string{"a", "b"},
			wantRows:   [][]string{{"1", "2"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			load, err := New(Options{}).BeginSource(context.Background(), "mem", stringOpener(tt.input))
			require.NoError(t, err)

			batches, err := collect(t, load)
			require.NoError(t, err)

			assert.Equal(t, tt.wantHeader, batches[0].Header)
			assert.Equal(t, tt.wantRows, rows(batches))
			assert.Equal(t, len(tt.wantRows), batches[0].Progress.TotalRows)
		})
	}
}

func TestBeginSource_SourceGrewAfterPrescan(t *testing.T) {
	open := sequenceOpener(
		func() io.Reader { return strings.NewReader(csvWithRows(2)) },
		func() io.Reader { return strings.NewReader(csvWithRows(4)) },
	)

	load, err := New(Options{BatchSize: 1}).BeginSource(context.Background(), "mem", open)
	require.NoError(t, err)

	batches, err := collect(t, load)
	require.NoError(t, err)

	for _, b := range batches {
		assert.LessOrEqual(t, b.Progress.RowsRead, b.Progress.TotalRows)
	}
	assert.Equal(t, Progress{RowsRead: 4, TotalRows: 4}, batches[len(batches)-1].Progress)
}

func TestLoad_Cancel(t *testing.T) {
	load, err := New(Options{BatchSize: 1}).BeginSource(context.Background(), "mem", stringOpener(csvWithRows(100)))
	require.NoError(t, err)

	load.Cancel()

	batches, err := collect(t, load)

	var loadErr *LoadIOError
	require.ErrorAs(t, err, &loadErr)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, len(rows(batches)), 100)
}

func TestBeginSource_OpenerFailsOnReopen(t *testing.T) {
	var calls atomic.Int32
	open := func() (io.ReadCloser, error) {
		if calls.Add(1) > 1 {
			return nil, errors.New("gone")
		}
		return io.NopCloser(strings.NewReader(csvWithRows(3))), nil
	}

	load, err := New(Options{}).BeginSource(context.Background(), "mem", open)
	require.NoError(t, err)

	batches, err := collect(t, load)

	var loadErr *LoadIOError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, 0, loadErr.RowsRead)
	assert.Empty(t, batches)
}

func TestProgress_Fraction(t *testing.T) {
	assert.InDelta(t, 1.0, Progress{}.Fraction(), 0.0001)
	assert.InDelta(t, 0.5, Progress{RowsRead: 5, TotalRows: 10}.Fraction(), 0.0001)
}
