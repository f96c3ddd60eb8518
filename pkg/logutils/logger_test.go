package logutils

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("writes json to file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "logs", "tabula.log")

		l, closer, err := New("info", path)
		require.NoError(t, err)

		l.Debug().Msg("hidden")
		l.Info().Msg("shown")
		closer()

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"message":"shown"`)
		assert.NotContains(t, string(data), "hidden")
	})

	t.Run("appends across runs", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tabula.log")

		for _, msg := range []string{"one", "two"} {
			l, closer, err := New("info", path)
			require.NoError(t, err)
			l.Info().Msg(msg)
			closer()
		}

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "one")
		assert.Contains(t, string(data), "two")
	})

	t.Run("invalid level", func(t *testing.T) {
		_, _, err := New("loud", "")
		require.Error(t, err)
	})
}

func TestNew_Echo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tabula.log")
	var echo bytes.Buffer

	l, closer, err := New("debug", path, &echo)
	require.NoError(t, err)

	l.Info().Msg("file only")
	l.Warn().Str("path", "people.csv").Msg("changed on disk")
	closer()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "file only")
	assert.Contains(t, string(data), "changed on disk")

	assert.NotContains(t, echo.String(), "file only")
	assert.Contains(t, echo.String(), "changed on disk")
	assert.Contains(t, echo.String(), "path=people.csv")
}
