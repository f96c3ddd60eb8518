package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/colonyops/tabula/pkg/tuitest"
)

func TestColumnPicker(t *testing.T) {
	headers := []string{"name", "age", "city"}

	t.Run("seeded from flags", func(t *testing.T) {
		p := NewColumnPicker(headers, map[string]bool{"name": true, "age": false, "city": true}, 80, 40)
		assert.Equal(t, []string{"name", "city"}, p.Selected())
	})

	t.Run("toggle current and apply", func(t *testing.T) {
		p := NewColumnPicker(headers, map[string]bool{"name": true, "age": true, "city": true}, 80, 40)
		p.Update(tuitest.Key("down"))
		p.Update(tuitest.Key("space"))
		p.Update(tuitest.Key("enter"))

		assert.True(t, p.Applied())
		assert.Equal(t, []string{"name", "city"}, p.Selected())
	})

	t.Run("toggle all", func(t *testing.T) {
		p := NewColumnPicker(headers, map[string]bool{"name": true}, 80, 40)
		p.Update(tuitest.Key("a"))
		assert.Equal(t, headers, p.Selected())

		p.Update(tuitest.Key("a"))
		assert.Empty(t, p.Selected())
	})

	t.Run("esc cancels", func(t *testing.T) {
		p := NewColumnPicker(headers, map[string]bool{}, 80, 40)
		p.Update(tuitest.Key("esc"))
		assert.True(t, p.Cancelled())
		assert.False(t, p.Applied())
	})

	t.Run("view shows counts", func(t *testing.T) {
		p := NewColumnPicker(headers, map[string]bool{"name": true}, 80, 40)
		assert.Contains(t, p.View(), "1/3 visible")
	})
}
