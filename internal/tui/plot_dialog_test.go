package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/colonyops/tabula/internal/core/plot"
	"github.com/colonyops/tabula/pkg/tuitest"
)

func TestPlotDialog(t *testing.T) {
	newDialog := func() *PlotDialog {
		return NewPlotDialog("time", "temp", "Plot Title", plot.Scatter, "data-plot.xlsx", 100)
	}

	t.Run("defaults", func(t *testing.T) {
		d := newDialog()
		d.Update(tuitest.Key("enter"))

		assert.True(t, d.Submitted())
		assert.Equal(t, plot.Options{Kind: plot.Scatter, Title: "Plot Title"}, d.Options())
		assert.Equal(t, "data-plot.xlsx", d.Output())
	})

	t.Run("cycle kind and flip", func(t *testing.T) {
		d := newDialog()
		d.Update(tuitest.Key("tab"))
		d.Update(tuitest.Key("right"))
		d.Update(tuitest.Key("right"))
		d.Update(tuitest.Key("tab"))
		d.Update(tuitest.Key("space"))

		opts := d.Options()
		assert.Equal(t, plot.Line, opts.Kind)
		assert.True(t, opts.Flip)
		assert.Contains(t, d.View(), "x: temp  y: time")
	})

	t.Run("kind wraps backwards", func(t *testing.T) {
		d := newDialog()
		d.Update(tuitest.Key("tab"))
		d.Update(tuitest.Key("left"))
		assert.Equal(t, plot.Line, d.Options().Kind)
	})

	t.Run("typing edits the focused input", func(t *testing.T) {
		d := newDialog()
		d.Update(tuitest.Key("!"))
		assert.Equal(t, "Plot Title!", d.Options().Title)
	})

	t.Run("esc cancels", func(t *testing.T) {
		d := newDialog()
		d.Update(tuitest.Key("esc"))
		assert.True(t, d.Cancelled())
	})
}
