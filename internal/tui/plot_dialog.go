package tui

import (
	"fmt"
	"slices"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	lipgloss "charm.land/lipgloss/v2"

	"github.com/colonyops/tabula/internal/core/plot"
	"github.com/colonyops/tabula/internal/core/styles"
)

const (
	plotFieldTitle = iota
	plotFieldKind
	plotFieldFlip
	plotFieldOutput
	plotFieldCount
)

// PlotDialog collects the options for exporting a chart of two columns.
type PlotDialog struct {
	xHeader, yHeader string

	title  textinput.Model
	output textinput.Model
	kind   plot.Kind
	flip   bool
	focus  int

	submitted bool
	cancelled bool
}

func newDialogInput(value string, width int) textinput.Model {
	ti := textinput.New()
	ti.Prompt = ""
	inputStyles := textinput.DefaultStyles(true)
	inputStyles.Cursor.Color = styles.ColorPrimary
	ti.SetStyles(inputStyles)
	ti.SetWidth(width)
	ti.SetValue(value)
	ti.CursorEnd()
	return ti
}

// NewPlotDialog creates the dialog for plotting y against x.
func NewPlotDialog(xHeader, yHeader, title string, kind plot.Kind, output string, width int) *PlotDialog {
	inputWidth := max(min(width-24, 50), 20)
	d := &PlotDialog{
		xHeader: xHeader,
		yHeader: yHeader,
		title:   newDialogInput(title, inputWidth),
		output:  newDialogInput(output, inputWidth),
		kind:    kind,
	}
	d.title.Focus()
	return d
}

// Update handles messages for the dialog.
func (d *PlotDialog) Update(msg tea.Msg) tea.Cmd {
	if keyMsg, ok := msg.(tea.KeyPressMsg); ok {
		switch keyMsg.String() {
		case "esc":
			d.cancelled = true
			return nil
		case "enter":
			d.submitted = true
			return nil
		case "tab", "down":
			d.setFocus((d.focus + 1) % plotFieldCount)
			return nil
		case "shift+tab", "up":
			d.setFocus((d.focus + plotFieldCount - 1) % plotFieldCount)
			return nil
		}

		switch d.focus {
		case plotFieldKind:
			switch keyMsg.String() {
			case "right", "l", "space":
				d.cycleKind(1)
			case "left", "h":
				d.cycleKind(-1)
			}
			return nil
		case plotFieldFlip:
			if keyMsg.String() == "space" || keyMsg.String() == "x" {
				d.flip = !d.flip
			}
			return nil
		}
	}

	var cmd tea.Cmd
	switch d.focus {
	case plotFieldTitle:
		d.title, cmd = d.title.Update(msg)
	case plotFieldOutput:
		d.output, cmd = d.output.Update(msg)
	}
	return cmd
}

func (d *PlotDialog) setFocus(f int) {
	d.focus = f
	d.title.Blur()
	d.output.Blur()
	switch f {
	case plotFieldTitle:
		d.title.Focus()
	case plotFieldOutput:
		d.output.Focus()
	}
}

func (d *PlotDialog) cycleKind(step int) {
	kinds := plot.Kinds()
	i := slices.Index(kinds, d.kind)
	if i < 0 {
		i = 0
	}
	d.kind = kinds[(i+step+len(kinds))%len(kinds)]
}

// Submitted reports whether the dialog was confirmed.
func (d *PlotDialog) Submitted() bool { return d.submitted }

// Cancelled reports whether the dialog was dismissed.
func (d *PlotDialog) Cancelled() bool { return d.cancelled }

// Reject keeps the dialog open after a failed export.
func (d *PlotDialog) Reject() { d.submitted = false }

// Columns returns the x and y headers.
func (d *PlotDialog) Columns() (string, string) { return d.xHeader, d.yHeader }

// Output returns the target path.
func (d *PlotDialog) Output() string { return strings.TrimSpace(d.output.Value()) }

// Options returns the export options entered so far.
func (d *PlotDialog) Options() plot.Options {
	return plot.Options{
		Kind:  d.kind,
		Title: d.title.Value(),
		Flip:  d.flip,
	}
}

// View renders the dialog box.
func (d *PlotDialog) View() string {
	x, y := d.xHeader, d.yHeader
	if d.flip {
		x, y = y, x
	}

	flip := styles.IconHidden
	if d.flip {
		flip = styles.IconVisible
	}

	rows := []string{
		styles.FormHelpStyle.Render(fmt.Sprintf("x: %s  y: %s", x, y)),
		"",
		d.row(plotFieldTitle, "Title", d.title.View()),
		d.row(plotFieldKind, "Kind", "‹ "+d.kind.String()+" ›"),
		d.row(plotFieldFlip, "Flip axes", flip),
		d.row(plotFieldOutput, "Output", d.output.View()),
	}
	return modalFrame(styles.IconChart+" Plot", lipgloss.JoinVertical(lipgloss.Left, rows...),
		"tab next  ←/→ kind  space flip  enter export  esc cancel")
}

func (d *PlotDialog) row(field int, label, value string) string {
	labelStyle := styles.FormHelpStyle
	marker := "  "
	if d.focus == field {
		labelStyle = styles.CommandHeaderStyle
		marker = "> "
	}
	return marker + labelStyle.Width(10).Render(label) + " " + value
}
