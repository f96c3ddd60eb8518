package tui

import (
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	lipgloss "charm.land/lipgloss/v2"

	"github.com/colonyops/tabula/internal/core/styles"
)

// promptPurpose says what a submitted prompt value is used for.
type promptPurpose int

const (
	promptEditCell promptPurpose = iota
	promptColumnName
	promptColumnDefault
	promptSaveAs
	promptOpenPath
)

// InputPrompt is a single line text entry modal.
type InputPrompt struct {
	purpose   promptPurpose
	title     string
	label     string
	input     textinput.Model
	err       string
	submitted bool
	cancelled bool

	// carried from the column name step to the default value step
	column string
}

// NewInputPrompt creates a focused prompt seeded with value.
func NewInputPrompt(purpose promptPurpose, title, label, value string, width int) InputPrompt {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Focus()
	inputStyles := textinput.DefaultStyles(true)
	inputStyles.Focused.Prompt = lipgloss.NewStyle().Foreground(styles.ColorPrimary)
	inputStyles.Cursor.Color = styles.ColorPrimary
	ti.SetStyles(inputStyles)
	ti.SetWidth(max(min(width-12, 60), 20))
	ti.SetValue(value)
	ti.CursorEnd()

	return InputPrompt{
		purpose: purpose,
		title:   title,
		label:   label,
		input:   ti,
	}
}

// Update handles messages for the prompt.
func (p InputPrompt) Update(msg tea.Msg) (InputPrompt, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyPressMsg); ok {
		switch keyMsg.String() {
		case "enter":
			p.submitted = true
			return p, nil
		case "esc":
			p.cancelled = true
			return p, nil
		}
	}

	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	p.err = ""
	return p, cmd
}

// Value returns the entered text.
func (p InputPrompt) Value() string { return p.input.Value() }

// Submitted reports whether enter was pressed.
func (p InputPrompt) Submitted() bool { return p.submitted }

// Cancelled reports whether esc was pressed.
func (p InputPrompt) Cancelled() bool { return p.cancelled }

// Reject keeps the prompt open with an inline error.
func (p *InputPrompt) Reject(msg string) {
	p.submitted = false
	p.err = msg
}

// View renders the prompt box.
func (p InputPrompt) View() string {
	var b strings.Builder
	if p.label != "" {
		b.WriteString(styles.FormHelpStyle.Render(p.label))
		b.WriteString("\n")
	}
	b.WriteString(styles.FormFieldFocusedStyle.Render(p.input.View()))
	if p.err != "" {
		b.WriteString("\n")
		b.WriteString(styles.FormErrorStyle.Render(p.err))
	}
	return modalFrame(p.title, b.String(), "enter confirm  esc cancel")
}
