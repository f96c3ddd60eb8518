package tui

import (
	"strings"

	lipgloss "charm.land/lipgloss/v2"

	"github.com/colonyops/tabula/internal/core/styles"
)

// promptChoice is the answer picked in a ChoiceModal.
type promptChoice int

const (
	choiceSave promptChoice = iota
	choiceDiscard
	choiceCancel
)

var choiceLabels = []string{"Save", "Discard", "Cancel"}

// ChoiceModal asks whether to save unsaved changes before the file is
// closed. It defaults to Save.
type ChoiceModal struct {
	title    string
	message  string
	selected promptChoice
}

// NewSavePrompt creates the modal shown before closing a modified file.
func NewSavePrompt(name string) ChoiceModal {
	return ChoiceModal{
		title:   "Unsaved changes",
		message: "Save changes to " + name + " before closing?",
	}
}

// Next moves the selection right, wrapping.
func (m *ChoiceModal) Next() {
	m.selected = (m.selected + 1) % promptChoice(len(choiceLabels))
}

// Prev moves the selection left, wrapping.
func (m *ChoiceModal) Prev() {
	m.selected = (m.selected + promptChoice(len(choiceLabels)) - 1) % promptChoice(len(choiceLabels))
}

// Selected returns the highlighted choice.
func (m ChoiceModal) Selected() promptChoice { return m.selected }

// HandleKey applies a key to the modal. It returns the final choice and true
// once the user commits or cancels.
func (m *ChoiceModal) HandleKey(k string) (promptChoice, bool) {
	switch k {
	case "left", "h", "shift+tab":
		m.Prev()
	case "right", "l", "tab":
		m.Next()
	case "s", "y":
		return choiceSave, true
	case "d", "n":
		return choiceDiscard, true
	case "esc":
		return choiceCancel, true
	case "enter":
		return m.selected, true
	}
	return 0, false
}

// View renders the modal box.
func (m ChoiceModal) View() string {
	buttons := make([]string, 0, len(choiceLabels)*2)
	for i, label := range choiceLabels {
		if i > 0 {
			buttons = append(buttons, "  ")
		}
		if promptChoice(i) == m.selected {
			buttons = append(buttons, styles.ModalButtonSelectedStyle.Render(label))
		} else {
			buttons = append(buttons, styles.ModalButtonStyle.Render(label))
		}
	}
	buttonRow := lipgloss.NewStyle().MarginTop(1).Render(lipgloss.JoinHorizontal(lipgloss.Center, buttons...))

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		styles.ModalTitleStyle.Render(m.title),
		"",
		m.message,
		buttonRow,
		styles.ModalHelpStyle.Render("←/→ select  enter confirm  s save  d discard  esc cancel"),
	)
	return styles.ModalStyle.Render(content)
}

// overlayCenter places box over the middle of background.
func overlayCenter(background, box string, width, height int) string {
	bgLayer := lipgloss.NewLayer(background)
	w, h := lipgloss.Width(box), lipgloss.Height(box)
	x := max((width-w)/2, 0)
	y := max((height-h)/2, 0)
	fg := lipgloss.NewLayer(box).X(x).Y(y).Z(1)
	return lipgloss.NewCompositor(bgLayer, fg).Render()
}

// modalFrame wraps body in the standard modal chrome.
func modalFrame(title, body, help string) string {
	parts := []string{styles.ModalTitleStyle.Render(title), ""}
	if body != "" {
		parts = append(parts, strings.TrimRight(body, "\n"))
	}
	if help != "" {
		parts = append(parts, "", styles.ModalHelpStyle.Render(help))
	}
	return styles.ModalStyle.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}
