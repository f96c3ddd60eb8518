package tui

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/viewport"
	lipgloss "charm.land/lipgloss/v2"
	"github.com/charmbracelet/glamour"
	"github.com/rs/zerolog/log"

	"github.com/colonyops/tabula/internal/core/notify"
	"github.com/colonyops/tabula/internal/core/styles"
)

const (
	scrollModalMaxWidth  = 90
	scrollModalMaxHeight = 30
	scrollModalMargin    = 4
	scrollModalChrome    = 6
)

// helpMarkdown renders the key reference as markdown tables.
func helpMarkdown(sections []HelpSection) string {
	var b strings.Builder
	b.WriteString("# Keys\n")
	for _, s := range sections {
		fmt.Fprintf(&b, "\n## %s\n\n| Key | Action |\n| --- | --- |\n", s.Title)
		for _, e := range s.Entries {
			fmt.Fprintf(&b, "| `%s` | %s |\n", strings.ReplaceAll(e.Key, "|", `\|`), e.Desc)
		}
	}
	return b.String()
}

// renderMarkdown renders md with the active theme, falling back to the raw
// text when glamour fails.
func renderMarkdown(md string, width int) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithStyles(styles.GlamourStyle()),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		log.Warn().Err(err).Msg("failed to create markdown renderer")
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		log.Warn().Err(err).Msg("failed to render markdown")
		return md
	}
	return strings.TrimRight(out, "\n")
}

// ScrollModal shows read-only content in a scrollable box.
type ScrollModal struct {
	title    string
	viewport viewport.Model
	width    int
}

func newScrollModal(title string, width, height int) *ScrollModal {
	modalWidth := max(min(width-scrollModalMargin, scrollModalMaxWidth), 30)
	modalHeight := max(min(height-scrollModalMargin, scrollModalMaxHeight), scrollModalChrome+1)

	vp := viewport.New(
		viewport.WithWidth(modalWidth-4),
		viewport.WithHeight(modalHeight-scrollModalChrome),
	)
	return &ScrollModal{title: title, viewport: vp, width: modalWidth}
}

// NewHelpModal renders the key reference.
func NewHelpModal(sections []HelpSection, width, height int) *ScrollModal {
	m := newScrollModal("Help", width, height)
	m.viewport.SetContent(renderMarkdown(helpMarkdown(sections), m.width-4))
	return m
}

// NewMessagesModal lists notification history, newest first.
func NewMessagesModal(history []notify.Notification, width, height int) *ScrollModal {
	m := newScrollModal("Messages", width, height)
	if len(history) == 0 {
		m.viewport.SetContent(styles.EmptyStateStyle.Render("No messages"))
		return m
	}

	var b strings.Builder
	for i, n := range history {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(formatNotification(n))
	}
	m.viewport.SetContent(b.String())
	return m
}

func formatNotification(n notify.Notification) string {
	ts := styles.StatusMutedStyle.UnsetBackground().Render(n.CreatedAt.Format("15:04:05"))

	icon := styles.IconNotifyInfo
	msgStyle := styles.CommandStyle
	switch n.Level {
	case notify.LevelError:
		icon = styles.IconNotifyError
		msgStyle = lipgloss.NewStyle().Foreground(styles.ColorError)
	case notify.LevelWarning:
		icon = styles.IconNotifyWarning
		msgStyle = lipgloss.NewStyle().Foreground(styles.ColorWarning)
	}
	return fmt.Sprintf("%s %s %s", ts, icon, msgStyle.Render(n.Message))
}

// HandleKey scrolls the modal. It reports whether the modal should close.
func (m *ScrollModal) HandleKey(k string) bool {
	switch k {
	case "esc", "q", "?", "enter":
		return true
	case "up", "k":
		m.viewport.ScrollUp(1)
	case "down", "j":
		m.viewport.ScrollDown(1)
	case "pgup":
		m.viewport.PageUp()
	case "pgdown", "space":
		m.viewport.PageDown()
	}
	return false
}

// View renders the modal box.
func (m *ScrollModal) View() string {
	title := m.title
	if m.viewport.TotalLineCount() > m.viewport.VisibleLineCount() {
		title += fmt.Sprintf(" (%.0f%%)", m.viewport.ScrollPercent()*100)
	}
	return modalFrame(title, m.viewport.View(), "↑/↓ scroll  esc close")
}
