package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	tea "charm.land/bubbletea/v2"
	lipgloss "charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/colonyops/tabula/internal/core/config"
	"github.com/colonyops/tabula/internal/core/session"
	"github.com/colonyops/tabula/internal/core/styles"
)

// View renders the model.
func (m Model) View() tea.View {
	if m.quitting {
		return tea.NewView("")
	}

	w, h := m.width, m.height
	mainView := lipgloss.JoinVertical(lipgloss.Left,
		m.renderTitleBar(w),
		lipgloss.NewStyle().Height(m.gridHeight()).MaxHeight(m.gridHeight()).Render(m.renderBody(w)),
		m.renderStatusBar(w),
	)

	var content string
	switch {
	case m.state == stateSavePrompt:
		content = overlayCenter(mainView, m.savePrompt.View(), w, h)
	case m.state == statePrompt:
		content = overlayCenter(mainView, m.prompt.View(), w, h)
	case m.state == stateColumns && m.columns != nil:
		content = overlayCenter(mainView, m.columns.View(), w, h)
	case m.state == stateFiles && m.files != nil:
		content = overlayCenter(mainView, m.files.View(), w, h)
	case m.state == statePlot && m.plotDialog != nil:
		content = overlayCenter(mainView, m.plotDialog.View(), w, h)
	case m.state == stateScroll && m.scroll != nil:
		content = overlayCenter(mainView, m.scroll.View(), w, h)
	default:
		content = mainView
	}

	if m.toastController.HasToasts() {
		content = m.toastView.Overlay(content, w, h)
	}

	v := tea.NewView(content)
	v.AltScreen = true
	return v
}

func (m Model) renderTitleBar(width int) string {
	title := styles.CommandHeaderStyle.Render(styles.IconTable + " tabula")
	if p := m.sess.Path(); p != "" {
		title += styles.DividerStyle.Render("  ") + styles.CommandStyle.Render(p)
		if m.sess.Changed() {
			title += styles.StatusModifiedStyle.UnsetBackground().Render(" " + styles.IconPencil)
		}
	}
	return ansi.Truncate(title, width, "…")
}

func (m Model) renderBody(width int) string {
	if m.sess.State() == session.NoFile && m.load == nil {
		return m.renderStartPage(width)
	}
	if m.load != nil && m.sess.RowCount() == 0 && m.sess.ColumnCount() == 0 {
		msg := fmt.Sprintf("%s loading %s", m.spinner.View(), filepath.Base(m.load.Name))
		return lipgloss.Place(width, m.gridHeight(), lipgloss.Center, lipgloss.Center, msg)
	}
	return m.grid.View(m.sess, m.marked)
}

func (m Model) renderStartPage(width int) string {
	openKeys := m.keys.KeysFor(config.ActionOpen)
	helpKeys := m.keys.KeysFor(config.ActionHelp)

	lines := []string{
		styles.CommandHeaderStyle.Render(styles.IconTable + "  tabula"),
		"",
		styles.EmptyStateStyle.Render("No file open"),
	}
	if openKeys != "" {
		lines = append(lines, styles.CommandStyle.Render(fmt.Sprintf("press %s to open a CSV file", openKeys)))
	}
	if helpKeys != "" {
		lines = append(lines, styles.CommandStyle.Render(fmt.Sprintf("press %s for help", helpKeys)))
	}
	block := lipgloss.JoinVertical(lipgloss.Center, lines...)
	return lipgloss.Place(width, m.gridHeight(), lipgloss.Center, lipgloss.Center, block)
}

func (m Model) renderStatusBar(width int) string {
	stats := m.sess.Stats()
	sep := styles.StatusMutedStyle.Render("  ")

	var left []string
	switch {
	case m.load != nil:
		p := stats.Progress
		progress := fmt.Sprintf("%s loading %d", m.spinner.View(), p.RowsRead)
		if p.TotalRows > 0 {
			progress = fmt.Sprintf("%s loading %.0f%% (%d/%d rows)", m.spinner.View(), p.Fraction()*100, p.RowsRead, p.TotalRows)
		}
		left = append(left, styles.StatusFileStyle.Render(progress))
	case stats.State == session.NoFile:
		left = append(left, styles.StatusMutedStyle.Render("no file"))
	default:
		left = append(left, styles.StatusFileStyle.Render(filepath.Base(stats.Source)))
		if stats.Changed {
			left = append(left, styles.StatusModifiedStyle.Render("modified"))
		}
		if stats.Partial {
			left = append(left, styles.StatusWarnStyle.Render("partial"))
		}
	}

	if stats.State != session.NoFile {
		left = append(left, styles.StatusMutedStyle.Render(fmt.Sprintf("%d rows", stats.Rows)))
		cols := fmt.Sprintf("%d cols", stats.Columns)
		if hidden := stats.Columns - stats.VisibleColumns; hidden > 0 {
			cols = fmt.Sprintf("%d/%d cols", stats.VisibleColumns, stats.Columns)
		}
		left = append(left, styles.StatusMutedStyle.Render(cols))
	}
	if len(m.marked) > 0 {
		left = append(left, styles.StatusModifiedStyle.Render(styles.IconChart+" "+strings.Join(m.marked, " × ")))
	}

	right := ""
	if cell, ok := m.currentCell(); ok {
		header := m.sess.AllColumns()[cell.Col]
		right = styles.StatusMutedStyle.Render(fmt.Sprintf("%s  R%d", header, cell.Row+1))
	}

	leftStr := strings.Join(left, sep)
	gap := width - lipgloss.Width(leftStr) - lipgloss.Width(right) - 2
	if gap < 1 {
		right = ""
		gap = max(width-lipgloss.Width(leftStr)-2, 0)
	}
	bar := leftStr + styles.StatusMutedStyle.Render(strings.Repeat(" ", gap)) + right
	return styles.StatusBarStyle.Render(ansi.Truncate(bar, max(width-2, 0), "…"))
}
