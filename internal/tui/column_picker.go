package tui

import (
	"fmt"
	"io"

	"charm.land/bubbles/v2/list"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	lipgloss "charm.land/lipgloss/v2"

	"github.com/colonyops/tabula/internal/core/styles"
)

// columnItem is one header in the column picker.
type columnItem struct {
	header string
	index  int
}

func (i columnItem) FilterValue() string { return i.header }

type columnDelegate struct {
	checked map[int]bool
}

func (d columnDelegate) Height() int                             { return 1 }
func (d columnDelegate) Spacing() int                            { return 0 }
func (d columnDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d columnDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	item, ok := listItem.(columnItem)
	if !ok {
		return
	}

	check := styles.IconHidden
	if d.checked[item.index] {
		check = styles.IconVisible
	}

	style := styles.CommandStyle
	cursor := "  "
	if index == m.Index() {
		style = styles.CommandHeaderStyle
		cursor = "> "
	}

	_, _ = io.WriteString(w, cursor+style.Render(check+" "+item.header))
}

// ColumnPicker lets the user choose which columns are visible. It is seeded
// from the current flags and reports only the final selection.
type ColumnPicker struct {
	list      list.Model
	headers   []string
	checked   map[int]bool
	applied   bool
	cancelled bool
}

// NewColumnPicker builds a picker over headers with the given visibility.
func NewColumnPicker(headers []string, flags map[string]bool, width, height int) *ColumnPicker {
	items := make([]list.Item, len(headers))
	checked := make(map[int]bool, len(headers))
	for i, h := range headers {
		items[i] = columnItem{header: h, index: i}
		checked[i] = flags[h]
	}

	listHeight := max(min(len(headers), height-10, 20), 1)
	listWidth := max(min(width-10, 60), 24)

	l := list.New(items, columnDelegate{checked: checked}, listWidth, listHeight)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)
	l.SetShowPagination(len(headers) > listHeight)
	l.Styles.TitleBar = lipgloss.NewStyle()

	l.FilterInput.Prompt = "/ "
	filterStyles := textinput.DefaultStyles(true)
	filterStyles.Focused.Prompt = lipgloss.NewStyle().Foreground(styles.ColorPrimary)
	filterStyles.Cursor.Color = styles.ColorPrimary
	l.FilterInput.SetStyles(filterStyles)

	return &ColumnPicker{list: l, headers: headers, checked: checked}
}

// Update handles messages for the picker.
func (p *ColumnPicker) Update(msg tea.Msg) tea.Cmd {
	if keyMsg, ok := msg.(tea.KeyPressMsg); ok && !p.list.SettingFilter() {
		switch keyMsg.String() {
		case "space", "x":
			if item, ok := p.list.SelectedItem().(columnItem); ok {
				p.checked[item.index] = !p.checked[item.index]
			}
			return nil
		case "a":
			p.toggleAll()
			return nil
		case "enter":
			p.applied = true
			return nil
		case "esc", "q":
			if p.list.IsFiltered() {
				p.list.ResetFilter()
				return nil
			}
			p.cancelled = true
			return nil
		}
	}

	var cmd tea.Cmd
	p.list, cmd = p.list.Update(msg)
	return cmd
}

// toggleAll checks every column unless all are already checked, in which
// case it unchecks them.
func (p *ColumnPicker) toggleAll() {
	all := true
	for i := range p.headers {
		if !p.checked[i] {
			all = false
			break
		}
	}
	for i := range p.headers {
		p.checked[i] = !all
	}
}

// Applied reports whether the selection was confirmed.
func (p *ColumnPicker) Applied() bool { return p.applied }

// Cancelled reports whether the picker was dismissed.
func (p *ColumnPicker) Cancelled() bool { return p.cancelled }

// Selected returns the checked headers in column order.
func (p *ColumnPicker) Selected() []string {
	out := make([]string, 0, len(p.headers))
	for i, h := range p.headers {
		if p.checked[i] {
			out = append(out, h)
		}
	}
	return out
}

// View renders the picker box.
func (p *ColumnPicker) View() string {
	body := p.list.View()
	if p.list.SettingFilter() {
		body = lipgloss.JoinVertical(lipgloss.Left, p.list.FilterInput.View(), body)
	}
	title := fmt.Sprintf("Columns (%d/%d visible)", len(p.Selected()), len(p.headers))
	return modalFrame(title, body, "space toggle  a all  / filter  enter apply  esc cancel")
}
