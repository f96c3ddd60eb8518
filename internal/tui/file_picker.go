package tui

import (
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"slices"

	"charm.land/bubbles/v2/list"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	lipgloss "charm.land/lipgloss/v2"
	"github.com/bmatcuk/doublestar/v4"

	"github.com/colonyops/tabula/internal/core/styles"
)

// discoverFiles returns the files in fsys matching any pattern, sorted and
// deduplicated, capped at limit. The second result reports truncation.
func discoverFiles(fsys fs.FS, patterns []string, limit int) ([]string, bool, error) {
	seen := make(map[string]struct{})
	var out []string
	for _, p := range patterns {
		matches, err := doublestar.Glob(fsys, p, doublestar.WithFilesOnly(), doublestar.WithFailOnIOErrors())
		if err != nil {
			return nil, false, fmt.Errorf("glob %q: %w", p, err)
		}
		for _, m := range matches {
			if _, dup := seen[m]; dup {
				continue
			}
			seen[m] = struct{}{}
			out = append(out, m)
		}
	}
	slices.Sort(out)

	truncated := false
	if limit > 0 && len(out) > limit {
		out = out[:limit]
		truncated = true
	}
	return out, truncated, nil
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

type fileItem struct {
	path   string
	recent bool
}

func (i fileItem) FilterValue() string { return i.path }

type fileDelegate struct{}

func (d fileDelegate) Height() int                             { return 1 }
func (d fileDelegate) Spacing() int                            { return 0 }
func (d fileDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d fileDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	item, ok := listItem.(fileItem)
	if !ok {
		return
	}
	style := styles.CommandStyle
	cursor := "  "
	if index == m.Index() {
		style = styles.CommandHeaderStyle
		cursor = "> "
	}
	line := cursor + style.Render(styles.IconFileCSV+" "+item.path)
	if item.recent {
		line += " " + styles.TextMutedStyle.Render("recent")
	}
	_, _ = io.WriteString(w, line)
}

// FilePicker lists candidate files for the open action.
type FilePicker struct {
	list      list.Model
	truncated bool
	chosen    string
	typePath  bool
	cancelled bool
}

// NewFilePicker creates a picker listing recent first, then the discovered
// files that are not already among them.
func NewFilePicker(recent, files []string, truncated bool, width, height int) *FilePicker {
	items := make([]list.Item, 0, len(recent)+len(files))
	seen := make(map[string]struct{}, len(recent))
	for _, f := range recent {
		seen[absPath(f)] = struct{}{}
		items = append(items, fileItem{path: f, recent: true})
	}
	for _, f := range files {
		if _, dup := seen[absPath(f)]; dup {
			continue
		}
		items = append(items, fileItem{path: f})
	}

	listHeight := max(min(len(items), height-10, 20), 1)
	listWidth := max(min(width-10, 80), 30)

	l := list.New(items, fileDelegate{}, listWidth, listHeight)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)
	l.SetShowPagination(len(items) > listHeight)
	l.Styles.TitleBar = lipgloss.NewStyle()

	l.FilterInput.Prompt = "/ "
	filterStyles := textinput.DefaultStyles(true)
	filterStyles.Focused.Prompt = lipgloss.NewStyle().Foreground(styles.ColorPrimary)
	filterStyles.Cursor.Color = styles.ColorPrimary
	l.FilterInput.SetStyles(filterStyles)

	return &FilePicker{list: l, truncated: truncated}
}

// Update handles messages for the picker.
func (p *FilePicker) Update(msg tea.Msg) tea.Cmd {
	if keyMsg, ok := msg.(tea.KeyPressMsg); ok && !p.list.SettingFilter() {
		switch keyMsg.String() {
		case "enter":
			if item, ok := p.list.SelectedItem().(fileItem); ok {
				p.chosen = item.path
			}
			return nil
		case "tab":
			p.typePath = true
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

// Chosen returns the selected file, or "" while the picker is open.
func (p *FilePicker) Chosen() string { return p.chosen }

// WantsTypedPath reports whether the user asked to enter a path by hand.
func (p *FilePicker) WantsTypedPath() bool { return p.typePath }

// Cancelled reports whether the picker was dismissed.
func (p *FilePicker) Cancelled() bool { return p.cancelled }

// View renders the picker box.
func (p *FilePicker) View() string {
	var body string
	switch {
	case len(p.list.Items()) == 0:
		body = styles.EmptyStateStyle.Render("no matching files")
	case p.list.SettingFilter():
		body = lipgloss.JoinVertical(lipgloss.Left, p.list.FilterInput.View(), p.list.View())
	default:
		body = p.list.View()
	}
	if p.truncated {
		body = lipgloss.JoinVertical(lipgloss.Left, body, styles.StatusWarnStyle.UnsetBackground().Render("list truncated"))
	}
	return modalFrame("Open file", body, "enter open  / filter  tab type a path  esc cancel")
}
