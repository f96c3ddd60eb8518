package tui

import (
	"sort"
	"strings"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"

	"github.com/colonyops/tabula/internal/core/config"
)

// navKeys are fixed and take precedence over configured action keys.
type navKeys struct {
	Up        key.Binding
	Down      key.Binding
	Left      key.Binding
	Right     key.Binding
	PageUp    key.Binding
	PageDown  key.Binding
	Top       key.Binding
	Bottom    key.Binding
	LineStart key.Binding
	LineEnd   key.Binding
	ForceQuit key.Binding
}

func defaultNavKeys() navKeys {
	return navKeys{
		Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Left:      key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "left")),
		Right:     key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "right")),
		PageUp:    key.NewBinding(key.WithKeys("pgup", "ctrl+u"), key.WithHelp("pgup", "page up")),
		PageDown:  key.NewBinding(key.WithKeys("pgdown", "ctrl+d"), key.WithHelp("pgdn", "page down")),
		Top:       key.NewBinding(key.WithKeys("g", "ctrl+home"), key.WithHelp("g", "first row")),
		Bottom:    key.NewBinding(key.WithKeys("G", "ctrl+end"), key.WithHelp("G", "last row")),
		LineStart: key.NewBinding(key.WithKeys("home", "0"), key.WithHelp("0", "first column")),
		LineEnd:   key.NewBinding(key.WithKeys("end", "$"), key.WithHelp("$", "last column")),
		ForceQuit: key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

func (n navKeys) bindings() []key.Binding {
	return []key.Binding{
		n.Up, n.Down, n.Left, n.Right, n.PageUp, n.PageDown,
		n.Top, n.Bottom, n.LineStart, n.LineEnd, n.ForceQuit,
	}
}

// KeyResolver maps key presses to configured actions.
type KeyResolver struct {
	nav     navKeys
	actions map[string]string
}

// NewKeyResolver builds a resolver from the key to action map in config.
func NewKeyResolver(bindings map[string]string) *KeyResolver {
	actions := make(map[string]string, len(bindings))
	for k, a := range bindings {
		actions[k] = a
	}
	return &KeyResolver{nav: defaultNavKeys(), actions: actions}
}

// Resolve returns the action bound to msg. Navigation keys never resolve.
func (r *KeyResolver) Resolve(msg tea.KeyPressMsg) (string, bool) {
	for _, b := range r.nav.bindings() {
		if key.Matches(msg, b) {
			return "", false
		}
	}
	a, ok := r.actions[msg.String()]
	return a, ok
}

// KeysFor returns the keys bound to action, sorted, joined for display.
func (r *KeyResolver) KeysFor(action string) string {
	var keys []string
	for k, a := range r.actions {
		if a == action {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return strings.Join(keys, "/")
}

var actionHelp = map[string]string{
	config.ActionOpen:         "open a file",
	config.ActionSave:         "save",
	config.ActionSaveAs:       "save as",
	config.ActionClose:        "close file",
	config.ActionQuit:         "quit",
	config.ActionEdit:         "edit cell",
	config.ActionAddRow:       "add row",
	config.ActionAddColumn:    "add column",
	config.ActionDeleteRow:    "delete row",
	config.ActionDeleteColumn: "delete column",
	config.ActionClearCell:    "clear cell",
	config.ActionColumns:      "show/hide columns",
	config.ActionMark:         "mark column for plot",
	config.ActionPlot:         "plot marked columns",
	config.ActionHelp:         "help",
	config.ActionMessages:     "notification history",
}

// HelpEntry is one line of the help dialog.
type HelpEntry struct {
	Key  string
	Desc string
}

// HelpSection groups help entries under a title.
type HelpSection struct {
	Title   string
	Entries []HelpEntry
}

// HelpSections lists bound actions followed by navigation keys.
func (r *KeyResolver) HelpSections() []HelpSection {
	var actions []HelpEntry
	for _, a := range config.Actions() {
		keys := r.KeysFor(a)
		if keys == "" {
			continue
		}
		actions = append(actions, HelpEntry{Key: keys, Desc: actionHelp[a]})
	}

	var nav []HelpEntry
	for _, b := range r.nav.bindings() {
		h := b.Help()
		nav = append(nav, HelpEntry{Key: h.Key, Desc: h.Desc})
	}

	return []HelpSection{
		{Title: "File and editing", Entries: actions},
		{Title: "Navigation", Entries: nav},
	}
}
