package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChoiceModal_HandleKey(t *testing.T) {
	tests := []struct {
		name   string
		keys   []string
		want   promptChoice
		commit bool
	}{
		{name: "enter defaults to save", keys: []string{"enter"}, want: choiceSave, commit: true},
		{name: "right then enter discards", keys: []string{"right", "enter"}, want: choiceDiscard, commit: true},
		{name: "left wraps to cancel", keys: []string{"left", "enter"}, want: choiceCancel, commit: true},
		{name: "shortcut discard", keys: []string{"d"}, want: choiceDiscard, commit: true},
		{name: "esc cancels", keys: []string{"right", "esc"}, want: choiceCancel, commit: true},
		{name: "navigation alone does not commit", keys: []string{"right"}, commit: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewSavePrompt("people.csv")
			var (
				got promptChoice
				ok  bool
			)
			for _, k := range tt.keys {
				got, ok = m.HandleKey(k)
			}
			assert.Equal(t, tt.commit, ok)
			if tt.commit {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestChoiceModal_View(t *testing.T) {
	m := NewSavePrompt("people.csv")
	view := m.View()
	assert.Contains(t, view, "people.csv")
	assert.Contains(t, view, "Discard")
}
