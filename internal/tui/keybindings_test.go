package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/tabula/internal/core/config"
	"github.com/colonyops/tabula/pkg/tuitest"
)

func TestKeyResolver_Resolve(t *testing.T) {
	r := NewKeyResolver(map[string]string{
		"ctrl+s": config.ActionSave,
		"q":      config.ActionQuit,
		"j":      config.ActionHelp,
	})

	a, ok := r.Resolve(tuitest.Key("ctrl+s"))
	require.True(t, ok)
	assert.Equal(t, config.ActionSave, a)

	a, ok = r.Resolve(tuitest.Key("q"))
	require.True(t, ok)
	assert.Equal(t, config.ActionQuit, a)

	_, ok = r.Resolve(tuitest.Key("j"))
	assert.False(t, ok, "navigation wins over bound actions")

	_, ok = r.Resolve(tuitest.Key("z"))
	assert.False(t, ok)
}

func TestKeyResolver_HelpSections(t *testing.T) {
	r := NewKeyResolver(map[string]string{
		"ctrl+s": config.ActionSave,
		"s":      config.ActionSave,
		"?":      config.ActionHelp,
	})

	sections := r.HelpSections()
	require.Len(t, sections, 2)

	assert.Equal(t, []HelpEntry{
		{Key: "ctrl+s/s", Desc: "save"},
		{Key: "?", Desc: "help"},
	}, sections[0].Entries)
	assert.NotEmpty(t, sections[1].Entries)
}
