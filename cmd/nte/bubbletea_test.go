package main

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/julien-sobczak/the-noteexporter/internal/core"
	"github.com/stretchr/testify/assert"
)

func TestPresetModel(t *testing.T) {
	m := NewPresetModel([]core.Preset{
		{Name: "book", Format: "typst"},
		{Name: "site", Format: "myst"},
	})
	assert.Contains(t, m.View(), "book")

	res, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	res, cmd := res.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.NotNil(t, cmd)
	assert.Equal(t, "site", res.(PresetModel).choice)
	assert.Contains(t, res.View(), "Using preset site")

	res, _ = NewPresetModel(nil).Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Empty(t, res.(PresetModel).choice)
}

func TestConfirmModel(t *testing.T) {
	var notes []string
	for i := 0; i < 12; i++ {
		notes = append(notes, "notes/Go.md")
	}
	m := NewConfirmModel("Export 12 note(s)?", notes)
	view := m.View()
	assert.Contains(t, view, "Export 12 note(s)?")
	assert.Contains(t, view, "... and 2 more")

	res, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")})
	assert.True(t, res.(ConfirmModel).confirmed)

	res, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})
	assert.False(t, res.(ConfirmModel).confirmed)
	assert.Empty(t, res.View())

	// Other keys are ignored
	res, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	assert.Nil(t, cmd)
	assert.False(t, res.(ConfirmModel).done)
}
